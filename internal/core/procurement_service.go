package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProcurementService drives the procurement order lifecycle. Every transition
// runs in one transaction and re-reads the order's state under FOR UPDATE, so
// a caller acting on a stale read gets an InvalidTransitionError instead of
// clobbering a concurrent transition. Fulfilment is the only transition that
// touches stock, and it does so inside the same transaction as the status
// update.
type ProcurementService interface {
	// CreateOrder creates an order in (PENDING, CREATED) with its total
	// computed from the items. Items may carry a BundleID when they came from
	// a bundle expansion.
	CreateOrder(ctx context.Context, supplierID, locationID int, currency, orderDate string, items []OrderItemInput) (*ProcurementOrder, error)

	// MarkPaid transitions payment PENDING → PAID, freezing the total.
	MarkPaid(ctx context.Context, orderID int) (*ProcurementOrder, error)

	// MarkInTransit transitions fulfilment CREATED → IN_TRANSIT.
	MarkInTransit(ctx context.Context, orderID int) (*ProcurementOrder, error)

	// MarkFulfilled transitions fulfilment IN_TRANSIT → FULFILLED and applies
	// +quantity to stock at the order's location for every item, all or
	// nothing.
	MarkFulfilled(ctx context.Context, orderID int) (*ProcurementOrder, error)

	// CancelOrder cancels an unfulfilled order. No stock is touched.
	CancelOrder(ctx context.Context, orderID int) (*ProcurementOrder, error)

	// UpdateItems replaces the order's items and recomputes its total. Only
	// allowed while payment is PENDING; afterwards it fails with
	// OrderLockedError.
	UpdateItems(ctx context.Context, orderID int, items []OrderItemInput) (*ProcurementOrder, error)

	// GetOrder returns an order with its items.
	GetOrder(ctx context.Context, orderID int) (*ProcurementOrder, error)

	// GetOrders returns orders, newest first, optionally filtered by
	// fulfilment status.
	GetOrders(ctx context.Context, fulfilment *FulfilmentStatus) ([]ProcurementOrder, error)
}

type procurementService struct {
	pool  *pgxpool.Pool
	stock StockService
}

// NewProcurementService constructs a ProcurementService backed by PostgreSQL.
// The stock service is used only at fulfilment.
func NewProcurementService(pool *pgxpool.Pool, stock StockService) ProcurementService {
	return &procurementService{pool: pool, stock: stock}
}

func (s *procurementService) CreateOrder(ctx context.Context, supplierID, locationID int, currency, orderDate string, items []OrderItemInput) (*ProcurementOrder, error) {
	if err := ValidateItems(items); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Resolve supplier; its contact fields are denormalized onto the header.
	var sup Supplier
	err = tx.QueryRow(ctx,
		"SELECT id, email, name, address, currency FROM suppliers WHERE id = $1 AND is_active = true",
		supplierID,
	).Scan(&sup.ID, &sup.Email, &sup.Name, &sup.Address, &sup.Currency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplier %d not found", supplierID)
		}
		return nil, fmt.Errorf("resolve supplier %d: %w", supplierID, err)
	}
	if currency == "" {
		currency = sup.Currency
	}

	var locationName string
	err = tx.QueryRow(ctx, "SELECT name FROM locations WHERE id = $1", locationID).Scan(&locationName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("location %d not found", locationID)
		}
		return nil, fmt.Errorf("resolve location %d: %w", locationID, err)
	}

	resolved, err := resolveItems(ctx, tx, items)
	if err != nil {
		return nil, err
	}

	state := NewOrderState()
	var orderID int
	err = tx.QueryRow(ctx, `
		INSERT INTO procurement_orders
		            (order_date, supplier_id, supplier_name, supplier_email, supplier_address,
		             location_id, location_name, currency, payment_status, fulfilment_status, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		orderDate, sup.ID, sup.Name, sup.Email, sup.Address,
		locationID, locationName, currency, state.Payment, state.Fulfilment, OrderTotal(items),
	).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("insert procurement order: %w", err)
	}

	if err := insertItems(ctx, tx, orderID, resolved); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit procurement order: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

func (s *procurementService) MarkPaid(ctx context.Context, orderID int) (*ProcurementOrder, error) {
	return s.transition(ctx, orderID, "mark paid", func(st OrderState) (OrderState, error) {
		return st.MarkPaid()
	}, "paid_at")
}

func (s *procurementService) MarkInTransit(ctx context.Context, orderID int) (*ProcurementOrder, error) {
	return s.transition(ctx, orderID, "mark in transit", func(st OrderState) (OrderState, error) {
		return st.MarkInTransit()
	}, "")
}

func (s *procurementService) CancelOrder(ctx context.Context, orderID int) (*ProcurementOrder, error) {
	return s.transition(ctx, orderID, "cancel", func(st OrderState) (OrderState, error) {
		return st.Cancel()
	}, "cancelled_at")
}

// transition applies a pure state-machine step under FOR UPDATE. stampColumn,
// when non-empty, is set to NOW() alongside the status update.
func (s *procurementService) transition(ctx context.Context, orderID int, event string,
	apply func(OrderState) (OrderState, error), stampColumn string) (*ProcurementOrder, error) {

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	state, err := lockOrderState(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	next, err := apply(state)
	if err != nil {
		var ite *InvalidTransitionError
		if errors.As(err, &ite) {
			ite.OrderID = orderID
		}
		return nil, err
	}

	query := "UPDATE procurement_orders SET payment_status = $1, fulfilment_status = $2 WHERE id = $3"
	if stampColumn != "" {
		query = fmt.Sprintf(
			"UPDATE procurement_orders SET payment_status = $1, fulfilment_status = $2, %s = NOW() WHERE id = $3",
			stampColumn,
		)
	}
	if _, err := tx.Exec(ctx, query, next.Payment, next.Fulfilment, orderID); err != nil {
		return nil, fmt.Errorf("%s order %d: %w", event, orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit %s for order %d: %w", event, orderID, err)
	}

	return s.GetOrder(ctx, orderID)
}

// MarkFulfilled is the sole stock-mutating transition: the status update and
// every item's +quantity land in one transaction, so a failure on any line
// (for example a negative-result guard on a concurrent adjustment) rolls back
// the whole fulfilment.
func (s *procurementService) MarkFulfilled(ctx context.Context, orderID int) (*ProcurementOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	state, err := lockOrderState(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	next, err := state.MarkFulfilled()
	if err != nil {
		var ite *InvalidTransitionError
		if errors.As(err, &ite) {
			ite.OrderID = orderID
		}
		return nil, err
	}

	var locationID int
	if err := tx.QueryRow(ctx,
		"SELECT location_id FROM procurement_orders WHERE id = $1", orderID,
	).Scan(&locationID); err != nil {
		return nil, fmt.Errorf("resolve receiving location for order %d: %w", orderID, err)
	}

	items, err := fetchItemsQ(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	reference := uuid.NewString()
	for _, it := range items {
		if err := s.stock.ApplyDeltaTx(ctx, tx, it.ProductSKU, locationID, it.Quantity,
			MovementReceipt, &orderID, reference); err != nil {
			return nil, fmt.Errorf("receive stock for order %d item %s: %w", orderID, it.ProductSKU, err)
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE procurement_orders
		SET payment_status = $1, fulfilment_status = $2, fulfilled_at = NOW()
		WHERE id = $3
	`, next.Payment, next.Fulfilment, orderID); err != nil {
		return nil, fmt.Errorf("fulfil order %d: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit fulfilment of order %d: %w", orderID, err)
	}

	return s.GetOrder(ctx, orderID)
}

func (s *procurementService) UpdateItems(ctx context.Context, orderID int, items []OrderItemInput) (*ProcurementOrder, error) {
	if err := ValidateItems(items); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	state, err := lockOrderState(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if state.Payment != PaymentPending {
		return nil, &OrderLockedError{OrderID: orderID, Payment: state.Payment}
	}

	resolved, err := resolveItems(ctx, tx, items)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM proc_order_items WHERE order_id = $1", orderID); err != nil {
		return nil, fmt.Errorf("clear items for order %d: %w", orderID, err)
	}
	if err := insertItems(ctx, tx, orderID, resolved); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		"UPDATE procurement_orders SET total_amount = $1 WHERE id = $2",
		OrderTotal(items), orderID,
	); err != nil {
		return nil, fmt.Errorf("recompute total for order %d: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit item update for order %d: %w", orderID, err)
	}

	return s.GetOrder(ctx, orderID)
}

// ── Queries ──────────────────────────────────────────────────────────────────

const orderColumns = `
	po.id, po.order_date::text, po.supplier_id, po.supplier_name, po.supplier_email,
	po.supplier_address, po.location_id, po.location_name, po.currency,
	po.payment_status, po.fulfilment_status, po.total_amount,
	po.created_at, po.paid_at, po.fulfilled_at, po.cancelled_at`

func (s *procurementService) GetOrder(ctx context.Context, orderID int) (*ProcurementOrder, error) {
	var o ProcurementOrder
	err := s.pool.QueryRow(ctx,
		"SELECT"+orderColumns+" FROM procurement_orders po WHERE po.id = $1",
		orderID,
	).Scan(
		&o.ID, &o.OrderDate, &o.SupplierID, &o.SupplierName, &o.SupplierEmail,
		&o.SupplierAddress, &o.LocationID, &o.LocationName, &o.Currency,
		&o.Payment, &o.Fulfilment, &o.TotalAmount,
		&o.CreatedAt, &o.PaidAt, &o.FulfilledAt, &o.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("procurement order %d not found", orderID)
		}
		return nil, fmt.Errorf("get procurement order %d: %w", orderID, err)
	}

	items, err := fetchItemsQ(ctx, s.pool, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (s *procurementService) GetOrders(ctx context.Context, fulfilment *FulfilmentStatus) ([]ProcurementOrder, error) {
	query := "SELECT" + orderColumns + " FROM procurement_orders po"
	args := []any{}
	if fulfilment != nil {
		query += " WHERE po.fulfilment_status = $1"
		args = append(args, *fulfilment)
	}
	query += " ORDER BY po.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list procurement orders: %w", err)
	}
	defer rows.Close()

	var orders []ProcurementOrder
	for rows.Next() {
		var o ProcurementOrder
		if err := rows.Scan(
			&o.ID, &o.OrderDate, &o.SupplierID, &o.SupplierName, &o.SupplierEmail,
			&o.SupplierAddress, &o.LocationID, &o.LocationName, &o.Currency,
			&o.Payment, &o.Fulfilment, &o.TotalAmount,
			&o.CreatedAt, &o.PaidAt, &o.FulfilledAt, &o.CancelledAt,
		); err != nil {
			return nil, fmt.Errorf("scan procurement order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// lockOrderState reads the order's status pair under FOR UPDATE, serializing
// concurrent transitions on the same order.
func lockOrderState(ctx context.Context, tx pgx.Tx, orderID int) (OrderState, error) {
	var st OrderState
	err := tx.QueryRow(ctx,
		"SELECT payment_status, fulfilment_status FROM procurement_orders WHERE id = $1 FOR UPDATE",
		orderID,
	).Scan(&st.Payment, &st.Fulfilment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return st, fmt.Errorf("procurement order %d not found", orderID)
		}
		return st, fmt.Errorf("fetch procurement order %d: %w", orderID, err)
	}
	return st, nil
}

type resolvedItem struct {
	input       OrderItemInput
	productName string
}

// resolveItems verifies every SKU against active products and picks up the
// denormalized product name.
func resolveItems(ctx context.Context, tx pgx.Tx, items []OrderItemInput) ([]resolvedItem, error) {
	resolved := make([]resolvedItem, 0, len(items))
	for i, it := range items {
		var name string
		err := tx.QueryRow(ctx,
			"SELECT name FROM products WHERE sku = $1 AND is_active = true",
			it.ProductSKU,
		).Scan(&name)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item %d: product %s not found", i+1, it.ProductSKU)
			}
			return nil, fmt.Errorf("item %d: resolve product %s: %w", i+1, it.ProductSKU, err)
		}
		resolved = append(resolved, resolvedItem{input: it, productName: name})
	}
	return resolved, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID int, items []resolvedItem) error {
	for i, ri := range items {
		it := ri.input
		lineTotal := decimal.NewFromInt(it.Quantity).Mul(it.Rate)
		if _, err := tx.Exec(ctx, `
			INSERT INTO proc_order_items
			            (order_id, line_number, product_sku, product_name, quantity, rate, bundle_id, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			orderID, i+1, it.ProductSKU, ri.productName, it.Quantity, it.Rate, it.BundleID, lineTotal,
		); err != nil {
			return fmt.Errorf("insert order item %d: %w", i+1, err)
		}
	}
	return nil
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared
// query helpers.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func fetchItemsQ(ctx context.Context, q pgxQuerier, orderID int) ([]ProcOrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, line_number, product_sku, product_name, quantity, rate, bundle_id, line_total
		FROM proc_order_items
		WHERE order_id = $1
		ORDER BY line_number
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query items for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var items []ProcOrderItem
	for rows.Next() {
		var it ProcOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.LineNumber, &it.ProductSKU, &it.ProductName,
			&it.Quantity, &it.Rate, &it.BundleID, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, nil
}
