package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StockService is the only writer of stock_quantities. Deltas lock the
// affected row, never the whole table, so orders touching different products
// do not serialize against each other.
type StockService interface {
	// GetQuantity returns the on-hand quantity, 0 when the product has never
	// been stocked at the location.
	GetQuantity(ctx context.Context, productSKU string, locationID int) (int64, error)

	// ApplyDelta adds delta (positive or negative) in its own transaction.
	ApplyDelta(ctx context.Context, productSKU string, locationID int, delta int64, reason MovementReason, orderID *int, reference string) error

	// ApplyDeltaTx is the composition form: it works within the caller's
	// transaction so multi-line mutations commit or roll back as one. Fails
	// with InsufficientStockError when the resulting quantity would be
	// negative. A zero delta is a successful no-op.
	ApplyDeltaTx(ctx context.Context, tx pgx.Tx, productSKU string, locationID int, delta int64, reason MovementReason, orderID *int, reference string) error

	// IsBelowThreshold compares the product's summed quantity across all
	// locations to its reorder threshold. Read-only.
	IsBelowThreshold(ctx context.Context, productSKU string) (bool, error)

	// ListBelowThreshold returns every active product at or under its reorder
	// threshold, for the display layer to turn into reorder notifications.
	ListBelowThreshold(ctx context.Context) ([]StockAlert, error)

	// GetStockLevels returns all stock rows joined with product and location
	// names, ordered by SKU then location.
	GetStockLevels(ctx context.Context) ([]StockLevel, error)

	// GetMovements returns the movement audit trail for one product, newest
	// first.
	GetMovements(ctx context.Context, productSKU string) ([]StockMovement, error)
}

type stockService struct {
	pool *pgxpool.Pool
}

// NewStockService constructs a StockService backed by PostgreSQL.
func NewStockService(pool *pgxpool.Pool) StockService {
	return &stockService{pool: pool}
}

func (s *stockService) GetQuantity(ctx context.Context, productSKU string, locationID int) (int64, error) {
	var qty int64
	err := s.pool.QueryRow(ctx,
		"SELECT quantity FROM stock_quantities WHERE product_sku = $1 AND location_id = $2",
		productSKU, locationID,
	).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get quantity for %s at location %d: %w", productSKU, locationID, err)
	}
	return qty, nil
}

func (s *stockService) ApplyDelta(ctx context.Context, productSKU string, locationID int, delta int64, reason MovementReason, orderID *int, reference string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.ApplyDeltaTx(ctx, tx, productSKU, locationID, delta, reason, orderID, reference); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit stock delta: %w", err)
	}
	return nil
}

// ApplyDeltaTx locks the (product, location) row, creating it at zero on
// first touch, and applies the delta. The caller owns the transaction; on an
// InsufficientStockError the caller must roll back everything it has done.
func (s *stockService) ApplyDeltaTx(ctx context.Context, tx pgx.Tx, productSKU string, locationID int, delta int64, reason MovementReason, orderID *int, reference string) error {
	if delta == 0 {
		return nil
	}

	// Ensure the row exists, then lock it. The separate FOR UPDATE read keeps
	// the check-and-apply atomic under concurrent deltas on the same row.
	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_quantities (product_sku, location_id, quantity)
		VALUES ($1, $2, 0)
		ON CONFLICT (product_sku, location_id) DO NOTHING
	`, productSKU, locationID); err != nil {
		return fmt.Errorf("ensure stock row for %s at location %d: %w", productSKU, locationID, err)
	}

	var current int64
	if err := tx.QueryRow(ctx,
		"SELECT quantity FROM stock_quantities WHERE product_sku = $1 AND location_id = $2 FOR UPDATE",
		productSKU, locationID,
	).Scan(&current); err != nil {
		return fmt.Errorf("lock stock row for %s at location %d: %w", productSKU, locationID, err)
	}

	next := current + delta
	if next < 0 {
		return &InsufficientStockError{
			ProductSKU: productSKU,
			LocationID: locationID,
			Have:       current,
			Want:       -delta,
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE stock_quantities
		SET quantity = $1, updated_at = NOW()
		WHERE product_sku = $2 AND location_id = $3
	`, next, productSKU, locationID); err != nil {
		return fmt.Errorf("update stock for %s at location %d: %w", productSKU, locationID, err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_movements (product_sku, location_id, delta, reason, order_id, reference)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, productSKU, locationID, delta, reason, orderID, reference); err != nil {
		return fmt.Errorf("record stock movement for %s at location %d: %w", productSKU, locationID, err)
	}

	return nil
}

func (s *stockService) IsBelowThreshold(ctx context.Context, productSKU string) (bool, error) {
	var threshold, total int64
	err := s.pool.QueryRow(ctx, `
		SELECT p.qty_threshold, COALESCE(SUM(sq.quantity), 0)
		FROM products p
		LEFT JOIN stock_quantities sq ON sq.product_sku = p.sku
		WHERE p.sku = $1
		GROUP BY p.qty_threshold
	`, productSKU).Scan(&threshold, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("product %s not found", productSKU)
		}
		return false, fmt.Errorf("check threshold for %s: %w", productSKU, err)
	}
	return total <= threshold, nil
}

func (s *stockService) ListBelowThreshold(ctx context.Context) ([]StockAlert, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.sku, p.name, p.qty_threshold, COALESCE(SUM(sq.quantity), 0) AS total
		FROM products p
		LEFT JOIN stock_quantities sq ON sq.product_sku = p.sku
		WHERE p.is_active = true
		GROUP BY p.sku, p.name, p.qty_threshold
		HAVING COALESCE(SUM(sq.quantity), 0) <= p.qty_threshold
		ORDER BY p.sku
	`)
	if err != nil {
		return nil, fmt.Errorf("list stock below threshold: %w", err)
	}
	defer rows.Close()

	var alerts []StockAlert
	for rows.Next() {
		var a StockAlert
		if err := rows.Scan(&a.ProductSKU, &a.ProductName, &a.QtyThreshold, &a.TotalOnHand); err != nil {
			return nil, fmt.Errorf("scan stock alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

func (s *stockService) GetStockLevels(ctx context.Context) ([]StockLevel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT sq.product_sku, p.name, sq.location_id, l.name, sq.quantity
		FROM stock_quantities sq
		JOIN products p  ON p.sku = sq.product_sku
		JOIN locations l ON l.id = sq.location_id
		ORDER BY sq.product_sku, sq.location_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query stock levels: %w", err)
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var sl StockLevel
		if err := rows.Scan(&sl.ProductSKU, &sl.ProductName, &sl.LocationID, &sl.LocationName, &sl.Quantity); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		levels = append(levels, sl)
	}
	return levels, nil
}

func (s *stockService) GetMovements(ctx context.Context, productSKU string) ([]StockMovement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, product_sku, location_id, delta, reason, order_id, reference, moved_at
		FROM stock_movements
		WHERE product_sku = $1
		ORDER BY id DESC
	`, productSKU)
	if err != nil {
		return nil, fmt.Errorf("query movements for %s: %w", productSKU, err)
	}
	defer rows.Close()

	var movements []StockMovement
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.ID, &m.ProductSKU, &m.LocationID, &m.Delta, &m.Reason, &m.OrderID, &m.Reference, &m.MovedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, nil
}
