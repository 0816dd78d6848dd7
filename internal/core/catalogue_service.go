package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CatalogueService resolves sellable prices for products and bundles and
// applies discount codes. It owns catalogue entries and discount codes; it
// never touches stock or order state.
type CatalogueService interface {
	// PriceOf returns the active catalogue price for a product or bundle.
	// Fails with NotListedError when no entry exists. A listed item with zero
	// stock is still priced; stock affects sellability elsewhere.
	PriceOf(ctx context.Context, ref EntityRef) (decimal.Decimal, error)

	// ApplyDiscountCode loads the code and applies it to price via
	// ApplyDiscount, checking the validity window against orderDate and the
	// minimum against orderAmount.
	ApplyDiscountCode(ctx context.Context, code string, price, orderAmount decimal.Decimal, orderDate time.Time) (decimal.Decimal, error)

	// Catalogue entry management.
	ListEntry(ctx context.Context, ref EntityRef, price decimal.Decimal, description string) (*CatalogueEntry, error)
	UpdatePrice(ctx context.Context, ref EntityRef, price decimal.Decimal) (*CatalogueEntry, error)
	DelistEntry(ctx context.Context, ref EntityRef) error
	GetEntries(ctx context.Context) ([]CatalogueEntry, error)

	// Discount code management.
	CreateDiscountCode(ctx context.Context, code DiscountCode) error
	GetDiscountCode(ctx context.Context, code string) (*DiscountCode, error)
	GetDiscountCodes(ctx context.Context) ([]DiscountCode, error)
}

type catalogueService struct {
	pool *pgxpool.Pool
}

// NewCatalogueService constructs a CatalogueService backed by PostgreSQL.
func NewCatalogueService(pool *pgxpool.Pool) CatalogueService {
	return &catalogueService{pool: pool}
}

func (s *catalogueService) PriceOf(ctx context.Context, ref EntityRef) (decimal.Decimal, error) {
	var price decimal.Decimal
	var err error
	switch ref.Kind {
	case EntityProduct:
		err = s.pool.QueryRow(ctx,
			"SELECT price FROM product_catalogues WHERE product_sku = $1",
			ref.ProductSKU,
		).Scan(&price)
	case EntityBundle:
		err = s.pool.QueryRow(ctx,
			"SELECT price FROM bundle_catalogues WHERE bundle_id = $1",
			ref.BundleID,
		).Scan(&price)
	default:
		return decimal.Zero, fmt.Errorf("unknown entity kind %q", ref.Kind)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, &NotListedError{Ref: ref}
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("price of %s: %w", ref, err)
	}
	return price, nil
}

func (s *catalogueService) ApplyDiscountCode(ctx context.Context, code string, price, orderAmount decimal.Decimal, orderDate time.Time) (decimal.Decimal, error) {
	dc, err := s.GetDiscountCode(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	return ApplyDiscount(price, *dc, orderAmount, orderDate)
}

func (s *catalogueService) ListEntry(ctx context.Context, ref EntityRef, price decimal.Decimal, description string) (*CatalogueEntry, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("catalogue price cannot be negative, got %s", price)
	}

	entry := &CatalogueEntry{Ref: ref, Price: price, Description: description}
	var err error
	switch ref.Kind {
	case EntityProduct:
		err = s.pool.QueryRow(ctx, `
			INSERT INTO product_catalogues (product_sku, price, description)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			ref.ProductSKU, price, description,
		).Scan(&entry.ID, &entry.CreatedAt)
	case EntityBundle:
		err = s.pool.QueryRow(ctx, `
			INSERT INTO bundle_catalogues (bundle_id, price, description)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			ref.BundleID, price, description,
		).Scan(&entry.ID, &entry.CreatedAt)
	default:
		return nil, fmt.Errorf("unknown entity kind %q", ref.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s in catalogue: %w", ref, err)
	}
	return entry, nil
}

func (s *catalogueService) UpdatePrice(ctx context.Context, ref EntityRef, price decimal.Decimal) (*CatalogueEntry, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("catalogue price cannot be negative, got %s", price)
	}

	entry := &CatalogueEntry{Ref: ref, Price: price}
	var err error
	switch ref.Kind {
	case EntityProduct:
		err = s.pool.QueryRow(ctx, `
			UPDATE product_catalogues SET price = $1 WHERE product_sku = $2
			RETURNING id, description, created_at`,
			price, ref.ProductSKU,
		).Scan(&entry.ID, &entry.Description, &entry.CreatedAt)
	case EntityBundle:
		err = s.pool.QueryRow(ctx, `
			UPDATE bundle_catalogues SET price = $1 WHERE bundle_id = $2
			RETURNING id, description, created_at`,
			price, ref.BundleID,
		).Scan(&entry.ID, &entry.Description, &entry.CreatedAt)
	default:
		return nil, fmt.Errorf("unknown entity kind %q", ref.Kind)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotListedError{Ref: ref}
	}
	if err != nil {
		return nil, fmt.Errorf("update price of %s: %w", ref, err)
	}
	return entry, nil
}

func (s *catalogueService) DelistEntry(ctx context.Context, ref EntityRef) error {
	var query string
	var arg any
	switch ref.Kind {
	case EntityProduct:
		query, arg = "DELETE FROM product_catalogues WHERE product_sku = $1", ref.ProductSKU
	case EntityBundle:
		query, arg = "DELETE FROM bundle_catalogues WHERE bundle_id = $1", ref.BundleID
	default:
		return fmt.Errorf("unknown entity kind %q", ref.Kind)
	}

	tag, err := s.pool.Exec(ctx, query, arg)
	if err != nil {
		return fmt.Errorf("delist %s: %w", ref, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotListedError{Ref: ref}
	}
	return nil
}

func (s *catalogueService) GetEntries(ctx context.Context) ([]CatalogueEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, 'PRODUCT', product_sku, 0, price, description, created_at FROM product_catalogues
		UNION ALL
		SELECT id, 'BUNDLE', '', bundle_id, price, description, created_at FROM bundle_catalogues
		ORDER BY 2, 3, 4
	`)
	if err != nil {
		return nil, fmt.Errorf("list catalogue entries: %w", err)
	}
	defer rows.Close()

	var entries []CatalogueEntry
	for rows.Next() {
		var e CatalogueEntry
		if err := rows.Scan(&e.ID, &e.Ref.Kind, &e.Ref.ProductSKU, &e.Ref.BundleID,
			&e.Price, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan catalogue entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *catalogueService) CreateDiscountCode(ctx context.Context, code DiscountCode) error {
	if code.Code == "" {
		return fmt.Errorf("discount code is required")
	}
	if code.Type != DiscountFlatAmount && code.Type != DiscountPercentage {
		return fmt.Errorf("unknown discount type %q", code.Type)
	}
	if code.Amount.IsNegative() {
		return fmt.Errorf("discount amount cannot be negative, got %s", code.Amount)
	}
	if code.EndDate.Before(code.StartDate) {
		return fmt.Errorf("discount window ends before it starts")
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO discount_codes (code, type, amount, min_order_amount, start_date, end_date, customer_emails)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		code.Code, code.Type, code.Amount, code.MinOrderAmount,
		code.StartDate, code.EndDate, code.CustomerEmails,
	)
	if err != nil {
		return fmt.Errorf("create discount code %s: %w", code.Code, err)
	}
	return nil
}

func (s *catalogueService) GetDiscountCode(ctx context.Context, code string) (*DiscountCode, error) {
	dc := &DiscountCode{}
	err := s.pool.QueryRow(ctx, `
		SELECT code, type, amount, min_order_amount, start_date, end_date, customer_emails, created_at
		FROM discount_codes
		WHERE code = $1`,
		code,
	).Scan(&dc.Code, &dc.Type, &dc.Amount, &dc.MinOrderAmount,
		&dc.StartDate, &dc.EndDate, &dc.CustomerEmails, &dc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("discount code %s not found", code)
		}
		return nil, fmt.Errorf("get discount code %s: %w", code, err)
	}
	return dc, nil
}

func (s *catalogueService) GetDiscountCodes(ctx context.Context) ([]DiscountCode, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT code, type, amount, min_order_amount, start_date, end_date, customer_emails, created_at
		FROM discount_codes
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("list discount codes: %w", err)
	}
	defer rows.Close()

	var codes []DiscountCode
	for rows.Next() {
		var dc DiscountCode
		if err := rows.Scan(&dc.Code, &dc.Type, &dc.Amount, &dc.MinOrderAmount,
			&dc.StartDate, &dc.EndDate, &dc.CustomerEmails, &dc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan discount code: %w", err)
		}
		codes = append(codes, dc)
	}
	return codes, nil
}
