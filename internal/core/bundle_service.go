package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BundleService manages bundles and expands them into product quantities for
// stock-impact calculations. Expansion itself is pure (ExpandLines); the
// service only fetches the constituents.
type BundleService interface {
	// CreateBundle creates a bundle with its constituents. At least one
	// constituent is required and every multiplier must be positive.
	CreateBundle(ctx context.Context, name, description string, products []BundleProductInput) (*Bundle, error)

	// UpdateBundle replaces the bundle's name, description and constituents.
	// Constituent multipliers are immutable once any order line references the
	// bundle; only name and description may change after that.
	UpdateBundle(ctx context.Context, bundleID int, name, description string, products []BundleProductInput) (*Bundle, error)

	// Expand multiplies each constituent's per-bundle quantity by orderedQty.
	// Fails with EmptyBundleError if the bundle has no constituents.
	Expand(ctx context.Context, bundleID int, orderedQty int64) ([]ExpandedLine, error)

	// ExpandToItems expands a bundle into order line inputs at the given rate,
	// each tagged with the source bundle. Used when a procurement order buys
	// bundles rather than bare products.
	ExpandToItems(ctx context.Context, bundleID int, orderedQty int64, rate RateFunc) ([]OrderItemInput, error)

	GetBundle(ctx context.Context, bundleID int) (*Bundle, error)
	GetBundles(ctx context.Context) ([]Bundle, error)
	DeleteBundle(ctx context.Context, bundleID int) error
}

// RateFunc supplies the per-unit rate for a product when expanding a bundle
// into order lines.
type RateFunc func(productSKU string) (decimal.Decimal, error)

type bundleService struct {
	pool *pgxpool.Pool
}

// NewBundleService constructs a BundleService backed by PostgreSQL.
func NewBundleService(pool *pgxpool.Pool) BundleService {
	return &bundleService{pool: pool}
}

func (s *bundleService) CreateBundle(ctx context.Context, name, description string, products []BundleProductInput) (*Bundle, error) {
	if err := ValidateBundleProducts(products); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var bundleID int
	err = tx.QueryRow(ctx,
		"INSERT INTO bundles (name, description) VALUES ($1, $2) RETURNING id",
		name, description,
	).Scan(&bundleID)
	if err != nil {
		return nil, fmt.Errorf("insert bundle %q: %w", name, err)
	}

	if err := insertBundleProducts(ctx, tx, bundleID, products); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit bundle %q: %w", name, err)
	}

	return s.GetBundle(ctx, bundleID)
}

func (s *bundleService) UpdateBundle(ctx context.Context, bundleID int, name, description string, products []BundleProductInput) (*Bundle, error) {
	if err := ValidateBundleProducts(products); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM bundles WHERE id = $1)", bundleID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check bundle %d: %w", bundleID, err)
	}
	if !exists {
		return nil, fmt.Errorf("bundle %d not found", bundleID)
	}

	// Multipliers are frozen once order history references the bundle.
	var referenced bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM proc_order_items WHERE bundle_id = $1)", bundleID,
	).Scan(&referenced); err != nil {
		return nil, fmt.Errorf("check order references for bundle %d: %w", bundleID, err)
	}
	if referenced {
		current, err := fetchBundleProducts(ctx, tx, bundleID)
		if err != nil {
			return nil, err
		}
		if !sameConstituents(current, products) {
			return nil, fmt.Errorf("bundle %d is referenced by order history; its constituents cannot change", bundleID)
		}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE bundles SET name = $1, description = $2 WHERE id = $3",
		name, description, bundleID,
	); err != nil {
		return nil, fmt.Errorf("update bundle %d: %w", bundleID, err)
	}

	if !referenced {
		if _, err := tx.Exec(ctx, "DELETE FROM bundle_products WHERE bundle_id = $1", bundleID); err != nil {
			return nil, fmt.Errorf("clear constituents for bundle %d: %w", bundleID, err)
		}
		if err := insertBundleProducts(ctx, tx, bundleID, products); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit bundle %d update: %w", bundleID, err)
	}

	return s.GetBundle(ctx, bundleID)
}

func (s *bundleService) Expand(ctx context.Context, bundleID int, orderedQty int64) ([]ExpandedLine, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM bundles WHERE id = $1)", bundleID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check bundle %d: %w", bundleID, err)
	}
	if !exists {
		return nil, fmt.Errorf("bundle %d not found", bundleID)
	}

	products, err := fetchBundleProducts(ctx, s.pool, bundleID)
	if err != nil {
		return nil, err
	}
	return ExpandLines(bundleID, products, orderedQty)
}

func (s *bundleService) ExpandToItems(ctx context.Context, bundleID int, orderedQty int64, rate RateFunc) ([]OrderItemInput, error) {
	lines, err := s.Expand(ctx, bundleID, orderedQty)
	if err != nil {
		return nil, err
	}

	id := bundleID
	items := make([]OrderItemInput, 0, len(lines))
	for _, line := range lines {
		r, err := rate(line.ProductSKU)
		if err != nil {
			return nil, fmt.Errorf("rate for %s in bundle %d: %w", line.ProductSKU, bundleID, err)
		}
		items = append(items, OrderItemInput{
			ProductSKU: line.ProductSKU,
			Quantity:   line.TotalQuantity,
			Rate:       r,
			BundleID:   &id,
		})
	}
	return items, nil
}

func (s *bundleService) GetBundle(ctx context.Context, bundleID int) (*Bundle, error) {
	var b Bundle
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, description, created_at FROM bundles WHERE id = $1",
		bundleID,
	).Scan(&b.ID, &b.Name, &b.Description, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bundle %d not found", bundleID)
		}
		return nil, fmt.Errorf("get bundle %d: %w", bundleID, err)
	}

	products, err := fetchBundleProducts(ctx, s.pool, bundleID)
	if err != nil {
		return nil, err
	}
	b.Products = products
	return &b, nil
}

func (s *bundleService) GetBundles(ctx context.Context) ([]Bundle, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, name, description, created_at FROM bundles ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	defer rows.Close()

	var bundles []Bundle
	for rows.Next() {
		var b Bundle
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bundle: %w", err)
		}
		bundles = append(bundles, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bundles: %w", err)
	}

	for i := range bundles {
		products, err := fetchBundleProducts(ctx, s.pool, bundles[i].ID)
		if err != nil {
			return nil, err
		}
		bundles[i].Products = products
	}
	return bundles, nil
}

func (s *bundleService) DeleteBundle(ctx context.Context, bundleID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var referenced bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM proc_order_items WHERE bundle_id = $1)", bundleID,
	).Scan(&referenced); err != nil {
		return fmt.Errorf("check order references for bundle %d: %w", bundleID, err)
	}
	if referenced {
		return fmt.Errorf("bundle %d is referenced by order history and cannot be deleted", bundleID)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM bundle_products WHERE bundle_id = $1", bundleID); err != nil {
		return fmt.Errorf("delete constituents for bundle %d: %w", bundleID, err)
	}
	tag, err := tx.Exec(ctx, "DELETE FROM bundles WHERE id = $1", bundleID)
	if err != nil {
		return fmt.Errorf("delete bundle %d: %w", bundleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bundle %d not found", bundleID)
	}

	return tx.Commit(ctx)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func insertBundleProducts(ctx context.Context, tx pgx.Tx, bundleID int, products []BundleProductInput) error {
	for i, in := range products {
		var productName string
		err := tx.QueryRow(ctx,
			"SELECT name FROM products WHERE sku = $1 AND is_active = true",
			in.ProductSKU,
		).Scan(&productName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("constituent %d: product %s not found", i+1, in.ProductSKU)
			}
			return fmt.Errorf("constituent %d: resolve product %s: %w", i+1, in.ProductSKU, err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO bundle_products (bundle_id, product_sku, quantity)
			VALUES ($1, $2, $3)`,
			bundleID, in.ProductSKU, in.Quantity,
		); err != nil {
			return fmt.Errorf("insert constituent %s for bundle %d: %w", in.ProductSKU, bundleID, err)
		}
	}
	return nil
}

func fetchBundleProducts(ctx context.Context, q pgxQuerier, bundleID int) ([]BundleProduct, error) {
	rows, err := q.Query(ctx, `
		SELECT bp.bundle_id, bp.product_sku, p.name, bp.quantity
		FROM bundle_products bp
		JOIN products p ON p.sku = bp.product_sku
		WHERE bp.bundle_id = $1
		ORDER BY bp.product_sku
	`, bundleID)
	if err != nil {
		return nil, fmt.Errorf("query constituents for bundle %d: %w", bundleID, err)
	}
	defer rows.Close()

	var products []BundleProduct
	for rows.Next() {
		var bp BundleProduct
		if err := rows.Scan(&bp.BundleID, &bp.ProductSKU, &bp.ProductName, &bp.Quantity); err != nil {
			return nil, fmt.Errorf("scan bundle constituent: %w", err)
		}
		products = append(products, bp)
	}
	return products, nil
}

func sameConstituents(current []BundleProduct, inputs []BundleProductInput) bool {
	if len(current) != len(inputs) {
		return false
	}
	byProduct := make(map[string]int64, len(current))
	for _, bp := range current {
		byProduct[bp.ProductSKU] = bp.Quantity
	}
	for _, in := range inputs {
		if qty, ok := byProduct[in.ProductSKU]; !ok || qty != in.Quantity {
			return false
		}
	}
	return true
}
