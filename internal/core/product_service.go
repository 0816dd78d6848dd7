package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductService manages the product master data plus the brands and
// locations it hangs off. SKUs are immutable; a product referenced by stock
// or order history is disabled, never deleted.
type ProductService interface {
	CreateProduct(ctx context.Context, sku, name string, brandID int, qtyThreshold int64) (*Product, error)

	// UpdateProduct changes the editable fields: name and reorder threshold.
	UpdateProduct(ctx context.Context, sku, name string, qtyThreshold int64) (*Product, error)

	// DisableProduct soft-disables the product. Stock rows and movement history
	// stay intact; the product just stops appearing in active listings.
	DisableProduct(ctx context.Context, sku string) error

	GetProduct(ctx context.Context, sku string) (*Product, error)
	GetProducts(ctx context.Context) ([]Product, error)

	CreateBrand(ctx context.Context, name string) (*Brand, error)
	GetBrands(ctx context.Context) ([]Brand, error)

	CreateLocation(ctx context.Context, name, address string) (*Location, error)
	GetLocations(ctx context.Context) ([]Location, error)
}

type productService struct {
	pool *pgxpool.Pool
}

// NewProductService constructs a ProductService backed by PostgreSQL.
func NewProductService(pool *pgxpool.Pool) ProductService {
	return &productService{pool: pool}
}

func (s *productService) CreateProduct(ctx context.Context, sku, name string, brandID int, qtyThreshold int64) (*Product, error) {
	if sku == "" {
		return nil, fmt.Errorf("product SKU is required")
	}
	if name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if qtyThreshold < 0 {
		return nil, fmt.Errorf("reorder threshold cannot be negative, got %d", qtyThreshold)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (sku, name, brand_id, qty_threshold)
		VALUES ($1, $2, $3, $4)`,
		sku, name, brandID, qtyThreshold,
	)
	if err != nil {
		return nil, fmt.Errorf("create product %s: %w", sku, err)
	}
	return s.GetProduct(ctx, sku)
}

func (s *productService) UpdateProduct(ctx context.Context, sku, name string, qtyThreshold int64) (*Product, error) {
	if name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if qtyThreshold < 0 {
		return nil, fmt.Errorf("reorder threshold cannot be negative, got %d", qtyThreshold)
	}

	tag, err := s.pool.Exec(ctx,
		"UPDATE products SET name = $1, qty_threshold = $2 WHERE sku = $3",
		name, qtyThreshold, sku,
	)
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", sku, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("product %s not found", sku)
	}
	return s.GetProduct(ctx, sku)
}

func (s *productService) DisableProduct(ctx context.Context, sku string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE products SET is_active = false WHERE sku = $1", sku,
	)
	if err != nil {
		return fmt.Errorf("disable product %s: %w", sku, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s not found", sku)
	}
	return nil
}

func (s *productService) GetProduct(ctx context.Context, sku string) (*Product, error) {
	p := &Product{}
	err := s.pool.QueryRow(ctx, `
		SELECT p.sku, p.name, p.brand_id, b.name, p.qty_threshold, p.is_active, p.created_at
		FROM products p
		JOIN brands b ON b.id = p.brand_id
		WHERE p.sku = $1`,
		sku,
	).Scan(&p.SKU, &p.Name, &p.BrandID, &p.BrandName, &p.QtyThreshold, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s not found", sku)
		}
		return nil, fmt.Errorf("get product %s: %w", sku, err)
	}
	return p, nil
}

func (s *productService) GetProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.sku, p.name, p.brand_id, b.name, p.qty_threshold, p.is_active, p.created_at
		FROM products p
		JOIN brands b ON b.id = p.brand_id
		WHERE p.is_active = true
		ORDER BY p.sku
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.SKU, &p.Name, &p.BrandID, &p.BrandName, &p.QtyThreshold, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *productService) CreateBrand(ctx context.Context, name string) (*Brand, error) {
	if name == "" {
		return nil, fmt.Errorf("brand name is required")
	}

	b := &Brand{Name: name}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO brands (name) VALUES ($1) RETURNING id, created_at",
		name,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create brand %q: %w", name, err)
	}
	return b, nil
}

func (s *productService) GetBrands(ctx context.Context) ([]Brand, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, name, created_at FROM brands ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var brands []Brand
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	return brands, nil
}

func (s *productService) CreateLocation(ctx context.Context, name, address string) (*Location, error) {
	if name == "" {
		return nil, fmt.Errorf("location name is required")
	}

	l := &Location{Name: name, Address: address}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO locations (name, address) VALUES ($1, $2) RETURNING id, created_at",
		name, address,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create location %q: %w", name, err)
	}
	return l, nil
}

func (s *productService) GetLocations(ctx context.Context) ([]Location, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, name, address, created_at FROM locations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, nil
}
