package app

import (
	"context"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ListProducts returns all active products.
	ListProducts(ctx context.Context) (*ProductListResult, error)

	// CreateProduct registers a new SKU under a brand.
	CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error)

	// UpdateProduct changes a product's name and reorder threshold. The SKU
	// itself never changes.
	UpdateProduct(ctx context.Context, sku, name string, qtyThreshold int64) (*ProductResult, error)

	// DisableProduct soft-disables a product, keeping its stock and movement
	// history intact.
	DisableProduct(ctx context.Context, sku string) error

	// ListSuppliers returns all active suppliers.
	ListSuppliers(ctx context.Context) (*SupplierListResult, error)

	// CreateSupplier registers a new procurement counterparty.
	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*SupplierResult, error)

	// ListLocations returns all warehouses.
	ListLocations(ctx context.Context) (*LocationListResult, error)

	// GetStockLevels returns current on-hand quantities per product and
	// location.
	GetStockLevels(ctx context.Context) (*StockResult, error)

	// GetStockMovements returns the movement audit trail for one product,
	// newest first.
	GetStockMovements(ctx context.Context, sku string) (*MovementListResult, error)

	// AdjustStock applies a manual stock correction (positive or negative) at
	// a location, recorded as an ADJUSTMENT movement.
	AdjustStock(ctx context.Context, req AdjustStockRequest) error

	// ListStockBelowThreshold returns every active product whose summed
	// quantity is at or under its reorder threshold.
	ListStockBelowThreshold(ctx context.Context) (*StockAlertResult, error)

	// CreateOrder creates a procurement order in (PENDING, CREATED). Bundle
	// lines are expanded into their constituent products before the order is
	// written.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)

	// MarkPaid transitions the order's payment status PENDING → PAID.
	MarkPaid(ctx context.Context, orderID int) (*OrderResult, error)

	// MarkInTransit transitions the order's fulfilment status CREATED → IN_TRANSIT.
	MarkInTransit(ctx context.Context, orderID int) (*OrderResult, error)

	// MarkFulfilled transitions IN_TRANSIT → FULFILLED and receives every
	// item's quantity into stock at the order's location, all or nothing.
	MarkFulfilled(ctx context.Context, orderID int) (*OrderResult, error)

	// CancelOrder cancels an unfulfilled order without touching stock.
	CancelOrder(ctx context.Context, orderID int) (*OrderResult, error)

	// GetOrder returns a single procurement order with its items.
	GetOrder(ctx context.Context, orderID int) (*OrderResult, error)

	// ListOrders returns procurement orders, newest first, optionally filtered
	// by fulfilment status.
	ListOrders(ctx context.Context, fulfilment string) (*OrderListResult, error)

	// CreateBundle creates a named bundle of products with per-bundle
	// multipliers.
	CreateBundle(ctx context.Context, req CreateBundleRequest) (*BundleResult, error)

	// ListBundles returns all bundles with their constituents.
	ListBundles(ctx context.Context) (*BundleListResult, error)

	// ExpandBundle multiplies a bundle's constituents by the ordered quantity.
	ExpandBundle(ctx context.Context, bundleID int, qty int64) (*ExpansionResult, error)

	// QuotePrice returns the catalogue price of a product or bundle, applying
	// a discount code when one is given.
	QuotePrice(ctx context.Context, req QuoteRequest) (*QuoteResult, error)

	// ListCatalogue returns all catalogue entries.
	ListCatalogue(ctx context.Context) (*CatalogueResult, error)
}
