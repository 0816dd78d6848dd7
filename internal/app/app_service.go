package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"kettle-backoffice/internal/core"
)

type appService struct {
	pool        *pgxpool.Pool
	products    core.ProductService
	suppliers   core.SupplierService
	stock       core.StockService
	procurement core.ProcurementService
	bundles     core.BundleService
	catalogue   core.CatalogueService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	pool *pgxpool.Pool,
	products core.ProductService,
	suppliers core.SupplierService,
	stock core.StockService,
	procurement core.ProcurementService,
	bundles core.BundleService,
	catalogue core.CatalogueService,
) ApplicationService {
	return &appService{
		pool:        pool,
		products:    products,
		suppliers:   suppliers,
		stock:       stock,
		procurement: procurement,
		bundles:     bundles,
		catalogue:   catalogue,
	}
}

// ListProducts returns all active products.
func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.products.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

// CreateProduct registers a new SKU under a brand.
func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResult, error) {
	p, err := s.products.CreateProduct(ctx, req.SKU, req.Name, req.BrandID, req.QtyThreshold)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

// UpdateProduct changes a product's name and reorder threshold.
func (s *appService) UpdateProduct(ctx context.Context, sku, name string, qtyThreshold int64) (*ProductResult, error) {
	p, err := s.products.UpdateProduct(ctx, sku, name, qtyThreshold)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

// DisableProduct soft-disables a product.
func (s *appService) DisableProduct(ctx context.Context, sku string) error {
	return s.products.DisableProduct(ctx, sku)
}

// ListSuppliers returns all active suppliers.
func (s *appService) ListSuppliers(ctx context.Context) (*SupplierListResult, error) {
	suppliers, err := s.suppliers.GetSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	return &SupplierListResult{Suppliers: suppliers}, nil
}

// CreateSupplier registers a new procurement counterparty.
func (s *appService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*SupplierResult, error) {
	sup, err := s.suppliers.CreateSupplier(ctx, core.SupplierInput{
		Email:    req.Email,
		Name:     req.Name,
		Address:  req.Address,
		Currency: req.Currency,
	})
	if err != nil {
		return nil, err
	}
	return &SupplierResult{Supplier: sup}, nil
}

// ListLocations returns all warehouses.
func (s *appService) ListLocations(ctx context.Context) (*LocationListResult, error) {
	locations, err := s.products.GetLocations(ctx)
	if err != nil {
		return nil, err
	}
	return &LocationListResult{Locations: locations}, nil
}

// GetStockLevels returns current on-hand quantities per product and location.
func (s *appService) GetStockLevels(ctx context.Context) (*StockResult, error) {
	levels, err := s.stock.GetStockLevels(ctx)
	if err != nil {
		return nil, err
	}
	return &StockResult{Levels: levels}, nil
}

// GetStockMovements returns the movement audit trail for one product.
func (s *appService) GetStockMovements(ctx context.Context, sku string) (*MovementListResult, error) {
	movements, err := s.stock.GetMovements(ctx, sku)
	if err != nil {
		return nil, err
	}
	return &MovementListResult{ProductSKU: sku, Movements: movements}, nil
}

// AdjustStock applies a manual stock correction at a location.
func (s *appService) AdjustStock(ctx context.Context, req AdjustStockRequest) error {
	return s.stock.ApplyDelta(ctx, req.ProductSKU, req.LocationID, req.Delta,
		core.MovementAdjustment, nil, req.Reference)
}

// ListStockBelowThreshold returns every active product at or under its reorder threshold.
func (s *appService) ListStockBelowThreshold(ctx context.Context) (*StockAlertResult, error) {
	alerts, err := s.stock.ListBelowThreshold(ctx)
	if err != nil {
		return nil, err
	}
	return &StockAlertResult{Alerts: alerts}, nil
}

// CreateOrder creates a procurement order, expanding bundle lines into their
// constituent products first.
func (s *appService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	orderDate := req.OrderDate
	if orderDate == "" {
		orderDate = time.Now().Format("2006-01-02")
	}

	items, err := s.resolveLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	order, err := s.procurement.CreateOrder(ctx, req.SupplierID, req.LocationID, req.Currency, orderDate, items)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

// MarkPaid transitions the order's payment status PENDING → PAID.
func (s *appService) MarkPaid(ctx context.Context, orderID int) (*OrderResult, error) {
	order, err := s.procurement.MarkPaid(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

// MarkInTransit transitions the order's fulfilment status CREATED → IN_TRANSIT.
func (s *appService) MarkInTransit(ctx context.Context, orderID int) (*OrderResult, error) {
	order, err := s.procurement.MarkInTransit(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

// MarkFulfilled transitions IN_TRANSIT → FULFILLED and receives stock.
func (s *appService) MarkFulfilled(ctx context.Context, orderID int) (*OrderResult, error) {
	order, err := s.procurement.MarkFulfilled(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

// CancelOrder cancels an unfulfilled order.
func (s *appService) CancelOrder(ctx context.Context, orderID int) (*OrderResult, error) {
	order, err := s.procurement.CancelOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

// GetOrder returns a single procurement order with its items.
func (s *appService) GetOrder(ctx context.Context, orderID int) (*OrderResult, error) {
	order, err := s.procurement.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

// ListOrders returns procurement orders, optionally filtered by fulfilment status.
func (s *appService) ListOrders(ctx context.Context, fulfilment string) (*OrderListResult, error) {
	var filter *core.FulfilmentStatus
	if fulfilment != "" {
		f := core.FulfilmentStatus(fulfilment)
		switch f {
		case core.FulfilmentCreated, core.FulfilmentInTransit, core.FulfilmentFulfilled, core.FulfilmentCancelled:
			filter = &f
		default:
			return nil, fmt.Errorf("unknown fulfilment status %q", fulfilment)
		}
	}

	orders, err := s.procurement.GetOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}

// CreateBundle creates a named bundle of products.
func (s *appService) CreateBundle(ctx context.Context, req CreateBundleRequest) (*BundleResult, error) {
	inputs := make([]core.BundleProductInput, len(req.Products))
	for i, p := range req.Products {
		inputs[i] = core.BundleProductInput{ProductSKU: p.ProductSKU, Quantity: p.Quantity}
	}

	b, err := s.bundles.CreateBundle(ctx, req.Name, req.Description, inputs)
	if err != nil {
		return nil, err
	}
	return &BundleResult{Bundle: b}, nil
}

// ListBundles returns all bundles with their constituents.
func (s *appService) ListBundles(ctx context.Context) (*BundleListResult, error) {
	bundles, err := s.bundles.GetBundles(ctx)
	if err != nil {
		return nil, err
	}
	return &BundleListResult{Bundles: bundles}, nil
}

// ExpandBundle multiplies a bundle's constituents by the ordered quantity.
func (s *appService) ExpandBundle(ctx context.Context, bundleID int, qty int64) (*ExpansionResult, error) {
	lines, err := s.bundles.Expand(ctx, bundleID, qty)
	if err != nil {
		return nil, err
	}
	return &ExpansionResult{BundleID: bundleID, OrderedQty: qty, Lines: lines}, nil
}

// QuotePrice returns the catalogue price of a product or bundle, applying a
// discount code when one is given. The discount's minimum-order check runs
// against the full-quantity amount.
func (s *appService) QuotePrice(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quote quantity must be positive, got %d", req.Quantity)
	}

	var ref core.EntityRef
	switch {
	case req.ProductSKU != "" && req.BundleID != 0:
		return nil, fmt.Errorf("quote for exactly one of product or bundle, not both")
	case req.ProductSKU != "":
		ref = core.ProductRef(req.ProductSKU)
	case req.BundleID != 0:
		ref = core.BundleRef(req.BundleID)
	default:
		return nil, fmt.Errorf("quote needs a product SKU or a bundle ID")
	}

	unit, err := s.catalogue.PriceOf(ctx, ref)
	if err != nil {
		return nil, err
	}
	amount := unit.Mul(decimal.NewFromInt(req.Quantity))

	result := &QuoteResult{Ref: ref, Quantity: req.Quantity, ListPrice: unit, FinalPrice: amount}
	if req.DiscountCode == "" {
		return result, nil
	}

	orderDate := time.Now()
	if req.OrderDate != "" {
		orderDate, err = time.Parse("2006-01-02", req.OrderDate)
		if err != nil {
			return nil, fmt.Errorf("parse order date %q: %w", req.OrderDate, err)
		}
	}

	final, err := s.catalogue.ApplyDiscountCode(ctx, req.DiscountCode, amount, amount, orderDate)
	if err != nil {
		return nil, err
	}
	result.FinalPrice = final
	result.DiscountCode = req.DiscountCode
	return result, nil
}

// ListCatalogue returns all catalogue entries.
func (s *appService) ListCatalogue(ctx context.Context) (*CatalogueResult, error) {
	entries, err := s.catalogue.GetEntries(ctx)
	if err != nil {
		return nil, err
	}
	return &CatalogueResult{Entries: entries}, nil
}

// ── private helpers ───────────────────────────────────────────────────────────

// resolveLines turns mixed product and bundle lines into plain order item
// inputs. Bundle lines expand to their constituents, each tagged with the
// source bundle and rated per product unit.
func (s *appService) resolveLines(ctx context.Context, lines []OrderLineInput) ([]core.OrderItemInput, error) {
	var items []core.OrderItemInput
	for i, line := range lines {
		switch {
		case line.ProductSKU != "" && line.BundleID != 0:
			return nil, fmt.Errorf("line %d: set exactly one of product or bundle", i+1)
		case line.ProductSKU != "":
			items = append(items, core.OrderItemInput{
				ProductSKU: line.ProductSKU,
				Quantity:   line.Quantity,
				Rate:       line.Rate,
			})
		case line.BundleID != 0:
			rate := line.Rate
			expanded, err := s.bundles.ExpandToItems(ctx, line.BundleID, line.Quantity,
				func(string) (decimal.Decimal, error) { return rate, nil })
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			items = append(items, expanded...)
		default:
			return nil, fmt.Errorf("line %d: product SKU or bundle ID is required", i+1)
		}
	}
	return items, nil
}
