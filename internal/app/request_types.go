package app

import "github.com/shopspring/decimal"

// CreateProductRequest is the input for registering a new SKU.
type CreateProductRequest struct {
	SKU          string
	Name         string
	BrandID      int
	QtyThreshold int64
}

// CreateSupplierRequest is the input for registering a supplier.
type CreateSupplierRequest struct {
	Email    string
	Name     string
	Address  string
	Currency string // empty means the default currency
}

// AdjustStockRequest is the input for a manual stock correction.
type AdjustStockRequest struct {
	ProductSKU string
	LocationID int
	Delta      int64
	Reference  string
}

// CreateOrderRequest is the input for creating a procurement order. Product
// and bundle lines may be mixed; bundle lines are expanded before the order
// is written.
type CreateOrderRequest struct {
	SupplierID int
	LocationID int
	Currency   string // empty means "use the supplier's currency"
	OrderDate  string // YYYY-MM-DD; empty means today
	Lines      []OrderLineInput
}

// OrderLineInput is a single line within a CreateOrderRequest. Exactly one of
// ProductSKU or BundleID must be set.
type OrderLineInput struct {
	ProductSKU string
	BundleID   int
	Quantity   int64
	Rate       decimal.Decimal // per product unit; bundle lines rate each constituent
}

// CreateBundleRequest is the input for creating a bundle.
type CreateBundleRequest struct {
	Name        string
	Description string
	Products    []BundleLineInput
}

// BundleLineInput is a single constituent within a CreateBundleRequest.
type BundleLineInput struct {
	ProductSKU string
	Quantity   int64
}

// QuoteRequest is the input for pricing a product or bundle, optionally with
// a discount code.
type QuoteRequest struct {
	ProductSKU   string // set for a product quote
	BundleID     int    // set for a bundle quote
	Quantity     int64
	DiscountCode string // optional
	OrderDate    string // YYYY-MM-DD; empty means today
}
