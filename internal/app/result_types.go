package app

import (
	"github.com/shopspring/decimal"

	"kettle-backoffice/internal/core"
)

// ProductResult is returned by single-product operations.
type ProductResult struct {
	Product *core.Product
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product
}

// SupplierResult is returned by CreateSupplier.
type SupplierResult struct {
	Supplier *core.Supplier
}

// SupplierListResult is returned by ListSuppliers.
type SupplierListResult struct {
	Suppliers []core.Supplier
}

// LocationListResult is returned by ListLocations.
type LocationListResult struct {
	Locations []core.Location
}

// StockResult is returned by GetStockLevels.
type StockResult struct {
	Levels []core.StockLevel
}

// MovementListResult is returned by GetStockMovements.
type MovementListResult struct {
	ProductSKU string
	Movements  []core.StockMovement
}

// StockAlertResult is returned by ListStockBelowThreshold.
type StockAlertResult struct {
	Alerts []core.StockAlert
}

// OrderResult is returned by order lifecycle operations.
type OrderResult struct {
	Order *core.ProcurementOrder
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.ProcurementOrder
}

// BundleResult is returned by CreateBundle.
type BundleResult struct {
	Bundle *core.Bundle
}

// BundleListResult is returned by ListBundles.
type BundleListResult struct {
	Bundles []core.Bundle
}

// ExpansionResult is returned by ExpandBundle.
type ExpansionResult struct {
	BundleID   int
	OrderedQty int64
	Lines      []core.ExpandedLine
}

// CatalogueResult is returned by ListCatalogue.
type CatalogueResult struct {
	Entries []core.CatalogueEntry
}

// QuoteResult is returned by QuotePrice. FinalPrice equals ListPrice times
// quantity when no discount code was applied.
type QuoteResult struct {
	Ref          core.EntityRef
	Quantity     int64
	ListPrice    decimal.Decimal // per unit
	FinalPrice   decimal.Decimal // for the full quantity, after any discount
	DiscountCode string          // empty when no code was applied
}
