package core

import (
	"fmt"
	"time"
)

// Bundle is a sellable aggregate of one or more products in fixed quantities.
// A bundle always has at least one constituent; its quantity multipliers are
// frozen once any order line references the bundle.
type Bundle struct {
	ID          int
	Name        string
	Description string
	Products    []BundleProduct
	CreatedAt   time.Time
}

// BundleProduct is one constituent of a bundle: quantity-per-bundle of one
// product.
type BundleProduct struct {
	BundleID    int
	ProductSKU  string
	ProductName string // joined from products
	Quantity    int64  // per single bundle, always > 0
}

// BundleProductInput holds the fields required to define a constituent.
type BundleProductInput struct {
	ProductSKU string
	Quantity   int64
}

// ExpandedLine is one product's total quantity after bundle expansion.
type ExpandedLine struct {
	ProductSKU    string
	TotalQuantity int64
}

// ExpandLines multiplies each constituent's per-bundle quantity by the number
// of bundles ordered. It is linear: ExpandLines(ps, n) equals n times
// ExpandLines(ps, 1), line by line. An empty constituent list is a
// data-integrity violation and is rejected.
func ExpandLines(bundleID int, products []BundleProduct, orderedQty int64) ([]ExpandedLine, error) {
	if len(products) == 0 {
		return nil, &EmptyBundleError{BundleID: bundleID}
	}
	if orderedQty <= 0 {
		return nil, fmt.Errorf("ordered quantity must be positive, got %d", orderedQty)
	}
	lines := make([]ExpandedLine, 0, len(products))
	for _, bp := range products {
		lines = append(lines, ExpandedLine{
			ProductSKU:    bp.ProductSKU,
			TotalQuantity: bp.Quantity * orderedQty,
		})
	}
	return lines, nil
}

// ValidateBundleProducts checks the creation invariants: at least one
// constituent, every multiplier positive, no duplicate SKUs.
func ValidateBundleProducts(inputs []BundleProductInput) error {
	if len(inputs) == 0 {
		return fmt.Errorf("bundle must reference at least one product")
	}
	seen := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		if in.ProductSKU == "" {
			return fmt.Errorf("constituent %d: product SKU is required", i+1)
		}
		if in.Quantity <= 0 {
			return fmt.Errorf("constituent %d: quantity per bundle must be positive, got %d", i+1, in.Quantity)
		}
		if seen[in.ProductSKU] {
			return fmt.Errorf("constituent %d: duplicate product %s", i+1, in.ProductSKU)
		}
		seen[in.ProductSKU] = true
	}
	return nil
}
