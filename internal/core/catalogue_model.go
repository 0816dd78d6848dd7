package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntityKind distinguishes what a catalogue entry prices.
type EntityKind string

const (
	EntityProduct EntityKind = "PRODUCT"
	EntityBundle  EntityKind = "BUNDLE"
)

// EntityRef points at the product or bundle a catalogue entry prices.
type EntityRef struct {
	Kind       EntityKind
	ProductSKU string // set when Kind == EntityProduct
	BundleID   int    // set when Kind == EntityBundle
}

// ProductRef references a product by SKU.
func ProductRef(sku string) EntityRef {
	return EntityRef{Kind: EntityProduct, ProductSKU: sku}
}

// BundleRef references a bundle by ID.
func BundleRef(id int) EntityRef {
	return EntityRef{Kind: EntityBundle, BundleID: id}
}

func (r EntityRef) String() string {
	if r.Kind == EntityBundle {
		return fmt.Sprintf("bundle %d", r.BundleID)
	}
	return fmt.Sprintf("product %s", r.ProductSKU)
}

// CatalogueEntry is the sellable-price record for one product or bundle. An
// entry may exist while the referenced item is out of stock; stock affects
// sellability, not listing.
type CatalogueEntry struct {
	ID          int
	Ref         EntityRef
	Price       decimal.Decimal
	Description string
	CreatedAt   time.Time
}

// DiscountType selects how a discount code reduces a price.
type DiscountType string

const (
	DiscountFlatAmount DiscountType = "FLAT_AMOUNT"
	DiscountPercentage DiscountType = "PERCENTAGE"
)

// DiscountCode is a time-windowed price reduction with a minimum order amount.
// CustomerEmails, when non-empty, restricts the code to those customers; the
// check belongs to the (out-of-scope) checkout layer.
type DiscountCode struct {
	Code           string
	Type           DiscountType
	Amount         decimal.Decimal // flat currency amount or percentage points
	MinOrderAmount decimal.Decimal
	StartDate      time.Time
	EndDate        time.Time
	CustomerEmails []string
	CreatedAt      time.Time
}

// ApplyDiscount applies a discount code to a price. The code must be active on
// orderDate (window inclusive on both ends, compared at day granularity) and
// the order amount must reach the code's minimum. FLAT_AMOUNT subtracts and
// floors at zero; PERCENTAGE multiplies by (1 - amount/100). Pure.
func ApplyDiscount(price decimal.Decimal, code DiscountCode, orderAmount decimal.Decimal, orderDate time.Time) (decimal.Decimal, error) {
	day := dateOnly(orderDate)
	if day.Before(dateOnly(code.StartDate)) || day.After(dateOnly(code.EndDate)) {
		return decimal.Zero, &DiscountExpiredError{Code: code.Code, On: orderDate}
	}
	if orderAmount.LessThan(code.MinOrderAmount) {
		return decimal.Zero, &DiscountNotEligibleError{
			Code:           code.Code,
			OrderAmount:    orderAmount,
			MinOrderAmount: code.MinOrderAmount,
		}
	}

	switch code.Type {
	case DiscountFlatAmount:
		discounted := price.Sub(code.Amount)
		if discounted.IsNegative() {
			return decimal.Zero, nil
		}
		return discounted, nil
	case DiscountPercentage:
		factor := decimal.NewFromInt(1).Sub(code.Amount.Div(decimal.NewFromInt(100)))
		return price.Mul(factor), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown discount type %q", code.Type)
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
