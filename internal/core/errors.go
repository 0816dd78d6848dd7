package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Domain errors carry their kind across layers so callers can map them to a
// response without parsing messages. Match with errors.As after unwrapping.

// InsufficientStockError is returned when a stock delta would drive a
// (product, location) quantity negative. The transaction that triggered it
// must be rolled back in full.
type InsufficientStockError struct {
	ProductSKU string
	LocationID int
	Have       int64
	Want       int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s at location %d: have %d, need %d",
		e.ProductSKU, e.LocationID, e.Have, e.Want)
}

// InvalidTransitionError is returned when an order lifecycle event is not
// allowed from the order's current (payment, fulfilment) state. The order is
// left unchanged.
type InvalidTransitionError struct {
	OrderID    int
	Event      string
	Payment    PaymentStatus
	Fulfilment FulfilmentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %d: cannot %s from (%s, %s)",
		e.OrderID, e.Event, e.Payment, e.Fulfilment)
}

// OrderLockedError is returned when an item mutation is attempted on an order
// whose payment status is no longer PENDING. Totals are frozen at payment.
type OrderLockedError struct {
	OrderID int
	Payment PaymentStatus
}

func (e *OrderLockedError) Error() string {
	return fmt.Sprintf("order %d is locked: payment status is %s", e.OrderID, e.Payment)
}

// EmptyBundleError reports a bundle with no constituent products. Creation
// rejects such bundles, so hitting this means the data has been corrupted.
type EmptyBundleError struct {
	BundleID int
}

func (e *EmptyBundleError) Error() string {
	return fmt.Sprintf("bundle %d has no constituent products", e.BundleID)
}

// NotListedError is returned when no catalogue entry exists for the referenced
// product or bundle.
type NotListedError struct {
	Ref EntityRef
}

func (e *NotListedError) Error() string {
	return fmt.Sprintf("%s is not listed in the catalogue", e.Ref)
}

// DiscountExpiredError is returned when the order date falls outside the
// discount code's [StartDate, EndDate] window.
type DiscountExpiredError struct {
	Code string
	On   time.Time
}

func (e *DiscountExpiredError) Error() string {
	return fmt.Sprintf("discount code %s is not active on %s", e.Code, e.On.Format("2006-01-02"))
}

// DiscountNotEligibleError is returned when the order amount does not reach
// the discount code's minimum.
type DiscountNotEligibleError struct {
	Code           string
	OrderAmount    decimal.Decimal
	MinOrderAmount decimal.Decimal
}

func (e *DiscountNotEligibleError) Error() string {
	return fmt.Sprintf("discount code %s requires a minimum order of %s, got %s",
		e.Code, e.MinOrderAmount.StringFixed(2), e.OrderAmount.StringFixed(2))
}
