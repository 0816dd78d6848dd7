package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ProcurementOrder is a purchase from a supplier into one of our locations.
// Supplier and location fields are denormalized onto the header so the order
// remains readable even if master data later changes.
type ProcurementOrder struct {
	ID              int
	OrderDate       string // YYYY-MM-DD
	SupplierID      int
	SupplierName    string
	SupplierEmail   string
	SupplierAddress string
	LocationID      int
	LocationName    string
	Currency        string
	Payment         PaymentStatus
	Fulfilment      FulfilmentStatus
	TotalAmount     decimal.Decimal
	Items           []ProcOrderItem
	CreatedAt       time.Time
	PaidAt          *time.Time
	FulfilledAt     *time.Time
	CancelledAt     *time.Time
}

// State returns the order's position in the lifecycle state machine.
func (o *ProcurementOrder) State() OrderState {
	return OrderState{Payment: o.Payment, Fulfilment: o.Fulfilment}
}

// ProcOrderItem is one line of a procurement order. BundleID is set when the
// line was produced by expanding a bundle; it marks that bundle as referenced
// by order history, freezing its quantity multipliers.
type ProcOrderItem struct {
	ID          int
	OrderID     int
	LineNumber  int
	ProductSKU  string
	ProductName string
	Quantity    int64
	Rate        decimal.Decimal
	BundleID    *int
	LineTotal   decimal.Decimal
}

// OrderItemInput holds the fields required to create or replace an order line.
type OrderItemInput struct {
	ProductSKU string
	Quantity   int64
	Rate       decimal.Decimal
	BundleID   *int
}

// OrderTotal folds line inputs into the order total: Σ quantity × rate.
func OrderTotal(items []OrderItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromInt(it.Quantity).Mul(it.Rate))
	}
	return total
}

// ValidateItems checks the line-level invariants: at least one line, every
// quantity positive, every rate non-negative.
func ValidateItems(items []OrderItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("order must have at least one item")
	}
	for i, it := range items {
		if it.ProductSKU == "" {
			return fmt.Errorf("item %d: product SKU is required", i+1)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive, got %d", i+1, it.Quantity)
		}
		if it.Rate.IsNegative() {
			return fmt.Errorf("item %d: rate cannot be negative, got %s", i+1, it.Rate)
		}
	}
	return nil
}
