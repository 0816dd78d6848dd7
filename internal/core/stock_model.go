package core

import "time"

// StockQuantity is the on-hand count of one product at one location. Rows are
// created lazily at zero the first time a product is touched at a location and
// are mutated only by the stock service; the quantity never goes negative.
type StockQuantity struct {
	ProductSKU string
	LocationID int
	Quantity   int64
	UpdatedAt  time.Time
}

// MovementReason classifies a stock movement.
type MovementReason string

const (
	MovementReceipt    MovementReason = "RECEIPT"    // procurement fulfilment
	MovementAdjustment MovementReason = "ADJUSTMENT" // manual correction
	MovementSale       MovementReason = "SALE"       // outbound sale
)

// StockMovement is one applied delta, kept as an audit trail. OrderID links
// receipts back to the procurement order that produced them.
type StockMovement struct {
	ID         int
	ProductSKU string
	LocationID int
	Delta      int64
	Reason     MovementReason
	OrderID    *int
	Reference  string
	MovedAt    time.Time
}

// StockLevel is a read view of a stock quantity joined with product and
// location names.
type StockLevel struct {
	ProductSKU   string
	ProductName  string
	LocationID   int
	LocationName string
	Quantity     int64
}

// StockAlert is a product whose summed quantity across all locations has
// reached its reorder threshold.
type StockAlert struct {
	ProductSKU   string
	ProductName  string
	QtyThreshold int64
	TotalOnHand  int64
}
