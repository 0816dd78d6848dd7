package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"kettle-backoffice/internal/core"
)

func TestOrderTotal(t *testing.T) {
	// 20 × 16 = 320, plus 5 × 3.50 = 17.50
	items := []core.OrderItemInput{
		{ProductSKU: "SKU123", Quantity: 20, Rate: decimal.NewFromInt(16)},
		{ProductSKU: "SKU127", Quantity: 5, Rate: decimal.RequireFromString("3.50")},
	}
	got := core.OrderTotal(items)
	if !got.Equal(decimal.RequireFromString("337.50")) {
		t.Errorf("expected 337.50, got %s", got)
	}
}

func TestOrderTotal_Empty(t *testing.T) {
	if got := core.OrderTotal(nil); !got.IsZero() {
		t.Errorf("expected zero total for no items, got %s", got)
	}
}

func TestValidateItems(t *testing.T) {
	tests := []struct {
		name      string
		items     []core.OrderItemInput
		expectErr bool
	}{
		{
			name: "valid single line",
			items: []core.OrderItemInput{
				{ProductSKU: "SKU123", Quantity: 20, Rate: decimal.NewFromInt(16)},
			},
		},
		{
			name:      "no items",
			items:     nil,
			expectErr: true,
		},
		{
			name: "zero quantity",
			items: []core.OrderItemInput{
				{ProductSKU: "SKU123", Quantity: 0, Rate: decimal.NewFromInt(16)},
			},
			expectErr: true,
		},
		{
			name: "negative rate",
			items: []core.OrderItemInput{
				{ProductSKU: "SKU123", Quantity: 1, Rate: decimal.NewFromInt(-1)},
			},
			expectErr: true,
		},
		{
			name: "free line is allowed",
			items: []core.OrderItemInput{
				{ProductSKU: "SKU123", Quantity: 1, Rate: decimal.Zero},
			},
		},
		{
			name: "missing SKU",
			items: []core.OrderItemInput{
				{ProductSKU: "", Quantity: 1, Rate: decimal.NewFromInt(16)},
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.ValidateItems(tt.items)
			if tt.expectErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
