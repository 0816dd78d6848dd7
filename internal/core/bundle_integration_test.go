package core_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"kettle-backoffice/internal/core"
)

func TestBundle_CreateAndExpand(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewBundleService(pool)
	ctx := context.Background()

	b, err := svc.CreateBundle(ctx, "Classic Flavours Mini Bundle", "Two each of the classics",
		[]core.BundleProductInput{
			{ProductSKU: "SKU125", Quantity: 2},
			{ProductSKU: "SKU126", Quantity: 2},
		})
	if err != nil {
		t.Fatalf("CreateBundle failed: %v", err)
	}
	if len(b.Products) != 2 {
		t.Fatalf("expected 2 constituents, got %d", len(b.Products))
	}
	if b.Products[0].ProductName == "" {
		t.Error("constituents should carry the joined product name")
	}

	lines, err := svc.Expand(ctx, b.ID, 3)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	want := map[string]int64{"SKU125": 6, "SKU126": 6}
	for _, l := range lines {
		if want[l.ProductSKU] != l.TotalQuantity {
			t.Errorf("%s: expected %d, got %d", l.ProductSKU, want[l.ProductSKU], l.TotalQuantity)
		}
	}
}

func TestBundle_RejectsInactiveProduct(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	if _, err := pool.Exec(ctx, "UPDATE products SET is_active = false WHERE sku = 'SKU127'"); err != nil {
		t.Fatalf("disable product: %v", err)
	}

	svc := core.NewBundleService(pool)
	_, err := svc.CreateBundle(ctx, "Spicy Bundle", "",
		[]core.BundleProductInput{{ProductSKU: "SKU127", Quantity: 1}})
	if err == nil {
		t.Fatal("expected error for disabled constituent, got nil")
	}
}

func TestBundle_MultipliersFreezeOnceOrdered(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	bundles := core.NewBundleService(pool)
	stock := core.NewStockService(pool)
	orders := core.NewProcurementService(pool, stock)

	b, err := bundles.CreateBundle(ctx, "Classic Flavours Mini Bundle", "",
		[]core.BundleProductInput{
			{ProductSKU: "SKU125", Quantity: 2},
			{ProductSKU: "SKU126", Quantity: 2},
		})
	if err != nil {
		t.Fatalf("CreateBundle failed: %v", err)
	}

	// Buy 3 bundles at 3 per constituent unit.
	items, err := bundles.ExpandToItems(ctx, b.ID, 3,
		func(string) (decimal.Decimal, error) { return decimal.NewFromInt(3), nil })
	if err != nil {
		t.Fatalf("ExpandToItems failed: %v", err)
	}
	order, err := orders.CreateOrder(ctx, 1, 1, "SGD", "2024-03-01", items)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	for _, it := range order.Items {
		if it.BundleID == nil || *it.BundleID != b.ID {
			t.Errorf("expanded item %s should be tagged with bundle %d", it.ProductSKU, b.ID)
		}
	}

	// Constituents are now frozen: changing multipliers must fail...
	_, err = bundles.UpdateBundle(ctx, b.ID, "Classic Flavours Mini Bundle", "",
		[]core.BundleProductInput{
			{ProductSKU: "SKU125", Quantity: 3},
			{ProductSKU: "SKU126", Quantity: 2},
		})
	if err == nil {
		t.Fatal("changing constituents of an ordered bundle must fail")
	}
	if !strings.Contains(err.Error(), "referenced by order history") {
		t.Errorf("unexpected error: %v", err)
	}

	// ...but renaming with identical constituents is fine.
	renamed, err := bundles.UpdateBundle(ctx, b.ID, "Classics, Renamed", "new blurb",
		[]core.BundleProductInput{
			{ProductSKU: "SKU125", Quantity: 2},
			{ProductSKU: "SKU126", Quantity: 2},
		})
	if err != nil {
		t.Fatalf("rename of ordered bundle failed: %v", err)
	}
	if renamed.Name != "Classics, Renamed" {
		t.Errorf("expected renamed bundle, got %q", renamed.Name)
	}

	// And deletion is blocked outright.
	if err := bundles.DeleteBundle(ctx, b.ID); err == nil {
		t.Error("deleting an ordered bundle must fail")
	}
}

func TestBundle_DeleteUnreferenced(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewBundleService(pool)

	b, err := svc.CreateBundle(ctx, "Short-lived Bundle", "",
		[]core.BundleProductInput{{ProductSKU: "SKU123", Quantity: 1}})
	if err != nil {
		t.Fatalf("CreateBundle failed: %v", err)
	}
	if err := svc.DeleteBundle(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBundle failed: %v", err)
	}
	if _, err := svc.GetBundle(ctx, b.ID); err == nil {
		t.Error("deleted bundle should not be found")
	}
}
