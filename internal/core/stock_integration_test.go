package core_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"kettle-backoffice/internal/core"
)

// setupTestDB connects to the dedicated test database, truncates everything
// and seeds the base master data: one brand, two warehouses, the popcorn
// SKUs and one supplier.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE stock_movements, proc_order_items, procurement_orders,
			bundle_products, bundles, product_catalogues, bundle_catalogues,
			discount_codes, stock_quantities, products, brands, locations,
			suppliers, users, leave_quotas
			RESTART IDENTITY CASCADE;

		INSERT INTO brands (id, name) VALUES (1, 'The Kettle Gourmet');

		INSERT INTO locations (id, name, address) VALUES
		(1, 'Punggol Warehouse', '1 Punggol Drive'),
		(2, 'Bishan Warehouse',  '2 Bishan Street');

		INSERT INTO products (sku, name, brand_id, qty_threshold) VALUES
		('SKU123', 'Fish Head Curry Popcorn', 1, 20),
		('SKU124', 'Salted Caramel Popcorn',  1, 20),
		('SKU125', 'Classic Salted Popcorn',  1, 30),
		('SKU126', 'Classic Sweet Popcorn',   1, 30),
		('SKU127', 'Chilli Crab Popcorn',     1, 10);

		INSERT INTO suppliers (id, email, name, address, currency) VALUES
		(1, 'sales@goldenkernels.test', 'Golden Kernels Trading', '88 Corn Avenue', 'SGD');

		SELECT setval('locations_id_seq', 2);
		SELECT setval('suppliers_id_seq', 1);
		SELECT setval('brands_id_seq', 1);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func TestStock_ApplyDelta_SumsDeltas(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	ctx := context.Background()

	for _, delta := range []int64{10, 25, -8} {
		if err := stock.ApplyDelta(ctx, "SKU123", 1, delta, core.MovementAdjustment, nil, "test"); err != nil {
			t.Fatalf("ApplyDelta(%d) failed: %v", delta, err)
		}
	}

	qty, err := stock.GetQuantity(ctx, "SKU123", 1)
	if err != nil {
		t.Fatalf("GetQuantity failed: %v", err)
	}
	if qty != 27 {
		t.Errorf("expected 27 (10+25-8), got %d", qty)
	}

	movements, err := stock.GetMovements(ctx, "SKU123")
	if err != nil {
		t.Fatalf("GetMovements failed: %v", err)
	}
	if len(movements) != 3 {
		t.Errorf("expected 3 movement rows, got %d", len(movements))
	}
}

func TestStock_NeverStockedReadsZero(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	qty, err := stock.GetQuantity(context.Background(), "SKU127", 2)
	if err != nil {
		t.Fatalf("GetQuantity failed: %v", err)
	}
	if qty != 0 {
		t.Errorf("expected 0 for never-stocked pair, got %d", qty)
	}
}

func TestStock_InsufficientStockRejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	ctx := context.Background()

	if err := stock.ApplyDelta(ctx, "SKU124", 1, 5, core.MovementAdjustment, nil, "seed"); err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}

	err := stock.ApplyDelta(ctx, "SKU124", 1, -6, core.MovementAdjustment, nil, "oversell")
	if err == nil {
		t.Fatal("expected insufficient stock error, got nil")
	}
	var ise *core.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %T: %v", err, err)
	}
	if ise.Have != 5 || ise.Want != 6 {
		t.Errorf("expected have=5 want=6, got have=%d want=%d", ise.Have, ise.Want)
	}

	// Quantity and audit trail must be untouched by the rejected delta.
	qty, err := stock.GetQuantity(ctx, "SKU124", 1)
	if err != nil {
		t.Fatalf("GetQuantity failed: %v", err)
	}
	if qty != 5 {
		t.Errorf("expected quantity unchanged at 5, got %d", qty)
	}
	movements, err := stock.GetMovements(ctx, "SKU124")
	if err != nil {
		t.Fatalf("GetMovements failed: %v", err)
	}
	if len(movements) != 1 {
		t.Errorf("expected 1 movement, got %d", len(movements))
	}
}

func TestStock_ZeroDeltaIsNoOp(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	ctx := context.Background()

	if err := stock.ApplyDelta(ctx, "SKU125", 2, 0, core.MovementAdjustment, nil, "noop"); err != nil {
		t.Fatalf("zero delta should succeed, got %v", err)
	}
	movements, err := stock.GetMovements(ctx, "SKU125")
	if err != nil {
		t.Fatalf("GetMovements failed: %v", err)
	}
	if len(movements) != 0 {
		t.Errorf("zero delta must not be recorded, got %d movements", len(movements))
	}
}

func TestStock_Threshold(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockService(pool)
	ctx := context.Background()

	// SKU123 threshold is 20: stock across locations sums to exactly 20.
	if err := stock.ApplyDelta(ctx, "SKU123", 1, 12, core.MovementAdjustment, nil, ""); err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}
	if err := stock.ApplyDelta(ctx, "SKU123", 2, 8, core.MovementAdjustment, nil, ""); err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}

	below, err := stock.IsBelowThreshold(ctx, "SKU123")
	if err != nil {
		t.Fatalf("IsBelowThreshold failed: %v", err)
	}
	if !below {
		t.Error("at-threshold stock should report as needing reorder")
	}

	// One more unit lifts it above the threshold.
	if err := stock.ApplyDelta(ctx, "SKU123", 1, 1, core.MovementAdjustment, nil, ""); err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}
	below, err = stock.IsBelowThreshold(ctx, "SKU123")
	if err != nil {
		t.Fatalf("IsBelowThreshold failed: %v", err)
	}
	if below {
		t.Error("above-threshold stock should not report as needing reorder")
	}

	// SKU124 has no stock rows at all and must still appear in alerts.
	alerts, err := stock.ListBelowThreshold(ctx)
	if err != nil {
		t.Fatalf("ListBelowThreshold failed: %v", err)
	}
	found := false
	for _, a := range alerts {
		if a.ProductSKU == "SKU124" {
			found = true
			if a.TotalOnHand != 0 {
				t.Errorf("expected SKU124 on hand 0, got %d", a.TotalOnHand)
			}
		}
		if a.ProductSKU == "SKU123" {
			t.Error("SKU123 is above threshold and must not be in alerts")
		}
	}
	if !found {
		t.Error("never-stocked SKU124 missing from alerts")
	}
}
