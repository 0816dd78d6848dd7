package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kettle-backoffice/internal/core"
)

func TestCatalogue_PriceOf(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewCatalogueService(pool)

	if _, err := svc.ListEntry(ctx, core.ProductRef("SKU123"),
		decimal.RequireFromString("7.50"), "Fish head curry, a local favourite"); err != nil {
		t.Fatalf("ListEntry failed: %v", err)
	}

	price, err := svc.PriceOf(ctx, core.ProductRef("SKU123"))
	if err != nil {
		t.Fatalf("PriceOf failed: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("7.50")) {
		t.Errorf("expected 7.50, got %s", price)
	}
}

func TestCatalogue_NotListed(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewCatalogueService(pool)
	_, err := svc.PriceOf(context.Background(), core.ProductRef("SKU124"))
	if err == nil {
		t.Fatal("expected error for unlisted product, got nil")
	}
	var nle *core.NotListedError
	if !errors.As(err, &nle) {
		t.Fatalf("expected NotListedError, got %T: %v", err, err)
	}
	if nle.Ref.ProductSKU != "SKU124" {
		t.Errorf("expected SKU124 in error, got %+v", nle.Ref)
	}
}

func TestCatalogue_BundlePriceIndependentOfConstituents(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	bundles := core.NewBundleService(pool)
	svc := core.NewCatalogueService(pool)

	b, err := bundles.CreateBundle(ctx, "Classic Flavours Mini Bundle", "",
		[]core.BundleProductInput{
			{ProductSKU: "SKU125", Quantity: 2},
			{ProductSKU: "SKU126", Quantity: 2},
		})
	if err != nil {
		t.Fatalf("CreateBundle failed: %v", err)
	}

	// Bundle gets its own price, not the sum of its parts, and it is priced
	// even though nothing is in stock.
	if _, err := svc.ListEntry(ctx, core.BundleRef(b.ID), decimal.NewFromInt(18), "bundle deal"); err != nil {
		t.Fatalf("ListEntry failed: %v", err)
	}
	price, err := svc.PriceOf(ctx, core.BundleRef(b.ID))
	if err != nil {
		t.Fatalf("PriceOf failed: %v", err)
	}
	if !price.Equal(decimal.NewFromInt(18)) {
		t.Errorf("expected 18, got %s", price)
	}
}

func TestCatalogue_UpdateAndDelist(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewCatalogueService(pool)
	ref := core.ProductRef("SKU125")

	if _, err := svc.ListEntry(ctx, ref, decimal.NewFromInt(5), ""); err != nil {
		t.Fatalf("ListEntry failed: %v", err)
	}
	if _, err := svc.UpdatePrice(ctx, ref, decimal.RequireFromString("5.50")); err != nil {
		t.Fatalf("UpdatePrice failed: %v", err)
	}
	price, err := svc.PriceOf(ctx, ref)
	if err != nil {
		t.Fatalf("PriceOf failed: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("5.50")) {
		t.Errorf("expected 5.50, got %s", price)
	}

	if err := svc.DelistEntry(ctx, ref); err != nil {
		t.Fatalf("DelistEntry failed: %v", err)
	}
	if _, err := svc.PriceOf(ctx, ref); err == nil {
		t.Error("delisted product should not be priced")
	}

	var nle *core.NotListedError
	if err := svc.DelistEntry(ctx, ref); !errors.As(err, &nle) {
		t.Errorf("delisting twice should return NotListedError, got %v", err)
	}
}

func TestCatalogue_ApplyDiscountCode(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewCatalogueService(pool)

	if err := svc.CreateDiscountCode(ctx, core.DiscountCode{
		Code:           "XMAS2020",
		Type:           core.DiscountFlatAmount,
		Amount:         decimal.NewFromInt(10),
		MinOrderAmount: decimal.NewFromInt(20),
		StartDate:      time.Date(2022, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2022, 12, 10, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("CreateDiscountCode failed: %v", err)
	}

	got, err := svc.ApplyDiscountCode(ctx, "XMAS2020",
		decimal.NewFromInt(50), decimal.NewFromInt(50),
		time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ApplyDiscountCode failed: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected 40, got %s", got)
	}

	// Outside the window the typed error surfaces through the DB round trip.
	_, err = svc.ApplyDiscountCode(ctx, "XMAS2020",
		decimal.NewFromInt(50), decimal.NewFromInt(50),
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	var dee *core.DiscountExpiredError
	if !errors.As(err, &dee) {
		t.Errorf("expected DiscountExpiredError, got %v", err)
	}

	if _, err := svc.ApplyDiscountCode(ctx, "NOSUCHCODE",
		decimal.NewFromInt(50), decimal.NewFromInt(50), time.Now()); err == nil {
		t.Error("expected error for unknown code, got nil")
	}
}
