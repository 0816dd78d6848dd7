package core_test

import (
	"context"
	"testing"

	"kettle-backoffice/internal/core"
)

func TestProduct_UpdateAndDisable(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewProductService(pool)

	p, err := svc.UpdateProduct(ctx, "SKU123", "Fish Head Curry Popcorn (Large)", 25)
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if p.Name != "Fish Head Curry Popcorn (Large)" || p.QtyThreshold != 25 {
		t.Errorf("update not applied: %+v", p)
	}
	if p.BrandName != "The Kettle Gourmet" {
		t.Errorf("expected joined brand name, got %q", p.BrandName)
	}

	if err := svc.DisableProduct(ctx, "SKU123"); err != nil {
		t.Fatalf("DisableProduct failed: %v", err)
	}

	// The record survives, it just drops out of active listings.
	p, err = svc.GetProduct(ctx, "SKU123")
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if p.IsActive {
		t.Error("disabled product should be inactive")
	}

	active, err := svc.GetProducts(ctx)
	if err != nil {
		t.Fatalf("GetProducts failed: %v", err)
	}
	for _, ap := range active {
		if ap.SKU == "SKU123" {
			t.Error("disabled product must not appear in active listing")
		}
	}
}

func TestProduct_CreateValidation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewProductService(pool)

	if _, err := svc.CreateProduct(ctx, "", "Nameless", 1, 0); err == nil {
		t.Error("expected error for empty SKU")
	}
	if _, err := svc.CreateProduct(ctx, "SKU200", "Negative Threshold", 1, -1); err == nil {
		t.Error("expected error for negative threshold")
	}

	p, err := svc.CreateProduct(ctx, "SKU200", "Truffle Popcorn", 1, 15)
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if p.SKU != "SKU200" || !p.IsActive {
		t.Errorf("unexpected product: %+v", p)
	}
}

func TestSupplier_Lifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewSupplierService(pool)

	sup, err := svc.CreateSupplier(ctx, core.SupplierInput{
		Email: "hello@maizeworks.test",
		Name:  "Maizeworks Pte Ltd",
	})
	if err != nil {
		t.Fatalf("CreateSupplier failed: %v", err)
	}
	if sup.Currency != "SGD" {
		t.Errorf("expected default currency SGD, got %s", sup.Currency)
	}

	sup, err = svc.UpdateSupplier(ctx, sup.ID, core.SupplierInput{
		Email:    "hello@maizeworks.test",
		Name:     "Maizeworks Pte Ltd",
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("UpdateSupplier failed: %v", err)
	}
	if sup.Currency != "USD" {
		t.Errorf("expected USD after update, got %s", sup.Currency)
	}

	if err := svc.DisableSupplier(ctx, sup.ID); err != nil {
		t.Fatalf("DisableSupplier failed: %v", err)
	}
	active, err := svc.GetSuppliers(ctx)
	if err != nil {
		t.Fatalf("GetSuppliers failed: %v", err)
	}
	for _, a := range active {
		if a.ID == sup.ID {
			t.Error("disabled supplier must not appear in active listing")
		}
	}
}

func TestUser_CreateAndLeaveQuota(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewUserService(pool)

	u, err := svc.CreateUser(ctx, core.User{
		FirstName: "Wei Ling",
		LastName:  "Tan",
		Email:     "weiling@kettle.test",
		Password:  "$2a$10$notarealhash",
		Role:      core.RoleFullTime,
		Tier:      "FULLTIME",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.IsVerified {
		t.Error("new user should start unverified")
	}

	if err := svc.VerifyUser(ctx, u.ID); err != nil {
		t.Fatalf("VerifyUser failed: %v", err)
	}
	u, err = svc.GetByEmail(ctx, "weiling@kettle.test")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if !u.IsVerified {
		t.Error("user should be verified")
	}

	if _, err := svc.CreateUser(ctx, core.User{Email: "bad@kettle.test", Role: "WIZARD"}); err == nil {
		t.Error("expected error for unknown role")
	}

	if err := svc.SetLeaveQuota(ctx, core.LeaveQuota{
		Tier: "FULLTIME", Annual: 14, Childcare: 6, Compassionate: 3, Parental: 14, Sick: 14, Unpaid: 30,
	}); err != nil {
		t.Fatalf("SetLeaveQuota failed: %v", err)
	}
	q, err := svc.GetLeaveQuota(ctx, "FULLTIME")
	if err != nil {
		t.Fatalf("GetLeaveQuota failed: %v", err)
	}
	if q.Annual != 14 || q.Sick != 14 {
		t.Errorf("unexpected quota: %+v", q)
	}

	// Upsert overwrites in place.
	if err := svc.SetLeaveQuota(ctx, core.LeaveQuota{Tier: "FULLTIME", Annual: 16}); err != nil {
		t.Fatalf("SetLeaveQuota upsert failed: %v", err)
	}
	q, err = svc.GetLeaveQuota(ctx, "FULLTIME")
	if err != nil {
		t.Fatalf("GetLeaveQuota failed: %v", err)
	}
	if q.Annual != 16 {
		t.Errorf("expected annual 16 after upsert, got %d", q.Annual)
	}
}
