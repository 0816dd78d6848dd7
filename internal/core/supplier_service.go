package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SupplierService manages procurement counterparties. Suppliers referenced by
// order history are disabled rather than deleted.
type SupplierService interface {
	CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error)
	UpdateSupplier(ctx context.Context, supplierID int, input SupplierInput) (*Supplier, error)
	DisableSupplier(ctx context.Context, supplierID int) error
	GetSupplier(ctx context.Context, supplierID int) (*Supplier, error)
	GetSuppliers(ctx context.Context) ([]Supplier, error)
}

type supplierService struct {
	pool *pgxpool.Pool
}

// NewSupplierService constructs a SupplierService backed by PostgreSQL.
func NewSupplierService(pool *pgxpool.Pool) SupplierService {
	return &supplierService{pool: pool}
}

func (s *supplierService) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	if err := validateSupplierInput(input); err != nil {
		return nil, err
	}
	currency := input.Currency
	if currency == "" {
		currency = "SGD"
	}

	sup := &Supplier{Email: input.Email, Name: input.Name, Address: input.Address, Currency: currency}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (email, name, address, currency)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at`,
		input.Email, input.Name, input.Address, currency,
	).Scan(&sup.ID, &sup.IsActive, &sup.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create supplier %q: %w", input.Name, err)
	}
	return sup, nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, supplierID int, input SupplierInput) (*Supplier, error) {
	if err := validateSupplierInput(input); err != nil {
		return nil, err
	}
	currency := input.Currency
	if currency == "" {
		currency = "SGD"
	}

	sup := &Supplier{ID: supplierID, Email: input.Email, Name: input.Name, Address: input.Address, Currency: currency}
	err := s.pool.QueryRow(ctx, `
		UPDATE suppliers
		SET email = $1, name = $2, address = $3, currency = $4
		WHERE id = $5
		RETURNING is_active, created_at`,
		input.Email, input.Name, input.Address, currency, supplierID,
	).Scan(&sup.IsActive, &sup.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplier %d not found", supplierID)
		}
		return nil, fmt.Errorf("update supplier %d: %w", supplierID, err)
	}
	return sup, nil
}

func (s *supplierService) DisableSupplier(ctx context.Context, supplierID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE suppliers SET is_active = false WHERE id = $1", supplierID,
	)
	if err != nil {
		return fmt.Errorf("disable supplier %d: %w", supplierID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("supplier %d not found", supplierID)
	}
	return nil
}

func (s *supplierService) GetSupplier(ctx context.Context, supplierID int) (*Supplier, error) {
	sup := &Supplier{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, name, address, currency, is_active, created_at
		FROM suppliers
		WHERE id = $1`,
		supplierID,
	).Scan(&sup.ID, &sup.Email, &sup.Name, &sup.Address, &sup.Currency, &sup.IsActive, &sup.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplier %d not found", supplierID)
		}
		return nil, fmt.Errorf("get supplier %d: %w", supplierID, err)
	}
	return sup, nil
}

func (s *supplierService) GetSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, name, address, currency, is_active, created_at
		FROM suppliers
		WHERE is_active = true
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var sup Supplier
		if err := rows.Scan(&sup.ID, &sup.Email, &sup.Name, &sup.Address, &sup.Currency, &sup.IsActive, &sup.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, nil
}

func validateSupplierInput(input SupplierInput) error {
	if input.Name == "" {
		return fmt.Errorf("supplier name is required")
	}
	if input.Email == "" {
		return fmt.Errorf("supplier email is required")
	}
	return nil
}
