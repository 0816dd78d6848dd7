package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserService stores back-office accounts and per-tier leave quotas. Password
// hashing and session handling belong to the surrounding auth layer.
type UserService interface {
	CreateUser(ctx context.Context, u User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	VerifyUser(ctx context.Context, userID int) error

	GetLeaveQuota(ctx context.Context, tier string) (*LeaveQuota, error)
	SetLeaveQuota(ctx context.Context, q LeaveQuota) error
}

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

func (s *userService) CreateUser(ctx context.Context, u User) (*User, error) {
	if u.Email == "" {
		return nil, fmt.Errorf("user email is required")
	}
	switch u.Role {
	case RoleAdmin, RoleFullTime, RolePartTime, RoleIntern, RoleB2B:
	default:
		return nil, fmt.Errorf("unknown user role %q", u.Role)
	}

	out := u
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, password, role, tier)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_verified, created_at`,
		u.FirstName, u.LastName, u.Email, u.Password, u.Role, u.Tier,
	).Scan(&out.ID, &out.IsVerified, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user %s: %w", u.Email, err)
	}
	return &out, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, password, role, tier, is_verified, created_at
		FROM users
		WHERE email = $1
		LIMIT 1`,
		email,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.Role, &u.Tier, &u.IsVerified, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user %q not found: %w", email, err)
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, userID int) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, password, role, tier, is_verified, created_at
		FROM users
		WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.Role, &u.Tier, &u.IsVerified, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user id=%d not found: %w", userID, err)
	}
	return u, nil
}

func (s *userService) VerifyUser(ctx context.Context, userID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE users SET is_verified = true WHERE id = $1", userID,
	)
	if err != nil {
		return fmt.Errorf("verify user %d: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", userID)
	}
	return nil
}

func (s *userService) GetLeaveQuota(ctx context.Context, tier string) (*LeaveQuota, error) {
	q := &LeaveQuota{}
	err := s.pool.QueryRow(ctx, `
		SELECT tier, annual, childcare, compassionate, parental, sick, unpaid
		FROM leave_quotas
		WHERE tier = $1`,
		tier,
	).Scan(&q.Tier, &q.Annual, &q.Childcare, &q.Compassionate, &q.Parental, &q.Sick, &q.Unpaid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("leave quota for tier %q not found", tier)
		}
		return nil, fmt.Errorf("get leave quota for tier %q: %w", tier, err)
	}
	return q, nil
}

func (s *userService) SetLeaveQuota(ctx context.Context, q LeaveQuota) error {
	if q.Tier == "" {
		return fmt.Errorf("leave quota tier is required")
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO leave_quotas (tier, annual, childcare, compassionate, parental, sick, unpaid)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tier) DO UPDATE
		SET annual = $2, childcare = $3, compassionate = $4, parental = $5, sick = $6, unpaid = $7`,
		q.Tier, q.Annual, q.Childcare, q.Compassionate, q.Parental, q.Sick, q.Unpaid,
	)
	if err != nil {
		return fmt.Errorf("set leave quota for tier %q: %w", q.Tier, err)
	}
	return nil
}
