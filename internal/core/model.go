package core

import "time"

// Brand owns a family of products.
type Brand struct {
	ID        int
	Name      string
	CreatedAt time.Time
}

// Location is a warehouse holding stock.
type Location struct {
	ID        int
	Name      string
	Address   string
	CreatedAt time.Time
}

// Product is a stocked item identified by its SKU. The SKU is immutable; name
// and reorder threshold are editable. Products referenced by stock or order
// history are never deleted, only disabled.
type Product struct {
	SKU          string
	Name         string
	BrandID      int
	BrandName    string // joined from brands
	QtyThreshold int64
	IsActive     bool
	CreatedAt    time.Time
}

// Supplier is a procurement counterparty.
type Supplier struct {
	ID        int
	Email     string
	Name      string
	Address   string
	Currency  string
	IsActive  bool
	CreatedAt time.Time
}

// SupplierInput holds the fields required to create a supplier.
type SupplierInput struct {
	Email    string
	Name     string
	Address  string
	Currency string
}

// UserRole is the back-office access level of a user.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleFullTime UserRole = "FULLTIME"
	RolePartTime UserRole = "PARTTIME"
	RoleIntern   UserRole = "INTERN"
	RoleB2B      UserRole = "B2B"
)

// User is a back-office account. Password hashing and token issuance are
// handled by the surrounding auth layer; this core only stores the record.
type User struct {
	ID         int
	FirstName  string
	LastName   string
	Email      string
	Password   string // already hashed by the caller
	Role       UserRole
	Tier       string // leave quota tier
	IsVerified bool
	CreatedAt  time.Time
}

// LeaveQuota is the per-tier annual allowance for each leave type, in days.
type LeaveQuota struct {
	Tier          string
	Annual        int
	Childcare     int
	Compassionate int
	Parental      int
	Sick          int
	Unpaid        int
}
