package models

import (
	"time"

	"gorm.io/gorm"
)

// Staff roles. Admins manage the catalog, cashiers settle tabs, waiters take
// orders and advance kitchen statuses.
const (
	RoleWaiter  = "waiter"
	RoleCashier = "cashier"
	RoleAdmin   = "admin"
)

// User represents a staff member (waiter, cashier or admin) of a company
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	CompanyID uint           `gorm:"not null;index" json:"company_id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      string         `gorm:"not null;default:'waiter'" json:"role"` // "waiter", "cashier" or "admin"
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// CanManageCatalog reports whether the user may create or edit catalog
// entries (products, combos, promotions, settings).
func (u *User) CanManageCatalog() bool {
	return u.Role == RoleAdmin
}

// CanSettlePayments reports whether the user may record payments on a tab.
func (u *User) CanSettlePayments() bool {
	return u.Role == RoleCashier || u.Role == RoleAdmin
}
