package models

import (
	"time"

	"github.com/google/uuid"
)

// Role governs route access and allowed order-status transitions.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// CanManageOrders reports whether the role may trigger order-status
// transitions.
func (r Role) CanManageOrders() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Profile is the application-facing account record, one-to-one with the
// identity provider's user. The id is the user id.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `json:"full_name"`
	Role      Role      `gorm:"default:customer" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
