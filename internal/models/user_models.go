package models

import "time"

// Role names stored on the users.role column and carried in JWT claims.
const (
	RoleCustomer   = "customer"
	RoleRestaurant = "restaurant"
	RoleDelivery   = "delivery"
	RoleAdmin      = "admin"
)

// User represents any account in the system: customers, restaurant owners,
// delivery personnel and administrators, distinguished by Role.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // never serialized
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserFilters defines the available filters for the admin user listing.
type UserFilters struct {
	Role     *string `form:"role"`
	IsActive *bool   `form:"is_active"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// IsKnownRole reports whether the given role name is one the system recognises.
func IsKnownRole(role string) bool {
	switch role {
	case RoleCustomer, RoleRestaurant, RoleDelivery, RoleAdmin:
		return true
	default:
		return false
	}
}
