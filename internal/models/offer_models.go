package models

import "time"

// Discount types for promotional offers.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Offer is a promotional code customers can apply at checkout. Codes are
// normalized to uppercase and unique. UsageCount only ever grows, and stays
// at or below UsageLimit when a limit is set.
type Offer struct {
	ID                int64     `json:"id"`
	Code              string    `json:"code" db:"code"`
	Description       *string   `json:"description,omitempty" db:"description"`
	DiscountType      string    `json:"discount_type" db:"discount_type"`
	DiscountValue     float64   `json:"discount_value" db:"discount_value"`
	MaxDiscountAmount *float64  `json:"max_discount_amount,omitempty" db:"max_discount_amount"`
	MinOrderAmount    *float64  `json:"min_order_amount,omitempty" db:"min_order_amount"`
	ValidFrom         time.Time `json:"valid_from" db:"valid_from"`
	ValidUntil        time.Time `json:"valid_until" db:"valid_until"`
	UsageLimit        *int      `json:"usage_limit,omitempty" db:"usage_limit"`
	UsageCount        int       `json:"usage_count" db:"usage_count"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}
