package models

import "time"

// Review is a customer rating of a restaurant.
type Review struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	RestaurantID int64     `json:"restaurant_id" db:"restaurant_id"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UserName     string    `json:"user_name,omitempty"` // joined for display
}
