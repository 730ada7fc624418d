package models

import "time"

// Restaurant is master data owned by a user with the restaurant role.
type Restaurant struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Address     string    `json:"address" db:"address"`
	City        string    `json:"city" db:"city"`
	ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
	IsOpen      bool      `json:"is_open" db:"is_open"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	MenuItems   []MenuItem `json:"menu_items,omitempty"`
}

// MenuItem is a priced dish on a restaurant's menu. Orders snapshot the price
// at checkout time, so edits here never rewrite placed orders.
type MenuItem struct {
	ID           int64     `json:"id"`
	RestaurantID int64     `json:"restaurant_id" db:"restaurant_id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description,omitempty" db:"description"`
	Category     string    `json:"category" db:"category"`
	ImageURL     *string   `json:"image_url,omitempty" db:"image_url"`
	Price        float64   `json:"price" db:"price"`
	IsAvailable  bool      `json:"is_available" db:"is_available"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RestaurantFilters defines the available filters for browsing restaurants.
type RestaurantFilters struct {
	City     *string `form:"city"`
	Search   *string `form:"search"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
