package models

import "time"

// Order statuses. Orders walk pending -> confirmed -> preparing ->
// out_for_delivery -> delivered, with cancelled as a side branch.
const (
	StatusPending        = "pending"
	StatusConfirmed      = "confirmed"
	StatusPreparing      = "preparing"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCard = "card"
	PaymentMethodCOD  = "cod"
)

// Order is the persisted order document. Monetary fields are computed once at
// checkout and stored; they are never recomputed on read. TotalAmount may be
// overwritten exactly once by the payment confirmation listener with the
// gateway's authoritative captured amount.
type Order struct {
	ID                 string          `json:"id"`
	CustomerID         int64           `json:"customer_id" db:"customer_id"`
	RestaurantID       int64           `json:"restaurant_id" db:"restaurant_id"`
	AcceptedBy         *int64          `json:"accepted_by,omitempty" db:"accepted_by"`
	DeliveryDetails    DeliveryDetails `json:"delivery_details"`
	Subtotal           float64         `json:"subtotal" db:"subtotal"`
	DeliveryCharge     float64         `json:"delivery_charge" db:"delivery_charge"`
	CODCharge          float64         `json:"cod_charge" db:"cod_charge"`
	DiscountAmount     float64         `json:"discount_amount" db:"discount_amount"`
	TotalAmount        float64         `json:"total_amount" db:"total_amount"`
	PaymentMethod      string          `json:"payment_method" db:"payment_method"`
	Status             string          `json:"status" db:"status"`
	OfferCode          *string         `json:"offer_code,omitempty" db:"offer_code"`
	CancellationReason *string         `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
	CartItems          []OrderItem     `json:"cart_items,omitempty"`
	DeliveryHistory    []StatusChange  `json:"delivery_history,omitempty"`
}

// DeliveryDetails is the free-text recipient block captured at checkout.
type DeliveryDetails struct {
	Name    string `json:"name" db:"recipient_name"`
	Email   string `json:"email" db:"recipient_email"`
	Address string `json:"address" db:"recipient_address"`
	City    string `json:"city" db:"recipient_city"`
}

// OrderItem is an immutable snapshot of a menu item at checkout time.
type OrderItem struct {
	ID         int64   `json:"id"`
	OrderID    string  `json:"order_id" db:"order_id"`
	MenuItemID int64   `json:"menu_item_id" db:"menu_item_id"`
	Name       string  `json:"name" db:"name"`
	ImageURL   *string `json:"image_url,omitempty" db:"image_url"`
	UnitPrice  float64 `json:"unit_price" db:"unit_price"`
	Quantity   int     `json:"quantity" db:"quantity"`
}

// StatusChange is one entry of the append-only delivery history. Entries are
// never mutated or reordered once written.
type StatusChange struct {
	ID        int64     `json:"id"`
	OrderID   string    `json:"order_id" db:"order_id"`
	Status    string    `json:"status" db:"status"`
	ChangedBy int64     `json:"changed_by" db:"changed_by"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// OrderFilters defines the available filters for querying orders.
type OrderFilters struct {
	CustomerID   *int64  `form:"customer_id"`
	RestaurantID *int64  `form:"restaurant_id"`
	AcceptedBy   *int64  `form:"accepted_by"`
	Unassigned   bool    `form:"unassigned"` // accepted_by IS NULL
	Status       *string `form:"status"`
	Page         int     `form:"page"`
	PageSize     int     `form:"page_size"`
}

// IsTerminalStatus reports whether no further transitions may leave the status.
func IsTerminalStatus(status string) bool {
	return status == StatusDelivered || status == StatusCancelled
}

// IsKnownStatus reports whether the given status is one of the defined order states.
func IsKnownStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}
