package services

import "errors"

// Shared service-level errors. Handlers map these onto the API error taxonomy:
// validation -> 400, not-found -> 404, conflicts -> 409, gateway -> 502.
var (
	ErrValidation = errors.New("validation error")

	ErrOrderNotFound      = errors.New("order not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrMenuItemNotFound   = errors.New("menu item not found")
	ErrOfferNotFound      = errors.New("offer not found")
	ErrMessageNotFound    = errors.New("message not found")

	// ErrForbidden signals the acting principal is not allowed to perform the
	// operation on this record (wrong owner, wrong role).
	ErrForbidden = errors.New("operation not permitted for this user")

	// ErrInvalidTransition signals a status change the state machine does not
	// allow from the order's current status. An expected, benign outcome of
	// two actors racing, not a fatal condition.
	ErrInvalidTransition = errors.New("illegal order status transition")

	// ErrAlreadyAccepted signals the order is already bound to a delivery person.
	ErrAlreadyAccepted = errors.New("order already accepted for delivery")

	// ErrNotEligible signals the order is not out for delivery (or no longer exists
	// in an acceptable state) and cannot be claimed.
	ErrNotEligible = errors.New("order not eligible for delivery acceptance")

	// ErrOfferInUse refuses deletion of an offer whose usage count is non-zero.
	ErrOfferInUse = errors.New("offer has been used and cannot be deleted")

	// ErrOfferUsageLimit signals the offer's usage limit was exhausted between
	// validation and the durable increment.
	ErrOfferUsageLimit = errors.New("offer usage limit reached")

	// ErrPaymentGateway wraps failures talking to the external payment gateway.
	// Retryable by the caller; never retried here.
	ErrPaymentGateway = errors.New("payment gateway error")
)
