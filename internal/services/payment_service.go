package services

import (
	"database/sql"
	"errors"
	"fmt"

	"quickplate_backend/internal/models"
	"quickplate_backend/internal/repositories"
	"quickplate_backend/pkg/utils"
)

// GatewayEvent is the asynchronous notification posted by the payment gateway.
// The order id travels in the session metadata set at session creation;
// amount_total is the captured amount in minor currency units.
type GatewayEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID          string            `json:"id"`
			AmountTotal *int64            `json:"amount_total"`
			Metadata    map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// EventTypeCheckoutCompleted is the only event type the listener acts on.
const EventTypeCheckoutCompleted = "checkout.session.completed"

// MetadataOrderIDKey is the metadata key carrying the order id through the
// checkout session.
const MetadataOrderIDKey = "order_id"

// PaymentService reconciles gateway notifications with stored orders.
type PaymentService interface {
	// HandleCheckoutCompleted promotes the referenced order from pending to
	// confirmed, records the captured amount, appends a history entry and
	// redeems the order's offer code. Safe under at-least-once delivery:
	// replaying an already-processed event is a no-op.
	HandleCheckoutCompleted(event GatewayEvent) error
}

type paymentService struct {
	orderRepo repositories.OrderRepository
	offerRepo repositories.OfferRepository
	db        *sql.DB
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(orderRepo repositories.OrderRepository, offerRepo repositories.OfferRepository, db *sql.DB) PaymentService {
	return &paymentService{orderRepo: orderRepo, offerRepo: offerRepo, db: db}
}

// systemActorID marks history entries written by the listener rather than a
// human principal.
const systemActorID int64 = 0

func (s *paymentService) HandleCheckoutCompleted(event GatewayEvent) error {
	if event.Type != EventTypeCheckoutCompleted {
		return fmt.Errorf("%w: unexpected event type '%s'", ErrValidation, event.Type)
	}
	orderID := event.Data.Object.Metadata[MetadataOrderIDKey]
	if orderID == "" {
		return fmt.Errorf("%w: event is missing order id metadata", ErrValidation)
	}

	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to fetch order for payment confirmation: %w", err)
	}

	// Captured amount from the gateway is authoritative; failing that, fall
	// back to the charge the session was created for.
	var capturedTotal float64
	if event.Data.Object.AmountTotal != nil {
		capturedTotal = float64(*event.Data.Object.AmountTotal) / 100
	} else {
		capturedTotal = order.Subtotal + order.DeliveryCharge
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction for payment confirmation: %w", err)
	}
	defer tx.Rollback()

	confirmed, err := s.orderRepo.ConfirmPayment(tx, orderID, &capturedTotal)
	if err != nil {
		return fmt.Errorf("failed to confirm payment for order %s: %w", orderID, err)
	}
	if !confirmed {
		// Already confirmed or past it: a replayed notification. Nothing to do.
		utils.LogInfo("Payment notification replayed for non-pending order, ignoring", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil
	}

	statusChange := models.StatusChange{
		OrderID:   orderID,
		Status:    models.StatusConfirmed,
		ChangedBy: systemActorID,
		Notes:     utils.NewNullString("payment confirmed by gateway"),
	}
	if _, err := s.orderRepo.AppendStatusChange(tx, &statusChange); err != nil {
		return fmt.Errorf("failed to append payment confirmation history for order %s: %w", orderID, err)
	}

	if order.OfferCode != nil {
		redeemed, err := s.offerRepo.IncrementUsage(tx, *order.OfferCode)
		if err != nil {
			return fmt.Errorf("failed to redeem offer '%s' for order %s: %w", *order.OfferCode, orderID, err)
		}
		if !redeemed {
			// The limit filled up between checkout and payment. The customer
			// already paid the discounted amount, so honour it and flag the
			// overshoot rather than failing the confirmation.
			utils.LogWarn("Offer usage limit exceeded at payment confirmation, discount honoured", map[string]interface{}{
				"order_id":   orderID,
				"offer_code": *order.OfferCode,
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment confirmation for order %s: %w", orderID, err)
	}
	return nil
}
