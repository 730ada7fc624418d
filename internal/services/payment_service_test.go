package services

import (
	"errors"
	"testing"

	"quickplate_backend/internal/models"
)

func paymentEvent(orderID string, amountMinor *int64) GatewayEvent {
	event := GatewayEvent{Type: EventTypeCheckoutCompleted}
	event.Data.Object.ID = "cs_test"
	event.Data.Object.AmountTotal = amountMinor
	event.Data.Object.Metadata = map[string]string{MetadataOrderIDKey: orderID}
	return event
}

func seedPendingCardOrder(repo *fakeOrderRepo, offerCode *string) {
	repo.put(models.Order{
		ID:             "ord-1",
		CustomerID:     100,
		RestaurantID:   1,
		Subtotal:       1000,
		DeliveryCharge: 200,
		TotalAmount:    1200,
		PaymentMethod:  models.PaymentMethodCard,
		Status:         models.StatusPending,
		OfferCode:      offerCode,
	})
}

func TestHandleCheckoutCompleted(t *testing.T) {
	t.Run("confirms the order with the captured amount", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		seedPendingCardOrder(orderRepo, nil)
		svc := NewPaymentService(orderRepo, newFakeOfferRepo(), newStubDB(t))

		captured := int64(120000) // minor units
		if err := svc.HandleCheckoutCompleted(paymentEvent("ord-1", &captured)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		order, _ := orderRepo.GetOrderByID("ord-1")
		if order.Status != models.StatusConfirmed {
			t.Errorf("status = %q, want confirmed", order.Status)
		}
		if order.TotalAmount != 1200 {
			t.Errorf("total = %v, want 1200 (converted from minor units)", order.TotalAmount)
		}
		history, _ := orderRepo.GetStatusHistoryByOrderID("ord-1")
		if len(history) != 1 || history[0].Status != models.StatusConfirmed {
			t.Errorf("history = %+v, want one confirmed entry", history)
		}
	})

	t.Run("missing amount falls back to subtotal plus delivery charge", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		seedPendingCardOrder(orderRepo, nil)
		svc := NewPaymentService(orderRepo, newFakeOfferRepo(), newStubDB(t))

		if err := svc.HandleCheckoutCompleted(paymentEvent("ord-1", nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		order, _ := orderRepo.GetOrderByID("ord-1")
		if order.TotalAmount != 1200 {
			t.Errorf("total = %v, want 1200 (1000 subtotal + 200 delivery)", order.TotalAmount)
		}
	})

	t.Run("replayed notifications are no-ops", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		code := "SAVE10"
		seedPendingCardOrder(orderRepo, &code)
		offerRepo := newFakeOfferRepo(activeOffer("SAVE10"))
		svc := NewPaymentService(orderRepo, offerRepo, newStubDB(t))

		captured := int64(110000)
		event := paymentEvent("ord-1", &captured)
		for i := 0; i < 3; i++ {
			if err := svc.HandleCheckoutCompleted(event); err != nil {
				t.Fatalf("delivery %d: unexpected error: %v", i+1, err)
			}
		}

		history, _ := orderRepo.GetStatusHistoryByOrderID("ord-1")
		if len(history) != 1 {
			t.Errorf("history entries = %d, want 1 after replays", len(history))
		}
		if got := offerRepo.usageCount("SAVE10"); got != 1 {
			t.Errorf("offer usage = %d, want 1 after replays", got)
		}
	})

	t.Run("offer is redeemed on confirmation", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		code := "SAVE10"
		seedPendingCardOrder(orderRepo, &code)
		offerRepo := newFakeOfferRepo(activeOffer("SAVE10"))
		svc := NewPaymentService(orderRepo, offerRepo, newStubDB(t))

		if err := svc.HandleCheckoutCompleted(paymentEvent("ord-1", nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := offerRepo.usageCount("SAVE10"); got != 1 {
			t.Errorf("offer usage = %d, want 1", got)
		}
	})

	t.Run("exhausted offer limit does not fail the confirmation", func(t *testing.T) {
		orderRepo := newFakeOrderRepo()
		code := "BUSY"
		seedPendingCardOrder(orderRepo, &code)
		offer := activeOffer("BUSY")
		limit := 1
		offer.UsageLimit = &limit
		offer.UsageCount = 1
		svc := NewPaymentService(orderRepo, newFakeOfferRepo(offer), newStubDB(t))

		if err := svc.HandleCheckoutCompleted(paymentEvent("ord-1", nil)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		order, _ := orderRepo.GetOrderByID("ord-1")
		if order.Status != models.StatusConfirmed {
			t.Errorf("status = %q, want confirmed despite the exhausted offer", order.Status)
		}
	})

	t.Run("unexpected event type is rejected", func(t *testing.T) {
		svc := NewPaymentService(newFakeOrderRepo(), newFakeOfferRepo(), newStubDB(t))
		event := paymentEvent("ord-1", nil)
		event.Type = "invoice.paid"

		if err := svc.HandleCheckoutCompleted(event); !errors.Is(err, ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})

	t.Run("missing order metadata is rejected", func(t *testing.T) {
		svc := NewPaymentService(newFakeOrderRepo(), newFakeOfferRepo(), newStubDB(t))
		event := GatewayEvent{Type: EventTypeCheckoutCompleted}

		if err := svc.HandleCheckoutCompleted(event); !errors.Is(err, ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})

	t.Run("unknown order id", func(t *testing.T) {
		svc := NewPaymentService(newFakeOrderRepo(), newFakeOfferRepo(), newStubDB(t))

		if err := svc.HandleCheckoutCompleted(paymentEvent("ghost", nil)); !errors.Is(err, ErrOrderNotFound) {
			t.Errorf("err = %v, want ErrOrderNotFound", err)
		}
	})
}
