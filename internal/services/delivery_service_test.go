package services

import (
	"errors"
	"sync/atomic"
	"testing"

	"quickplate_backend/internal/models"

	"golang.org/x/sync/errgroup"
)

func newDeliveryFixture(t *testing.T) (DeliveryService, *fakeOrderRepo) {
	t.Helper()
	orderRepo := newFakeOrderRepo()
	return NewDeliveryService(orderRepo, newStubDB(t)), orderRepo
}

func seedEligibleOrder(repo *fakeOrderRepo, id string) {
	repo.put(models.Order{
		ID:           id,
		CustomerID:   100,
		RestaurantID: 1,
		Status:       models.StatusOutForDelivery,
	})
}

func TestDeliveryAccept(t *testing.T) {
	t.Run("first acceptance wins", func(t *testing.T) {
		svc, repo := newDeliveryFixture(t)
		seedEligibleOrder(repo, "ord-1")

		order, err := svc.Accept("ord-1", 200)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.AcceptedBy == nil || *order.AcceptedBy != 200 {
			t.Errorf("accepted_by = %v, want 200", order.AcceptedBy)
		}
	})

	t.Run("second acceptance is refused", func(t *testing.T) {
		svc, repo := newDeliveryFixture(t)
		seedEligibleOrder(repo, "ord-1")

		if _, err := svc.Accept("ord-1", 200); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.Accept("ord-1", 201); !errors.Is(err, ErrAlreadyAccepted) {
			t.Errorf("err = %v, want ErrAlreadyAccepted", err)
		}
		// Retrying as the winner is also refused; acceptance is not re-entrant.
		if _, err := svc.Accept("ord-1", 200); !errors.Is(err, ErrAlreadyAccepted) {
			t.Errorf("winner retry err = %v, want ErrAlreadyAccepted", err)
		}
	})

	t.Run("order not out for delivery is not eligible", func(t *testing.T) {
		svc, repo := newDeliveryFixture(t)
		repo.put(models.Order{ID: "ord-1", Status: models.StatusPreparing})

		if _, err := svc.Accept("ord-1", 200); !errors.Is(err, ErrNotEligible) {
			t.Errorf("err = %v, want ErrNotEligible", err)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, _ := newDeliveryFixture(t)
		if _, err := svc.Accept("missing", 200); !errors.Is(err, ErrOrderNotFound) {
			t.Errorf("err = %v, want ErrOrderNotFound", err)
		}
	})

	t.Run("exactly one of many concurrent acceptances succeeds", func(t *testing.T) {
		svc, repo := newDeliveryFixture(t)
		seedEligibleOrder(repo, "ord-1")

		const contenders = 16
		var wins, rejections int64

		var g errgroup.Group
		for i := 0; i < contenders; i++ {
			personID := int64(200 + i)
			g.Go(func() error {
				_, err := svc.Accept("ord-1", personID)
				switch {
				case err == nil:
					atomic.AddInt64(&wins, 1)
				case errors.Is(err, ErrAlreadyAccepted):
					atomic.AddInt64(&rejections, 1)
				default:
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if wins != 1 {
			t.Errorf("wins = %d, want exactly 1", wins)
		}
		if rejections != contenders-1 {
			t.Errorf("rejections = %d, want %d", rejections, contenders-1)
		}
	})
}

func TestMarkDelivered(t *testing.T) {
	t.Run("acceptor completes the order", func(t *testing.T) {
		svc, repo := newDeliveryFixture(t)
		seedEligibleOrder(repo, "ord-1")
		if _, err := svc.Accept("ord-1", 200); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		order, err := svc.MarkDelivered("ord-1", 200)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Status != models.StatusDelivered {
			t.Errorf("status = %q, want delivered", order.Status)
		}
		history, _ := repo.GetStatusHistoryByOrderID("ord-1")
		if len(history) != 1 || history[0].Status != models.StatusDelivered {
			t.Errorf("history = %+v, want one delivered entry", history)
		}
	})

	t.Run("only the acceptor may complete", func(t *testing.T) {
		svc, repo := newDeliveryFixture(t)
		seedEligibleOrder(repo, "ord-1")
		if _, err := svc.Accept("ord-1", 200); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := svc.MarkDelivered("ord-1", 201); !errors.Is(err, ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("unclaimed order cannot be completed", func(t *testing.T) {
		svc, repo := newDeliveryFixture(t)
		seedEligibleOrder(repo, "ord-1")

		if _, err := svc.MarkDelivered("ord-1", 200); !errors.Is(err, ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("delivered order cannot be completed twice", func(t *testing.T) {
		svc, repo := newDeliveryFixture(t)
		seedEligibleOrder(repo, "ord-1")
		if _, err := svc.Accept("ord-1", 200); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.MarkDelivered("ord-1", 200); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := svc.MarkDelivered("ord-1", 200); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("err = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestGetEligibleOrders(t *testing.T) {
	svc, repo := newDeliveryFixture(t)
	seedEligibleOrder(repo, "free")
	accepted := int64(200)
	repo.put(models.Order{ID: "claimed", Status: models.StatusOutForDelivery, AcceptedBy: &accepted})
	repo.put(models.Order{ID: "early", Status: models.StatusPreparing})

	orders, total, err := svc.GetEligibleOrders(1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(orders) != 1 || orders[0].ID != "free" {
		t.Errorf("orders = %+v, want only the unclaimed out-for-delivery order", orders)
	}
}
