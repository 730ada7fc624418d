package services

import (
	"testing"

	"quickplate_backend/internal/models"
)

func menuOf(items ...models.MenuItem) map[int64]models.MenuItem {
	menu := make(map[int64]models.MenuItem, len(items))
	for _, item := range items {
		menu[item.ID] = item
	}
	return menu
}

func TestPriceCart(t *testing.T) {
	t.Run("card order charges delivery but not cod", func(t *testing.T) {
		menu := menuOf(models.MenuItem{ID: 1, Name: "Biryani", Price: 500})
		breakdown := PriceCart(menu, []CartLine{{MenuItemID: 1, Quantity: 2}}, models.PaymentMethodCard, 0)

		if breakdown.Subtotal != 1000 {
			t.Errorf("subtotal = %v, want 1000", breakdown.Subtotal)
		}
		if breakdown.DeliveryCharge != 200 {
			t.Errorf("delivery charge = %v, want 200", breakdown.DeliveryCharge)
		}
		if breakdown.CODCharge != 0 {
			t.Errorf("cod charge = %v, want 0", breakdown.CODCharge)
		}
		if breakdown.TotalAmount != 1200 {
			t.Errorf("total = %v, want 1200", breakdown.TotalAmount)
		}
	})

	t.Run("cod order adds the cod surcharge", func(t *testing.T) {
		menu := menuOf(models.MenuItem{ID: 1, Name: "Thali", Price: 500})
		breakdown := PriceCart(menu, []CartLine{{MenuItemID: 1, Quantity: 1}}, models.PaymentMethodCOD, 0)

		if breakdown.DeliveryCharge != 100 {
			t.Errorf("delivery charge = %v, want 100", breakdown.DeliveryCharge)
		}
		if breakdown.CODCharge != 50 {
			t.Errorf("cod charge = %v, want 50", breakdown.CODCharge)
		}
		if breakdown.TotalAmount != 650 {
			t.Errorf("total = %v, want 650", breakdown.TotalAmount)
		}
	})

	t.Run("charges round half-up", func(t *testing.T) {
		// Subtotal 997: 20% = 199.4 -> 199, 10% = 99.7 -> 100.
		menu := menuOf(models.MenuItem{ID: 1, Name: "Roll", Price: 997})
		breakdown := PriceCart(menu, []CartLine{{MenuItemID: 1, Quantity: 1}}, models.PaymentMethodCOD, 0)

		if breakdown.DeliveryCharge != 199 {
			t.Errorf("delivery charge = %v, want 199", breakdown.DeliveryCharge)
		}
		if breakdown.CODCharge != 100 {
			t.Errorf("cod charge = %v, want 100", breakdown.CODCharge)
		}
	})

	t.Run("total never goes negative", func(t *testing.T) {
		menu := menuOf(models.MenuItem{ID: 1, Name: "Samosa", Price: 150})
		breakdown := PriceCart(menu, []CartLine{{MenuItemID: 1, Quantity: 1}}, models.PaymentMethodCard, 200)

		// 150 + 30 delivery - 200 discount would be -20.
		if breakdown.TotalAmount != 0 {
			t.Errorf("total = %v, want 0", breakdown.TotalAmount)
		}
		if breakdown.DiscountAmount != 200 {
			t.Errorf("discount = %v, want 200 (recorded as granted)", breakdown.DiscountAmount)
		}
	})

	t.Run("unknown cart lines are skipped not rejected", func(t *testing.T) {
		menu := menuOf(models.MenuItem{ID: 1, Name: "Dal", Price: 100})
		breakdown := PriceCart(menu, []CartLine{
			{MenuItemID: 1, Quantity: 1},
			{MenuItemID: 99, Quantity: 3},
		}, models.PaymentMethodCard, 0)

		if breakdown.Subtotal != 100 {
			t.Errorf("subtotal = %v, want 100", breakdown.Subtotal)
		}
		if len(breakdown.Items) != 1 {
			t.Fatalf("items = %d, want 1", len(breakdown.Items))
		}
		if len(breakdown.SkippedItemIDs) != 1 || breakdown.SkippedItemIDs[0] != 99 {
			t.Errorf("skipped = %v, want [99]", breakdown.SkippedItemIDs)
		}
	})

	t.Run("empty cart produces a zero breakdown", func(t *testing.T) {
		breakdown := PriceCart(menuOf(), nil, models.PaymentMethodCOD, 0)
		if breakdown.Subtotal != 0 || breakdown.TotalAmount != 0 {
			t.Errorf("breakdown = %+v, want all zero", breakdown)
		}
	})

	t.Run("item snapshot carries checkout-time prices", func(t *testing.T) {
		menu := menuOf(models.MenuItem{ID: 7, Name: "Paneer", Price: 320})
		breakdown := PriceCart(menu, []CartLine{{MenuItemID: 7, Quantity: 2}}, models.PaymentMethodCard, 0)

		item := breakdown.Items[0]
		if item.MenuItemID != 7 || item.Name != "Paneer" || item.UnitPrice != 320 || item.Quantity != 2 {
			t.Errorf("snapshot = %+v", item)
		}
	})
}

func TestComputeDiscount(t *testing.T) {
	maxDiscount := func(v float64) *float64 { return &v }

	t.Run("percentage discount is capped", func(t *testing.T) {
		offer := &models.Offer{
			DiscountType:      models.DiscountTypePercentage,
			DiscountValue:     10,
			MaxDiscountAmount: maxDiscount(80),
		}
		if got := ComputeDiscount(offer, 1000); got != 80 {
			t.Errorf("discount = %v, want 80 (10%% of 1000 capped)", got)
		}
	})

	t.Run("percentage discount below the cap is untouched", func(t *testing.T) {
		offer := &models.Offer{
			DiscountType:      models.DiscountTypePercentage,
			DiscountValue:     10,
			MaxDiscountAmount: maxDiscount(80),
		}
		if got := ComputeDiscount(offer, 500); got != 50 {
			t.Errorf("discount = %v, want 50", got)
		}
	})

	t.Run("percentage without cap", func(t *testing.T) {
		offer := &models.Offer{DiscountType: models.DiscountTypePercentage, DiscountValue: 25}
		if got := ComputeDiscount(offer, 400); got != 100 {
			t.Errorf("discount = %v, want 100", got)
		}
	})

	t.Run("fixed discount ignores the cap and may exceed the subtotal", func(t *testing.T) {
		offer := &models.Offer{
			DiscountType:      models.DiscountTypeFixed,
			DiscountValue:     200,
			MaxDiscountAmount: maxDiscount(50),
		}
		if got := ComputeDiscount(offer, 150); got != 200 {
			t.Errorf("discount = %v, want 200", got)
		}
	})

	t.Run("unknown discount type grants nothing", func(t *testing.T) {
		offer := &models.Offer{DiscountType: "mystery", DiscountValue: 50}
		if got := ComputeDiscount(offer, 1000); got != 0 {
			t.Errorf("discount = %v, want 0", got)
		}
	})
}

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		amount float64
		want   int64
	}{
		{19.90, 1990}, // float noise: 19.90 is stored just below 19.9
		{0.1, 10},
		{1234, 123400},
		{0, 0},
		{3.985, 399}, // half-up at the cent boundary
	}
	for _, tc := range cases {
		if got := ToMinorUnits(tc.amount); got != tc.want {
			t.Errorf("ToMinorUnits(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}
