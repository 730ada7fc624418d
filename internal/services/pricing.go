package services

import (
	"quickplate_backend/internal/models"

	"github.com/shopspring/decimal"
)

// Charge rates applied at checkout, as fractions of the cart subtotal.
const (
	DeliveryChargeRate = 0.20
	CODChargeRate      = 0.10
)

// CartLine is one requested (menu item, quantity) pair from the client's cart.
type CartLine struct {
	MenuItemID int64 `json:"menu_item_id" binding:"required"`
	Quantity   int   `json:"quantity" binding:"required,gt=0"`
}

// PriceBreakdown is the full monetary result of pricing a cart. All amounts
// are whole currency units; sub-unit fractions are rounded half-up.
type PriceBreakdown struct {
	Subtotal       float64 `json:"subtotal"`
	DeliveryCharge float64 `json:"delivery_charge"`
	CODCharge      float64 `json:"cod_charge"`
	DiscountAmount float64 `json:"discount_amount"`
	TotalAmount    float64 `json:"total_amount"`

	// Items is the immutable snapshot to persist on the order.
	Items []models.OrderItem `json:"items"`

	// SkippedItemIDs lists cart lines that referenced menu items no longer on
	// the restaurant's menu. They contribute zero instead of failing checkout;
	// callers should log them since they silently drop priced value.
	SkippedItemIDs []int64 `json:"skipped_item_ids,omitempty"`
}

// PriceCart prices the given cart lines against the restaurant's current menu
// and produces the complete charge breakdown. Pure computation: no side
// effects, no offer usage counting.
//
// Cart lines whose menu item id is not present in menu are skipped, not
// rejected (lenient policy against menu drift). The total is clamped at zero
// so a fixed discount larger than the order can never produce a negative total.
func PriceCart(menu map[int64]models.MenuItem, lines []CartLine, paymentMethod string, discountAmount float64) PriceBreakdown {
	breakdown := PriceBreakdown{}
	subtotal := decimal.Zero

	for _, line := range lines {
		item, ok := menu[line.MenuItemID]
		if !ok {
			breakdown.SkippedItemIDs = append(breakdown.SkippedItemIDs, line.MenuItemID)
			continue
		}
		price := decimal.NewFromFloat(item.Price)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))

		breakdown.Items = append(breakdown.Items, models.OrderItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			ImageURL:   item.ImageURL,
			UnitPrice:  item.Price,
			Quantity:   line.Quantity,
		})
	}

	deliveryCharge := subtotal.Mul(decimal.NewFromFloat(DeliveryChargeRate)).Round(0)
	codCharge := decimal.Zero
	if paymentMethod == models.PaymentMethodCOD {
		codCharge = subtotal.Mul(decimal.NewFromFloat(CODChargeRate)).Round(0)
	}

	discount := decimal.NewFromFloat(discountAmount)
	total := subtotal.Add(deliveryCharge).Add(codCharge).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	breakdown.Subtotal, _ = subtotal.Float64()
	breakdown.DeliveryCharge, _ = deliveryCharge.Float64()
	breakdown.CODCharge, _ = codCharge.Float64()
	breakdown.DiscountAmount = discountAmount
	breakdown.TotalAmount, _ = total.Float64()
	return breakdown
}

// ToMinorUnits converts a currency amount to minor units (cents), rounding
// half-up so float representation noise (19.90 stored as 19.899999...) does
// not truncate a cent off the gateway charge.
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// ComputeDiscount computes the discount an offer grants on the given subtotal.
// Percentage discounts are capped at MaxDiscountAmount when set; fixed
// discounts are taken as-is and may exceed the subtotal (PriceCart clamps the
// final total). Eligibility is judged by the offer validator, not here.
func ComputeDiscount(offer *models.Offer, subtotal float64) float64 {
	sub := decimal.NewFromFloat(subtotal)
	value := decimal.NewFromFloat(offer.DiscountValue)

	switch offer.DiscountType {
	case models.DiscountTypePercentage:
		discount := sub.Mul(value).Div(decimal.NewFromInt(100)).Round(0)
		if offer.MaxDiscountAmount != nil {
			maxDiscount := decimal.NewFromFloat(*offer.MaxDiscountAmount)
			if discount.GreaterThan(maxDiscount) {
				discount = maxDiscount
			}
		}
		f, _ := discount.Float64()
		return f
	case models.DiscountTypeFixed:
		return offer.DiscountValue
	default:
		return 0
	}
}
