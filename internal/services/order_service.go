package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"quickplate_backend/internal/models"
	"quickplate_backend/internal/repositories"
	"quickplate_backend/pkg/utils"

	"github.com/google/uuid"
)

// --- Data Transfer Objects (DTOs) ---

// DeliveryDetailsRequest is the recipient block submitted at checkout.
type DeliveryDetailsRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
}

// CheckoutRequest is the payload for placing an order.
type CheckoutRequest struct {
	RestaurantID    int64                  `json:"restaurant_id" binding:"required"`
	Items           []CartLine             `json:"items" binding:"required,dive"`
	DeliveryDetails DeliveryDetailsRequest `json:"delivery_details" binding:"required"`
	PaymentMethod   string                 `json:"payment_method" binding:"required"`
	OfferCode       *string                `json:"offer_code"`
	SuccessURL      string                 `json:"success_url"`
	CancelURL       string                 `json:"cancel_url"`
}

// CheckoutResponse carries the created order and, for card payments, the
// hosted payment page the client must redirect to.
type CheckoutResponse struct {
	Order      *models.Order `json:"order"`
	PaymentURL string        `json:"payment_url,omitempty"`
}

// CancelOrderRequest is the payload for cancelling an order. The reason is
// mandatory and surfaced to the restaurant and admin.
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AdvanceStatusRequest is the restaurant operator's payload for moving an
// order one stage forward.
type AdvanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// advanceTransitions is the forward path a restaurant operator may walk, one
// stage at a time. delivered is absent: only the delivery assignment gate can
// complete an order.
var advanceTransitions = map[string]string{
	models.StatusPending:   models.StatusConfirmed,
	models.StatusConfirmed: models.StatusPreparing,
	models.StatusPreparing: models.StatusOutForDelivery,
}

// --- OrderService Interface ---

type OrderService interface {
	Checkout(customer *models.User, req CheckoutRequest) (*CheckoutResponse, error)
	GetOrderByID(orderID string, actor *models.User) (*models.Order, error)
	GetOrdersForActor(actor *models.User, filters models.OrderFilters) ([]models.Order, int, error)
	AdvanceStatus(orderID string, actor *models.User, newStatus string) (*models.Order, error)
	CancelOrder(orderID string, actor *models.User, reason string) (*models.Order, error)
}

type orderService struct {
	orderRepo      repositories.OrderRepository
	restaurantRepo repositories.RestaurantRepository
	offerRepo      repositories.OfferRepository
	offerService   OfferService
	gateway        PaymentGateway
	db             *sql.DB
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	restaurantRepo repositories.RestaurantRepository,
	offerRepo repositories.OfferRepository,
	offerService OfferService,
	gateway PaymentGateway,
	db *sql.DB,
) OrderService {
	return &orderService{
		orderRepo:      orderRepo,
		restaurantRepo: restaurantRepo,
		offerRepo:      offerRepo,
		offerService:   offerService,
		gateway:        gateway,
		db:             db,
	}
}

// --- Checkout ---

func (s *orderService) Checkout(customer *models.User, req CheckoutRequest) (*CheckoutResponse, error) {
	if req.PaymentMethod != models.PaymentMethodCard && req.PaymentMethod != models.PaymentMethodCOD {
		return nil, fmt.Errorf("%w: unknown payment method '%s'", ErrValidation, req.PaymentMethod)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	restaurant, err := s.restaurantRepo.GetRestaurantByID(req.RestaurantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to fetch restaurant for checkout: %w", err)
	}
	if !restaurant.IsOpen {
		return nil, fmt.Errorf("%w: restaurant is currently closed", ErrValidation)
	}

	menuItems, err := s.restaurantRepo.GetMenuItems(restaurant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menu for checkout: %w", err)
	}
	menu := make(map[int64]models.MenuItem, len(menuItems))
	for _, item := range menuItems {
		if item.IsAvailable {
			menu[item.ID] = item
		}
	}

	// First pass prices the cart without a discount to learn the subtotal the
	// offer must be validated against.
	breakdown := PriceCart(menu, req.Items, req.PaymentMethod, 0)
	if len(breakdown.Items) == 0 {
		return nil, fmt.Errorf("%w: no purchasable items in cart", ErrValidation)
	}
	if len(breakdown.SkippedItemIDs) > 0 {
		// Lenient policy: stale cart lines are dropped, not rejected, so a
		// menu edit mid-session cannot fail checkout. Logged because it
		// silently changes the order's value.
		utils.LogWarn("Cart items missing from menu skipped at checkout", map[string]interface{}{
			"restaurant_id":    restaurant.ID,
			"skipped_item_ids": breakdown.SkippedItemIDs,
		})
	}

	// An invalid code never fails checkout; the order just proceeds at full
	// price. The client is expected to pre-validate and surface the reason.
	var appliedOfferCode *string
	if req.OfferCode != nil && strings.TrimSpace(*req.OfferCode) != "" {
		result, err := s.offerService.Validate(*req.OfferCode, breakdown.Subtotal, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to validate offer at checkout: %w", err)
		}
		if result.Valid {
			code := strings.ToUpper(strings.TrimSpace(*req.OfferCode))
			appliedOfferCode = &code
			breakdown = PriceCart(menu, req.Items, req.PaymentMethod, result.DiscountAmount)
		} else {
			utils.LogInfo("Offer code rejected at checkout, proceeding at full price", map[string]interface{}{
				"code":   *req.OfferCode,
				"reason": result.Reason,
			})
		}
	}

	initialStatus := models.StatusPending
	if req.PaymentMethod == models.PaymentMethodCOD {
		// No payment gate for cash on delivery.
		initialStatus = models.StatusConfirmed
	}

	order := &models.Order{
		ID:           uuid.NewString(),
		CustomerID:   customer.ID,
		RestaurantID: restaurant.ID,
		DeliveryDetails: models.DeliveryDetails{
			Name:    req.DeliveryDetails.Name,
			Email:   req.DeliveryDetails.Email,
			Address: req.DeliveryDetails.Address,
			City:    req.DeliveryDetails.City,
		},
		Subtotal:       breakdown.Subtotal,
		DeliveryCharge: breakdown.DeliveryCharge,
		CODCharge:      breakdown.CODCharge,
		DiscountAmount: breakdown.DiscountAmount,
		TotalAmount:    breakdown.TotalAmount,
		PaymentMethod:  req.PaymentMethod,
		Status:         initialStatus,
		OfferCode:      appliedOfferCode,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start checkout transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.orderRepo.CreateOrder(tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order record: %w", err)
	}
	for i := range breakdown.Items {
		breakdown.Items[i].OrderID = order.ID
		if _, err := s.orderRepo.CreateOrderItem(tx, &breakdown.Items[i]); err != nil {
			return nil, fmt.Errorf("failed to create order item (menu_item_id: %d): %w", breakdown.Items[i].MenuItemID, err)
		}
	}

	statusChange := models.StatusChange{
		OrderID:   order.ID,
		Status:    initialStatus,
		ChangedBy: customer.ID,
		Notes:     utils.NewNullString("order placed"),
	}
	if _, err := s.orderRepo.AppendStatusChange(tx, &statusChange); err != nil {
		return nil, fmt.Errorf("failed to append initial order history: %w", err)
	}

	// COD orders are durable and confirmed right away, so the offer is
	// redeemed here. Card orders redeem on payment confirmation instead, so
	// abandoned checkouts never consume usage.
	if req.PaymentMethod == models.PaymentMethodCOD && appliedOfferCode != nil {
		redeemed, err := s.offerRepo.IncrementUsage(tx, *appliedOfferCode)
		if err != nil {
			return nil, fmt.Errorf("failed to redeem offer '%s': %w", *appliedOfferCode, err)
		}
		if !redeemed {
			return nil, ErrOfferUsageLimit
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout transaction: %w", err)
	}

	order.CartItems = breakdown.Items
	order.DeliveryHistory = []models.StatusChange{statusChange}

	response := &CheckoutResponse{Order: order}
	if req.PaymentMethod == models.PaymentMethodCard {
		session, err := s.createCheckoutSession(order, req)
		if err != nil {
			// The pending order survives; the client may retry payment.
			return nil, err
		}
		response.PaymentURL = session.URL
	}
	return response, nil
}

// createCheckoutSession hands the cart to the gateway's hosted payment page.
// The captured amount the gateway later reports covers items plus the
// delivery charge; the confirmation listener overwrites the stored total
// with it.
func (s *orderService) createCheckoutSession(order *models.Order, req CheckoutRequest) (*CheckoutSession, error) {
	lineItems := make([]CheckoutLineItem, 0, len(order.CartItems)+1)
	for _, item := range order.CartItems {
		lineItems = append(lineItems, CheckoutLineItem{
			Name:            item.Name,
			UnitAmountMinor: ToMinorUnits(item.UnitPrice),
			Quantity:        item.Quantity,
		})
	}
	lineItems = append(lineItems, CheckoutLineItem{
		Name:            "Delivery charge",
		UnitAmountMinor: ToMinorUnits(order.DeliveryCharge),
		Quantity:        1,
	})

	return s.gateway.CreateCheckoutSession(CheckoutSessionParams{
		CustomerEmail: order.DeliveryDetails.Email,
		LineItems:     lineItems,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		Metadata:      map[string]string{MetadataOrderIDKey: order.ID},
	})
}

// --- Reads ---

// canViewOrder reports whether the actor is allowed to read the order:
// the customer who placed it, the owner of the restaurant it belongs to,
// the delivery person who accepted it, or an admin.
func (s *orderService) canViewOrder(order *models.Order, actor *models.User) (bool, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleCustomer:
		return order.CustomerID == actor.ID, nil
	case models.RoleDelivery:
		if order.AcceptedBy != nil && *order.AcceptedBy == actor.ID {
			return true, nil
		}
		// Delivery personnel may inspect unclaimed eligible orders.
		return order.Status == models.StatusOutForDelivery && order.AcceptedBy == nil, nil
	case models.RoleRestaurant:
		restaurant, err := s.restaurantRepo.GetRestaurantByID(order.RestaurantID)
		if err != nil {
			return false, fmt.Errorf("failed to resolve restaurant owner: %w", err)
		}
		return restaurant.OwnerID == actor.ID, nil
	default:
		return false, nil
	}
}

func (s *orderService) GetOrderByID(orderID string, actor *models.User) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}

	allowed, err := s.canViewOrder(order, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}

	items, err := s.orderRepo.GetOrderItemsByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	order.CartItems = items

	history, err := s.orderRepo.GetStatusHistoryByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}
	order.DeliveryHistory = history

	return order, nil
}

// GetOrdersForActor lists orders scoped to what the actor is allowed to see.
// Admins see everything; customers their own orders; delivery personnel their
// accepted orders; restaurant owners the queue of a restaurant they own.
func (s *orderService) GetOrdersForActor(actor *models.User, filters models.OrderFilters) ([]models.Order, int, error) {
	switch actor.Role {
	case models.RoleAdmin:
		// Unscoped.
	case models.RoleCustomer:
		filters.CustomerID = &actor.ID
	case models.RoleDelivery:
		filters.AcceptedBy = &actor.ID
	case models.RoleRestaurant:
		if filters.RestaurantID == nil {
			return nil, 0, fmt.Errorf("%w: restaurant_id is required", ErrValidation)
		}
		restaurant, err := s.restaurantRepo.GetRestaurantByID(*filters.RestaurantID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, 0, ErrRestaurantNotFound
			}
			return nil, 0, fmt.Errorf("failed to resolve restaurant for order listing: %w", err)
		}
		if restaurant.OwnerID != actor.ID {
			return nil, 0, ErrForbidden
		}
	default:
		return nil, 0, ErrForbidden
	}

	orders, totalCount, err := s.orderRepo.GetOrders(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, totalCount, nil
}

// --- Status Transitions ---

// AdvanceStatus moves an order one stage forward along
// pending -> confirmed -> preparing -> out_for_delivery. Only the owner of
// the order's restaurant (or an admin) may advance, stages cannot be
// skipped, and delivered is unreachable here.
func (s *orderService) AdvanceStatus(orderID string, actor *models.User, newStatus string) (*models.Order, error) {
	if !models.IsKnownStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status '%s'", ErrValidation, newStatus)
	}

	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order for status update: %w", err)
	}

	if actor.Role != models.RoleAdmin {
		restaurant, err := s.restaurantRepo.GetRestaurantByID(order.RestaurantID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve restaurant owner: %w", err)
		}
		if actor.Role != models.RoleRestaurant || restaurant.OwnerID != actor.ID {
			return nil, ErrForbidden
		}
	}

	next, ok := advanceTransitions[order.Status]
	if !ok || next != newStatus {
		return nil, fmt.Errorf("%w: cannot move from '%s' to '%s'", ErrInvalidTransition, order.Status, newStatus)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction for status update: %w", err)
	}
	defer tx.Rollback()

	applied, err := s.orderRepo.UpdateOrderStatus(tx, orderID, order.Status, newStatus, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !applied {
		// Someone else moved the order first.
		return nil, fmt.Errorf("%w: order status changed concurrently", ErrInvalidTransition)
	}

	statusChange := models.StatusChange{
		OrderID:   orderID,
		Status:    newStatus,
		ChangedBy: actor.ID,
	}
	if _, err := s.orderRepo.AppendStatusChange(tx, &statusChange); err != nil {
		return nil, fmt.Errorf("failed to append status history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return s.GetOrderByID(orderID, actor)
}

// CancelOrder cancels an order with a mandatory reason. Customers may cancel
// their own orders only while pending or confirmed; admins may force-cancel
// from any non-terminal state.
func (s *orderService) CancelOrder(orderID string, actor *models.User, reason string) (*models.Order, error) {
	if utils.IsEmpty(reason) {
		return nil, fmt.Errorf("%w: a cancellation reason is required", ErrValidation)
	}

	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order for cancellation: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction for cancellation: %w", err)
	}
	defer tx.Rollback()

	var applied bool
	switch actor.Role {
	case models.RoleAdmin:
		applied, err = s.orderRepo.CancelNonTerminal(tx, orderID, reason)
		if err != nil {
			return nil, fmt.Errorf("failed to force-cancel order: %w", err)
		}
		if !applied {
			return nil, fmt.Errorf("%w: order is already %s", ErrInvalidTransition, order.Status)
		}
	case models.RoleCustomer:
		if order.CustomerID != actor.ID {
			return nil, ErrForbidden
		}
		// Customer cancellation closes once preparation begins.
		if order.Status != models.StatusPending && order.Status != models.StatusConfirmed {
			return nil, fmt.Errorf("%w: cannot cancel an order that is %s", ErrInvalidTransition, order.Status)
		}
		applied, err = s.orderRepo.UpdateOrderStatus(tx, orderID, order.Status, models.StatusCancelled, &reason)
		if err != nil {
			return nil, fmt.Errorf("failed to cancel order: %w", err)
		}
		if !applied {
			return nil, fmt.Errorf("%w: order status changed concurrently", ErrInvalidTransition)
		}
	default:
		return nil, ErrForbidden
	}

	statusChange := models.StatusChange{
		OrderID:   orderID,
		Status:    models.StatusCancelled,
		ChangedBy: actor.ID,
		Notes:     &reason,
	}
	if _, err := s.orderRepo.AppendStatusChange(tx, &statusChange); err != nil {
		return nil, fmt.Errorf("failed to append cancellation history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}
	return s.GetOrderByID(orderID, actor)
}
