package handlers

import (
	"errors"
	"net/http"

	"quickplate_backend/internal/middleware"
	"quickplate_backend/internal/models"
	"quickplate_backend/internal/services"
	"quickplate_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

func respondOrderError(c *gin.Context, err error, action string) {
	utils.LogError(err, action+": Error from orderService")
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
	case errors.Is(err, services.ErrRestaurantNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Restaurant not found.", err.Error()))
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You are not allowed to act on this order.", err.Error()))
	case errors.Is(err, services.ErrInvalidTransition):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Order status does not allow this change.", err.Error()))
	case errors.Is(err, services.ErrOfferUsageLimit):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Offer usage limit reached.", err.Error()))
	case errors.Is(err, services.ErrPaymentGateway):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadGateway, utils.ErrCodeBadGateway, "Payment gateway is unavailable. Please try again.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid order data.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Operation failed.", "Internal error"))
	}
}

// Checkout places a new order for the authenticated customer.
func (h *OrderHandler) Checkout(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user claims"))
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	resp, err := h.orderService.Checkout(actor, req)
	if err != nil {
		respondOrderError(c, err, "Checkout")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetOrders lists orders visible to the caller, scoped by role.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user claims"))
		return
	}

	var filters models.OrderFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	orders, total, err := h.orderService.GetOrdersForActor(actor, filters)
	if err != nil {
		respondOrderError(c, err, "GetOrders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders, "total": total})
}

// GetOrderByID returns a single order with items and status history.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user claims"))
		return
	}

	order, err := h.orderService.GetOrderByID(c.Param("orderID"), actor)
	if err != nil {
		respondOrderError(c, err, "GetOrderByID")
		return
	}
	c.JSON(http.StatusOK, order)
}

// AdvanceStatus moves an order one stage forward along the preparation path.
func (h *OrderHandler) AdvanceStatus(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user claims"))
		return
	}

	var req services.AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	order, err := h.orderService.AdvanceStatus(c.Param("orderID"), actor, req.Status)
	if err != nil {
		respondOrderError(c, err, "AdvanceStatus")
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder cancels an order with a mandatory reason.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user claims"))
		return
	}

	var req services.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	order, err := h.orderService.CancelOrder(c.Param("orderID"), actor, req.Reason)
	if err != nil {
		respondOrderError(c, err, "CancelOrder")
		return
	}
	c.JSON(http.StatusOK, order)
}
