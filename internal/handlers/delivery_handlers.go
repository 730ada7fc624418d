package handlers

import (
	"errors"
	"net/http"

	"quickplate_backend/internal/middleware"
	"quickplate_backend/internal/services"
	"quickplate_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DeliveryHandler holds the delivery service.
type DeliveryHandler struct {
	deliveryService services.DeliveryService
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(ds services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: ds}
}

// GetEligibleOrders lists unclaimed orders that are out for delivery.
func (h *DeliveryHandler) GetEligibleOrders(c *gin.Context) {
	var query struct {
		Page     int `form:"page"`
		PageSize int `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	orders, total, err := h.deliveryService.GetEligibleOrders(query.Page, query.PageSize)
	if err != nil {
		utils.LogError(err, "GetEligibleOrders: Error from deliveryService.GetEligibleOrders")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve orders.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders, "total": total})
}

// AcceptOrder claims an order for the authenticated delivery person.
func (h *DeliveryHandler) AcceptOrder(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user claims"))
		return
	}

	order, err := h.deliveryService.Accept(c.Param("orderID"), actor.ID)
	if err != nil {
		utils.LogError(err, "AcceptOrder: Error from deliveryService.Accept")
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
		case errors.Is(err, services.ErrAlreadyAccepted):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Order was already accepted by another delivery person.", err.Error()))
		case errors.Is(err, services.ErrNotEligible):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Order is not out for delivery.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to accept order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, order)
}

// MarkDelivered completes an order claimed by the authenticated delivery person.
func (h *DeliveryHandler) MarkDelivered(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user claims"))
		return
	}

	order, err := h.deliveryService.MarkDelivered(c.Param("orderID"), actor.ID)
	if err != nil {
		utils.LogError(err, "MarkDelivered: Error from deliveryService.MarkDelivered")
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
		case errors.Is(err, services.ErrForbidden):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Only the accepting delivery person can complete this order.", err.Error()))
		case errors.Is(err, services.ErrInvalidTransition):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Order is not out for delivery.", err.Error()))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to complete order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, order)
}
