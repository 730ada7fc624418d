package handlers

import (
	"errors"
	"net/http"

	"quickplate_backend/internal/services"
	"quickplate_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PaymentHandler holds the payment service.
type PaymentHandler struct {
	paymentService services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(ps services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

// GatewayWebhook receives asynchronous payment notifications. The gateway
// retries on non-2xx responses, so only infrastructure failures return 500;
// malformed or unknown events are acknowledged and logged to stop the retry
// loop.
func (h *PaymentHandler) GatewayWebhook(c *gin.Context) {
	var event services.GatewayEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		utils.LogWarn("GatewayWebhook: discarding malformed event payload: " + err.Error())
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.paymentService.HandleCheckoutCompleted(event); err != nil {
		// Unknown event types and orders are acknowledged: retrying them
		// can never succeed. Anything else is worth a retry from the gateway.
		if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrOrderNotFound) {
			utils.LogWarn("GatewayWebhook: discarding unprocessable event: " + err.Error())
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		utils.LogError(err, "GatewayWebhook: Error from paymentService.HandleCheckoutCompleted")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to process payment event.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
