package handlers

import (
	"errors"
	"net/http"
	"time"

	"quickplate_backend/internal/services"
	"quickplate_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OfferHandler holds the offer service.
type OfferHandler struct {
	offerService services.OfferService
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(os services.OfferService) *OfferHandler {
	return &OfferHandler{offerService: os}
}

// CreateOffer creates a new promotional offer.
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var req services.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	offer, err := h.offerService.CreateOffer(req)
	if err != nil {
		utils.LogError(err, "CreateOffer: Error from offerService.CreateOffer")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid offer data.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create offer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, offer)
}

// GetOffers lists offers. Pass ?active=true to restrict to active ones.
func (h *OfferHandler) GetOffers(c *gin.Context) {
	var query struct {
		Active   bool `form:"active"`
		Page     int  `form:"page"`
		PageSize int  `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	offers, total, err := h.offerService.GetOffers(query.Active, query.Page, query.PageSize)
	if err != nil {
		utils.LogError(err, "GetOffers: Error from offerService.GetOffers")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve offers.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": offers, "total": total})
}

// GetOfferByID returns a single offer.
func (h *OfferHandler) GetOfferByID(c *gin.Context) {
	offerID, err := utils.StrToInt64(c.Param("offerID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid offer ID format.", err.Error()))
		return
	}

	offer, err := h.offerService.GetOfferByID(offerID)
	if err != nil {
		utils.LogError(err, "GetOfferByID: Error from offerService.GetOfferByID")
		if errors.Is(err, services.ErrOfferNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Offer not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve offer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, offer)
}

// UpdateOffer edits an existing offer.
func (h *OfferHandler) UpdateOffer(c *gin.Context) {
	offerID, err := utils.StrToInt64(c.Param("offerID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid offer ID format.", err.Error()))
		return
	}

	var req services.UpdateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	offer, err := h.offerService.UpdateOffer(offerID, req)
	if err != nil {
		utils.LogError(err, "UpdateOffer: Error from offerService.UpdateOffer")
		if errors.Is(err, services.ErrOfferNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Offer not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid offer data.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update offer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, offer)
}

// DeleteOffer removes an offer that has never been redeemed.
func (h *OfferHandler) DeleteOffer(c *gin.Context) {
	offerID, err := utils.StrToInt64(c.Param("offerID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid offer ID format.", err.Error()))
		return
	}

	if err := h.offerService.DeleteOffer(offerID); err != nil {
		utils.LogError(err, "DeleteOffer: Error from offerService.DeleteOffer")
		if errors.Is(err, services.ErrOfferNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Offer not found.", err.Error()))
		} else if errors.Is(err, services.ErrOfferInUse) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Offer has been redeemed and cannot be deleted.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete offer.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Offer deleted successfully"})
}

// ValidateOffer checks a code against a cart subtotal without redeeming it.
// Always responds 200: an invalid code is a result, not an error.
func (h *OfferHandler) ValidateOffer(c *gin.Context) {
	var query struct {
		Code     string  `form:"code" binding:"required"`
		Subtotal float64 `form:"subtotal" binding:"required,gt=0"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	result, err := h.offerService.Validate(query.Code, query.Subtotal, time.Now())
	if err != nil {
		utils.LogError(err, "ValidateOffer: Error from offerService.Validate")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to validate offer.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, result)
}
