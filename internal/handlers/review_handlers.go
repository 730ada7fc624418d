package handlers

import (
	"errors"
	"net/http"

	"quickplate_backend/internal/middleware"
	"quickplate_backend/internal/services"
	"quickplate_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReviewHandler holds the review service.
type ReviewHandler struct {
	reviewService services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(rs services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: rs}
}

// CreateReview records a customer's rating of a restaurant.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user claims"))
		return
	}

	restaurantID, err := utils.StrToInt64(c.Param("restaurantID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid restaurant ID format.", err.Error()))
		return
	}

	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	review, err := h.reviewService.CreateReview(restaurantID, actor, req)
	if err != nil {
		utils.LogError(err, "CreateReview: Error from reviewService.CreateReview")
		if errors.Is(err, services.ErrRestaurantNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Restaurant not found.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid review.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to submit review.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, review)
}

// GetReviews lists a restaurant's reviews with the aggregate rating.
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	restaurantID, err := utils.StrToInt64(c.Param("restaurantID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid restaurant ID format.", err.Error()))
		return
	}

	reviews, rating, err := h.reviewService.GetReviews(restaurantID)
	if err != nil {
		utils.LogError(err, "GetReviews: Error from reviewService.GetReviews")
		if errors.Is(err, services.ErrRestaurantNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Restaurant not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to retrieve reviews.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reviews, "rating": rating})
}
