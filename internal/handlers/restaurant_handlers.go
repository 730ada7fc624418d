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

// RestaurantHandler holds the restaurant service.
type RestaurantHandler struct {
	restaurantService services.RestaurantService
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(rs services.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: rs}
}

func respondRestaurantError(c *gin.Context, err error, action string) {
	utils.LogError(err, action+": Error from restaurantService")
	switch {
	case errors.Is(err, services.ErrRestaurantNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Restaurant not found.", err.Error()))
	case errors.Is(err, services.ErrMenuItemNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Menu item not found.", err.Error()))
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not own this restaurant.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid restaurant data.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Operation failed.", "Internal error"))
	}
}

// CreateRestaurant registers a new restaurant owned by the caller.
func (h *RestaurantHandler) CreateRestaurant(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user claims"))
		return
	}

	var req services.CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	restaurant, err := h.restaurantService.CreateRestaurant(actor, req)
	if err != nil {
		respondRestaurantError(c, err, "CreateRestaurant")
		return
	}
	c.JSON(http.StatusCreated, restaurant)
}

// GetRestaurants lists restaurants with optional city and search filters.
func (h *RestaurantHandler) GetRestaurants(c *gin.Context) {
	var filters models.RestaurantFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	restaurants, total, err := h.restaurantService.GetRestaurants(filters)
	if err != nil {
		respondRestaurantError(c, err, "GetRestaurants")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": restaurants, "total": total})
}

// GetRestaurantByID returns a single restaurant with its menu.
func (h *RestaurantHandler) GetRestaurantByID(c *gin.Context) {
	restaurantID, err := utils.StrToInt64(c.Param("restaurantID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid restaurant ID format.", err.Error()))
		return
	}

	restaurant, err := h.restaurantService.GetRestaurantByID(restaurantID, true)
	if err != nil {
		respondRestaurantError(c, err, "GetRestaurantByID")
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

// UpdateRestaurant edits a restaurant's profile.
func (h *RestaurantHandler) UpdateRestaurant(c *gin.Context) {
	restaurantID, err := utils.StrToInt64(c.Param("restaurantID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid restaurant ID format.", err.Error()))
		return
	}

	var req services.UpdateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	restaurant, err := h.restaurantService.UpdateRestaurant(restaurantID, middleware.CurrentUser(c), req)
	if err != nil {
		respondRestaurantError(c, err, "UpdateRestaurant")
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

// DeleteRestaurant removes a restaurant and its menu.
func (h *RestaurantHandler) DeleteRestaurant(c *gin.Context) {
	restaurantID, err := utils.StrToInt64(c.Param("restaurantID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid restaurant ID format.", err.Error()))
		return
	}

	if err := h.restaurantService.DeleteRestaurant(restaurantID, middleware.CurrentUser(c)); err != nil {
		respondRestaurantError(c, err, "DeleteRestaurant")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant deleted successfully"})
}

// CreateMenuItem adds an item to a restaurant's menu.
func (h *RestaurantHandler) CreateMenuItem(c *gin.Context) {
	restaurantID, err := utils.StrToInt64(c.Param("restaurantID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid restaurant ID format.", err.Error()))
		return
	}

	var req services.MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	item, err := h.restaurantService.CreateMenuItem(restaurantID, middleware.CurrentUser(c), req)
	if err != nil {
		respondRestaurantError(c, err, "CreateMenuItem")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateMenuItem replaces a menu item's details.
func (h *RestaurantHandler) UpdateMenuItem(c *gin.Context) {
	restaurantID, err := utils.StrToInt64(c.Param("restaurantID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid restaurant ID format.", err.Error()))
		return
	}
	itemID, err := utils.StrToInt64(c.Param("itemID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid menu item ID format.", err.Error()))
		return
	}

	var req services.MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	item, err := h.restaurantService.UpdateMenuItem(restaurantID, itemID, middleware.CurrentUser(c), req)
	if err != nil {
		respondRestaurantError(c, err, "UpdateMenuItem")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteMenuItem removes a menu item.
func (h *RestaurantHandler) DeleteMenuItem(c *gin.Context) {
	restaurantID, err := utils.StrToInt64(c.Param("restaurantID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid restaurant ID format.", err.Error()))
		return
	}
	itemID, err := utils.StrToInt64(c.Param("itemID"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid menu item ID format.", err.Error()))
		return
	}

	if err := h.restaurantService.DeleteMenuItem(restaurantID, itemID, middleware.CurrentUser(c)); err != nil {
		respondRestaurantError(c, err, "DeleteMenuItem")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}
