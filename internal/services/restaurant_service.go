package services

import (
	"database/sql"
	"errors"
	"fmt"

	"quickplate_backend/internal/models"
	"quickplate_backend/internal/repositories"
	"quickplate_backend/pkg/utils"
)

// --- Data Transfer Objects (DTOs) ---

// CreateRestaurantRequest is the payload for registering a restaurant.
type CreateRestaurantRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Address     string  `json:"address" binding:"required"`
	City        string  `json:"city" binding:"required"`
	ImageURL    *string `json:"image_url"`
}

// UpdateRestaurantRequest is the payload for editing a restaurant.
type UpdateRestaurantRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	ImageURL    *string `json:"image_url"`
	IsOpen      *bool   `json:"is_open"`
}

// MenuItemRequest is the payload for creating or replacing a menu item.
type MenuItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Category    string  `json:"category" binding:"required"`
	ImageURL    *string `json:"image_url"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	IsAvailable *bool   `json:"is_available"`
}

// --- RestaurantService Interface ---

type RestaurantService interface {
	CreateRestaurant(owner *models.User, req CreateRestaurantRequest) (*models.Restaurant, error)
	GetRestaurantByID(restaurantID int64, withMenu bool) (*models.Restaurant, error)
	GetRestaurants(filters models.RestaurantFilters) ([]models.Restaurant, int, error)
	UpdateRestaurant(restaurantID int64, actor *models.User, req UpdateRestaurantRequest) (*models.Restaurant, error)
	DeleteRestaurant(restaurantID int64, actor *models.User) error

	CreateMenuItem(restaurantID int64, actor *models.User, req MenuItemRequest) (*models.MenuItem, error)
	UpdateMenuItem(restaurantID, itemID int64, actor *models.User, req MenuItemRequest) (*models.MenuItem, error)
	DeleteMenuItem(restaurantID, itemID int64, actor *models.User) error
}

type restaurantService struct {
	restaurantRepo repositories.RestaurantRepository
	db             *sql.DB
}

// NewRestaurantService creates a new instance of RestaurantService.
func NewRestaurantService(restaurantRepo repositories.RestaurantRepository, db *sql.DB) RestaurantService {
	return &restaurantService{restaurantRepo: restaurantRepo, db: db}
}

// requireOwnership loads the restaurant and checks the actor may manage it.
func (s *restaurantService) requireOwnership(restaurantID int64, actor *models.User) (*models.Restaurant, error) {
	restaurant, err := s.restaurantRepo.GetRestaurantByID(restaurantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to fetch restaurant: %w", err)
	}
	if actor.Role != models.RoleAdmin && restaurant.OwnerID != actor.ID {
		return nil, ErrForbidden
	}
	return restaurant, nil
}

func (s *restaurantService) CreateRestaurant(owner *models.User, req CreateRestaurantRequest) (*models.Restaurant, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: restaurant name cannot be empty", ErrValidation)
	}

	restaurant := &models.Restaurant{
		OwnerID:     owner.ID,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		ImageURL:    req.ImageURL,
		IsOpen:      true,
	}
	if _, err := s.restaurantRepo.CreateRestaurant(s.db, restaurant); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: restaurant name '%s' already exists", ErrValidation, req.Name)
		}
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}
	return restaurant, nil
}

func (s *restaurantService) GetRestaurantByID(restaurantID int64, withMenu bool) (*models.Restaurant, error) {
	restaurant, err := s.restaurantRepo.GetRestaurantByID(restaurantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	if withMenu {
		items, err := s.restaurantRepo.GetMenuItems(restaurantID)
		if err != nil {
			return nil, fmt.Errorf("failed to get menu items: %w", err)
		}
		restaurant.MenuItems = items
	}
	return restaurant, nil
}

func (s *restaurantService) GetRestaurants(filters models.RestaurantFilters) ([]models.Restaurant, int, error) {
	restaurants, totalCount, err := s.restaurantRepo.GetRestaurants(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get restaurants: %w", err)
	}
	return restaurants, totalCount, nil
}

func (s *restaurantService) UpdateRestaurant(restaurantID int64, actor *models.User, req UpdateRestaurantRequest) (*models.Restaurant, error) {
	restaurant, err := s.requireOwnership(restaurantID, actor)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if utils.IsEmpty(*req.Name) {
			return nil, fmt.Errorf("%w: restaurant name cannot be empty", ErrValidation)
		}
		restaurant.Name = *req.Name
	}
	if req.Description != nil {
		restaurant.Description = req.Description
	}
	if req.Address != nil {
		restaurant.Address = *req.Address
	}
	if req.City != nil {
		restaurant.City = *req.City
	}
	if req.ImageURL != nil {
		restaurant.ImageURL = req.ImageURL
	}
	if req.IsOpen != nil {
		restaurant.IsOpen = *req.IsOpen
	}

	if err := s.restaurantRepo.UpdateRestaurant(s.db, restaurant); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to update restaurant: %w", err)
	}
	return restaurant, nil
}

func (s *restaurantService) DeleteRestaurant(restaurantID int64, actor *models.User) error {
	if _, err := s.requireOwnership(restaurantID, actor); err != nil {
		return err
	}
	if err := s.restaurantRepo.DeleteRestaurant(s.db, restaurantID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRestaurantNotFound
		}
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}
	return nil
}

func (s *restaurantService) CreateMenuItem(restaurantID int64, actor *models.User, req MenuItemRequest) (*models.MenuItem, error) {
	if _, err := s.requireOwnership(restaurantID, actor); err != nil {
		return nil, err
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}
	item := &models.MenuItem{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		ImageURL:     req.ImageURL,
		Price:        req.Price,
		IsAvailable:  isAvailable,
	}
	if _, err := s.restaurantRepo.CreateMenuItem(s.db, item); err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}
	return item, nil
}

func (s *restaurantService) UpdateMenuItem(restaurantID, itemID int64, actor *models.User, req MenuItemRequest) (*models.MenuItem, error) {
	if _, err := s.requireOwnership(restaurantID, actor); err != nil {
		return nil, err
	}

	item, err := s.restaurantRepo.GetMenuItemByID(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("failed to fetch menu item: %w", err)
	}
	if item.RestaurantID != restaurantID {
		return nil, ErrMenuItemNotFound
	}

	item.Name = req.Name
	item.Description = req.Description
	item.Category = req.Category
	item.ImageURL = req.ImageURL
	item.Price = req.Price
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := s.restaurantRepo.UpdateMenuItem(s.db, item); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	return item, nil
}

func (s *restaurantService) DeleteMenuItem(restaurantID, itemID int64, actor *models.User) error {
	if _, err := s.requireOwnership(restaurantID, actor); err != nil {
		return err
	}

	item, err := s.restaurantRepo.GetMenuItemByID(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMenuItemNotFound
		}
		return fmt.Errorf("failed to fetch menu item: %w", err)
	}
	if item.RestaurantID != restaurantID {
		return ErrMenuItemNotFound
	}

	if err := s.restaurantRepo.DeleteMenuItem(s.db, itemID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMenuItemNotFound
		}
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	return nil
}
