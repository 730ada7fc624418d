package services

import (
	"database/sql"
	"errors"
	"fmt"

	"quickplate_backend/internal/models"
	"quickplate_backend/internal/repositories"
)

// CreateReviewRequest is the payload for rating a restaurant.
type CreateReviewRequest struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment"`
}

// RestaurantRating summarises a restaurant's reviews.
type RestaurantRating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// ReviewService handles restaurant reviews.
type ReviewService interface {
	CreateReview(restaurantID int64, customer *models.User, req CreateReviewRequest) (*models.Review, error)
	GetReviews(restaurantID int64) ([]models.Review, *RestaurantRating, error)
}

type reviewService struct {
	reviewRepo     repositories.ReviewRepository
	restaurantRepo repositories.RestaurantRepository
	db             *sql.DB
}

// NewReviewService creates a new instance of ReviewService.
func NewReviewService(reviewRepo repositories.ReviewRepository, restaurantRepo repositories.RestaurantRepository, db *sql.DB) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, restaurantRepo: restaurantRepo, db: db}
}

func (s *reviewService) CreateReview(restaurantID int64, customer *models.User, req CreateReviewRequest) (*models.Review, error) {
	if _, err := s.restaurantRepo.GetRestaurantByID(restaurantID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to fetch restaurant for review: %w", err)
	}

	review := &models.Review{
		UserID:       customer.ID,
		RestaurantID: restaurantID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}
	if _, err := s.reviewRepo.CreateReview(s.db, review); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: you have already reviewed this restaurant", ErrValidation)
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	review.UserName = customer.Name
	return review, nil
}

func (s *reviewService) GetReviews(restaurantID int64) ([]models.Review, *RestaurantRating, error) {
	reviews, err := s.reviewRepo.GetReviewsByRestaurantID(restaurantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	average, count, err := s.reviewRepo.GetAverageRating(restaurantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute rating: %w", err)
	}
	return reviews, &RestaurantRating{Average: average, Count: count}, nil
}
