package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quickplate_backend/internal/models"

	"github.com/lib/pq"
)

// ReviewRepository defines the interface for restaurant review database operations.
type ReviewRepository interface {
	CreateReview(executor SQLExecutor, review *models.Review) (int64, error)
	GetReviewsByRestaurantID(restaurantID int64) ([]models.Review, error)
	GetAverageRating(restaurantID int64) (float64, int, error)
}

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new instance of ReviewRepository.
func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) CreateReview(executor SQLExecutor, review *models.Review) (int64, error) {
	query := `INSERT INTO reviews (user_id, restaurant_id, rating, comment, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	err := executor.QueryRow(query,
		review.UserID, review.RestaurantID, review.Rating, review.Comment, review.CreatedAt,
	).Scan(&review.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: user %d already reviewed restaurant %d", ErrDuplicateKey, review.UserID, review.RestaurantID)
		}
		return 0, fmt.Errorf("%w: creating review: %v", ErrDatabaseError, err)
	}
	return review.ID, nil
}

func (r *reviewRepository) GetReviewsByRestaurantID(restaurantID int64) ([]models.Review, error) {
	reviews := []models.Review{}
	query := `SELECT rv.id, rv.user_id, rv.restaurant_id, rv.rating, rv.comment, rv.created_at,
	                 COALESCE(u.name, '') as user_name
	          FROM reviews rv
	          LEFT JOIN users u ON rv.user_id = u.id
	          WHERE rv.restaurant_id = $1
	          ORDER BY rv.created_at DESC`

	rows, err := r.db.Query(query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying reviews for restaurant ID %d: %v", ErrDatabaseError, restaurantID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var rv models.Review
		err := rows.Scan(&rv.ID, &rv.UserID, &rv.RestaurantID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UserName)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning review for restaurant ID %d: %v", ErrDatabaseError, restaurantID, err)
		}
		reviews = append(reviews, rv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating review rows for restaurant ID %d: %v", ErrDatabaseError, restaurantID, err)
	}
	return reviews, nil
}

func (r *reviewRepository) GetAverageRating(restaurantID int64) (float64, int, error) {
	var avg sql.NullFloat64
	var count int
	query := `SELECT AVG(rating), COUNT(*) FROM reviews WHERE restaurant_id = $1`
	err := r.db.QueryRow(query, restaurantID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: computing average rating for restaurant ID %d: %v", ErrDatabaseError, restaurantID, err)
	}
	if !avg.Valid {
		return 0, 0, nil
	}
	return avg.Float64, count, nil
}
