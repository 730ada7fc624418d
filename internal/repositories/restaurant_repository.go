package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"quickplate_backend/internal/models"

	"github.com/lib/pq"
)

// RestaurantRepository defines the interface for restaurant and menu item
// database operations.
type RestaurantRepository interface {
	// Restaurant methods
	CreateRestaurant(executor SQLExecutor, restaurant *models.Restaurant) (int64, error)
	GetRestaurantByID(id int64) (*models.Restaurant, error)
	GetRestaurants(filters models.RestaurantFilters) ([]models.Restaurant, int, error)
	UpdateRestaurant(executor SQLExecutor, restaurant *models.Restaurant) error
	DeleteRestaurant(executor SQLExecutor, id int64) error

	// MenuItem methods
	CreateMenuItem(executor SQLExecutor, item *models.MenuItem) (int64, error)
	GetMenuItemByID(id int64) (*models.MenuItem, error)
	GetMenuItems(restaurantID int64) ([]models.MenuItem, error)
	UpdateMenuItem(executor SQLExecutor, item *models.MenuItem) error
	DeleteMenuItem(executor SQLExecutor, id int64) error
}

type restaurantRepository struct {
	db *sql.DB
}

// NewRestaurantRepository creates a new instance of RestaurantRepository.
func NewRestaurantRepository(db *sql.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

// --- Restaurant Methods ---

func (r *restaurantRepository) CreateRestaurant(executor SQLExecutor, restaurant *models.Restaurant) (int64, error) {
	query := `INSERT INTO restaurants (owner_id, name, description, address, city, image_url, is_open, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		restaurant.OwnerID, restaurant.Name, restaurant.Description, restaurant.Address,
		restaurant.City, restaurant.ImageURL, restaurant.IsOpen, currentTime, currentTime,
	).Scan(&restaurant.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: restaurant name '%s' already exists (constraint: %s)", ErrDuplicateKey, restaurant.Name, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating restaurant: %v", ErrDatabaseError, err)
	}
	return restaurant.ID, nil
}

func (r *restaurantRepository) GetRestaurantByID(id int64) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{}
	query := `SELECT id, owner_id, name, description, address, city, image_url, is_open, created_at, updated_at
	          FROM restaurants
	          WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&restaurant.ID, &restaurant.OwnerID, &restaurant.Name, &restaurant.Description,
		&restaurant.Address, &restaurant.City, &restaurant.ImageURL, &restaurant.IsOpen,
		&restaurant.CreatedAt, &restaurant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting restaurant by ID %d: %v", ErrDatabaseError, id, err)
	}
	return restaurant, nil
}

func (r *restaurantRepository) GetRestaurants(filters models.RestaurantFilters) ([]models.Restaurant, int, error) {
	restaurants := []models.Restaurant{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT id, owner_id, name, description, address, city, image_url, is_open, created_at, updated_at,
               COUNT(*) OVER() as total_count
        FROM restaurants
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.City != nil && *filters.City != "" {
		conditions = append(conditions, fmt.Sprintf("lower(city) = lower($%d)", argCounter))
		args = append(args, *filters.City)
		argCounter++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argCounter))
		args = append(args, "%"+*filters.Search+"%")
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY name ASC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying restaurants: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var rest models.Restaurant
		err := rows.Scan(
			&rest.ID, &rest.OwnerID, &rest.Name, &rest.Description, &rest.Address,
			&rest.City, &rest.ImageURL, &rest.IsOpen, &rest.CreatedAt, &rest.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning restaurant: %v", ErrDatabaseError, err)
		}
		restaurants = append(restaurants, rest)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating restaurant rows: %v", ErrDatabaseError, err)
	}
	return restaurants, totalCount, nil
}

func (r *restaurantRepository) UpdateRestaurant(executor SQLExecutor, restaurant *models.Restaurant) error {
	query := `UPDATE restaurants
	          SET name = $1, description = $2, address = $3, city = $4, image_url = $5, is_open = $6, updated_at = $7
	          WHERE id = $8`
	result, err := executor.Exec(query,
		restaurant.Name, restaurant.Description, restaurant.Address, restaurant.City,
		restaurant.ImageURL, restaurant.IsOpen, time.Now(), restaurant.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating restaurant ID %d: %v", ErrDatabaseError, restaurant.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for restaurant ID %d: %v", ErrDatabaseError, restaurant.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *restaurantRepository) DeleteRestaurant(executor SQLExecutor, id int64) error {
	query := `DELETE FROM restaurants WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting restaurant ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting restaurant ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- MenuItem Methods ---

func (r *restaurantRepository) CreateMenuItem(executor SQLExecutor, item *models.MenuItem) (int64, error) {
	query := `INSERT INTO menu_items (restaurant_id, name, description, category, image_url, price, is_available, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		item.RestaurantID, item.Name, item.Description, item.Category,
		item.ImageURL, item.Price, item.IsAvailable, currentTime, currentTime,
	).Scan(&item.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating menu item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating menu item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *restaurantRepository) GetMenuItemByID(id int64) (*models.MenuItem, error) {
	item := &models.MenuItem{}
	query := `SELECT id, restaurant_id, name, description, category, image_url, price, is_available, created_at, updated_at
	          FROM menu_items
	          WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Category,
		&item.ImageURL, &item.Price, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting menu item by ID %d: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

func (r *restaurantRepository) GetMenuItems(restaurantID int64) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	query := `SELECT id, restaurant_id, name, description, category, image_url, price, is_available, created_at, updated_at
	          FROM menu_items
	          WHERE restaurant_id = $1
	          ORDER BY category, name`

	rows, err := r.db.Query(query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying menu items for restaurant ID %d: %v", ErrDatabaseError, restaurantID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.MenuItem
		err := rows.Scan(
			&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Category,
			&item.ImageURL, &item.Price, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning menu item for restaurant ID %d: %v", ErrDatabaseError, restaurantID, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating menu item rows for restaurant ID %d: %v", ErrDatabaseError, restaurantID, err)
	}
	return items, nil
}

func (r *restaurantRepository) UpdateMenuItem(executor SQLExecutor, item *models.MenuItem) error {
	query := `UPDATE menu_items
	          SET name = $1, description = $2, category = $3, image_url = $4, price = $5, is_available = $6, updated_at = $7
	          WHERE id = $8`
	result, err := executor.Exec(query,
		item.Name, item.Description, item.Category, item.ImageURL,
		item.Price, item.IsAvailable, time.Now(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating menu item ID %d: %v", ErrDatabaseError, item.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for menu item ID %d: %v", ErrDatabaseError, item.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *restaurantRepository) DeleteMenuItem(executor SQLExecutor, id int64) error {
	query := `DELETE FROM menu_items WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting menu item ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting menu item ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
