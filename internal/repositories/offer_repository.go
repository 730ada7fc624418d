package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quickplate_backend/internal/models"

	"github.com/lib/pq"
)

// OfferRepository defines the interface for promotional offer database operations.
type OfferRepository interface {
	CreateOffer(executor SQLExecutor, offer *models.Offer) (int64, error)
	GetOfferByID(id int64) (*models.Offer, error)
	FindActiveByCode(code string) (*models.Offer, error)
	GetOffers(activeOnly bool, page, pageSize int) ([]models.Offer, int, error)
	UpdateOffer(executor SQLExecutor, offer *models.Offer) error

	// DeleteUnusedOffer deletes an offer only while usage_count is still zero,
	// preserving the audit trail of spent codes. Returns false when the offer
	// exists but has been used.
	DeleteUnusedOffer(executor SQLExecutor, id int64) (bool, error)

	// IncrementUsage bumps usage_count by one, guarded against the usage
	// limit in the same statement. Returns false when the limit is exhausted.
	IncrementUsage(executor SQLExecutor, code string) (bool, error)
}

type offerRepository struct {
	db *sql.DB
}

// NewOfferRepository creates a new instance of OfferRepository.
func NewOfferRepository(db *sql.DB) OfferRepository {
	return &offerRepository{db: db}
}

const offerColumns = `id, code, description, discount_type, discount_value, max_discount_amount,
	min_order_amount, valid_from, valid_until, usage_limit, usage_count, is_active,
	created_at, updated_at`

func scanOffer(row *sql.Row, offer *models.Offer) error {
	return row.Scan(
		&offer.ID, &offer.Code, &offer.Description, &offer.DiscountType, &offer.DiscountValue,
		&offer.MaxDiscountAmount, &offer.MinOrderAmount, &offer.ValidFrom, &offer.ValidUntil,
		&offer.UsageLimit, &offer.UsageCount, &offer.IsActive, &offer.CreatedAt, &offer.UpdatedAt,
	)
}

func (r *offerRepository) CreateOffer(executor SQLExecutor, offer *models.Offer) (int64, error) {
	query := `INSERT INTO offers
	            (code, description, discount_type, discount_value, max_discount_amount,
	             min_order_amount, valid_from, valid_until, usage_limit, usage_count,
	             is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, $12)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		offer.Code, offer.Description, offer.DiscountType, offer.DiscountValue,
		offer.MaxDiscountAmount, offer.MinOrderAmount, offer.ValidFrom, offer.ValidUntil,
		offer.UsageLimit, offer.IsActive, currentTime, currentTime,
	).Scan(&offer.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: offer code '%s' already exists (constraint: %s)", ErrDuplicateKey, offer.Code, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating offer: %v", ErrDatabaseError, err)
	}
	return offer.ID, nil
}

func (r *offerRepository) GetOfferByID(id int64) (*models.Offer, error) {
	offer := &models.Offer{}
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	err := scanOffer(r.db.QueryRow(query, id), offer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting offer by ID %d: %v", ErrDatabaseError, id, err)
	}
	return offer, nil
}

// FindActiveByCode looks up an offer by its uppercase-normalized code. Only
// offers with the manual kill switch on are returned; the time window and
// usage limit are judged by the validator, not here.
func (r *offerRepository) FindActiveByCode(code string) (*models.Offer, error) {
	offer := &models.Offer{}
	query := `SELECT ` + offerColumns + ` FROM offers WHERE code = upper($1) AND is_active = TRUE`
	err := scanOffer(r.db.QueryRow(query, code), offer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding active offer by code '%s': %v", ErrDatabaseError, code, err)
	}
	return offer, nil
}

func (r *offerRepository) GetOffers(activeOnly bool, page, pageSize int) ([]models.Offer, int, error) {
	offers := []models.Offer{}
	totalCount := 0

	query := `SELECT ` + offerColumns + `, COUNT(*) OVER() as total_count FROM offers`
	var args []interface{}
	argCounter := 1
	if activeOnly {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY created_at DESC"
	if pageSize > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCounter)
		args = append(args, pageSize)
		argCounter++
		if page > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argCounter)
			args = append(args, (page-1)*pageSize)
		}
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying offers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Offer
		err := rows.Scan(
			&o.ID, &o.Code, &o.Description, &o.DiscountType, &o.DiscountValue,
			&o.MaxDiscountAmount, &o.MinOrderAmount, &o.ValidFrom, &o.ValidUntil,
			&o.UsageLimit, &o.UsageCount, &o.IsActive, &o.CreatedAt, &o.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning offer: %v", ErrDatabaseError, err)
		}
		offers = append(offers, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating offer rows: %v", ErrDatabaseError, err)
	}
	return offers, totalCount, nil
}

func (r *offerRepository) UpdateOffer(executor SQLExecutor, offer *models.Offer) error {
	query := `UPDATE offers
	          SET description = $1, discount_type = $2, discount_value = $3,
	              max_discount_amount = $4, min_order_amount = $5, valid_from = $6,
	              valid_until = $7, usage_limit = $8, is_active = $9, updated_at = $10
	          WHERE id = $11`
	result, err := executor.Exec(query,
		offer.Description, offer.DiscountType, offer.DiscountValue,
		offer.MaxDiscountAmount, offer.MinOrderAmount, offer.ValidFrom,
		offer.ValidUntil, offer.UsageLimit, offer.IsActive, time.Now(), offer.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating offer ID %d: %v", ErrDatabaseError, offer.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for offer ID %d: %v", ErrDatabaseError, offer.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *offerRepository) DeleteUnusedOffer(executor SQLExecutor, id int64) (bool, error) {
	query := `DELETE FROM offers WHERE id = $1 AND usage_count = 0`
	result, err := executor.Exec(query, id)
	if err != nil {
		return false, fmt.Errorf("%w: deleting offer ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for deleting offer ID %d: %v", ErrDatabaseError, id, err)
	}
	return rowsAffected == 1, nil
}

func (r *offerRepository) IncrementUsage(executor SQLExecutor, code string) (bool, error) {
	query := `UPDATE offers
	          SET usage_count = usage_count + 1, updated_at = $1
	          WHERE code = upper($2)
	            AND (usage_limit IS NULL OR usage_count < usage_limit)`
	result, err := executor.Exec(query, time.Now(), code)
	if err != nil {
		return false, fmt.Errorf("%w: incrementing usage for offer code '%s': %v", ErrDatabaseError, code, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for usage increment of offer '%s': %v", ErrDatabaseError, code, err)
	}
	return rowsAffected == 1, nil
}
