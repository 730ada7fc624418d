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

// OrderRepository defines the interface for order-related database operations.
//
// Status moves, delivery acceptance and payment confirmation are all expressed
// as single-statement conditional updates guarded on the expected prior state.
// The boolean results report whether the guard matched, so callers can tell a
// lost race from a missing record without a read-then-write window.
type OrderRepository interface {
	CreateOrder(executor SQLExecutor, order *models.Order) error
	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error)
	AppendStatusChange(executor SQLExecutor, change *models.StatusChange) (int64, error)

	GetOrderByID(orderID string) (*models.Order, error)
	GetOrderItemsByOrderID(orderID string) ([]models.OrderItem, error)
	GetStatusHistoryByOrderID(orderID string) ([]models.StatusChange, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)

	// UpdateOrderStatus moves an order from expectedStatus to newStatus,
	// optionally recording a cancellation reason. Returns false when the
	// order exists but was not in expectedStatus anymore.
	UpdateOrderStatus(executor SQLExecutor, orderID, expectedStatus, newStatus string, cancellationReason *string) (bool, error)

	// CancelNonTerminal force-cancels an order from any non-terminal status
	// (admin path). Returns false when the order is already terminal.
	CancelNonTerminal(executor SQLExecutor, orderID string, reason string) (bool, error)

	// AcceptDelivery binds a delivery person to an eligible order. The guard
	// (status out_for_delivery, accepted_by unset) and the write are one
	// statement, so two concurrent acceptances can never both succeed.
	AcceptDelivery(executor SQLExecutor, orderID string, deliveryPersonID int64) (bool, error)

	// MarkDelivered completes an order, permitted only for the accepting
	// delivery person while the order is out for delivery.
	MarkDelivered(executor SQLExecutor, orderID string, deliveryPersonID int64) (bool, error)

	// ConfirmPayment promotes a pending order to confirmed, overwriting the
	// total with the gateway's captured amount when given. Returns false when
	// the order was not pending (replayed notification).
	ConfirmPayment(executor SQLExecutor, orderID string, capturedTotal *float64) (bool, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// --- Write Methods ---

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) error {
	query := `INSERT INTO orders
	            (id, customer_id, restaurant_id, recipient_name, recipient_email,
	             recipient_address, recipient_city, subtotal, delivery_charge, cod_charge,
	             discount_amount, total_amount, payment_method, status, offer_code,
	             created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}

	_, err := executor.Exec(query,
		order.ID, order.CustomerID, order.RestaurantID,
		order.DeliveryDetails.Name, order.DeliveryDetails.Email,
		order.DeliveryDetails.Address, order.DeliveryDetails.City,
		order.Subtotal, order.DeliveryCharge, order.CODCharge,
		order.DiscountAmount, order.TotalAmount, order.PaymentMethod, order.Status,
		order.OfferCode, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: order ID %s already exists", ErrDuplicateKey, order.ID)
		}
		return fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error) {
	query := `INSERT INTO order_items (order_id, menu_item_id, name, image_url, unit_price, quantity)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	err := executor.QueryRow(query,
		item.OrderID, item.MenuItemID, item.Name, item.ImageURL, item.UnitPrice, item.Quantity,
	).Scan(&item.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating order item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *orderRepository) AppendStatusChange(executor SQLExecutor, change *models.StatusChange) (int64, error) {
	query := `INSERT INTO order_status_history (order_id, status, changed_by, notes, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now()
	}
	err := executor.QueryRow(query,
		change.OrderID, change.Status, change.ChangedBy, change.Notes, change.CreatedAt,
	).Scan(&change.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: appending status history for order %s: %v", ErrDatabaseError, change.OrderID, err)
	}
	return change.ID, nil
}

// --- Read Methods ---

func (r *orderRepository) GetOrderByID(orderID string) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT id, customer_id, restaurant_id, accepted_by, recipient_name, recipient_email,
	                 recipient_address, recipient_city, subtotal, delivery_charge, cod_charge,
	                 discount_amount, total_amount, payment_method, status, offer_code,
	                 cancellation_reason, created_at, updated_at
	          FROM orders
	          WHERE id = $1`
	err := r.db.QueryRow(query, orderID).Scan(
		&order.ID, &order.CustomerID, &order.RestaurantID, &order.AcceptedBy,
		&order.DeliveryDetails.Name, &order.DeliveryDetails.Email,
		&order.DeliveryDetails.Address, &order.DeliveryDetails.City,
		&order.Subtotal, &order.DeliveryCharge, &order.CODCharge,
		&order.DiscountAmount, &order.TotalAmount, &order.PaymentMethod, &order.Status,
		&order.OfferCode, &order.CancellationReason, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %s: %v", ErrDatabaseError, orderID, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrderItemsByOrderID(orderID string) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := `SELECT id, order_id, menu_item_id, name, image_url, unit_price, quantity
	          FROM order_items
	          WHERE order_id = $1
	          ORDER BY id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items for order %s: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Name, &item.ImageURL, &item.UnitPrice, &item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning order item for order %s: %v", ErrDatabaseError, orderID, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows for order %s: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}

func (r *orderRepository) GetStatusHistoryByOrderID(orderID string) ([]models.StatusChange, error) {
	history := []models.StatusChange{}
	query := `SELECT id, order_id, status, changed_by, notes, created_at
	          FROM order_status_history
	          WHERE order_id = $1
	          ORDER BY created_at, id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying status history for order %s: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var change models.StatusChange
		err := rows.Scan(&change.ID, &change.OrderID, &change.Status, &change.ChangedBy, &change.Notes, &change.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning status history for order %s: %v", ErrDatabaseError, orderID, err)
		}
		history = append(history, change)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating status history rows for order %s: %v", ErrDatabaseError, orderID, err)
	}
	return history, nil
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT id, customer_id, restaurant_id, accepted_by, recipient_name, recipient_email,
               recipient_address, recipient_city, subtotal, delivery_charge, cod_charge,
               discount_amount, total_amount, payment_method, status, offer_code,
               cancellation_reason, created_at, updated_at,
               COUNT(*) OVER() as total_count
        FROM orders
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argCounter))
		args = append(args, *filters.CustomerID)
		argCounter++
	}
	if filters.RestaurantID != nil {
		conditions = append(conditions, fmt.Sprintf("restaurant_id = $%d", argCounter))
		args = append(args, *filters.RestaurantID)
		argCounter++
	}
	if filters.AcceptedBy != nil {
		conditions = append(conditions, fmt.Sprintf("accepted_by = $%d", argCounter))
		args = append(args, *filters.AcceptedBy)
		argCounter++
	}
	if filters.Unassigned {
		conditions = append(conditions, "accepted_by IS NULL")
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

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
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID, &o.CustomerID, &o.RestaurantID, &o.AcceptedBy,
			&o.DeliveryDetails.Name, &o.DeliveryDetails.Email,
			&o.DeliveryDetails.Address, &o.DeliveryDetails.City,
			&o.Subtotal, &o.DeliveryCharge, &o.CODCharge,
			&o.DiscountAmount, &o.TotalAmount, &o.PaymentMethod, &o.Status,
			&o.OfferCode, &o.CancellationReason, &o.CreatedAt, &o.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

// --- Conditional Updates ---

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, orderID, expectedStatus, newStatus string, cancellationReason *string) (bool, error) {
	query := `UPDATE orders
	          SET status = $1, cancellation_reason = COALESCE($2, cancellation_reason), updated_at = $3
	          WHERE id = $4 AND status = $5`
	result, err := executor.Exec(query, newStatus, cancellationReason, time.Now(), orderID, expectedStatus)
	if err != nil {
		return false, fmt.Errorf("%w: updating status for order %s: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for order %s status update: %v", ErrDatabaseError, orderID, err)
	}
	return rowsAffected == 1, nil
}

func (r *orderRepository) CancelNonTerminal(executor SQLExecutor, orderID string, reason string) (bool, error) {
	query := `UPDATE orders
	          SET status = $1, cancellation_reason = $2, updated_at = $3
	          WHERE id = $4 AND status NOT IN ($5, $6)`
	result, err := executor.Exec(query,
		models.StatusCancelled, reason, time.Now(), orderID,
		models.StatusDelivered, models.StatusCancelled,
	)
	if err != nil {
		return false, fmt.Errorf("%w: force-cancelling order %s: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for force-cancel of order %s: %v", ErrDatabaseError, orderID, err)
	}
	return rowsAffected == 1, nil
}

func (r *orderRepository) AcceptDelivery(executor SQLExecutor, orderID string, deliveryPersonID int64) (bool, error) {
	query := `UPDATE orders
	          SET accepted_by = $1, updated_at = $2
	          WHERE id = $3 AND status = $4 AND accepted_by IS NULL`
	result, err := executor.Exec(query, deliveryPersonID, time.Now(), orderID, models.StatusOutForDelivery)
	if err != nil {
		return false, fmt.Errorf("%w: accepting delivery for order %s: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for delivery acceptance of order %s: %v", ErrDatabaseError, orderID, err)
	}
	return rowsAffected == 1, nil
}

func (r *orderRepository) MarkDelivered(executor SQLExecutor, orderID string, deliveryPersonID int64) (bool, error) {
	query := `UPDATE orders
	          SET status = $1, updated_at = $2
	          WHERE id = $3 AND status = $4 AND accepted_by = $5`
	result, err := executor.Exec(query, models.StatusDelivered, time.Now(), orderID, models.StatusOutForDelivery, deliveryPersonID)
	if err != nil {
		return false, fmt.Errorf("%w: marking order %s delivered: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for delivery completion of order %s: %v", ErrDatabaseError, orderID, err)
	}
	return rowsAffected == 1, nil
}

func (r *orderRepository) ConfirmPayment(executor SQLExecutor, orderID string, capturedTotal *float64) (bool, error) {
	query := `UPDATE orders
	          SET status = $1, total_amount = COALESCE($2, total_amount), updated_at = $3
	          WHERE id = $4 AND status = $5`
	result, err := executor.Exec(query, models.StatusConfirmed, capturedTotal, time.Now(), orderID, models.StatusPending)
	if err != nil {
		return false, fmt.Errorf("%w: confirming payment for order %s: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: getting rows affected for payment confirmation of order %s: %v", ErrDatabaseError, orderID, err)
	}
	return rowsAffected == 1, nil
}
