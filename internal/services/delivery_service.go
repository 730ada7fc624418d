package services

import (
	"database/sql"
	"errors"
	"fmt"

	"quickplate_backend/internal/models"
	"quickplate_backend/internal/repositories"
	"quickplate_backend/pkg/utils"
)

// DeliveryService is the assignment gate between out-for-delivery orders and
// delivery personnel. At most one delivery person is ever bound to an order.
type DeliveryService interface {
	// GetEligibleOrders lists orders that are out for delivery and unclaimed.
	GetEligibleOrders(page, pageSize int) ([]models.Order, int, error)

	// Accept claims an order for a delivery person. Exactly one concurrent
	// caller can win; the rest get ErrAlreadyAccepted. Orders not out for
	// delivery yield ErrNotEligible.
	Accept(orderID string, deliveryPersonID int64) (*models.Order, error)

	// MarkDelivered completes an order. Only the accepting delivery person
	// may complete it, and only while it is out for delivery.
	MarkDelivered(orderID string, deliveryPersonID int64) (*models.Order, error)
}

type deliveryService struct {
	orderRepo repositories.OrderRepository
	db        *sql.DB
}

// NewDeliveryService creates a new instance of DeliveryService.
func NewDeliveryService(orderRepo repositories.OrderRepository, db *sql.DB) DeliveryService {
	return &deliveryService{orderRepo: orderRepo, db: db}
}

func (s *deliveryService) GetEligibleOrders(page, pageSize int) ([]models.Order, int, error) {
	status := models.StatusOutForDelivery
	orders, totalCount, err := s.orderRepo.GetOrders(models.OrderFilters{
		Status:     &status,
		Unassigned: true,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list eligible orders: %w", err)
	}
	return orders, totalCount, nil
}

func (s *deliveryService) Accept(orderID string, deliveryPersonID int64) (*models.Order, error) {
	// The guard and the write are a single conditional update; two racing
	// acceptances can never both see accepted_by unset.
	accepted, err := s.orderRepo.AcceptDelivery(s.db, orderID, deliveryPersonID)
	if err != nil {
		return nil, fmt.Errorf("failed to accept delivery: %w", err)
	}
	if !accepted {
		order, err := s.orderRepo.GetOrderByID(orderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, fmt.Errorf("failed to inspect order after rejected acceptance: %w", err)
		}
		if order.AcceptedBy != nil {
			// Includes retries by the winner; the failure is idempotent.
			return nil, ErrAlreadyAccepted
		}
		return nil, ErrNotEligible
	}

	return s.orderRepo.GetOrderByID(orderID)
}

func (s *deliveryService) MarkDelivered(orderID string, deliveryPersonID int64) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction for delivery completion: %w", err)
	}
	defer tx.Rollback()

	delivered, err := s.orderRepo.MarkDelivered(tx, orderID, deliveryPersonID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark order delivered: %w", err)
	}
	if !delivered {
		order, err := s.orderRepo.GetOrderByID(orderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, fmt.Errorf("failed to inspect order after rejected completion: %w", err)
		}
		if order.AcceptedBy == nil || *order.AcceptedBy != deliveryPersonID {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("%w: cannot deliver an order that is %s", ErrInvalidTransition, order.Status)
	}

	statusChange := models.StatusChange{
		OrderID:   orderID,
		Status:    models.StatusDelivered,
		ChangedBy: deliveryPersonID,
		Notes:     utils.NewNullString("delivered to recipient"),
	}
	if _, err := s.orderRepo.AppendStatusChange(tx, &statusChange); err != nil {
		return nil, fmt.Errorf("failed to append delivery history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delivery completion: %w", err)
	}
	return s.orderRepo.GetOrderByID(orderID)
}
