package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"quickplate_backend/internal/models"
	"quickplate_backend/internal/repositories"
)

// Reasons an offer code can fail validation. Invalidity is a normal return
// value, never an error: checkout proceeds at full price on a bad code.
const (
	OfferInvalidNotFound          = "not_found"
	OfferInvalidExpired           = "expired"
	OfferInvalidUsageLimitReached = "usage_limit_reached"
	OfferInvalidBelowMinimum      = "below_minimum"
)

// OfferValidationResult is the outcome of validating a code against a subtotal.
type OfferValidationResult struct {
	Valid          bool    `json:"valid"`
	DiscountAmount float64 `json:"discount_amount"`
	Reason         string  `json:"reason,omitempty"`
}

// --- DTOs ---

// CreateOfferRequest is the admin payload for creating an offer.
type CreateOfferRequest struct {
	Code              string    `json:"code" binding:"required"`
	Description       *string   `json:"description"`
	DiscountType      string    `json:"discount_type" binding:"required"`
	DiscountValue     float64   `json:"discount_value" binding:"required"`
	MaxDiscountAmount *float64  `json:"max_discount_amount"`
	MinOrderAmount    *float64  `json:"min_order_amount"`
	ValidFrom         time.Time `json:"valid_from" binding:"required"`
	ValidUntil        time.Time `json:"valid_until" binding:"required"`
	UsageLimit        *int      `json:"usage_limit"`
	IsActive          *bool     `json:"is_active"`
}

// UpdateOfferRequest is the admin payload for editing an offer. The code
// itself is immutable once created.
type UpdateOfferRequest struct {
	Description       *string    `json:"description"`
	DiscountType      *string    `json:"discount_type"`
	DiscountValue     *float64   `json:"discount_value"`
	MaxDiscountAmount *float64   `json:"max_discount_amount"`
	MinOrderAmount    *float64   `json:"min_order_amount"`
	ValidFrom         *time.Time `json:"valid_from"`
	ValidUntil        *time.Time `json:"valid_until"`
	UsageLimit        *int       `json:"usage_limit"`
	IsActive          *bool      `json:"is_active"`
}

// --- OfferService Interface ---

type OfferService interface {
	CreateOffer(req CreateOfferRequest) (*models.Offer, error)
	UpdateOffer(offerID int64, req UpdateOfferRequest) (*models.Offer, error)
	DeleteOffer(offerID int64) error
	GetOffers(activeOnly bool, page, pageSize int) ([]models.Offer, int, error)
	GetOfferByID(offerID int64) (*models.Offer, error)

	// Validate checks a code against the activity window, usage limit and
	// minimum order amount as of now. Pure with respect to stored state: no
	// usage counting happens here.
	Validate(code string, subtotal float64, now time.Time) (OfferValidationResult, error)
}

type offerService struct {
	offerRepo repositories.OfferRepository
	db        *sql.DB
}

// NewOfferService creates a new instance of OfferService.
func NewOfferService(offerRepo repositories.OfferRepository, db *sql.DB) OfferService {
	return &offerService{offerRepo: offerRepo, db: db}
}

// validateOfferTerms enforces the creation-time invariants shared by create
// and update: discount value ranges and a coherent activity window.
func validateOfferTerms(discountType string, discountValue float64, validFrom, validUntil time.Time) error {
	switch discountType {
	case models.DiscountTypePercentage:
		if discountValue < 0 || discountValue > 100 {
			return fmt.Errorf("%w: percentage discount value must be between 0 and 100", ErrValidation)
		}
	case models.DiscountTypeFixed:
		if discountValue <= 0 {
			return fmt.Errorf("%w: fixed discount value must be positive", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown discount type '%s'", ErrValidation, discountType)
	}
	if !validFrom.Before(validUntil) {
		return fmt.Errorf("%w: valid_from must be before valid_until", ErrValidation)
	}
	return nil
}

func (s *offerService) CreateOffer(req CreateOfferRequest) (*models.Offer, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, fmt.Errorf("%w: offer code cannot be empty", ErrValidation)
	}
	if err := validateOfferTerms(req.DiscountType, req.DiscountValue, req.ValidFrom, req.ValidUntil); err != nil {
		return nil, err
	}
	if req.UsageLimit != nil && *req.UsageLimit <= 0 {
		return nil, fmt.Errorf("%w: usage limit must be positive when set", ErrValidation)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	offer := &models.Offer{
		Code:              code,
		Description:       req.Description,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MaxDiscountAmount: req.MaxDiscountAmount,
		MinOrderAmount:    req.MinOrderAmount,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		UsageLimit:        req.UsageLimit,
		IsActive:          isActive,
	}

	if _, err := s.offerRepo.CreateOffer(s.db, offer); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: offer code '%s' already exists", ErrValidation, code)
		}
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}
	return offer, nil
}

func (s *offerService) UpdateOffer(offerID int64, req UpdateOfferRequest) (*models.Offer, error) {
	offer, err := s.offerRepo.GetOfferByID(offerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to fetch offer for update: %w", err)
	}

	if req.Description != nil {
		offer.Description = req.Description
	}
	if req.DiscountType != nil {
		offer.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		offer.DiscountValue = *req.DiscountValue
	}
	if req.MaxDiscountAmount != nil {
		offer.MaxDiscountAmount = req.MaxDiscountAmount
	}
	if req.MinOrderAmount != nil {
		offer.MinOrderAmount = req.MinOrderAmount
	}
	if req.ValidFrom != nil {
		offer.ValidFrom = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		offer.ValidUntil = *req.ValidUntil
	}
	if req.UsageLimit != nil {
		if *req.UsageLimit <= 0 {
			return nil, fmt.Errorf("%w: usage limit must be positive when set", ErrValidation)
		}
		offer.UsageLimit = req.UsageLimit
	}
	if req.IsActive != nil {
		offer.IsActive = *req.IsActive
	}

	if err := validateOfferTerms(offer.DiscountType, offer.DiscountValue, offer.ValidFrom, offer.ValidUntil); err != nil {
		return nil, err
	}

	if err := s.offerRepo.UpdateOffer(s.db, offer); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}
	return s.offerRepo.GetOfferByID(offerID)
}

// DeleteOffer removes an offer. Offers that have already been redeemed are
// kept for the audit trail and cannot be deleted.
func (s *offerService) DeleteOffer(offerID int64) error {
	deleted, err := s.offerRepo.DeleteUnusedOffer(s.db, offerID)
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	if deleted {
		return nil
	}
	// Zero rows: either the offer is gone or it has been used.
	if _, err := s.offerRepo.GetOfferByID(offerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOfferNotFound
		}
		return fmt.Errorf("failed to inspect offer after delete attempt: %w", err)
	}
	return ErrOfferInUse
}

func (s *offerService) GetOffers(activeOnly bool, page, pageSize int) ([]models.Offer, int, error) {
	offers, totalCount, err := s.offerRepo.GetOffers(activeOnly, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get offers: %w", err)
	}
	return offers, totalCount, nil
}

func (s *offerService) GetOfferByID(offerID int64) (*models.Offer, error) {
	offer, err := s.offerRepo.GetOfferByID(offerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return offer, nil
}

func (s *offerService) Validate(code string, subtotal float64, now time.Time) (OfferValidationResult, error) {
	offer, err := s.offerRepo.FindActiveByCode(code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return OfferValidationResult{Reason: OfferInvalidNotFound}, nil
		}
		return OfferValidationResult{}, fmt.Errorf("failed to look up offer code: %w", err)
	}

	// Window is inclusive on both ends: valid iff validFrom <= now <= validUntil.
	if now.Before(offer.ValidFrom) || now.After(offer.ValidUntil) {
		return OfferValidationResult{Reason: OfferInvalidExpired}, nil
	}
	if offer.UsageLimit != nil && offer.UsageCount >= *offer.UsageLimit {
		return OfferValidationResult{Reason: OfferInvalidUsageLimitReached}, nil
	}
	if offer.MinOrderAmount != nil && subtotal < *offer.MinOrderAmount {
		return OfferValidationResult{Reason: OfferInvalidBelowMinimum}, nil
	}

	return OfferValidationResult{
		Valid:          true,
		DiscountAmount: ComputeDiscount(offer, subtotal),
	}, nil
}
