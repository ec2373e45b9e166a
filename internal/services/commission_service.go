package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"travel-affiliate/internal/apperrors"
	"travel-affiliate/internal/models"
)

// CommissionService owns the commission ledger state machine:
// pending -> approved (scheduler or admin), pending -> rejected (admin),
// approved -> paid (settlement only). No other transition exists.
type CommissionService struct {
	db *gorm.DB
}

func NewCommissionService(db *gorm.DB) *CommissionService {
	return &CommissionService{db: db}
}

// Approve promotes a pending commission to approved. The guarded update
// makes concurrent callers (admin and scheduler) settle on exactly one
// approval.
func (s *CommissionService) Approve(id uint) (*models.Commission, error) {
	now := time.Now()
	result := s.db.Model(&models.Commission{}).
		Where("id = ? AND status = ?", id, models.CommissionStatusPending).
		Updates(map[string]interface{}{
			"status":      models.CommissionStatusApproved,
			"approved_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, s.transitionFailure(id, models.CommissionStatusApproved)
	}

	return s.GetByID(id)
}

// Reject marks a pending commission as rejected. Rejected is terminal.
func (s *CommissionService) Reject(id uint) (*models.Commission, error) {
	result := s.db.Model(&models.Commission{}).
		Where("id = ? AND status = ?", id, models.CommissionStatusPending).
		Update("status", models.CommissionStatusRejected)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, s.transitionFailure(id, models.CommissionStatusRejected)
	}

	log.Printf("Commission %d rejected", id)
	return s.GetByID(id)
}

// transitionFailure distinguishes a missing commission from one in a
// state that disallows the transition
func (s *CommissionService) transitionFailure(id uint, target models.CommissionStatus) error {
	var commission models.Commission
	if err := s.db.First(&commission, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: commission %d", apperrors.ErrNotFound, id)
		}
		return err
	}
	return fmt.Errorf("%w: commission %d is %s, cannot transition to %s",
		apperrors.ErrInvalidState, id, commission.Status, target)
}

// GetByID returns a commission by id
func (s *CommissionService) GetByID(id uint) (*models.Commission, error) {
	var commission models.Commission
	if err := s.db.First(&commission, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: commission %d", apperrors.ErrNotFound, id)
		}
		return nil, err
	}
	return &commission, nil
}

// ListByAffiliate returns an affiliate's commissions, newest first
func (s *CommissionService) ListByAffiliate(affiliateID uint) ([]models.Commission, error) {
	var commissions []models.Commission
	if err := s.db.Where("affiliate_id = ?", affiliateID).
		Order("created_at DESC").Find(&commissions).Error; err != nil {
		return nil, err
	}
	return commissions, nil
}

// ListPendingBefore returns pending commissions created at or before the
// cutoff, oldest first. Used by the auto-approval scheduler.
func (s *CommissionService) ListPendingBefore(cutoff time.Time) ([]models.Commission, error) {
	var commissions []models.Commission
	if err := s.db.Where("status = ? AND created_at <= ?", models.CommissionStatusPending, cutoff).
		Order("created_at ASC").Find(&commissions).Error; err != nil {
		return nil, err
	}
	return commissions, nil
}
