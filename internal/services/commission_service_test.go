package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"travel-affiliate/internal/apperrors"
	"travel-affiliate/internal/models"
)

func seedPendingCommission(t *testing.T, service *CommissionService, affiliateID uint) models.Commission {
	t.Helper()
	commission := models.Commission{
		AffiliateID:  affiliateID,
		ConversionID: 1,
		Level:        1,
		BaseAmount:   decimal.NewFromInt(1000),
		Rate:         decimal.NewFromInt(50),
		Amount:       decimal.NewFromInt(50),
		Currency:     "USD",
		Status:       models.CommissionStatusPending,
	}
	if err := service.db.Create(&commission).Error; err != nil {
		t.Fatalf("failed to seed commission: %v", err)
	}
	return commission
}

func TestCommissionStateMachine(t *testing.T) {
	db := setupTestDB(t)
	service := NewCommissionService(db)

	affiliate := createAffiliate(t, db, 1, "LEDGER01", nil)
	commission := seedPendingCommission(t, service, affiliate.ID)

	approved, err := service.Approve(commission.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Status != models.CommissionStatusApproved {
		t.Errorf("expected APPROVED, got %s", approved.Status)
	}
	if approved.ApprovedAt == nil {
		t.Errorf("approved commission must carry approved_at")
	}

	// Approved is not pending anymore: approve and reject both refuse
	if _, err := service.Approve(commission.ID); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState approving twice, got %v", err)
	}
	if _, err := service.Reject(commission.ID); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState rejecting an approved commission, got %v", err)
	}

	rejectable := seedPendingCommission(t, service, affiliate.ID)
	rejected, err := service.Reject(rejectable.ID)
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if rejected.Status != models.CommissionStatusRejected {
		t.Errorf("expected REJECTED, got %s", rejected.Status)
	}

	// Rejected is terminal
	if _, err := service.Approve(rejectable.ID); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState approving a rejected commission, got %v", err)
	}

	if _, err := service.Approve(9999); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing commission, got %v", err)
	}
}
