package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"travel-affiliate/internal/apperrors"
	"travel-affiliate/internal/models"
)

// PayoutService settles approved commissions against payout requests.
// The mutex serializes every balance-check-then-reserve sequence so two
// concurrent requests (or a request racing a settlement) can neither
// link the same commission twice nor overdraw the approved balance; the
// database transaction around each settlement keeps it all-or-nothing.
type PayoutService struct {
	db       *gorm.DB
	settings *SettingsService
	mu       sync.Mutex
}

func NewPayoutService(db *gorm.DB, settings *SettingsService) *PayoutService {
	return &PayoutService{db: db, settings: settings}
}

// AvailableBalance returns the amount an affiliate can still request:
// approved unlinked commissions minus payouts already pending, approved
// or processing, clamped to zero.
func (s *PayoutService) AvailableBalance(affiliateID uint) (decimal.Decimal, error) {
	return s.availableBalance(s.db, affiliateID)
}

func (s *PayoutService) availableBalance(tx *gorm.DB, affiliateID uint) (decimal.Decimal, error) {
	var approved decimal.Decimal
	row := tx.Model(&models.Commission{}).
		Where("affiliate_id = ? AND status = ? AND payout_id IS NULL", affiliateID, models.CommissionStatusApproved).
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&approved); err != nil {
		approved = decimal.Zero
	}

	var reserved decimal.Decimal
	row = tx.Model(&models.Payout{}).
		Where("affiliate_id = ? AND status IN ?", affiliateID,
			[]models.PayoutStatus{models.PayoutStatusPending, models.PayoutStatusApproved, models.PayoutStatusProcessing}).
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&reserved); err != nil {
		reserved = decimal.Zero
	}

	available := approved.Sub(reserved)
	if available.IsNegative() {
		return decimal.Zero, nil
	}
	return available, nil
}

// Request creates a pending payout after checking the available balance.
// No commission rows are reserved yet; reservation happens at settlement
// so commissions approved in between still count.
func (s *PayoutService) Request(affiliateID uint, amount decimal.Decimal, method string) (*models.Payout, error) {
	switch method {
	case models.PayoutMethodBankTransfer, models.PayoutMethodPayPal, models.PayoutMethodPlatformCredit:
	default:
		return nil, fmt.Errorf("%w: unknown payout method %q", apperrors.ErrValidation, method)
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, fmt.Errorf("%w: payout amount must be positive", apperrors.ErrValidation)
	}
	amount = roundMoney(amount)

	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}
	if amount.LessThan(settings.MinPayoutAmount) {
		return nil, fmt.Errorf("%w: payout amount %s is below the minimum %s",
			apperrors.ErrValidation, amount, settings.MinPayoutAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var payout models.Payout
	err = s.db.Transaction(func(tx *gorm.DB) error {
		available, err := s.availableBalance(tx, affiliateID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(available) {
			return fmt.Errorf("%w: requested %s but only %s available",
				apperrors.ErrInsufficientBalance, amount, available)
		}

		// Payouts settle in the currency of the commissions they will
		// consume; a positive balance guarantees at least one row.
		var commission models.Commission
		if err := tx.Where("affiliate_id = ? AND status = ? AND payout_id IS NULL",
			affiliateID, models.CommissionStatusApproved).First(&commission).Error; err != nil {
			return err
		}

		payout = models.Payout{
			AffiliateID: affiliateID,
			Amount:      amount,
			Currency:    commission.Currency,
			Method:      method,
			Status:      models.PayoutStatusPending,
		}
		return tx.Create(&payout).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Payout %d requested: affiliate %d, %s %s via %s",
		payout.ID, affiliateID, payout.Amount, payout.Currency, method)
	return &payout, nil
}

// Approve marks a pending payout as approved (admin operation)
func (s *PayoutService) Approve(payoutID uint) (*models.Payout, error) {
	return s.transition(payoutID, models.PayoutStatusApproved, models.PayoutStatusPending)
}

// Reject marks a pending payout as rejected (admin operation)
func (s *PayoutService) Reject(payoutID uint) (*models.Payout, error) {
	return s.transition(payoutID, models.PayoutStatusRejected, models.PayoutStatusPending)
}

// Cancel cancels a pending payout on behalf of the requesting user
func (s *PayoutService) Cancel(payoutID, userID uint) (*models.Payout, error) {
	var payout models.Payout
	if err := s.db.Preload("Affiliate").First(&payout, payoutID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: payout %d", apperrors.ErrNotFound, payoutID)
		}
		return nil, err
	}

	if payout.Affiliate == nil || payout.Affiliate.UserID != userID {
		return nil, fmt.Errorf("%w: payout %d does not belong to requester", apperrors.ErrValidation, payoutID)
	}

	return s.transition(payoutID, models.PayoutStatusCancelled, models.PayoutStatusPending)
}

// Process settles a payout: it links approved, unlinked commissions
// oldest-approved-first until their sum covers the payout amount, then
// completes the payout. If the pool runs out first, nothing is linked
// and the payout is marked failed for manual retry.
func (s *PayoutService) Process(payoutID uint) (*models.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Claim the payout so a concurrent Process call for the same id
	// fails the state check instead of double-settling.
	now := time.Now()
	result := s.db.Model(&models.Payout{}).
		Where("id = ? AND status IN ?", payoutID,
			[]models.PayoutStatus{models.PayoutStatusPending, models.PayoutStatusApproved}).
		Updates(map[string]interface{}{
			"status":       models.PayoutStatusProcessing,
			"processed_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var payout models.Payout
		if err := s.db.First(&payout, payoutID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("%w: payout %d", apperrors.ErrNotFound, payoutID)
			}
			return nil, err
		}
		return nil, fmt.Errorf("%w: payout %d is %s, cannot process",
			apperrors.ErrInvalidState, payoutID, payout.Status)
	}

	var payout models.Payout
	if err := s.db.First(&payout, payoutID).Error; err != nil {
		return nil, err
	}

	settleErr := s.db.Transaction(func(tx *gorm.DB) error {
		var pool []models.Commission
		if err := tx.Where("affiliate_id = ? AND status = ? AND payout_id IS NULL",
			payout.AffiliateID, models.CommissionStatusApproved).
			Order("approved_at ASC, id ASC").Find(&pool).Error; err != nil {
			return err
		}

		linked := decimal.Zero
		var selected []models.Commission
		for _, commission := range pool {
			if linked.GreaterThanOrEqual(payout.Amount) {
				break
			}
			selected = append(selected, commission)
			linked = linked.Add(commission.Amount)
		}

		if linked.LessThan(payout.Amount) {
			return fmt.Errorf("%w: payout %d needs %s but only %s of approved commission is unlinked",
				apperrors.ErrInsufficientBalance, payout.ID, payout.Amount, linked)
		}

		paidAt := time.Now()
		for _, commission := range selected {
			res := tx.Model(&models.Commission{}).
				Where("id = ? AND status = ? AND payout_id IS NULL", commission.ID, models.CommissionStatusApproved).
				Updates(map[string]interface{}{
					"status":    models.CommissionStatusPaid,
					"payout_id": payout.ID,
					"paid_at":   paidAt,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("commission %d changed underneath settlement of payout %d", commission.ID, payout.ID)
			}
		}

		transactionID := uuid.New().String()
		return tx.Model(&models.Payout{}).Where("id = ?", payout.ID).
			Updates(map[string]interface{}{
				"status":         models.PayoutStatusCompleted,
				"transaction_id": transactionID,
				"completed_at":   paidAt,
			}).Error
	})

	if settleErr != nil {
		// The settlement transaction rolled back: no commission was
		// touched. Record the failure on the payout itself.
		if err := s.db.Model(&models.Payout{}).Where("id = ?", payout.ID).
			Update("status", models.PayoutStatusFailed).Error; err != nil {
			log.Printf("Error marking payout %d failed: %v", payout.ID, err)
		}
		log.Printf("Payout %d failed: %v", payout.ID, settleErr)
		return nil, settleErr
	}

	if err := s.db.First(&payout, payoutID).Error; err != nil {
		return nil, err
	}

	log.Printf("Payout %d completed: affiliate %d, %s %s, transaction %s",
		payout.ID, payout.AffiliateID, payout.Amount, payout.Currency, *payout.TransactionID)
	return &payout, nil
}

// transition applies a guarded single-step status change
func (s *PayoutService) transition(payoutID uint, target models.PayoutStatus, allowed ...models.PayoutStatus) (*models.Payout, error) {
	result := s.db.Model(&models.Payout{}).
		Where("id = ? AND status IN ?", payoutID, allowed).
		Update("status", target)
	if result.Error != nil {
		return nil, result.Error
	}

	var payout models.Payout
	if err := s.db.First(&payout, payoutID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: payout %d", apperrors.ErrNotFound, payoutID)
		}
		return nil, err
	}

	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: payout %d is %s, cannot transition to %s",
			apperrors.ErrInvalidState, payoutID, payout.Status, target)
	}

	log.Printf("Payout %d transitioned to %s", payoutID, target)
	return &payout, nil
}

// ListByAffiliate returns an affiliate's payouts, newest first
func (s *PayoutService) ListByAffiliate(affiliateID uint) ([]models.Payout, error) {
	var payouts []models.Payout
	if err := s.db.Where("affiliate_id = ?", affiliateID).
		Order("requested_at DESC").Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}
