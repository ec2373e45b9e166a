package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"travel-affiliate/internal/apperrors"
	"travel-affiliate/internal/models"
)

// BookingConfirmed is the event consumed from the booking/payment
// pipeline once a booking is paid.
type BookingConfirmed struct {
	BookingID     string          `json:"booking_id"`
	BookingType   string          `json:"booking_type"`
	BookingAmount decimal.Decimal `json:"booking_amount"`
	Currency      string          `json:"currency"`
	ReferralCode  string          `json:"referral_code,omitempty"`
}

// ConversionService turns confirmed bookings into commission records
// across the referral chain.
type ConversionService struct {
	db       *gorm.DB
	settings *SettingsService
	mu       sync.Mutex
}

func NewConversionService(db *gorm.DB, settings *SettingsService) *ConversionService {
	return &ConversionService{db: db, settings: settings}
}

// RecordConversion attributes a confirmed booking to a referral code and
// distributes commission across the chain. Attribution is best-effort: a
// missing, unknown or inactive referral code makes the call a no-op so
// it can never block a booking. Everything else commits in a single
// transaction, so a failed distribution leaves no partial state and the
// event can be retried.
func (s *ConversionService) RecordConversion(event BookingConfirmed) (*models.Conversion, error) {
	if event.BookingID == "" {
		return nil, fmt.Errorf("%w: booking_id is required", apperrors.ErrValidation)
	}
	if event.BookingAmount.IsNegative() || event.BookingAmount.IsZero() {
		return nil, fmt.Errorf("%w: booking_amount must be positive", apperrors.ErrValidation)
	}
	if len(event.Currency) != 3 {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code", apperrors.ErrValidation)
	}

	if event.ReferralCode == "" {
		return nil, nil
	}

	var source models.Affiliate
	if err := s.db.Where("referral_code = ?", event.ReferralCode).First(&source).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Printf("Conversion for booking %s skipped: unknown referral code %s", event.BookingID, event.ReferralCode)
			return nil, nil
		}
		return nil, err
	}
	if source.Status != models.AffiliateStatusActive {
		log.Printf("Conversion for booking %s skipped: affiliate %d is %s", event.BookingID, source.ID, source.Status)
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// One conversion per booking
	var existing models.Conversion
	if err := s.db.Where("booking_id = ?", event.BookingID).First(&existing).Error; err == nil {
		return &existing, nil
	}

	settings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}

	conversion := models.Conversion{
		AffiliateID:   source.ID,
		BookingID:     event.BookingID,
		BookingType:   event.BookingType,
		BookingAmount: roundMoney(event.BookingAmount),
		Currency:      event.Currency,
		Status:        models.ConversionStatusPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conversion).Error; err != nil {
			return fmt.Errorf("failed to create conversion: %w", err)
		}

		total, err := s.distribute(tx, &source, &conversion, settings)
		if err != nil {
			return err
		}

		rate := decimal.Zero
		if !total.IsZero() {
			rate = total.Div(conversion.BookingAmount).Mul(hundred).Round(moneyScale)
		}

		if err := tx.Model(&conversion).Updates(map[string]interface{}{
			"commission_amount": total,
			"commission_rate":   rate,
			"status":            models.ConversionStatusCompleted,
		}).Error; err != nil {
			return err
		}
		conversion.CommissionAmount = total
		conversion.CommissionRate = rate
		conversion.Status = models.ConversionStatusCompleted

		return s.attributeClick(tx, &source, &conversion)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Conversion %d recorded for booking %s: commission %s %s across chain",
		conversion.ID, conversion.BookingID, conversion.CommissionAmount, conversion.Currency)
	return &conversion, nil
}

// distribute walks the referral chain and creates one commission per
// level. Each level earns its rate's share of the platform commission
// (bookingAmount x baseCommissionRate), so the affiliate pool can never
// exceed platform revenue. Zero-rate and zero-amount levels produce no
// row. Returns the exact sum of the created commission amounts.
func (s *ConversionService) distribute(tx *gorm.DB, source *models.Affiliate, conversion *models.Conversion, settings *models.AffiliateSettings) (decimal.Decimal, error) {
	levelRates := []decimal.Decimal{settings.Level1Rate, settings.Level2Rate, settings.Level3Rate}
	if settings.MaxLevels < len(levelRates) {
		levelRates = levelRates[:settings.MaxLevels]
	}

	platformCommission := percentOf(conversion.BookingAmount, settings.BaseCommissionRate)

	now := time.Now()
	total := decimal.Zero
	visited := map[uint]bool{}
	current := source

	for i, rate := range levelRates {
		if current == nil {
			break
		}
		level := i + 1

		if visited[current.ID] {
			return decimal.Zero, fmt.Errorf("%w: affiliate %d appears twice in chain for booking %s",
				apperrors.ErrCycleDetected, current.ID, conversion.BookingID)
		}
		visited[current.ID] = true

		amount := roundMoney(percentOf(platformCommission, rate))
		if amount.IsPositive() {
			commission := models.Commission{
				AffiliateID:  current.ID,
				ConversionID: conversion.ID,
				Level:        level,
				BaseAmount:   conversion.BookingAmount,
				Rate:         rate,
				Amount:       amount,
				Currency:     conversion.Currency,
				Status:       models.CommissionStatusPending,
			}
			if settings.AutoApprove {
				commission.Status = models.CommissionStatusApproved
				commission.ApprovedAt = &now
			}

			if err := tx.Create(&commission).Error; err != nil {
				return decimal.Zero, fmt.Errorf("failed to create level %d commission: %w", level, err)
			}

			if err := tx.Model(&models.Affiliate{}).Where("id = ?", current.ID).
				Update("total_earnings", gorm.Expr("total_earnings + ?", amount)).Error; err != nil {
				return decimal.Zero, err
			}

			total = total.Add(amount)
		}

		if current.ReferredByID == nil {
			break
		}

		var parent models.Affiliate
		if err := tx.First(&parent, *current.ReferredByID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				break
			}
			return decimal.Zero, err
		}
		current = &parent
	}

	return total, nil
}

// attributeClick marks the most recent unconverted click from the source
// affiliate inside the attribution window as converted
func (s *ConversionService) attributeClick(tx *gorm.DB, source *models.Affiliate, conversion *models.Conversion) error {
	cutoff := time.Now().Add(-clickAttributionWindow)

	var click models.Click
	err := tx.Where("affiliate_id = ? AND converted = ? AND created_at >= ?", source.ID, false, cutoff).
		Order("created_at DESC").First(&click).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	return tx.Model(&click).Updates(map[string]interface{}{
		"converted":     true,
		"conversion_id": conversion.ID,
	}).Error
}

// GetByBookingID returns the conversion recorded for a booking
func (s *ConversionService) GetByBookingID(bookingID string) (*models.Conversion, error) {
	var conversion models.Conversion
	if err := s.db.Where("booking_id = ?", bookingID).First(&conversion).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: conversion for booking %s", apperrors.ErrNotFound, bookingID)
		}
		return nil, err
	}
	return &conversion, nil
}
