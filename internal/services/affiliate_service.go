package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"travel-affiliate/internal/apperrors"
	"travel-affiliate/internal/models"
)

const (
	referralCodeLength     = 8
	codeGenerationAttempts = 10
	clickAttributionWindow = 30 * 24 * time.Hour
)

var referralCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{4,20}$`)

// AffiliateService manages the referral graph: affiliate registration,
// code resolution and click tracking.
type AffiliateService struct {
	db *gorm.DB
	mu sync.Mutex
}

func NewAffiliateService(db *gorm.DB) *AffiliateService {
	return &AffiliateService{db: db}
}

// Register enrolls a user in the referral program. referredByCode is
// optional; a malformed code fails, an unknown one simply leaves the
// affiliate without a parent.
func (s *AffiliateService) Register(userID uint, referredByCode string) (*models.Affiliate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	referredByCode = strings.TrimSpace(referredByCode)
	if referredByCode != "" && !referralCodePattern.MatchString(referredByCode) {
		return nil, fmt.Errorf("%w: malformed referral code %q", apperrors.ErrValidation, referredByCode)
	}

	var existing models.Affiliate
	if err := s.db.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: user already enrolled as affiliate", apperrors.ErrValidation)
	}

	var referredByID *uint
	if referredByCode != "" {
		var parent models.Affiliate
		if err := s.db.Where("referral_code = ?", referredByCode).First(&parent).Error; err == nil {
			referredByID = &parent.ID
		}
	}

	code, err := s.generateUniqueCode()
	if err != nil {
		return nil, err
	}

	affiliate := models.Affiliate{
		UserID:       userID,
		ReferralCode: code,
		ReferredByID: referredByID,
		Status:       models.AffiliateStatusActive,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&affiliate).Error; err != nil {
			return fmt.Errorf("failed to create affiliate: %w", err)
		}
		if referredByID != nil {
			if err := tx.Model(&models.Affiliate{}).Where("id = ?", *referredByID).
				Update("total_referrals", gorm.Expr("total_referrals + 1")).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Registered affiliate %d for user %d with code %s", affiliate.ID, userID, code)
	return &affiliate, nil
}

// generateUniqueCode generates a referral code, retrying on collision
func (s *AffiliateService) generateUniqueCode() (string, error) {
	for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
		code, err := s.generateRandomCode()
		if err != nil {
			return "", err
		}

		var count int64
		if err := s.db.Model(&models.Affiliate{}).Where("referral_code = ?", code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique referral code after %d attempts", codeGenerationAttempts)
}

// generateRandomCode generates a random 8-character code
func (s *AffiliateService) generateRandomCode() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:referralCodeLength], nil
}

// ValidateCode resolves a referral code to its active owner
func (s *AffiliateService) ValidateCode(code string) (*models.Affiliate, error) {
	if !referralCodePattern.MatchString(code) {
		return nil, fmt.Errorf("%w: malformed referral code %q", apperrors.ErrValidation, code)
	}

	var affiliate models.Affiliate
	if err := s.db.Where("referral_code = ?", code).First(&affiliate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: referral code %q", apperrors.ErrNotFound, code)
		}
		return nil, err
	}

	if affiliate.Status != models.AffiliateStatusActive {
		return nil, fmt.Errorf("%w: referral code %q", apperrors.ErrNotFound, code)
	}

	return &affiliate, nil
}

// RecordClick records a visit through an affiliate link. Tracking is
// best-effort: unknown codes are accepted but not persisted.
func (s *AffiliateService) RecordClick(code, source string) error {
	var affiliate models.Affiliate
	if err := s.db.Where("referral_code = ?", code).First(&affiliate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		click := models.Click{
			AffiliateID:  affiliate.ID,
			ReferralCode: code,
			Source:       source,
		}
		if err := tx.Create(&click).Error; err != nil {
			return fmt.Errorf("failed to record click: %w", err)
		}
		return tx.Model(&models.Affiliate{}).Where("id = ?", affiliate.ID).
			Update("total_clicks", gorm.Expr("total_clicks + 1")).Error
	})
}

// GetByUserID returns the affiliate account of a user
func (s *AffiliateService) GetByUserID(userID uint) (*models.Affiliate, error) {
	var affiliate models.Affiliate
	if err := s.db.Where("user_id = ?", userID).First(&affiliate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: affiliate for user %d", apperrors.ErrNotFound, userID)
		}
		return nil, err
	}
	return &affiliate, nil
}

// GetByID returns an affiliate by id
func (s *AffiliateService) GetByID(id uint) (*models.Affiliate, error) {
	var affiliate models.Affiliate
	if err := s.db.First(&affiliate, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: affiliate %d", apperrors.ErrNotFound, id)
		}
		return nil, err
	}
	return &affiliate, nil
}

// UpdateStatus changes an affiliate's lifecycle status (admin operation)
func (s *AffiliateService) UpdateStatus(id uint, status models.AffiliateStatus) (*models.Affiliate, error) {
	switch status {
	case models.AffiliateStatusPending, models.AffiliateStatusActive,
		models.AffiliateStatusSuspended, models.AffiliateStatusBanned:
	default:
		return nil, fmt.Errorf("%w: unknown affiliate status %q", apperrors.ErrValidation, status)
	}

	affiliate, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(affiliate).Update("status", status).Error; err != nil {
		return nil, err
	}

	log.Printf("Affiliate %d status changed to %s", id, status)
	affiliate.Status = status
	return affiliate, nil
}
