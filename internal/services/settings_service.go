package services

import (
	"fmt"
	"log"
	"sync"

	"gorm.io/gorm"

	"travel-affiliate/internal/apperrors"
	"travel-affiliate/internal/models"
)

// SettingsService serves the affiliate program settings singleton. The
// row is read on almost every operation, so it is cached in memory and
// invalidated explicitly on admin update. The database row stays the
// source of truth.
type SettingsService struct {
	db     *gorm.DB
	mu     sync.RWMutex
	cached *models.AffiliateSettings
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the current settings, creating the default row on first use
func (s *SettingsService) Get() (*models.AffiliateSettings, error) {
	s.mu.RLock()
	if s.cached != nil {
		settings := *s.cached
		s.mu.RUnlock()
		return &settings, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		settings := *s.cached
		return &settings, nil
	}

	var settings models.AffiliateSettings
	result := s.db.First(&settings)

	if result.Error == gorm.ErrRecordNotFound {
		settings = models.DefaultAffiliateSettings()
		if err := s.db.Create(&settings).Error; err != nil {
			return nil, fmt.Errorf("failed to create default settings: %w", err)
		}
		log.Println("Created default affiliate settings")
	} else if result.Error != nil {
		return nil, result.Error
	}

	s.cached = &settings
	copied := settings
	return &copied, nil
}

// UpdateSettingsInput carries the admin-editable settings fields
type UpdateSettingsInput struct {
	BaseCommissionRate *string `json:"base_commission_rate"`
	Level1Rate         *string `json:"level1_rate"`
	Level2Rate         *string `json:"level2_rate"`
	Level3Rate         *string `json:"level3_rate"`
	MaxLevels          *int    `json:"max_levels"`
	CommissionHoldDays *int    `json:"commission_hold_days"`
	AutoApprove        *bool   `json:"auto_approve"`
	MinPayoutAmount    *string `json:"min_payout_amount"`
}

// Update applies an admin settings change and invalidates the cache
func (s *SettingsService) Update(input UpdateSettingsInput) (*models.AffiliateSettings, error) {
	current, err := s.Get()
	if err != nil {
		return nil, err
	}

	if input.BaseCommissionRate != nil {
		if current.BaseCommissionRate, err = parseRate(*input.BaseCommissionRate); err != nil {
			return nil, err
		}
	}
	if input.Level1Rate != nil {
		if current.Level1Rate, err = parseRate(*input.Level1Rate); err != nil {
			return nil, err
		}
	}
	if input.Level2Rate != nil {
		if current.Level2Rate, err = parseRate(*input.Level2Rate); err != nil {
			return nil, err
		}
	}
	if input.Level3Rate != nil {
		if current.Level3Rate, err = parseRate(*input.Level3Rate); err != nil {
			return nil, err
		}
	}
	if input.MaxLevels != nil {
		if *input.MaxLevels < 1 || *input.MaxLevels > 3 {
			return nil, fmt.Errorf("%w: max_levels must be between 1 and 3", apperrors.ErrValidation)
		}
		current.MaxLevels = *input.MaxLevels
	}
	if input.CommissionHoldDays != nil {
		if *input.CommissionHoldDays < 0 {
			return nil, fmt.Errorf("%w: commission_hold_days must not be negative", apperrors.ErrValidation)
		}
		current.CommissionHoldDays = *input.CommissionHoldDays
	}
	if input.AutoApprove != nil {
		current.AutoApprove = *input.AutoApprove
	}
	if input.MinPayoutAmount != nil {
		amount, err := parseAmount(*input.MinPayoutAmount)
		if err != nil {
			return nil, err
		}
		current.MinPayoutAmount = amount
	}

	if err := s.db.Save(current).Error; err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	s.Invalidate()
	log.Println("Affiliate settings updated")
	return current, nil
}

// Invalidate drops the cached settings row
func (s *SettingsService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
