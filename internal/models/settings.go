package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AffiliateSettings is the singleton program configuration. Rates are
// percentages: BaseCommissionRate is the platform's cut of the booking
// amount, Level1..3Rate are each level's share of that cut.
type AffiliateSettings struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	BaseCommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"base_commission_rate"`
	Level1Rate         decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"level1_rate"`
	Level2Rate         decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"level2_rate"`
	Level3Rate         decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"level3_rate"`
	MaxLevels          int             `gorm:"not null;default:3" json:"max_levels"`
	CommissionHoldDays int             `gorm:"not null;default:30" json:"commission_hold_days"`
	AutoApprove        bool            `gorm:"default:false" json:"auto_approve"`
	MinPayoutAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"min_payout_amount"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (AffiliateSettings) TableName() string {
	return "affiliate_settings"
}

// DefaultAffiliateSettings returns the settings row created on first run
func DefaultAffiliateSettings() AffiliateSettings {
	return AffiliateSettings{
		BaseCommissionRate: decimal.NewFromInt(10),
		Level1Rate:         decimal.NewFromInt(50),
		Level2Rate:         decimal.NewFromInt(20),
		Level3Rate:         decimal.NewFromInt(10),
		MaxLevels:          3,
		CommissionHoldDays: 30,
		AutoApprove:        false,
		MinPayoutAmount:    decimal.NewFromInt(50),
	}
}
