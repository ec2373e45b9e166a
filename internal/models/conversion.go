package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionStatus is the lifecycle status of a conversion
type ConversionStatus string

const (
	ConversionStatusPending   ConversionStatus = "PENDING"
	ConversionStatusCompleted ConversionStatus = "COMPLETED"
	ConversionStatusFailed    ConversionStatus = "FAILED"
)

// Conversion represents a booking attributed to a referral code.
// AffiliateID is the source affiliate (level 0 of the chain).
// CommissionRate and CommissionAmount are write-once summaries filled
// in right after distribution.
type Conversion struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	AffiliateID      uint             `gorm:"not null;index" json:"affiliate_id"`
	Affiliate        *Affiliate       `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"`
	BookingID        string           `gorm:"uniqueIndex;size:64;not null" json:"booking_id"`
	BookingType      string           `gorm:"size:20" json:"booking_type"` // HOTEL, FLIGHT, PACKAGE
	BookingAmount    decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"booking_amount"`
	Currency         string           `gorm:"size:3;not null" json:"currency"`
	CommissionRate   decimal.Decimal  `gorm:"type:decimal(5,2);default:0" json:"commission_rate"`
	CommissionAmount decimal.Decimal  `gorm:"type:decimal(12,2);default:0" json:"commission_amount"`
	Status           ConversionStatus `gorm:"size:20;default:PENDING;index" json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (Conversion) TableName() string {
	return "conversions"
}
