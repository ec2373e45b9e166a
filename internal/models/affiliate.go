package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AffiliateStatus is the lifecycle status of an affiliate account
type AffiliateStatus string

const (
	AffiliateStatusPending   AffiliateStatus = "PENDING"
	AffiliateStatusActive    AffiliateStatus = "ACTIVE"
	AffiliateStatusSuspended AffiliateStatus = "SUSPENDED"
	AffiliateStatusBanned    AffiliateStatus = "BANNED"
)

// Affiliate represents a user enrolled in the referral program.
// ReferredByID is set once at creation and never changes; the relation
// forms a forest (no cycles).
type Affiliate struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ReferralCode   string          `gorm:"uniqueIndex;size:20;not null" json:"referral_code"`
	ReferredByID   *uint           `gorm:"index" json:"referred_by_id,omitempty"`
	ReferredBy     *Affiliate      `gorm:"foreignKey:ReferredByID" json:"referred_by,omitempty"`
	Status         AffiliateStatus `gorm:"size:20;default:ACTIVE;index" json:"status"`
	Verified       bool            `gorm:"default:false" json:"verified"`
	TotalEarnings  decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_earnings"`
	TotalClicks    int             `gorm:"default:0" json:"total_clicks"`
	TotalReferrals int             `gorm:"default:0" json:"total_referrals"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Affiliate) TableName() string {
	return "affiliates"
}

// Click records a visit through an affiliate link. It is mutated at most
// once, when a conversion is attributed to it.
type Click struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AffiliateID  uint       `gorm:"not null;index" json:"affiliate_id"`
	Affiliate    *Affiliate `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"`
	ReferralCode string     `gorm:"size:20;not null;index" json:"referral_code"`
	Source       string     `gorm:"size:100" json:"source"`
	Converted    bool       `gorm:"default:false;index" json:"converted"`
	ConversionID *uint      `gorm:"index" json:"conversion_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (Click) TableName() string {
	return "affiliate_clicks"
}
