package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionStatus is the ledger state of a commission record
type CommissionStatus string

const (
	CommissionStatusPending  CommissionStatus = "PENDING"
	CommissionStatusApproved CommissionStatus = "APPROVED"
	CommissionStatusPaid     CommissionStatus = "PAID"
	CommissionStatusRejected CommissionStatus = "REJECTED"
)

// Commission represents money owed to one affiliate at one level for one
// conversion. PayoutID is set exactly once, during settlement. A paid or
// rejected commission is terminal.
type Commission struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	AffiliateID  uint             `gorm:"not null;index" json:"affiliate_id"`
	Affiliate    *Affiliate       `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"`
	ConversionID uint             `gorm:"not null;index" json:"conversion_id"`
	Conversion   *Conversion      `gorm:"foreignKey:ConversionID" json:"conversion,omitempty"`
	Level        int              `gorm:"not null" json:"level"`
	BaseAmount   decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"base_amount"`
	Rate         decimal.Decimal  `gorm:"type:decimal(5,2);not null" json:"rate"`
	Amount       decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency     string           `gorm:"size:3;not null" json:"currency"`
	Status       CommissionStatus `gorm:"size:20;default:PENDING;index" json:"status"`
	PayoutID     *uint            `gorm:"index" json:"payout_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	ApprovedAt   *time.Time       `json:"approved_at,omitempty"`
	PaidAt       *time.Time       `json:"paid_at,omitempty"`
}

func (Commission) TableName() string {
	return "commissions"
}
