package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutStatus is the lifecycle status of a payout request
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "PENDING"
	PayoutStatusApproved   PayoutStatus = "APPROVED"
	PayoutStatusProcessing PayoutStatus = "PROCESSING"
	PayoutStatusCompleted  PayoutStatus = "COMPLETED"
	PayoutStatusRejected   PayoutStatus = "REJECTED"
	PayoutStatusCancelled  PayoutStatus = "CANCELLED"
	PayoutStatusFailed     PayoutStatus = "FAILED"
)

// Payout methods
const (
	PayoutMethodBankTransfer   = "BANK_TRANSFER"
	PayoutMethodPayPal         = "PAYPAL"
	PayoutMethodPlatformCredit = "PLATFORM_CREDIT"
)

// Payout represents an affiliate's request to withdraw accumulated
// approved commission. Completed, cancelled and failed payouts are
// terminal.
type Payout struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	AffiliateID   uint            `gorm:"not null;index" json:"affiliate_id"`
	Affiliate     *Affiliate      `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	Method        string          `gorm:"size:30;not null" json:"method"`
	Status        PayoutStatus    `gorm:"size:20;default:PENDING;index" json:"status"`
	TransactionID *string         `gorm:"size:64" json:"transaction_id,omitempty"`
	RequestedAt   time.Time       `gorm:"autoCreateTime" json:"requested_at"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

func (Payout) TableName() string {
	return "payouts"
}
