package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transactions are immutable after creation: repositories never update them,
// and corrections arrive as new adjustment rows. Amounts for calls and
// distributions are stored non-negative; adjustments keep their sign.

type CapitalCall struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	FundID      uint            `gorm:"not null;index" json:"fund_id"`
	DocumentID  uint            `gorm:"not null;index" json:"document_id"`
	CallDate    time.Time       `gorm:"not null" json:"call_date"`
	CallType    string          `gorm:"size:64" json:"call_type"` // investment, fee, expense, ...
	Amount      decimal.Decimal `gorm:"type:decimal(24,4);not null" json:"amount"`
	Description string          `gorm:"size:512" json:"description,omitempty"`
	PageNumber  int             `json:"page_number"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Distribution struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	FundID           uint            `gorm:"not null;index" json:"fund_id"`
	DocumentID       uint            `gorm:"not null;index" json:"document_id"`
	DistributionDate time.Time       `gorm:"not null" json:"distribution_date"`
	DistributionType string          `gorm:"size:64" json:"distribution_type"`
	Amount           decimal.Decimal `gorm:"type:decimal(24,4);not null" json:"amount"`
	IsRecallable     bool            `json:"is_recallable"`
	Description      string          `gorm:"size:512" json:"description,omitempty"`
	PageNumber       int             `json:"page_number"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Adjustment shifts paid-in capital without being a call. IsContribution marks
// adjustments that affect PIC; others are informational only.
type Adjustment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	FundID         uint            `gorm:"not null;index" json:"fund_id"`
	DocumentID     uint            `gorm:"not null;index" json:"document_id"`
	EffectiveDate  time.Time       `gorm:"not null" json:"effective_date"`
	AdjustmentType string          `gorm:"size:64" json:"adjustment_type"`
	Category       string          `gorm:"size:64" json:"category,omitempty"`
	Amount         decimal.Decimal `gorm:"type:decimal(24,4);not null" json:"amount"` // signed
	IsContribution bool            `json:"is_contribution"`
	Description    string          `gorm:"size:512" json:"description,omitempty"`
	PageNumber     int             `json:"page_number"`
	CreatedAt      time.Time       `json:"created_at"`
}
