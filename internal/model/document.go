package model

import "time"

// Document parsing lifecycle. A document transitions
// pending -> processing -> {completed|failed} exactly once; terminal states
// are never rewritten except by an explicit reprocess request.
const (
	ParsingStatusPending    = "pending"
	ParsingStatusProcessing = "processing"
	ParsingStatusCompleted  = "completed"
	ParsingStatusFailed     = "failed"
)

type Document struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FundID        *uint     `gorm:"index" json:"fund_id"` // nil until resolved
	FileName      string    `gorm:"size:256;not null" json:"file_name"`
	ParsingStatus string    `gorm:"size:16;not null;index" json:"parsing_status"`
	ErrorMessage  string    `gorm:"size:1024" json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
