package model

import "time"

// Conversation holds an ordered message history. FundID tracks the last fund
// resolved for the conversation so follow-up questions can carry context.
type Conversation struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	ConversationID string    `gorm:"size:36;not null;uniqueIndex" json:"conversation_id"`
	FundID         *uint     `gorm:"index" json:"fund_id"`
	Title          string    `gorm:"size:256" json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID string    `gorm:"size:36;not null;index" json:"conversation_id"`
	Role           string    `gorm:"size:16;not null" json:"role"` // user | assistant
	Content        string    `gorm:"type:text;not null" json:"content"`
	Sources        string    `gorm:"type:text" json:"-"` // JSON, assistant turns only
	CreatedAt      time.Time `json:"created_at"`
}
