package model

import "time"

// DocumentPayload stores the extracted intake content (tables + page text) so
// the ingest worker can process, and later reprocess, a document keyed only by
// its id. Replaced wholesale on re-upload.
type DocumentPayload struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;uniqueIndex" json:"document_id"`
	Payload    string    `gorm:"type:longtext;not null" json:"-"` // JSON
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
