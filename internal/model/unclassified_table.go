package model

import (
	"encoding/json"
	"time"
)

// UnclassifiedTable preserves a raw table the classifier could not place, for
// manual review. Header and rows are stored as JSON.
type UnclassifiedTable struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	PageNumber int       `json:"page_number"`
	Header     string    `gorm:"type:text" json:"-"`
	Rows       string    `gorm:"type:text" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

func (t *UnclassifiedTable) SetTable(header []string, rows [][]string) {
	h, _ := json.Marshal(header)
	r, _ := json.Marshal(rows)
	t.Header = string(h)
	t.Rows = string(r)
}

func (t *UnclassifiedTable) Table() (header []string, rows [][]string) {
	_ = json.Unmarshal([]byte(t.Header), &header)
	_ = json.Unmarshal([]byte(t.Rows), &rows)
	return header, rows
}
