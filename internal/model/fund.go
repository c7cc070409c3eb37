package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fund is created automatically from document front-matter on first reference.
// NameNormalized carries a unique index so concurrent find-or-create degrades
// to a conflict-retried lookup outside the single-worker deployment.
type Fund struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	Name           string           `gorm:"size:256;not null" json:"name"`
	NameNormalized string           `gorm:"size:256;not null;uniqueIndex" json:"-"`
	GPName         string           `gorm:"size:256" json:"gp_name"`
	VintageYear    int              `json:"vintage_year"` // 0 = unknown
	FundType       string           `gorm:"size:64" json:"fund_type"`
	NAV            *decimal.Decimal `gorm:"type:decimal(24,4)" json:"nav"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NormalizeFundName produces the case-insensitive match key for fund lookup.
func NormalizeFundName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
