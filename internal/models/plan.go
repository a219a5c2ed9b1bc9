package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a published catalog entry. Published plans are never edited; a
// successor is published and the old one retired.
type Plan struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Name              string          `gorm:"size:100;not null" json:"name"`
	PriceCents        int64           `gorm:"not null;default:0" json:"price_cents"`
	DailyLimit        int             `gorm:"not null" json:"daily_limit"`
	ValidityDays      int             `gorm:"not null" json:"validity_days"`
	CommissionPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"commission_percent"`
	SortOrder         int             `gorm:"not null;default:0" json:"sort_order"`
	Active            bool            `gorm:"not null;index" json:"active"`
	SupersededByID    *uint           `json:"superseded_by_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (Plan) TableName() string { return "plans" }
