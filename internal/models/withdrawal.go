package models

import "time"

type Withdrawal struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	OrderID         string     `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	AmountCents     int64      `gorm:"not null" json:"amount_cents"`
	Method          string     `gorm:"size:20;not null" json:"method"` // EASYPAISA, JAZZCASH, BANK
	Destination     string     `gorm:"size:64;not null" json:"destination"`
	Status          string     `gorm:"size:20;not null;index" json:"status"` // PENDING, APPROVED, REJECTED
	ProviderRef     string     `gorm:"size:128" json:"provider_ref,omitempty"`
	RejectionReason string     `gorm:"size:255" json:"rejection_reason,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at"`
	ResolvedBy      *uint      `json:"resolved_by"`
	CreatedAt       time.Time  `json:"requested_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
