package models

import "time"

// ReferralCode is a unique invite code belonging to a user.
type ReferralCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Code      string    `gorm:"uniqueIndex;size:20;not null" json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

func (ReferralCode) TableName() string { return "referral_codes" }
