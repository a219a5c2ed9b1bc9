package models

import (
	"time"

	"earnly/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index;default:'user'" json:"role"`
	Status       string         `gorm:"size:20;not null;index;default:'active'" json:"status"`
	ReferredByID *uint          `gorm:"index" json:"referred_by_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Account *Account `gorm:"foreignKey:UserID" json:"account,omitempty"`
}

func (u *User) IsBanned() bool { return u.Status == domain.UserStatusBanned }
func (u *User) IsAdmin() bool  { return u.Role != domain.RoleUser }
