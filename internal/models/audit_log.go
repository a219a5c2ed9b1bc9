package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is append-only: rows are inserted and read, never updated.
type AuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	AdminID    uint           `gorm:"not null;index" json:"admin_id"`
	AdminName  string         `gorm:"size:64;not null" json:"admin_name"`
	Action     string         `gorm:"size:50;not null;index" json:"action"`
	TargetType string         `gorm:"size:30;index" json:"target_type"`
	TargetID   string         `gorm:"size:64;index" json:"target_id"`
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"timestamp"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
