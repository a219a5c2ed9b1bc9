package models

import "time"

// Submission is one attempt at a task. RewardCents is copied from the task at
// creation and never recomputed.
type Submission struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	TaskID          uint       `gorm:"not null;index" json:"task_id"`
	ProofRef        string     `gorm:"size:512" json:"proof_ref,omitempty"`
	ProofText       string     `gorm:"type:text" json:"proof_text,omitempty"`
	RewardCents     int64      `gorm:"not null" json:"reward_cents"`
	Status          string     `gorm:"size:20;not null;index" json:"status"`
	RejectionReason string     `gorm:"size:255" json:"rejection_reason,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at"`
	ResolvedBy      *uint      `json:"resolved_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

func (Submission) TableName() string { return "submissions" }
