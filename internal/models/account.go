package models

import (
	"time"

	"earnly/internal/domain"
)

// Account is the ledger state of one user: balance, plan window and today's
// quota usage. Version is bumped on every write and checked on update.
type Account struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	UserID              uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	BalanceCents        int64      `gorm:"not null;default:0" json:"balance_cents"`
	CurrentPlanID       *uint      `gorm:"index" json:"current_plan_id"`
	PlanStatus          string     `gorm:"size:10;not null;default:'none'" json:"plan_status"`
	PlanStartDate       *time.Time `json:"plan_start_date"`
	PlanExpiryDate      *time.Time `json:"plan_expiry_date"`
	DailyLimit          int        `gorm:"not null;default:0" json:"daily_limit"`
	CompletedTasksToday int        `gorm:"not null;default:0" json:"completed_tasks_today"`
	LastTaskDate        string     `gorm:"size:10" json:"-"` // YYYY-MM-DD in the quota timezone
	Version             int64      `gorm:"not null;default:0" json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	CurrentPlan *Plan `gorm:"foreignKey:CurrentPlanID" json:"current_plan,omitempty"`
}

func (Account) TableName() string {
	return "accounts"
}

// Refresh applies the derived state for now: an elapsed plan window expires
// and collapses the quota, and a new calendar day resets the task counter.
// It reports whether anything changed.
func (a *Account) Refresh(now time.Time, loc *time.Location) bool {
	changed := false
	if a.PlanStatus == domain.PlanStatusActive && (a.PlanExpiryDate == nil || !now.Before(*a.PlanExpiryDate)) {
		a.PlanStatus = domain.PlanStatusExpired
		a.DailyLimit = 0
		changed = true
	}
	today := now.In(loc).Format("2006-01-02")
	if a.LastTaskDate != today && a.CompletedTasksToday != 0 {
		a.CompletedTasksToday = 0
		changed = true
	}
	return changed
}

func (a *Account) PlanActive() bool { return a.PlanStatus == domain.PlanStatusActive }

func (a *Account) RemainingToday() int {
	if !a.PlanActive() || a.CompletedTasksToday >= a.DailyLimit {
		return 0
	}
	return a.DailyLimit - a.CompletedTasksToday
}
