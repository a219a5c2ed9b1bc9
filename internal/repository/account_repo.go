package repository

import (
	"context"

	"earnly/internal/domain"
	"earnly/internal/models"

	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) WithTx(tx *gorm.DB) *AccountRepository {
	return &AccountRepository{db: tx}
}

func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	var a models.Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// SaveVersioned writes a's mutable columns only if the stored version still
// equals a.Version, then bumps a.Version. A lost race returns ErrConflict.
func (r *AccountRepository) SaveVersioned(ctx context.Context, a *models.Account) error {
	res := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND version = ?", a.ID, a.Version).
		Updates(map[string]interface{}{
			"balance_cents":         a.BalanceCents,
			"current_plan_id":       a.CurrentPlanID,
			"plan_status":           a.PlanStatus,
			"plan_start_date":       a.PlanStartDate,
			"plan_expiry_date":      a.PlanExpiryDate,
			"daily_limit":           a.DailyLimit,
			"completed_tasks_today": a.CompletedTasksToday,
			"last_task_date":        a.LastTaskDate,
			"version":               gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	a.Version++
	return nil
}
