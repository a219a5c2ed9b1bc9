package repository

import (
	"context"
	"time"

	"earnly/internal/domain"
	"earnly/internal/models"

	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) WithTx(tx *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: tx}
}

func (r *WithdrawalRepository) Create(ctx context.Context, w *models.Withdrawal) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *WithdrawalRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&w).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

// MarkResolved settles or rejects a pending withdrawal; see
// SubmissionRepository.MarkResolved for the status guard.
func (r *WithdrawalRepository) MarkResolved(ctx context.Context, w *models.Withdrawal, status string, by uint, reason, providerRef string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", w.ID, domain.StatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"resolved_at":      at,
			"resolved_by":      by,
			"rejection_reason": reason,
			"provider_ref":     providerRef,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyResolved
	}
	w.Status = status
	w.ResolvedAt = &at
	w.ResolvedBy = &by
	w.RejectionReason = reason
	w.ProviderRef = providerRef
	return nil
}

func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID uint, page, limit int) ([]models.Withdrawal, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Withdrawal{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit, offset := paginate(page, limit)
	var list []models.Withdrawal
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

// List returns withdrawals with optional status filter, oldest first so the
// review queue is worked in arrival order.
func (r *WithdrawalRepository) List(ctx context.Context, status string, page, limit int) ([]models.Withdrawal, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Withdrawal{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit, offset := paginate(page, limit)
	var list []models.Withdrawal
	err := q.Order("created_at ASC").Order("id ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}
