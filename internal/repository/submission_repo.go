package repository

import (
	"context"
	"time"

	"earnly/internal/domain"
	"earnly/internal/models"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) WithTx(tx *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: tx}
}

func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var s models.Submission
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// MarkResolved moves a pending submission to a terminal status. The status
// guard in the WHERE clause makes a second resolution affect no rows, which is
// reported as ErrAlreadyResolved.
func (r *SubmissionRepository) MarkResolved(ctx context.Context, s *models.Submission, status string, by uint, reason string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ? AND status = ?", s.ID, domain.StatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"resolved_at":      at,
			"resolved_by":      by,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyResolved
	}
	s.Status = status
	s.ResolvedAt = &at
	s.ResolvedBy = &by
	s.RejectionReason = reason
	return nil
}

// ListByUser returns a user's submissions, newest first.
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID uint, page, limit int) ([]models.Submission, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Submission{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit, offset := paginate(page, limit)
	var list []models.Submission
	err := q.Preload("Task", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

// List returns submissions with optional status filter.
func (r *SubmissionRepository) List(ctx context.Context, status string, page, limit int) ([]models.Submission, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Submission{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit, offset := paginate(page, limit)
	var list []models.Submission
	err := q.Preload("Task", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("created_at ASC").Order("id ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}
