package repository

import (
	"context"

	"earnly/internal/models"

	"gorm.io/gorm"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) WithTx(tx *gorm.DB) *PlanRepository {
	return &PlanRepository{db: tx}
}

// ListActive returns the purchasable catalog in display order.
func (r *PlanRepository) ListActive(ctx context.Context) ([]models.Plan, error) {
	var list []models.Plan
	err := r.db.WithContext(ctx).Where("active = ?", true).
		Order("sort_order ASC").Order("price_cents ASC").Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *PlanRepository) GetByID(ctx context.Context, id uint) (*models.Plan, error) {
	var p models.Plan
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PlanRepository) Create(ctx context.Context, p *models.Plan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Retire marks an active plan as superseded. It is the only write a published
// plan ever receives.
func (r *PlanRepository) Retire(ctx context.Context, id, successorID uint) error {
	res := r.db.WithContext(ctx).Model(&models.Plan{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]interface{}{"active": false, "superseded_by_id": successorID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}
