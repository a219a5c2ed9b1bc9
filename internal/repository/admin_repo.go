package repository

import (
	"context"

	"earnly/internal/domain"
	"earnly/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DashboardStats are real aggregates over the ledger tables.
type DashboardStats struct {
	TotalUsers           int64 `json:"total_users"`
	BannedUsers          int64 `json:"banned_users"`
	ActivePlans          int64 `json:"active_plans"`
	PendingSubmissions   int64 `json:"pending_submissions"`
	ApprovedSubmissions  int64 `json:"approved_submissions"`
	PendingWithdrawals   int64 `json:"pending_withdrawals"`
	PendingPayoutCents   int64 `json:"pending_payout_cents"`
	TotalPaidOutCents    int64 `json:"total_paid_out_cents"`
	TotalRewardsCents    int64 `json:"total_rewards_cents"`
	TotalCommissionCents int64 `json:"total_commission_cents"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) count(ctx context.Context, model interface{}, dst *int64, where string, args ...interface{}) func() error {
	return func() error {
		q := r.db.WithContext(ctx).Model(model)
		if where != "" {
			q = q.Where(where, args...)
		}
		return q.Count(dst).Error
	}
}

func (r *AdminRepository) sum(ctx context.Context, model interface{}, column string, dst *int64, where string, args ...interface{}) func() error {
	return func() error {
		var out struct{ Total int64 }
		err := r.db.WithContext(ctx).Model(model).
			Select("COALESCE(SUM("+column+"), 0) as total").
			Where(where, args...).Scan(&out).Error
		*dst = out.Total
		return err
	}
}

// GetDashboardStats runs the aggregate queries concurrently.
func (r *AdminRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var s DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(r.count(gctx, &models.User{}, &s.TotalUsers, ""))
	g.Go(r.count(gctx, &models.User{}, &s.BannedUsers, "status = ?", domain.UserStatusBanned))
	g.Go(r.count(gctx, &models.Account{}, &s.ActivePlans, "plan_status = ?", domain.PlanStatusActive))
	g.Go(r.count(gctx, &models.Submission{}, &s.PendingSubmissions, "status = ?", domain.StatusPending))
	g.Go(r.count(gctx, &models.Submission{}, &s.ApprovedSubmissions, "status = ?", domain.StatusApproved))
	g.Go(r.count(gctx, &models.Withdrawal{}, &s.PendingWithdrawals, "status = ?", domain.StatusPending))
	g.Go(r.sum(gctx, &models.Withdrawal{}, "amount_cents", &s.PendingPayoutCents, "status = ?", domain.StatusPending))
	g.Go(r.sum(gctx, &models.Withdrawal{}, "amount_cents", &s.TotalPaidOutCents, "status = ?", domain.StatusApproved))
	g.Go(r.sum(gctx, &models.WalletTransaction{}, "amount_cents", &s.TotalRewardsCents, "type = ?", domain.WalletTxTypeTaskReward))
	g.Go(r.sum(gctx, &models.WalletTransaction{}, "amount_cents", &s.TotalCommissionCents, "type = ?", domain.WalletTxTypeReferralCommission))
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListUsers returns users with search, role/status filter, and pagination.
func (r *AdminRepository) ListUsers(ctx context.Context, search, role, status string, page, limit int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		q = q.Where("username LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit, offset := paginate(page, limit)
	var users []models.User
	err := q.Preload("Account").Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}
