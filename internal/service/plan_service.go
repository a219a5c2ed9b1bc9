package service

import (
	"context"
	"fmt"
	"time"

	"earnly/internal/domain"
	"earnly/internal/ledger"
	"earnly/internal/models"
	"earnly/internal/rbac"
	"earnly/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var maxCommission = decimal.NewFromInt(100)

type PlanService struct {
	db     *gorm.DB
	gate   *rbac.Gate
	ledger *ledger.Ledger
	audit  *AuditService
	plans  *repository.PlanRepository
	users  *repository.UserRepository
}

func NewPlanService(db *gorm.DB, gate *rbac.Gate, l *ledger.Ledger, audit *AuditService, plans *repository.PlanRepository, users *repository.UserRepository) *PlanService {
	return &PlanService{db: db, gate: gate, ledger: l, audit: audit, plans: plans, users: users}
}

func (s *PlanService) ListPlans(ctx context.Context) ([]models.Plan, error) {
	return s.plans.ListActive(ctx)
}

// AcquirePlan subscribes the actor to planID, charging its price. Acquiring
// again restarts the window with a fresh quota; windows do not stack.
func (s *PlanService) AcquirePlan(ctx context.Context, actor domain.Actor, planID uint) (*models.Account, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if user.IsBanned() {
		return nil, domain.ErrAccessDenied
	}
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, domain.ErrNotFound
	}
	return s.ledger.Apply(ctx, actor.ID, func(t *ledger.Tx) error {
		if plan.PriceCents > 0 {
			ref := fmt.Sprintf("plan:%d:%d", plan.ID, t.Now.UnixNano())
			if err := t.Debit(plan.PriceCents, domain.WalletTxTypePlanPurchase, ref); err != nil {
				return err
			}
		}
		start := t.Now
		expiry := start.Add(time.Duration(plan.ValidityDays) * 24 * time.Hour)
		a := t.Account
		a.CurrentPlanID = &plan.ID
		a.PlanStatus = domain.PlanStatusActive
		a.PlanStartDate = &start
		a.PlanExpiryDate = &expiry
		a.DailyLimit = plan.DailyLimit
		a.CompletedTasksToday = 0
		a.LastTaskDate = t.Today()
		return nil
	})
}

// PublishPlan adds a plan to the catalog, retiring the one it supersedes.
func (s *PlanService) PublishPlan(ctx context.Context, actor domain.Actor, req domain.PublishPlanRequest) (*models.Plan, error) {
	if err := s.gate.Require(actor, rbac.ManagePlans); err != nil {
		return nil, err
	}
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	pct := decimal.Zero
	if req.CommissionPercent != "" {
		var err error
		if pct, err = decimal.NewFromString(req.CommissionPercent); err != nil {
			return nil, domain.Validationf("commission_percent: %v", err)
		}
	}
	if pct.IsNegative() || pct.GreaterThan(maxCommission) {
		return nil, domain.Validationf("commission_percent must be between 0 and 100")
	}
	plan := &models.Plan{
		Name:              req.Name,
		PriceCents:        req.PriceCents,
		DailyLimit:        req.DailyLimit,
		ValidityDays:      req.ValidityDays,
		CommissionPercent: pct.Round(2),
		SortOrder:         req.SortOrder,
		Active:            true,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.plans.WithTx(tx)
		if err := repo.Create(ctx, plan); err != nil {
			return err
		}
		details := map[string]interface{}{
			"name":               plan.Name,
			"price_cents":        plan.PriceCents,
			"daily_limit":        plan.DailyLimit,
			"validity_days":      plan.ValidityDays,
			"commission_percent": plan.CommissionPercent.String(),
		}
		if req.Supersedes != nil {
			if err := repo.Retire(ctx, *req.Supersedes, plan.ID); err != nil {
				return err
			}
			details["supersedes"] = *req.Supersedes
		}
		return s.audit.Append(ctx, tx, AuditEntry{
			Actor:      actor,
			Action:     domain.ActionPublishPlan,
			TargetType: domain.TargetPlan,
			TargetID:   plan.ID,
			Details:    details,
		})
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}
