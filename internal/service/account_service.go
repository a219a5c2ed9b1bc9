package service

import (
	"context"
	"strings"
	"time"

	"earnly/internal/domain"
	"earnly/internal/ledger"
	"earnly/internal/models"
	"earnly/internal/rbac"
	"earnly/internal/repository"

	"gorm.io/gorm"
)

// AccountView is what a user sees of their own ledger.
type AccountView struct {
	UserID              uint         `json:"user_id"`
	Username            string       `json:"username"`
	Role                string       `json:"role"`
	Status              string       `json:"status"`
	Currency            string       `json:"currency"`
	BalanceCents        int64        `json:"balance_cents"`
	PlanStatus          string       `json:"plan_status"`
	Plan                *models.Plan `json:"plan,omitempty"`
	PlanStartDate       *time.Time   `json:"plan_start_date"`
	PlanExpiryDate      *time.Time   `json:"plan_expiry_date"`
	DailyLimit          int          `json:"daily_limit"`
	CompletedTasksToday int          `json:"completed_tasks_today"`
	RemainingToday      int          `json:"remaining_today"`
	ReferralCode        string       `json:"referral_code,omitempty"`
	ReferredCount       int64        `json:"referred_count"`
}

type AccountService struct {
	db        *gorm.DB
	gate      *rbac.Gate
	ledger    *ledger.Ledger
	audit     *AuditService
	users     *repository.UserRepository
	plans     *repository.PlanRepository
	wallet    *repository.WalletRepository
	admin     *repository.AdminRepository
	referrals *repository.ReferralRepository
	currency  string
}

func NewAccountService(
	db *gorm.DB,
	gate *rbac.Gate,
	l *ledger.Ledger,
	audit *AuditService,
	users *repository.UserRepository,
	plans *repository.PlanRepository,
	wallet *repository.WalletRepository,
	admin *repository.AdminRepository,
	referrals *repository.ReferralRepository,
	currency string,
) *AccountService {
	return &AccountService{
		db: db, gate: gate, ledger: l, audit: audit, users: users, plans: plans,
		wallet: wallet, admin: admin, referrals: referrals, currency: currency,
	}
}

// GetAccount returns the caller's account with plan expiry and the daily
// reset applied as of now.
func (s *AccountService) GetAccount(ctx context.Context, actor domain.Actor) (*AccountView, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	acc, err := s.ledger.Snapshot(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	v := &AccountView{
		UserID:              user.ID,
		Username:            user.Username,
		Role:                user.Role,
		Status:              user.Status,
		Currency:            s.currency,
		BalanceCents:        acc.BalanceCents,
		PlanStatus:          acc.PlanStatus,
		PlanStartDate:       acc.PlanStartDate,
		PlanExpiryDate:      acc.PlanExpiryDate,
		DailyLimit:          acc.DailyLimit,
		CompletedTasksToday: acc.CompletedTasksToday,
		RemainingToday:      acc.RemainingToday(),
	}
	if acc.CurrentPlanID != nil {
		if v.Plan, err = s.plans.GetByID(ctx, *acc.CurrentPlanID); err != nil {
			return nil, err
		}
	}
	if s.referrals != nil {
		rc, err := s.referrals.GetOrCreateCode(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		v.ReferralCode = rc.Code
		if v.ReferredCount, err = s.referrals.CountReferred(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (s *AccountService) WalletHistory(ctx context.Context, actor domain.Actor, page, limit int) ([]models.WalletTransaction, int64, error) {
	return s.wallet.ListByUser(ctx, actor.ID, page, limit)
}

func (s *AccountService) ListUsers(ctx context.Context, actor domain.Actor, search, role, status string, page, limit int) ([]models.User, int64, error) {
	if err := s.gate.Require(actor, rbac.ManageAccounts); err != nil {
		return nil, 0, err
	}
	return s.admin.ListUsers(ctx, strings.TrimSpace(search), role, status, page, limit)
}

// loadTarget fetches the user an admin action applies to. Actions on a
// super_admin require a super_admin, and nobody acts on themselves.
func (s *AccountService) loadTarget(ctx context.Context, tx *gorm.DB, actor domain.Actor, userID uint) (*models.User, error) {
	if actor.ID == userID {
		return nil, domain.ErrAccessDenied
	}
	target, err := s.users.WithTx(tx).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target.Role == domain.RoleSuperAdmin && actor.Role != domain.RoleSuperAdmin {
		return nil, domain.ErrAccessDenied
	}
	return target, nil
}

func (s *AccountService) Ban(ctx context.Context, actor domain.Actor, userID uint, reason string) (*models.User, error) {
	return s.setStatus(ctx, actor, userID, domain.UserStatusBanned, domain.ActionBanUser, reason)
}

func (s *AccountService) Unban(ctx context.Context, actor domain.Actor, userID uint, reason string) (*models.User, error) {
	return s.setStatus(ctx, actor, userID, domain.UserStatusActive, domain.ActionUnbanUser, reason)
}

func (s *AccountService) setStatus(ctx context.Context, actor domain.Actor, userID uint, status, action, reason string) (*models.User, error) {
	if err := s.gate.Require(actor, rbac.ManageAccounts); err != nil {
		return nil, err
	}
	var target *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if target, err = s.loadTarget(ctx, tx, actor, userID); err != nil {
			return err
		}
		if target.Status == status {
			return domain.Validationf("user is already %s", status)
		}
		if err := s.users.WithTx(tx).UpdateFields(ctx, target.ID, map[string]interface{}{"status": status}); err != nil {
			return err
		}
		target.Status = status
		details := map[string]interface{}{"username": target.Username}
		if r := strings.TrimSpace(reason); r != "" {
			details["reason"] = r
		}
		return s.audit.Append(ctx, tx, AuditEntry{
			Actor: actor, Action: action, TargetType: domain.TargetUser, TargetID: target.ID, Details: details,
		})
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// ChangeRole assigns role to userID. Granting super_admin takes a
// super_admin.
func (s *AccountService) ChangeRole(ctx context.Context, actor domain.Actor, userID uint, role string) (*models.User, error) {
	if err := s.gate.Require(actor, rbac.ManageAccounts); err != nil {
		return nil, err
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if !domain.IsKnownRole(role) {
		return nil, domain.Validationf("unknown role %q", role)
	}
	if role == domain.RoleSuperAdmin && actor.Role != domain.RoleSuperAdmin {
		return nil, domain.ErrAccessDenied
	}
	var target *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if target, err = s.loadTarget(ctx, tx, actor, userID); err != nil {
			return err
		}
		from := target.Role
		if from == role {
			return domain.Validationf("user already has role %s", role)
		}
		if err := s.users.WithTx(tx).UpdateFields(ctx, target.ID, map[string]interface{}{"role": role}); err != nil {
			return err
		}
		target.Role = role
		return s.audit.Append(ctx, tx, AuditEntry{
			Actor: actor, Action: domain.ActionChangeRole, TargetType: domain.TargetUser, TargetID: target.ID,
			Details: map[string]interface{}{"username": target.Username, "from": from, "to": role},
		})
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}
