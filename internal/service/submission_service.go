package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"earnly/internal/domain"
	"earnly/internal/ledger"
	"earnly/internal/models"
	"earnly/internal/rbac"
	"earnly/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	errNoCommission = errors.New("no commission due")
	hundred         = decimal.NewFromInt(100)
)

type SubmissionService struct {
	gate        *rbac.Gate
	ledger      *ledger.Ledger
	audit       *AuditService
	settings    *SettingsService
	submissions *repository.SubmissionRepository
	tasks       *repository.TaskRepository
	users       *repository.UserRepository
	plans       *repository.PlanRepository
	wallet      *repository.WalletRepository
	log         *slog.Logger
}

func NewSubmissionService(
	gate *rbac.Gate,
	l *ledger.Ledger,
	audit *AuditService,
	settings *SettingsService,
	submissions *repository.SubmissionRepository,
	tasks *repository.TaskRepository,
	users *repository.UserRepository,
	plans *repository.PlanRepository,
	wallet *repository.WalletRepository,
) *SubmissionService {
	return &SubmissionService{
		gate:        gate,
		ledger:      l,
		audit:       audit,
		settings:    settings,
		submissions: submissions,
		tasks:       tasks,
		users:       users,
		plans:       plans,
		wallet:      wallet,
		log:         slog.Default().With("component", "submission"),
	}
}

func submissionRef(id uint) string { return fmt.Sprintf("submission:%d", id) }

// Create records a pending submission and consumes one unit of today's quota.
func (s *SubmissionService) Create(ctx context.Context, actor domain.Actor, req domain.CreateSubmissionRequest) (*models.Submission, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	req.ProofRef = strings.TrimSpace(req.ProofRef)
	req.ProofText = strings.TrimSpace(req.ProofText)
	if (req.ProofRef == "") == (req.ProofText == "") {
		return nil, domain.ErrInvalidProof
	}
	task, err := s.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	if !task.Active {
		return nil, domain.ErrNotFound
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if user.IsBanned() {
		return nil, domain.ErrAccessDenied
	}

	var sub *models.Submission
	_, err = s.ledger.Apply(ctx, actor.ID, func(t *ledger.Tx) error {
		a := t.Account
		if !a.PlanActive() {
			return domain.ErrPlanExpired
		}
		if a.CompletedTasksToday >= a.DailyLimit {
			return domain.ErrQuotaExceeded
		}
		sub = &models.Submission{
			UserID:      actor.ID,
			TaskID:      task.ID,
			ProofRef:    req.ProofRef,
			ProofText:   req.ProofText,
			RewardCents: task.RewardCents,
			Status:      domain.StatusPending,
		}
		if err := s.submissions.WithTx(t.DB).Create(t.Context(), sub); err != nil {
			return err
		}
		a.CompletedTasksToday++
		a.LastTaskDate = t.Today()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Resolve approves or rejects a pending submission. The status change, the
// reward credit and the audit row commit together.
func (s *SubmissionService) Resolve(ctx context.Context, actor domain.Actor, id uint, req domain.ResolveRequest) (*models.Submission, error) {
	if err := s.gate.Require(actor, rbac.ReviewSubmissions); err != nil {
		return nil, err
	}
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.StatusPending {
		return nil, domain.ErrAlreadyResolved
	}
	approve := req.Decision == domain.DecisionApprove
	status, action, reason := domain.StatusApproved, domain.ActionApproveSubmission, ""
	if !approve {
		status, action, reason = domain.StatusRejected, domain.ActionRejectSubmission, strings.TrimSpace(req.Reason)
	}

	_, err = s.ledger.Apply(ctx, sub.UserID, func(t *ledger.Tx) error {
		if err := s.submissions.WithTx(t.DB).MarkResolved(t.Context(), sub, status, actor.ID, reason, t.Now); err != nil {
			return err
		}
		if approve {
			if err := t.Credit(sub.RewardCents, domain.WalletTxTypeTaskReward, submissionRef(sub.ID)); err != nil {
				return err
			}
		}
		details := map[string]interface{}{"user_id": sub.UserID, "reward_cents": sub.RewardCents}
		if reason != "" {
			details["reason"] = reason
		}
		return s.audit.Append(t.Context(), t.DB, AuditEntry{
			Actor:      actor,
			Action:     action,
			TargetType: domain.TargetSubmission,
			TargetID:   sub.ID,
			Details:    details,
		})
	})
	if err != nil {
		return nil, err
	}
	if approve {
		s.payCommission(ctx, sub)
	}
	return sub, nil
}

// payCommission credits the submitter's referrer a share of an approved
// reward. It runs after the approval has committed and only logs failures.
func (s *SubmissionService) payCommission(ctx context.Context, sub *models.Submission) {
	if s.settings != nil && !s.settings.ReferralsEnabled(ctx) {
		return
	}
	user, err := s.users.GetByID(ctx, sub.UserID)
	if err != nil {
		s.log.Warn("commission: load submitter", "submission_id", sub.ID, "error", err)
		return
	}
	if user.ReferredByID == nil {
		return
	}
	ref := submissionRef(sub.ID)
	var paid int64
	_, err = s.ledger.Apply(ctx, *user.ReferredByID, func(t *ledger.Tx) error {
		a := t.Account
		if !a.PlanActive() || a.CurrentPlanID == nil {
			return errNoCommission
		}
		plan, err := s.plans.WithTx(t.DB).GetByID(t.Context(), *a.CurrentPlanID)
		if err != nil {
			return err
		}
		amount := decimal.NewFromInt(sub.RewardCents).Mul(plan.CommissionPercent).Div(hundred).Floor().IntPart()
		if amount <= 0 {
			return errNoCommission
		}
		done, err := s.wallet.WithTx(t.DB).Exists(t.Context(), a.UserID, domain.WalletTxTypeReferralCommission, ref)
		if err != nil {
			return err
		}
		if done {
			return errNoCommission
		}
		paid = amount
		return t.Credit(amount, domain.WalletTxTypeReferralCommission, ref)
	})
	switch {
	case errors.Is(err, errNoCommission):
	case err != nil:
		s.log.Error("commission: credit referrer", "submission_id", sub.ID, "referrer_id", *user.ReferredByID, "error", err)
	default:
		s.log.Info("referral commission paid", "submission_id", sub.ID, "referrer_id", *user.ReferredByID, "amount_cents", paid)
	}
}

func (s *SubmissionService) ListMine(ctx context.Context, actor domain.Actor, page, limit int) ([]models.Submission, int64, error) {
	return s.submissions.ListByUser(ctx, actor.ID, page, limit)
}

func validStatusFilter(status string) error {
	switch status {
	case "", domain.StatusPending, domain.StatusApproved, domain.StatusRejected:
		return nil
	}
	return domain.Validationf("unknown status %q", status)
}

func (s *SubmissionService) List(ctx context.Context, actor domain.Actor, status string, page, limit int) ([]models.Submission, int64, error) {
	if err := s.gate.Require(actor, rbac.ReviewSubmissions); err != nil {
		return nil, 0, err
	}
	status = strings.ToUpper(status)
	if err := validStatusFilter(status); err != nil {
		return nil, 0, err
	}
	return s.submissions.List(ctx, status, page, limit)
}
