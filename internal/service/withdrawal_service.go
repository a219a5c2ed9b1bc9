package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"earnly/internal/domain"
	"earnly/internal/ledger"
	"earnly/internal/models"
	"earnly/internal/rbac"
	"earnly/internal/repository"
	"earnly/pkg/payout"

	"github.com/google/uuid"
)

type WithdrawalService struct {
	gate        *rbac.Gate
	ledger      *ledger.Ledger
	audit       *AuditService
	settings    *SettingsService
	withdrawals *repository.WithdrawalRepository
	users       *repository.UserRepository
	provider    payout.Provider
	currency    string
	log         *slog.Logger
}

func NewWithdrawalService(
	gate *rbac.Gate,
	l *ledger.Ledger,
	audit *AuditService,
	settings *SettingsService,
	withdrawals *repository.WithdrawalRepository,
	users *repository.UserRepository,
	provider payout.Provider,
	currency string,
) *WithdrawalService {
	return &WithdrawalService{
		gate:        gate,
		ledger:      l,
		audit:       audit,
		settings:    settings,
		withdrawals: withdrawals,
		users:       users,
		provider:    provider,
		currency:    currency,
		log:         slog.Default().With("component", "withdrawal"),
	}
}

// Create reserves the amount by debiting it at request time; a rejection
// refunds it.
func (s *WithdrawalService) Create(ctx context.Context, actor domain.Actor, req domain.CreateWithdrawalRequest) (*models.Withdrawal, error) {
	req.Method = strings.ToUpper(strings.TrimSpace(req.Method))
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	if minCents := s.settings.MinWithdrawalCents(ctx); req.AmountCents <= 0 || req.AmountCents < minCents {
		return nil, fmt.Errorf("%w: minimum is %d", domain.ErrBelowMinimum, minCents)
	}
	if maxCents := s.settings.MaxWithdrawalCents(ctx); maxCents > 0 && req.AmountCents > maxCents {
		return nil, domain.Validationf("amount exceeds the maximum of %d", maxCents)
	}
	dest, err := NormalizeDestination(req.Method, req.Destination)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if user.IsBanned() {
		return nil, domain.ErrAccessDenied
	}

	w := &models.Withdrawal{
		UserID:      actor.ID,
		OrderID:     "wd-" + uuid.NewString(),
		AmountCents: req.AmountCents,
		Method:      req.Method,
		Destination: dest,
		Status:      domain.StatusPending,
	}
	_, err = s.ledger.Apply(ctx, actor.ID, func(t *ledger.Tx) error {
		if err := t.Debit(w.AmountCents, domain.WalletTxTypeWithdrawalHold, w.OrderID); err != nil {
			return err
		}
		w.ID = 0
		return s.withdrawals.WithTx(t.DB).Create(t.Context(), w)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("withdrawal requested", "order_id", w.OrderID, "user_id", w.UserID, "amount_cents", w.AmountCents, "method", w.Method)
	return w, nil
}

// Resolve approves (hands the payout to the provider) or rejects (refunds) a
// pending withdrawal. OrderID is passed to the provider as the idempotency
// key.
func (s *WithdrawalService) Resolve(ctx context.Context, actor domain.Actor, id uint, req domain.ResolveRequest) (*models.Withdrawal, error) {
	if err := s.gate.Require(actor, rbac.ReviewWithdrawals); err != nil {
		return nil, err
	}
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	w, err := s.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status != domain.StatusPending {
		return nil, domain.ErrAlreadyResolved
	}
	approve := req.Decision == domain.DecisionApprove
	reason := ""
	if !approve {
		reason = strings.TrimSpace(req.Reason)
	}

	var sent *payout.Result
	_, err = s.ledger.Apply(ctx, w.UserID, func(t *ledger.Tx) error {
		repo := s.withdrawals.WithTx(t.DB)
		current, err := repo.GetByID(t.Context(), w.ID)
		if err != nil {
			return err
		}
		if current.Status != domain.StatusPending {
			return domain.ErrAlreadyResolved
		}
		details := map[string]interface{}{
			"order_id":     w.OrderID,
			"user_id":      w.UserID,
			"amount_cents": w.AmountCents,
			"method":       w.Method,
		}
		entry := AuditEntry{Actor: actor, TargetType: domain.TargetWithdrawal, TargetID: w.ID, Details: details}
		if approve {
			if sent == nil {
				if sent, err = s.provider.Send(t.Context(), payout.Request{
					OrderID:     w.OrderID,
					UserID:      w.UserID,
					AmountCents: w.AmountCents,
					Currency:    s.currency,
					Method:      w.Method,
					Destination: w.Destination,
				}); err != nil {
					return fmt.Errorf("payout %s: %w", w.OrderID, err)
				}
			}
			if err := repo.MarkResolved(t.Context(), w, domain.StatusApproved, actor.ID, "", sent.Reference, t.Now); err != nil {
				return err
			}
			details["provider_ref"] = sent.Reference
			entry.Action = domain.ActionApproveWithdrawal
		} else {
			if err := t.Credit(w.AmountCents, domain.WalletTxTypeWithdrawalRefund, w.OrderID); err != nil {
				return err
			}
			if err := repo.MarkResolved(t.Context(), w, domain.StatusRejected, actor.ID, reason, "", t.Now); err != nil {
				return err
			}
			if reason != "" {
				details["reason"] = reason
			}
			entry.Action = domain.ActionRejectWithdrawal
		}
		return s.audit.Append(t.Context(), t.DB, entry)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("withdrawal resolved", "order_id", w.OrderID, "status", w.Status, "admin_id", actor.ID)
	return w, nil
}

func (s *WithdrawalService) ListMine(ctx context.Context, actor domain.Actor, page, limit int) ([]models.Withdrawal, int64, error) {
	return s.withdrawals.ListByUser(ctx, actor.ID, page, limit)
}

func (s *WithdrawalService) List(ctx context.Context, actor domain.Actor, status string, page, limit int) ([]models.Withdrawal, int64, error) {
	if err := s.gate.Require(actor, rbac.ReviewWithdrawals); err != nil {
		return nil, 0, err
	}
	status = strings.ToUpper(status)
	if err := validStatusFilter(status); err != nil {
		return nil, 0, err
	}
	return s.withdrawals.List(ctx, status, page, limit)
}
