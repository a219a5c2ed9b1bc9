// Package ledger owns every read-modify-write of account state. Each call to
// Apply runs inside one database transaction scoped to one account and is
// committed only if the account's version is unchanged since it was read.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"earnly/internal/domain"
	"earnly/internal/models"
	"earnly/internal/repository"

	"gorm.io/gorm"
)

const DefaultMaxAttempts = 3

type Options struct {
	MaxAttempts int
	Location    *time.Location // day boundary for the daily quota
	Now         func() time.Time
}

type Ledger struct {
	db          *gorm.DB
	accounts    *repository.AccountRepository
	wallet      *repository.WalletRepository
	maxAttempts int
	loc         *time.Location
	now         func() time.Time
}

func New(db *gorm.DB, opts Options) *Ledger {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Ledger{
		db:          db,
		accounts:    repository.NewAccountRepository(db),
		wallet:      repository.NewWalletRepository(db),
		maxAttempts: opts.MaxAttempts,
		loc:         opts.Location,
		now:         opts.Now,
	}
}

// Now returns the ledger clock.
func (l *Ledger) Now() time.Time { return l.now() }

// Location returns the timezone that defines "today" for quotas.
func (l *Ledger) Location() *time.Location { return l.loc }

// Tx is handed to Apply callbacks. DB is the open transaction; anything
// written through it commits or rolls back together with the account.
type Tx struct {
	ctx     context.Context
	DB      *gorm.DB
	Account *models.Account
	Now     time.Time
	loc     *time.Location
	wallet  *repository.WalletRepository
}

func (t *Tx) Context() context.Context { return t.ctx }

// Today is the current quota day in YYYY-MM-DD form.
func (t *Tx) Today() string { return t.Now.In(t.loc).Format("2006-01-02") }

// Credit adds amount to the balance and records why.
func (t *Tx) Credit(amountCents int64, txType, reference string) error {
	if amountCents < 0 {
		return fmt.Errorf("credit of negative amount %d", amountCents)
	}
	t.Account.BalanceCents += amountCents
	return t.wallet.RecordTransaction(t.ctx, t.Account.UserID, amountCents, t.Account.BalanceCents, txType, reference)
}

// Debit removes amount from the balance, refusing to go below zero.
func (t *Tx) Debit(amountCents int64, txType, reference string) error {
	if amountCents < 0 {
		return fmt.Errorf("debit of negative amount %d", amountCents)
	}
	if t.Account.BalanceCents < amountCents {
		return domain.ErrInsufficientFunds
	}
	t.Account.BalanceCents -= amountCents
	return t.wallet.RecordTransaction(t.ctx, t.Account.UserID, -amountCents, t.Account.BalanceCents, txType, reference)
}

// Apply loads the account of userID, applies derived state (plan expiry, daily
// reset), runs fn and saves the result with a version check. A version
// mismatch rolls everything back and retries, up to the configured number of
// attempts, after which ErrConflict is returned. Any other error from fn
// aborts without retry.
func (l *Ledger) Apply(ctx context.Context, userID uint, fn func(*Tx) error) (*models.Account, error) {
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		var out *models.Account
		err := l.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
			acc, err := l.accounts.WithTx(db).GetByUserID(ctx, userID)
			if err != nil {
				return err
			}
			now := l.now()
			acc.Refresh(now, l.loc)
			t := &Tx{ctx: ctx, DB: db, Account: acc, Now: now, loc: l.loc, wallet: l.wallet.WithTx(db)}
			if err := fn(t); err != nil {
				return err
			}
			if err := l.accounts.WithTx(db).SaveVersioned(ctx, acc); err != nil {
				return err
			}
			out = acc
			return nil
		})
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		slog.Warn("ledger version conflict", "user_id", userID, "attempt", attempt)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return nil, domain.ErrConflict
}

// Snapshot returns the account with derived state applied, without writing.
func (l *Ledger) Snapshot(ctx context.Context, userID uint) (*models.Account, error) {
	acc, err := l.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	acc.Refresh(l.now(), l.loc)
	return acc, nil
}

// Open creates the empty ledger account for a new user inside tx.
func (l *Ledger) Open(ctx context.Context, tx *gorm.DB, userID uint) (*models.Account, error) {
	acc := &models.Account{UserID: userID, PlanStatus: domain.PlanStatusNone}
	if err := l.accounts.WithTx(tx).Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}
