package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"earnly/internal/database"
	"earnly/internal/domain"
	"earnly/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setup(t *testing.T, now time.Time) (*Ledger, *gorm.DB, uint) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	l := New(db, Options{Location: time.FixedZone("PKT", 5*3600), Now: func() time.Time { return now }})
	u := &models.User{Username: "worker", Email: "worker@example.com", Role: domain.RoleUser, Status: domain.UserStatusActive}
	require.NoError(t, db.Create(u).Error)
	_, err = l.Open(context.Background(), db, u.ID)
	require.NoError(t, err)
	return l, db, u.ID
}

func bumpVersion(tx *gorm.DB, userID uint) error {
	return tx.Model(&models.Account{}).Where("user_id = ?", userID).
		Update("version", gorm.Expr("version + 1")).Error
}

func TestApplyCreditsAndDebits(t *testing.T) {
	l, db, uid := setup(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	acc, err := l.Apply(ctx, uid, func(tx *Tx) error {
		return tx.Credit(500, domain.WalletTxTypeTaskReward, "submission:1")
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), acc.BalanceCents)
	assert.Equal(t, int64(1), acc.Version)

	_, err = l.Apply(ctx, uid, func(tx *Tx) error {
		return tx.Debit(600, domain.WalletTxTypeWithdrawalHold, "wd-1")
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	acc, err = l.Apply(ctx, uid, func(tx *Tx) error {
		return tx.Debit(200, domain.WalletTxTypeWithdrawalHold, "wd-2")
	})
	require.NoError(t, err)
	assert.Equal(t, int64(300), acc.BalanceCents)

	var txs []models.WalletTransaction
	require.NoError(t, db.Order("id").Find(&txs).Error)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(-200), txs[1].AmountCents)
	assert.Equal(t, int64(300), txs[1].BalanceAfter)

	_, err = l.Apply(ctx, uid, func(tx *Tx) error { return tx.Credit(-1, domain.WalletTxTypeTaskReward, "x") })
	assert.Error(t, err)
}

func TestApplyRetriesOnVersionConflict(t *testing.T) {
	l, db, uid := setup(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	attempts := 0
	acc, err := l.Apply(context.Background(), uid, func(tx *Tx) error {
		attempts++
		if attempts == 1 {
			// a concurrent writer got in between read and save
			if err := bumpVersion(tx.DB, uid); err != nil {
				return err
			}
		}
		return tx.Credit(100, domain.WalletTxTypeTaskReward, "submission:7")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, int64(100), acc.BalanceCents)

	var n int64
	require.NoError(t, db.Model(&models.WalletTransaction{}).Count(&n).Error)
	assert.Equal(t, int64(1), n, "first attempt rolled back")
}

func TestApplyGivesUpAfterMaxAttempts(t *testing.T) {
	l, db, uid := setup(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	attempts := 0
	_, err := l.Apply(context.Background(), uid, func(tx *Tx) error {
		attempts++
		if err := bumpVersion(tx.DB, uid); err != nil {
			return err
		}
		return tx.Credit(100, domain.WalletTxTypeTaskReward, "submission:8")
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, DefaultMaxAttempts, attempts)

	acc, err := l.Snapshot(context.Background(), uid)
	require.NoError(t, err)
	assert.Zero(t, acc.BalanceCents)
	assert.Zero(t, acc.Version)
	var n int64
	require.NoError(t, db.Model(&models.WalletTransaction{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestApplyDoesNotRetryOtherErrors(t *testing.T) {
	l, _, uid := setup(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	boom := errors.New("boom")
	attempts := 0
	_, err := l.Apply(context.Background(), uid, func(tx *Tx) error {
		attempts++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)

	_, err = l.Apply(context.Background(), 404, func(tx *Tx) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDuplicateCauseIsRejected(t *testing.T) {
	l, _, uid := setup(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	credit := func(tx *Tx) error { return tx.Credit(50, domain.WalletTxTypeTaskReward, "submission:1") }
	_, err := l.Apply(context.Background(), uid, credit)
	require.NoError(t, err)
	_, err = l.Apply(context.Background(), uid, credit)
	assert.Error(t, err)

	acc, err := l.Snapshot(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, int64(50), acc.BalanceCents)
}

func TestTodayUsesQuotaTimezone(t *testing.T) {
	// 21:30 UTC on the 10th is 02:30 on the 11th in PKT.
	l, _, uid := setup(t, time.Date(2026, 3, 10, 21, 30, 0, 0, time.UTC))
	_, err := l.Apply(context.Background(), uid, func(tx *Tx) error {
		assert.Equal(t, "2026-03-11", tx.Today())
		return nil
	})
	require.NoError(t, err)
}
