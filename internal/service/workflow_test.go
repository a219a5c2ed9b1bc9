package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"earnly/internal/domain"
	"earnly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEarningScenario(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	worker := e.newUser(t, domain.RoleUser)
	admin := e.newUser(t, domain.RoleManager)
	plan := e.newPlan(t, 0, 1, 30, "0")
	task := e.newTask(t, 150)

	acc, err := e.plans.AcquirePlan(ctx, worker, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusActive, acc.PlanStatus)
	assert.Equal(t, 1, acc.DailyLimit)
	assert.Equal(t, int64(0), acc.BalanceCents)

	sub, err := e.submissions.Create(ctx, worker, textProof(task.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, sub.Status)
	assert.Equal(t, int64(150), sub.RewardCents)
	assert.Equal(t, 1, e.account(t, worker.ID).CompletedTasksToday)

	_, err = e.submissions.Create(ctx, worker, textProof(task.ID))
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	sub, err = e.submissions.Resolve(ctx, admin, sub.ID, approve())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, sub.Status)
	assert.Equal(t, int64(150), e.account(t, worker.ID).BalanceCents)
	assert.Equal(t, int64(1), e.auditCount(t, domain.ActionApproveSubmission))

	wd, err := e.withdrawals.Create(ctx, worker, domain.CreateWithdrawalRequest{
		AmountCents: 150, Method: domain.MethodEasyPaisa, Destination: "0300 1234567",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, wd.Status)
	assert.Equal(t, "923001234567", wd.Destination)
	assert.Equal(t, int64(0), e.account(t, worker.ID).BalanceCents)

	wd, err = e.withdrawals.Resolve(ctx, admin, wd.ID, reject("name mismatch"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, wd.Status)
	assert.Equal(t, int64(150), e.account(t, worker.ID).BalanceCents)
	assert.Equal(t, int64(1), e.auditCount(t, domain.ActionRejectWithdrawal))

	var entry models.AuditLog
	require.NoError(t, e.db.Where("action = ?", domain.ActionRejectWithdrawal).First(&entry).Error)
	assert.Equal(t, admin.ID, entry.AdminID)
	assert.Equal(t, domain.TargetWithdrawal, entry.TargetType)
	assert.Contains(t, string(entry.Details), "name mismatch")
}

func TestBalanceConservation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	worker := e.activeWorker(t, 10)
	admin := e.newUser(t, domain.RoleSuperAdmin)
	task := e.newTask(t, 400)

	var approved int64
	for i := 0; i < 6; i++ {
		sub, err := e.submissions.Create(ctx, worker, textProof(task.ID))
		require.NoError(t, err)
		decision := approve()
		if i%3 == 2 {
			decision = reject("blurry")
		} else {
			approved += sub.RewardCents
		}
		_, err = e.submissions.Resolve(ctx, admin, sub.ID, decision)
		require.NoError(t, err)
	}
	require.Equal(t, approved, e.account(t, worker.ID).BalanceCents)

	paid, err := e.withdrawals.Create(ctx, worker, domain.CreateWithdrawalRequest{AmountCents: 500, Method: domain.MethodJazzCash, Destination: "+923451234567"})
	require.NoError(t, err)
	refunded, err := e.withdrawals.Create(ctx, worker, domain.CreateWithdrawalRequest{AmountCents: 300, Method: domain.MethodBank, Destination: "PK36SCBL0000001123456702"})
	require.NoError(t, err)
	_, err = e.withdrawals.Resolve(ctx, admin, paid.ID, approve())
	require.NoError(t, err)
	_, err = e.withdrawals.Resolve(ctx, admin, refunded.ID, reject(""))
	require.NoError(t, err)

	acc := e.account(t, worker.ID)
	assert.Equal(t, approved-500, acc.BalanceCents)
	assert.Equal(t, acc.BalanceCents, e.walletSum(t, worker.ID))
}

func TestResolveTwiceNeverDoubleMutates(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	worker := e.activeWorker(t, 5)
	admin := e.newUser(t, domain.RoleManager)
	task := e.newTask(t, 200)

	sub, err := e.submissions.Create(ctx, worker, textProof(task.ID))
	require.NoError(t, err)
	_, err = e.submissions.Resolve(ctx, admin, sub.ID, approve())
	require.NoError(t, err)
	_, err = e.submissions.Resolve(ctx, admin, sub.ID, approve())
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	_, err = e.submissions.Resolve(ctx, admin, sub.ID, reject("late"))
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	assert.Equal(t, int64(200), e.account(t, worker.ID).BalanceCents)
	assert.Equal(t, int64(1), e.auditCount(t, domain.ActionApproveSubmission))

	wd, err := e.withdrawals.Create(ctx, worker, domain.CreateWithdrawalRequest{AmountCents: 200, Method: domain.MethodEasyPaisa, Destination: "03001234567"})
	require.NoError(t, err)
	_, err = e.withdrawals.Resolve(ctx, admin, wd.ID, reject("duplicate"))
	require.NoError(t, err)
	_, err = e.withdrawals.Resolve(ctx, admin, wd.ID, reject("duplicate"))
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	_, err = e.withdrawals.Resolve(ctx, admin, wd.ID, approve())
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	assert.Equal(t, int64(200), e.account(t, worker.ID).BalanceCents)
	assert.Equal(t, e.account(t, worker.ID).BalanceCents, e.walletSum(t, worker.ID))
}

func TestConcurrentResolveCreditsOnce(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	worker := e.activeWorker(t, 5)
	admins := []domain.Actor{e.newUser(t, domain.RoleSupport), e.newUser(t, domain.RoleManager), e.newUser(t, domain.RoleSuperAdmin)}
	task := e.newTask(t, 90)
	sub, err := e.submissions.Create(ctx, worker, textProof(task.ID))
	require.NoError(t, err)

	errs := make([]error, len(admins))
	var wg sync.WaitGroup
	for i, a := range admins {
		wg.Add(1)
		go func(i int, a domain.Actor) {
			defer wg.Done()
			_, errs[i] = e.submissions.Resolve(ctx, a, sub.ID, approve())
		}(i, a)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(90), e.account(t, worker.ID).BalanceCents)
}

func TestQuotaEnforcement(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	worker := e.activeWorker(t, 5)
	task := e.newTask(t, 10)

	errs := make([]error, 8)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.submissions.Create(ctx, worker, textProof(task.ID))
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	}
	assert.Equal(t, 5, created)
	assert.Equal(t, 5, e.account(t, worker.ID).CompletedTasksToday)

	_, err := e.submissions.Create(ctx, worker, textProof(task.ID))
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
}

func TestQuotaResetsAtLocalMidnight(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	worker := e.activeWorker(t, 1)
	task := e.newTask(t, 10)

	_, err := e.submissions.Create(ctx, worker, textProof(task.ID))
	require.NoError(t, err)
	_, err = e.submissions.Create(ctx, worker, textProof(task.ID))
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)

	// 20:00 UTC is still 10 March in UTC but already 11 March in PKT.
	e.clock.Advance(10 * time.Hour)
	assert.Equal(t, 0, e.account(t, worker.ID).CompletedTasksToday)
	_, err = e.submissions.Create(ctx, worker, textProof(task.ID))
	assert.NoError(t, err)
}

func TestWithdrawalReservationUnderConcurrency(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	worker := e.newUser(t, domain.RoleUser)
	e.fund(t, worker.ID, 1000)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.withdrawals.Create(ctx, worker, domain.CreateWithdrawalRequest{
				AmountCents: 800, Method: domain.MethodEasyPaisa, Destination: "03001234567",
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(200), e.account(t, worker.ID).BalanceCents)
	var pending int64
	require.NoError(t, e.db.Model(&models.Withdrawal{}).Where("user_id = ?", worker.ID).Count(&pending).Error)
	assert.Equal(t, int64(1), pending)
}

func TestUserCannotResolve(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	worker := e.activeWorker(t, 5)
	other := e.newUser(t, domain.RoleUser)
	task := e.newTask(t, 75)
	e.fund(t, worker.ID, 500)

	sub, err := e.submissions.Create(ctx, worker, textProof(task.ID))
	require.NoError(t, err)
	wd, err := e.withdrawals.Create(ctx, worker, domain.CreateWithdrawalRequest{AmountCents: 300, Method: domain.MethodEasyPaisa, Destination: "03001234567"})
	require.NoError(t, err)
	before := e.account(t, worker.ID)

	for _, actor := range []domain.Actor{worker, other} {
		_, err = e.submissions.Resolve(ctx, actor, sub.ID, approve())
		assert.ErrorIs(t, err, domain.ErrAccessDenied)
		_, err = e.withdrawals.Resolve(ctx, actor, wd.ID, reject("x"))
		assert.ErrorIs(t, err, domain.ErrAccessDenied)
	}
	// support reviews submissions but not withdrawals
	_, err = e.withdrawals.Resolve(ctx, e.newUser(t, domain.RoleSupport), wd.ID, approve())
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	// unknown ids are still denied before lookup
	_, err = e.submissions.Resolve(ctx, worker, 9999, approve())
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	after := e.account(t, worker.ID)
	assert.Equal(t, before.BalanceCents, after.BalanceCents)
	assert.Equal(t, before.Version, after.Version)
	var s models.Submission
	require.NoError(t, e.db.First(&s, sub.ID).Error)
	assert.Equal(t, domain.StatusPending, s.Status)
	var w models.Withdrawal
	require.NoError(t, e.db.First(&w, wd.ID).Error)
	assert.Equal(t, domain.StatusPending, w.Status)
	var audits int64
	require.NoError(t, e.db.Model(&models.AuditLog{}).Count(&audits).Error)
	assert.Zero(t, audits)
}

func TestResolveUnknownIDs(t *testing.T) {
	e := newTestEnv(t)
	admin := e.newUser(t, domain.RoleSuperAdmin)
	_, err := e.submissions.Resolve(context.Background(), admin, 404, approve())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.withdrawals.Resolve(context.Background(), admin, 404, approve())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.submissions.Resolve(context.Background(), admin, 1, domain.ResolveRequest{Decision: "MAYBE"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
