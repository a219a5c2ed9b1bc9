package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"earnly/config"
	"earnly/internal/database"
	"earnly/internal/domain"
	"earnly/internal/ledger"
	"earnly/internal/models"
	"earnly/internal/rbac"
	"earnly/internal/repository"
	"earnly/pkg/payout"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var pkt = time.FixedZone("PKT", 5*3600)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	db          *gorm.DB
	clock       *fakeClock
	ledger      *ledger.Ledger
	gate        *rbac.Gate
	audit       *AuditService
	settings    *SettingsService
	plans       *PlanService
	tasks       *TaskService
	submissions *SubmissionService
	withdrawals *WithdrawalService
	accounts    *AccountService
	auth        *AuthService
	jwt         *config.JWTConfig
	seq         int
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	// 2026-03-10 10:00 UTC is 15:00 in PKT.
	clock := &fakeClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	l := ledger.New(db, ledger.Options{MaxAttempts: 3, Location: pkt, Now: clock.Now})
	earning := config.EarningConfig{Currency: "PKR", MinWithdrawalCents: 100, MaxWithdrawalCents: 0}
	jwtCfg := &config.JWTConfig{AccessSecret: "access", RefreshSecret: "refresh", AccessExpiry: time.Minute, RefreshExpiry: time.Hour, Issuer: "earnly"}

	users := repository.NewUserRepository(db)
	planRepo := repository.NewPlanRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	referralRepo := repository.NewReferralRepository(db)

	gate := rbac.NewGate()
	audit := NewAuditService(gate, repository.NewAuditLogRepository(db), users)
	settings := NewSettingsService(db, gate, audit, repository.NewSettingRepository(db), adminRepo, earning)
	return &testEnv{
		db:       db,
		clock:    clock,
		ledger:   l,
		gate:     gate,
		audit:    audit,
		settings: settings,
		plans:    NewPlanService(db, gate, l, audit, planRepo, users),
		tasks:    NewTaskService(db, gate, audit, taskRepo),
		submissions: NewSubmissionService(gate, l, audit, settings,
			repository.NewSubmissionRepository(db), taskRepo, users, planRepo, walletRepo),
		withdrawals: NewWithdrawalService(gate, l, audit, settings,
			repository.NewWithdrawalRepository(db), users, &payout.StubProvider{Now: clock.Now}, "PKR"),
		accounts: NewAccountService(db, gate, l, audit, users, planRepo, walletRepo, adminRepo, referralRepo, "PKR"),
		auth:     NewAuthService(db, jwtCfg, l, users, NewReferralService(referralRepo, settings)),
		jwt:      jwtCfg,
	}
}

// newUser creates a user with role and an empty account.
func (e *testEnv) newUser(t *testing.T, role string) domain.Actor {
	t.Helper()
	e.seq++
	u := &models.User{
		Username: fmt.Sprintf("%s%d", role, e.seq),
		Email:    fmt.Sprintf("%s%d@example.com", role, e.seq),
		Role:     role,
		Status:   domain.UserStatusActive,
	}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		_, err := e.ledger.Open(context.Background(), tx, u.ID)
		return err
	})
	require.NoError(t, err)
	return domain.Actor{ID: u.ID, Role: u.Role}
}

func (e *testEnv) newPlan(t *testing.T, price int64, dailyLimit, validityDays int, commission string) *models.Plan {
	t.Helper()
	p := &models.Plan{
		Name:              fmt.Sprintf("plan-%d-%d", dailyLimit, validityDays),
		PriceCents:        price,
		DailyLimit:        dailyLimit,
		ValidityDays:      validityDays,
		CommissionPercent: decimal.RequireFromString(commission),
		Active:            true,
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) newTask(t *testing.T, reward int64) *models.Task {
	t.Helper()
	task := &models.Task{Title: "Follow page", Category: "social", RewardCents: reward, Active: true}
	require.NoError(t, e.db.Create(task).Error)
	return task
}

// fund credits amount through the ledger so the transaction history stays
// consistent with the balance.
func (e *testEnv) fund(t *testing.T, userID uint, amount int64) {
	t.Helper()
	e.seq++
	ref := fmt.Sprintf("test-fund:%d", e.seq)
	_, err := e.ledger.Apply(context.Background(), userID, func(tx *ledger.Tx) error {
		return tx.Credit(amount, domain.WalletTxTypeTaskReward, ref)
	})
	require.NoError(t, err)
}

func (e *testEnv) account(t *testing.T, userID uint) *models.Account {
	t.Helper()
	a, err := e.ledger.Snapshot(context.Background(), userID)
	require.NoError(t, err)
	return a
}

func (e *testEnv) walletSum(t *testing.T, userID uint) int64 {
	t.Helper()
	var out struct{ Total int64 }
	require.NoError(t, e.db.Model(&models.WalletTransaction{}).
		Select("COALESCE(SUM(amount_cents), 0) as total").
		Where("user_id = ?", userID).Scan(&out).Error)
	return out.Total
}

func (e *testEnv) auditCount(t *testing.T, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}

// activeWorker returns a worker subscribed to a free plan.
func (e *testEnv) activeWorker(t *testing.T, dailyLimit int) domain.Actor {
	t.Helper()
	w := e.newUser(t, domain.RoleUser)
	p := e.newPlan(t, 0, dailyLimit, 30, "0")
	_, err := e.plans.AcquirePlan(context.Background(), w, p.ID)
	require.NoError(t, err)
	return w
}

func textProof(taskID uint) domain.CreateSubmissionRequest {
	return domain.CreateSubmissionRequest{TaskID: taskID, ProofText: "done, screenshot in chat"}
}

func approve() domain.ResolveRequest { return domain.ResolveRequest{Decision: domain.DecisionApprove} }

func reject(reason string) domain.ResolveRequest {
	return domain.ResolveRequest{Decision: domain.DecisionReject, Reason: reason}
}
