package router

import (
	"earnly/config"
	"earnly/internal/handler"
	"earnly/internal/ledger"
	"earnly/internal/middleware"
	"earnly/internal/rbac"
	"earnly/internal/repository"
	"earnly/internal/service"
	"earnly/pkg/payout"
	"earnly/pkg/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services is the assembled engine. main and the handler tests build one
// through NewServices.
type Services struct {
	Gate        *rbac.Gate
	Ledger      *ledger.Ledger
	Auth        *service.AuthService
	Audit       *service.AuditService
	Settings    *service.SettingsService
	Plans       *service.PlanService
	Tasks       *service.TaskService
	Submissions *service.SubmissionService
	Withdrawals *service.WithdrawalService
	Accounts    *service.AccountService
}

func NewServices(cfg *config.Config, db *gorm.DB, l *ledger.Ledger, provider payout.Provider) *Services {
	// Repositories
	userRepo := repository.NewUserRepository(db)
	planRepo := repository.NewPlanRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	referralRepo := repository.NewReferralRepository(db)

	gate := rbac.NewGate()
	auditSvc := service.NewAuditService(gate, auditRepo, userRepo)
	settingsSvc := service.NewSettingsService(db, gate, auditSvc, settingRepo, adminRepo, cfg.Earning)
	referralSvc := service.NewReferralService(referralRepo, settingsSvc)
	return &Services{
		Gate:     gate,
		Ledger:   l,
		Auth:     service.NewAuthService(db, &cfg.JWT, l, userRepo, referralSvc),
		Audit:    auditSvc,
		Settings: settingsSvc,
		Plans:    service.NewPlanService(db, gate, l, auditSvc, planRepo, userRepo),
		Tasks:    service.NewTaskService(db, gate, auditSvc, taskRepo),
		Submissions: service.NewSubmissionService(gate, l, auditSvc, settingsSvc,
			submissionRepo, taskRepo, userRepo, planRepo, walletRepo),
		Withdrawals: service.NewWithdrawalService(gate, l, auditSvc, settingsSvc,
			withdrawalRepo, userRepo, provider, cfg.Earning.Currency),
		Accounts: service.NewAccountService(db, gate, l, auditSvc, userRepo, planRepo,
			walletRepo, adminRepo, referralRepo, cfg.Earning.Currency),
	}
}

func Setup(cfg *config.Config, svc *Services, proofs storage.ProofStore, limiter middleware.Limiter) *gin.Engine {
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if limiter != nil {
		r.Use(middleware.RateLimit(limiter))
	}

	authHandler := handler.NewAuthHandler(svc.Auth)
	planHandler := handler.NewPlanHandler(svc.Plans)
	taskHandler := handler.NewTaskHandler(svc.Tasks)
	submissionHandler := handler.NewSubmissionHandler(svc.Submissions, proofs)
	withdrawalHandler := handler.NewWithdrawalHandler(svc.Withdrawals)
	meHandler := handler.NewMeHandler(svc.Accounts)
	adminHandler := handler.NewAdminHandler(svc.Accounts, svc.Audit, svc.Settings)

	authMw := middleware.AuthRequired(&cfg.JWT, svc.Auth)
	can := func(c rbac.Capability) gin.HandlerFunc { return middleware.RequireCapability(svc.Gate, c) }

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		api.GET("/plans", planHandler.List)
		api.GET("/tasks", authMw, taskHandler.List)
		api.GET("/tasks/:id", authMw, taskHandler.Get)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/account", meHandler.Account)
			me.POST("/plan", planHandler.Acquire)
			me.GET("/submissions", submissionHandler.ListMine)
			me.POST("/submissions", submissionHandler.Create)
			me.GET("/withdrawals", withdrawalHandler.ListMine)
			me.POST("/withdrawals", withdrawalHandler.Create)
			me.GET("/wallet/transactions", meHandler.WalletTransactions)
		}

		admin := api.Group("/admin")
		admin.Use(authMw)
		{
			admin.GET("/dashboard", can(rbac.ViewDashboard), adminHandler.Dashboard)

			admin.GET("/submissions", can(rbac.ReviewSubmissions), submissionHandler.List)
			admin.POST("/submissions/:id/resolve", can(rbac.ReviewSubmissions), submissionHandler.Resolve)

			admin.GET("/withdrawals", can(rbac.ReviewWithdrawals), withdrawalHandler.List)
			admin.POST("/withdrawals/:id/resolve", can(rbac.ReviewWithdrawals), withdrawalHandler.Resolve)

			admin.GET("/audit", can(rbac.ViewAuditLog), adminHandler.Audit)

			admin.GET("/users", can(rbac.ManageAccounts), adminHandler.ListUsers)
			admin.POST("/users/:id/ban", can(rbac.ManageAccounts), adminHandler.Ban)
			admin.POST("/users/:id/unban", can(rbac.ManageAccounts), adminHandler.Unban)
			admin.PATCH("/users/:id/role", can(rbac.ManageAccounts), adminHandler.ChangeRole)

			admin.POST("/tasks", can(rbac.ManageTasks), taskHandler.Create)
			admin.PUT("/tasks/:id", can(rbac.ManageTasks), taskHandler.Update)
			admin.DELETE("/tasks/:id", can(rbac.ManageTasks), taskHandler.Delete)

			admin.POST("/plans", can(rbac.ManagePlans), planHandler.Publish)

			admin.GET("/settings", can(rbac.ManageSettings), adminHandler.GetSettings)
			admin.PATCH("/settings", can(rbac.ManageSettings), adminHandler.UpdateSettings)
		}
	}
	return r
}
