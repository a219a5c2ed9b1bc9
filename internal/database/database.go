package database

import (
	"fmt"
	"log/slog"

	"earnly/config"
	"earnly/internal/domain"
	"earnly/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql", "":
		return mysql.Open(cfg.DSN), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Plan{},
		&models.Task{},
		&models.Submission{},
		&models.Withdrawal{},
		&models.WalletTransaction{},
		&models.AuditLog{},
		&models.SystemSetting{},
		&models.ReferralCode{},
	)
}

// SeedAdmin creates the initial super admin when none exists and a password is
// configured.
func SeedAdmin(db *gorm.DB, cfg *config.SeedConfig) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", domain.RoleSuperAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if cfg.AdminPassword == "" {
		slog.Warn("no super admin exists and SEED_ADMIN_PASSWORD is empty; skipping admin seed")
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		u := &models.User{
			Email:        cfg.AdminEmail,
			Username:     cfg.AdminUsername,
			PasswordHash: string(hash),
			Role:         domain.RoleSuperAdmin,
			Status:       domain.UserStatusActive,
		}
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		slog.Info("seeded super admin", "email", u.Email)
		return tx.Create(&models.Account{UserID: u.ID, PlanStatus: domain.PlanStatusNone}).Error
	})
}

// SeedPlans loads the plan catalog from seeds when the catalog is empty.
func SeedPlans(db *gorm.DB, seeds []config.PlanSeed) error {
	var count int64
	if err := db.Model(&models.Plan{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 || len(seeds) == 0 {
		return nil
	}
	plans := make([]models.Plan, 0, len(seeds))
	for _, s := range seeds {
		pct := decimal.Zero
		if s.CommissionPercent != "" {
			var err error
			pct, err = decimal.NewFromString(s.CommissionPercent)
			if err != nil {
				return fmt.Errorf("plan %q commission: %w", s.Name, err)
			}
		}
		plans = append(plans, models.Plan{
			Name:              s.Name,
			PriceCents:        s.PriceCents,
			DailyLimit:        s.DailyLimit,
			ValidityDays:      s.ValidityDays,
			CommissionPercent: pct,
			SortOrder:         s.SortOrder,
			Active:            true,
		})
	}
	if err := db.Create(&plans).Error; err != nil {
		return fmt.Errorf("seed plans: %w", err)
	}
	slog.Info("seeded plan catalog", "plans", len(plans))
	return nil
}
