package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"

	"earnly/config"
	"earnly/internal/domain"
	"earnly/internal/models"
	"earnly/internal/rbac"
	"earnly/internal/repository"

	"gorm.io/gorm"
)

// SettingsService owns admin-configurable platform settings and the
// dashboard, which shares its read-mostly admin surface.
type SettingsService struct {
	db       *gorm.DB
	gate     *rbac.Gate
	audit    *AuditService
	settings *repository.SettingRepository
	admin    *repository.AdminRepository
	earning  config.EarningConfig
}

func NewSettingsService(db *gorm.DB, gate *rbac.Gate, audit *AuditService, settings *repository.SettingRepository,
	admin *repository.AdminRepository, earning config.EarningConfig) *SettingsService {
	return &SettingsService{db: db, gate: gate, audit: audit, settings: settings, admin: admin, earning: earning}
}

// Defaults are written on startup for keys that do not exist yet.
func (s *SettingsService) Defaults() map[string]string {
	return map[string]string{
		domain.SettingMinWithdrawalCents: strconv.FormatInt(s.earning.MinWithdrawalCents, 10),
		domain.SettingMaxWithdrawalCents: strconv.FormatInt(s.earning.MaxWithdrawalCents, 10),
		domain.SettingReferralsEnabled:   "true",
	}
}

func (s *SettingsService) SeedDefaults(ctx context.Context) error {
	return s.settings.SeedDefaults(ctx, s.Defaults())
}

func (s *SettingsService) getInt(ctx context.Context, key string, fallback int64) int64 {
	val, err := s.settings.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("read setting", "key", key, "error", err)
		}
		return fallback
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func (s *SettingsService) MinWithdrawalCents(ctx context.Context) int64 {
	return s.getInt(ctx, domain.SettingMinWithdrawalCents, s.earning.MinWithdrawalCents)
}

// MaxWithdrawalCents returns 0 when no upper bound applies.
func (s *SettingsService) MaxWithdrawalCents(ctx context.Context) int64 {
	return s.getInt(ctx, domain.SettingMaxWithdrawalCents, s.earning.MaxWithdrawalCents)
}

func (s *SettingsService) ReferralsEnabled(ctx context.Context) bool {
	val, err := s.settings.Get(ctx, domain.SettingReferralsEnabled)
	if err != nil {
		return true
	}
	on, err := strconv.ParseBool(val)
	return err != nil || on
}

func (s *SettingsService) List(ctx context.Context, actor domain.Actor) ([]models.SystemSetting, error) {
	if err := s.gate.Require(actor, rbac.ManageSettings); err != nil {
		return nil, err
	}
	return s.settings.GetAll(ctx)
}

func validateSetting(key, value string) error {
	if !domain.EditableSettings[key] {
		return domain.Validationf("unknown setting %q", key)
	}
	switch key {
	case domain.SettingMinWithdrawalCents, domain.SettingMaxWithdrawalCents:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return domain.Validationf("%s must be a non-negative integer", key)
		}
	case domain.SettingReferralsEnabled:
		if _, err := strconv.ParseBool(value); err != nil {
			return domain.Validationf("%s must be a boolean", key)
		}
	}
	return nil
}

// UpdateSettings writes every key of updates, or none of them.
func (s *SettingsService) UpdateSettings(ctx context.Context, actor domain.Actor, updates map[string]string) error {
	if err := s.gate.Require(actor, rbac.ManageSettings); err != nil {
		return err
	}
	if len(updates) == 0 {
		return domain.Validationf("no settings given")
	}
	keys := make([]string, 0, len(updates))
	for k, v := range updates {
		if err := validateSetting(k, v); err != nil {
			return err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	details := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		details[k] = v
	}
	by := actor.ID
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.settings.WithTx(tx)
		for _, k := range keys {
			if err := repo.Set(ctx, k, updates[k], &by); err != nil {
				return err
			}
		}
		return s.audit.Append(ctx, tx, AuditEntry{
			Actor:      actor,
			Action:     domain.ActionUpdateSettings,
			TargetType: domain.TargetSettings,
			Details:    details,
		})
	})
}

func (s *SettingsService) Dashboard(ctx context.Context, actor domain.Actor) (*repository.DashboardStats, error) {
	if err := s.gate.Require(actor, rbac.ViewDashboard); err != nil {
		return nil, err
	}
	return s.admin.GetDashboardStats(ctx)
}
