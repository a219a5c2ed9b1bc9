package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"earnly/internal/domain"
	"earnly/internal/models"
	"earnly/internal/rbac"
	"earnly/internal/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditEntry describes one privileged action.
type AuditEntry struct {
	Actor      domain.Actor
	Action     string
	TargetType string
	TargetID   uint
	Details    map[string]interface{}
}

type AuditService struct {
	gate  *rbac.Gate
	audit *repository.AuditLogRepository
	users *repository.UserRepository
}

func NewAuditService(gate *rbac.Gate, audit *repository.AuditLogRepository, users *repository.UserRepository) *AuditService {
	return &AuditService{gate: gate, audit: audit, users: users}
}

// Append writes entry through tx, so it commits or rolls back with the
// operation it records. The admin's username is copied into the row.
func (s *AuditService) Append(ctx context.Context, tx *gorm.DB, e AuditEntry) error {
	admin, err := s.users.WithTx(tx).GetByID(ctx, e.Actor.ID)
	if err != nil {
		return fmt.Errorf("audit actor %d: %w", e.Actor.ID, err)
	}
	var details datatypes.JSON
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("audit details: %w", err)
		}
		details = datatypes.JSON(b)
	}
	target := ""
	if e.TargetID != 0 {
		target = strconv.FormatUint(uint64(e.TargetID), 10)
	}
	return s.audit.WithTx(tx).Create(ctx, &models.AuditLog{
		AdminID:    admin.ID,
		AdminName:  admin.Username,
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   target,
		Details:    details,
	})
}

func (s *AuditService) Query(ctx context.Context, actor domain.Actor, f domain.AuditFilter) ([]models.AuditLog, int64, error) {
	if err := s.gate.Require(actor, rbac.ViewAuditLog); err != nil {
		return nil, 0, err
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return nil, 0, domain.Validationf("from must be before to")
	}
	return s.audit.Query(ctx, f)
}
