package service

import (
	"context"
	"strings"

	"earnly/internal/domain"
	"earnly/internal/models"
	"earnly/internal/rbac"
	"earnly/internal/repository"

	"gorm.io/gorm"
)

type TaskService struct {
	db    *gorm.DB
	gate  *rbac.Gate
	audit *AuditService
	tasks *repository.TaskRepository
}

func NewTaskService(db *gorm.DB, gate *rbac.Gate, audit *AuditService, tasks *repository.TaskRepository) *TaskService {
	return &TaskService{db: db, gate: gate, audit: audit, tasks: tasks}
}

func (s *TaskService) ListTasks(ctx context.Context, category string) ([]models.Task, error) {
	return s.tasks.ListActive(ctx, strings.TrimSpace(category))
}

func (s *TaskService) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func taskDetails(t *models.Task) map[string]interface{} {
	return map[string]interface{}{
		"title":        t.Title,
		"category":     t.Category,
		"reward_cents": t.RewardCents,
		"active":       t.Active,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, actor domain.Actor, req domain.TaskRequest) (*models.Task, error) {
	if err := s.gate.Require(actor, rbac.ManageTasks); err != nil {
		return nil, err
	}
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	task := &models.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		RewardCents: req.RewardCents,
		Active:      req.Active == nil || *req.Active,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tasks.WithTx(tx).Create(ctx, task); err != nil {
			return err
		}
		return s.audit.Append(ctx, tx, AuditEntry{
			Actor: actor, Action: domain.ActionCreateTask, TargetType: domain.TargetTask,
			TargetID: task.ID, Details: taskDetails(task),
		})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask edits a task. Submissions already made keep the reward they
// were created with.
func (s *TaskService) UpdateTask(ctx context.Context, actor domain.Actor, id uint, req domain.TaskRequest) (*models.Task, error) {
	if err := s.gate.Require(actor, rbac.ManageTasks); err != nil {
		return nil, err
	}
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	var task *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.tasks.WithTx(tx)
		var err error
		if task, err = repo.GetByID(ctx, id); err != nil {
			return err
		}
		task.Title = strings.TrimSpace(req.Title)
		task.Description = req.Description
		task.Category = strings.TrimSpace(req.Category)
		task.RewardCents = req.RewardCents
		if req.Active != nil {
			task.Active = *req.Active
		}
		if err := repo.Update(ctx, task); err != nil {
			return err
		}
		return s.audit.Append(ctx, tx, AuditEntry{
			Actor: actor, Action: domain.ActionUpdateTask, TargetType: domain.TargetTask,
			TargetID: task.ID, Details: taskDetails(task),
		})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, actor domain.Actor, id uint) error {
	if err := s.gate.Require(actor, rbac.ManageTasks); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tasks.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.audit.Append(ctx, tx, AuditEntry{
			Actor: actor, Action: domain.ActionDeleteTask, TargetType: domain.TargetTask, TargetID: id,
		})
	})
}
