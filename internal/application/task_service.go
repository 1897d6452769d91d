package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/staff-scheduler/internal/persistence"
)

// TaskCatalog captures the persistence interactions needed by the task
// service.
type TaskCatalog interface {
	CreateTask(ctx context.Context, task persistence.Task) error
	UpdateTask(ctx context.Context, task persistence.Task) error
	GetTask(ctx context.Context, id string) (persistence.Task, error)
	ListTasks(ctx context.Context, filter persistence.TaskFilter) ([]persistence.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// TaskService orchestrates validation and persistence for the task catalog.
type TaskService struct {
	tasks       TaskCatalog
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTaskService wires dependencies for task catalog operations.
func NewTaskService(tasks TaskCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TaskService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TaskService{
		tasks:       tasks,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

var taskStatuses = map[string]bool{
	TaskStatusPending:    true,
	TaskStatusInProgress: true,
	TaskStatusCompleted:  true,
	TaskStatusCancelled:  true,
}

// CreateTask validates and stores a new catalog entry. The task reference is
// generated when absent and must be unique.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (persistence.Task, error) {
	if s == nil {
		return persistence.Task{}, fmt.Errorf("TaskService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "task", "create")

	if input.Status == "" {
		input.Status = TaskStatusPending
	}
	if strings.TrimSpace(input.TaskID) == "" {
		input.TaskID = s.generateTaskRef()
	}
	if vErr := validateTaskInput(input); vErr.HasErrors() {
		logger.Warn("task validation failed", "fields", vErr.FieldErrors)
		return persistence.Task{}, vErr
	}

	now := s.now().UTC()
	task := persistence.Task{
		ID:          s.idGenerator(),
		TaskID:      strings.TrimSpace(input.TaskID),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    strings.TrimSpace(input.Category),
		Status:      input.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return persistence.Task{}, fmt.Errorf("%w: task reference already registered", ErrConflict)
		}
		logger.Error("failed to create task", "error", err)
		return persistence.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	logger.Info("task created", "task_id", task.ID, "task_ref", task.TaskID)
	return task, nil
}

// UpdateTask applies changes to an existing catalog entry. The task reference
// is immutable once assigned.
func (s *TaskService) UpdateTask(ctx context.Context, id string, input TaskInput) (persistence.Task, error) {
	if s == nil {
		return persistence.Task{}, fmt.Errorf("TaskService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "task", "update", "task_id", id)

	existing, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Task{}, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		return persistence.Task{}, fmt.Errorf("failed to load task: %w", err)
	}

	if input.TaskID == "" {
		input.TaskID = existing.TaskID
	}
	if input.Status == "" {
		input.Status = existing.Status
	}
	if vErr := validateTaskInput(input); vErr.HasErrors() {
		logger.Warn("task validation failed", "fields", vErr.FieldErrors)
		return persistence.Task{}, vErr
	}
	if strings.TrimSpace(input.TaskID) != existing.TaskID {
		vErr := &ValidationError{}
		vErr.add("task_ref", "task reference cannot be changed")
		return persistence.Task{}, vErr
	}

	updated := existing
	updated.Title = strings.TrimSpace(input.Title)
	updated.Description = input.Description
	updated.Category = strings.TrimSpace(input.Category)
	updated.Status = input.Status
	updated.UpdatedAt = s.now().UTC()

	if err := s.tasks.UpdateTask(ctx, updated); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Task{}, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		logger.Error("failed to update task", "error", err)
		return persistence.Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	logger.Info("task updated")
	return updated, nil
}

// GetTask loads one catalog entry by ID.
func (s *TaskService) GetTask(ctx context.Context, id string) (persistence.Task, error) {
	if s == nil {
		return persistence.Task{}, fmt.Errorf("TaskService is nil")
	}
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Task{}, fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		return persistence.Task{}, fmt.Errorf("failed to load task: %w", err)
	}
	return task, nil
}

// ListTasks returns catalog entries matching the filter.
func (s *TaskService) ListTasks(ctx context.Context, filter persistence.TaskFilter) ([]persistence.Task, error) {
	if s == nil {
		return nil, fmt.Errorf("TaskService is nil")
	}
	if filter.Status != "" && !taskStatuses[filter.Status] {
		vErr := &ValidationError{}
		vErr.add("status", "unknown task status")
		return nil, vErr
	}
	tasks, err := s.tasks.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// RemoveTask permanently deletes a catalog entry. Schedules keep their
// snapshot of the task fields, so existing schedules are unaffected, but the
// delete fails while any schedule still references the row.
func (s *TaskService) RemoveTask(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("TaskService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "task", "remove", "task_id", id)

	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		if errors.Is(err, persistence.ErrForeignKeyViolation) {
			return fmt.Errorf("%w: task %s is still referenced by schedules", ErrConflict, id)
		}
		logger.Error("failed to remove task", "error", err)
		return fmt.Errorf("failed to remove task: %w", err)
	}

	logger.Info("task removed")
	return nil
}

// generateTaskRef builds a catalog reference such as TSK-ab12cd.
func (s *TaskService) generateTaskRef() string {
	suffix := strings.ReplaceAll(s.idGenerator(), "-", "")
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("TSK-%s", suffix)
}

func validateTaskInput(input TaskInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.TaskID) == "" {
		vErr.add("task_ref", "task reference is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if !taskStatuses[input.Status] {
		vErr.add("status", "status must be pending, in_progress, completed or cancelled")
	}

	return vErr
}
