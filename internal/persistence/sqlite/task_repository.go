package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/staff-scheduler/internal/persistence"
)

// TaskRepository implements persistence.TaskRepository using SQLite.
type TaskRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(pool *ConnectionPool) *TaskRepository {
	return &TaskRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const taskColumns = "id, task_ref, title, description, category, status, created_at, updated_at"

// CreateTask inserts a new task.
func (r *TaskRepository) CreateTask(ctx context.Context, task persistence.Task) error {
	if task.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		task.ID,
		task.TaskID,
		task.Title,
		task.Description,
		task.Category,
		task.Status,
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateTask updates an existing task. The task reference is immutable.
func (r *TaskRepository) UpdateTask(ctx context.Context, task persistence.Task) error {
	query := `
		UPDATE tasks
		SET title = ?, description = ?, category = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		task.Title,
		task.Description,
		task.Category,
		task.Status,
		formatTime(task.UpdatedAt),
		task.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetTask retrieves a task by ID.
func (r *TaskRepository) GetTask(ctx context.Context, id string) (persistence.Task, error) {
	if id == "" {
		return persistence.Task{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTaskRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Task{}, persistence.ErrNotFound
		}
		return persistence.Task{}, r.mapper.MapError(err)
	}
	return task, nil
}

// ListTasks lists tasks matching the filter, newest first.
func (r *TaskRepository) ListTasks(ctx context.Context, filter persistence.TaskFilter) ([]persistence.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"

	var conditions []string
	var args []any

	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var tasks []persistence.Task
	for rows.Next() {
		task, err := scanTaskRecord(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return tasks, nil
}

// DeleteTask removes a task by ID.
func (r *TaskRepository) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanTaskRecord(scanner rowScanner) (persistence.Task, error) {
	var task persistence.Task
	var createdAt, updatedAt string

	err := scanner.Scan(
		&task.ID,
		&task.TaskID,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Task{}, err
	}

	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Task{}, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Task{}, err
	}
	return task, nil
}
