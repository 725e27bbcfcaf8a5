package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locvowork/task_management_sample/internal/domain"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) domain.TaskRepository {
	return &taskRepository{db: db}
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var priority, status string
	err := row.Scan(&t.ID, &t.Title, &t.Description, &priority, &status, &t.UserID, &t.DueDate, &t.Reminder, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Priority = domain.Priority(priority)
	t.Status = domain.Status(status)
	return &t, nil
}

func (r *taskRepository) List(ctx context.Context, ownerID int64, filter domain.TaskFilter) ([]domain.Task, error) {
	query, args := BuildTaskQuery(ownerID, filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) GetByID(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	return getTask(ctx, r.db, ownerID, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getTask(ctx context.Context, q queryRower, ownerID, id int64) (*domain.Task, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1 AND user_id = $2", id, ownerID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Task not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tasks (title, description, priority, status, user_id, due_date, reminder)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
		task.Title, task.Description, string(task.Priority), string(task.Status), task.UserID, task.DueDate, task.Reminder,
	).Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Update checks ownership, writes only the patched columns and re-reads the row,
// all inside one transaction.
func (r *taskRepository) Update(ctx context.Context, ownerID, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	query, args, ok := BuildTaskUpdate(ownerID, id, patch)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM tasks WHERE id = $1 AND user_id = $2", id, ownerID).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Task not found")
	}
	if err != nil {
		return nil, fmt.Errorf("check task %d: %w", id, err)
	}

	if !ok {
		return nil, domain.Validation("Nothing to update")
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}

	updated, err := getTask(ctx, tx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return updated, nil
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1 AND user_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if affected == 0 {
		return domain.NotFound("Task not found")
	}
	return nil
}
