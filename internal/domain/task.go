package domain

import (
	"context"
	"sort"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task belongs to exactly one user; UserID never changes after creation.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	UserID      int64      `json:"user_id"`
	DueDate     *Date      `json:"due_date"`
	Reminder    *Timestamp `json:"reminder"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateTaskRequest is the create payload. Unset priority and status take defaults.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	DueDate     *Date      `json:"due_date"`
	Reminder    *Timestamp `json:"reminder"`
}

// TaskPatch is a sparse update: only fields with Set are written.
type TaskPatch struct {
	Title       Optional[string]     `json:"title"`
	Description Optional[*string]    `json:"description"`
	Priority    Optional[Priority]   `json:"priority"`
	Status      Optional[Status]     `json:"status"`
	DueDate     Optional[*Date]      `json:"due_date"`
	Reminder    Optional[*Timestamp] `json:"reminder"`
}

func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Priority.Set &&
		!p.Status.Set && !p.DueDate.Set && !p.Reminder.Set
}

// Apply writes the set fields of p onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.Priority.Set {
		t.Priority = p.Priority.Value
	}
	if p.Status.Set {
		t.Status = p.Status.Value
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
	if p.Reminder.Set {
		t.Reminder = p.Reminder.Value
	}
}

// TaskFilter narrows an owner-scoped task listing. Empty fields are ignored.
type TaskFilter struct {
	Status   Status
	Priority Priority
	Search   string
}

// SearchPattern is the lower-cased LIKE pattern for Search.
func (f TaskFilter) SearchPattern() string {
	return "%" + strings.ToLower(f.Search) + "%"
}

// Matches reports whether t satisfies every active predicate of f.
func (f TaskFilter) Matches(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		inTitle := strings.Contains(strings.ToLower(t.Title), term)
		inDesc := t.Description != nil && strings.Contains(strings.ToLower(*t.Description), term)
		if !inTitle && !inDesc {
			return false
		}
	}
	return true
}

// SortNewestFirst orders tasks by creation time descending, newest id first on ties.
func SortNewestFirst(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
}

// TaskRepository persists tasks. Every method is scoped to ownerID; a task owned
// by someone else is reported as ErrNotFound.
type TaskRepository interface {
	List(ctx context.Context, ownerID int64, filter TaskFilter) ([]Task, error)
	GetByID(ctx context.Context, ownerID, id int64) (*Task, error)
	Create(ctx context.Context, task *Task) error
	Update(ctx context.Context, ownerID, id int64, patch TaskPatch) (*Task, error)
	Delete(ctx context.Context, ownerID, id int64) error
}
