package service

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/locvowork/task_management_sample/internal/domain"
	"github.com/locvowork/task_management_sample/pkg/simpleexcel"
)

const (
	DefaultReminderWindow = time.Minute
	MaxReminderWindow     = 24 * time.Hour

	exportSheetName      = "Tasks"
	exportDateTimeLayout = "2006-01-02 15:04"
)

//go:embed templates/task_export.yaml
var taskExportTemplate []byte

type TaskService interface {
	List(ctx context.Context, ownerID int64, filter domain.TaskFilter) ([]domain.Task, error)
	Get(ctx context.Context, ownerID, id int64) (*domain.Task, error)
	Create(ctx context.Context, ownerID int64, req domain.CreateTaskRequest) (*domain.Task, error)
	Update(ctx context.Context, ownerID, id int64, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id int64) error
	DueReminders(ctx context.Context, ownerID int64, window time.Duration) ([]domain.Task, error)
	Export(ctx context.Context, ownerID int64, filter domain.TaskFilter, w io.Writer) error
}

type taskService struct {
	repo domain.TaskRepository
	now  func() time.Time
}

func NewTaskService(repo domain.TaskRepository) TaskService {
	return &taskService{repo: repo, now: time.Now}
}

func (s *taskService) List(ctx context.Context, ownerID int64, filter domain.TaskFilter) ([]domain.Task, error) {
	return s.repo.List(ctx, ownerID, filter)
}

func (s *taskService) Get(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// Create applies the defaults (medium, todo) and stores empty optional fields as null.
func (s *taskService) Create(ctx context.Context, ownerID int64, req domain.CreateTaskRequest) (*domain.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, domain.Validation("Title is required")
	}

	task := &domain.Task{
		Title:       req.Title,
		Description: emptyToNil(req.Description),
		Priority:    req.Priority,
		Status:      req.Status,
		UserID:      ownerID,
		DueDate:     zeroDateToNil(req.DueDate),
		Reminder:    zeroTimestampToNil(req.Reminder),
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.Status == "" {
		task.Status = domain.StatusTodo
	}
	if err := validateEnums(task.Priority, task.Status); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update validates the fields present in patch; existence and the empty-patch
// check are left to the repository so a missing task always wins with NotFound.
func (s *taskService) Update(ctx context.Context, ownerID, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Title.Set && strings.TrimSpace(patch.Title.Value) == "" {
		return nil, domain.Validation("Title cannot be empty")
	}
	if patch.Priority.Set && !patch.Priority.Value.Valid() {
		return nil, domain.Validation("Invalid priority %q", patch.Priority.Value)
	}
	if patch.Status.Set && !patch.Status.Value.Valid() {
		return nil, domain.Validation("Invalid status %q", patch.Status.Value)
	}
	if patch.Description.Set {
		patch.Description.Value = emptyToNil(patch.Description.Value)
	}
	if patch.DueDate.Set {
		patch.DueDate.Value = zeroDateToNil(patch.DueDate.Value)
	}
	if patch.Reminder.Set {
		patch.Reminder.Value = zeroTimestampToNil(patch.Reminder.Value)
	}

	return s.repo.Update(ctx, ownerID, id, patch)
}

func (s *taskService) Delete(ctx context.Context, ownerID, id int64) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// DueReminders returns the owner's unfinished tasks whose reminder fell within the
// last window, newest first.
func (s *taskService) DueReminders(ctx context.Context, ownerID int64, window time.Duration) ([]domain.Task, error) {
	if window <= 0 || window > MaxReminderWindow {
		return nil, domain.Validation("Reminder window must be between 1s and %s", MaxReminderWindow)
	}

	tasks, err := s.repo.List(ctx, ownerID, domain.TaskFilter{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	from := now.Add(-window)
	due := []domain.Task{}
	for _, t := range tasks {
		if t.Status == domain.StatusCompleted || t.Reminder == nil {
			continue
		}
		if t.Reminder.Before(from) || t.Reminder.After(now) {
			continue
		}
		due = append(due, t)
	}
	return due, nil
}

// Export streams the owner's tasks matching filter to w as an xlsx workbook.
func (s *taskService) Export(ctx context.Context, ownerID int64, filter domain.TaskFilter, w io.Writer) error {
	tasks, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		return err
	}

	tmpl, err := simpleexcel.ParseTemplate(taskExportTemplate)
	if err != nil {
		return fmt.Errorf("parse export template: %w", err)
	}
	sheetTmpl, ok := tmpl.Sheet(exportSheetName)
	if !ok {
		return fmt.Errorf("export template has no %q sheet", exportSheetName)
	}

	exporter := simpleexcel.NewStreamExporter(w).
		RegisterFormatter("date", formatDate).
		RegisterFormatter("datetime", formatDateTime)

	sheet, err := exporter.AddTemplateSheet(sheetTmpl)
	if err != nil {
		return fmt.Errorf("add export sheet: %w", err)
	}
	if err := sheet.WriteBatch(tasks); err != nil {
		return fmt.Errorf("write export rows: %w", err)
	}
	return exporter.Close()
}

func validateEnums(p domain.Priority, st domain.Status) error {
	if !p.Valid() {
		return domain.Validation("Invalid priority %q", p)
	}
	if !st.Valid() {
		return domain.Validation("Invalid status %q", st)
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func zeroDateToNil(d *domain.Date) *domain.Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}

func zeroTimestampToNil(t *domain.Timestamp) *domain.Timestamp {
	if t == nil || t.IsZero() {
		return nil
	}
	return t
}

func formatDate(v interface{}) interface{} {
	if d, ok := v.(domain.Date); ok {
		return d.String()
	}
	return v
}

func formatDateTime(v interface{}) interface{} {
	switch t := v.(type) {
	case domain.Timestamp:
		return t.UTC().Format(exportDateTimeLayout)
	case time.Time:
		return t.UTC().Format(exportDateTimeLayout)
	}
	return v
}
