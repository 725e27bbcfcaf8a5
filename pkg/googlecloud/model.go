package googlecloud

import (
	"time"

	"cloud.google.com/go/datastore"

	"github.com/locvowork/task_management_sample/internal/domain"
)

const (
	KindUser      = "User"
	KindUserEmail = "UserEmail"
	KindTask      = "Task"
)

// userEntity is a User row. Its key ID is the user id.
type userEntity struct {
	Name      string    `datastore:"name"`
	Email     string    `datastore:"email"`
	Password  string    `datastore:"password,noindex"`
	CreatedAt time.Time `datastore:"created_at"`
}

// emailEntity reserves an email address. Its key name is the email, which makes
// the uniqueness check a strongly consistent key lookup.
type emailEntity struct {
	UserID int64 `datastore:"user_id,noindex"`
}

// taskEntity is stored under its owner's User key, so ownership is part of the key.
// Nullable columns use a zero value plus, for description, an explicit flag.
type taskEntity struct {
	Title          string    `datastore:"title,noindex"`
	Description    string    `datastore:"description,noindex"`
	HasDescription bool      `datastore:"has_description,noindex"`
	Priority       string    `datastore:"priority"`
	Status         string    `datastore:"status"`
	DueDate        string    `datastore:"due_date,noindex"`
	Reminder       time.Time `datastore:"reminder,noindex"`
	CreatedAt      time.Time `datastore:"created_at"`
}

func userKey(id int64) *datastore.Key {
	return datastore.IDKey(KindUser, id, nil)
}

func emailKey(email string) *datastore.Key {
	return datastore.NameKey(KindUserEmail, email, nil)
}

func taskKey(ownerID, id int64) *datastore.Key {
	return datastore.IDKey(KindTask, id, userKey(ownerID))
}

func (e *userEntity) toDomain(id int64) *domain.User {
	return &domain.User{
		ID:           id,
		Name:         e.Name,
		Email:        e.Email,
		PasswordHash: e.Password,
		CreatedAt:    e.CreatedAt,
	}
}

func newTaskEntity(t *domain.Task) *taskEntity {
	e := &taskEntity{
		Title:     t.Title,
		Priority:  string(t.Priority),
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
	if t.Description != nil {
		e.Description = *t.Description
		e.HasDescription = true
	}
	if t.DueDate != nil {
		e.DueDate = t.DueDate.String()
	}
	if t.Reminder != nil {
		e.Reminder = t.Reminder.UTC()
	}
	return e
}

func (e *taskEntity) toDomain(key *datastore.Key) (*domain.Task, error) {
	t := &domain.Task{
		ID:        key.ID,
		Title:     e.Title,
		Priority:  domain.Priority(e.Priority),
		Status:    domain.Status(e.Status),
		CreatedAt: e.CreatedAt,
	}
	if key.Parent != nil {
		t.UserID = key.Parent.ID
	}
	if e.HasDescription {
		desc := e.Description
		t.Description = &desc
	}
	if e.DueDate != "" {
		d, err := domain.ParseDate(e.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = &d
	}
	if !e.Reminder.IsZero() {
		r := domain.NewTimestamp(e.Reminder)
		t.Reminder = &r
	}
	return t, nil
}
