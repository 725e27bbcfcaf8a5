// Package memory is an in-process store for local runs (STORAGE_DRIVER=memory)
// and tests. Data lives for the life of the process.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/locvowork/task_management_sample/internal/domain"
)

type Store struct {
	mu         sync.RWMutex
	users      map[int64]domain.User
	emails     map[string]int64
	tasks      map[int64]domain.Task
	nextUserID int64
	nextTaskID int64
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:  make(map[int64]domain.User),
		emails: make(map[string]int64),
		tasks:  make(map[int64]domain.Task),
		now:    time.Now,
	}
}

// Users returns a UserRepository view of the store.
func (s *Store) Users() domain.UserRepository {
	return userRepository{s}
}

// Tasks returns a TaskRepository view of the store.
func (s *Store) Tasks() domain.TaskRepository {
	return taskRepository{s}
}

type userRepository struct{ s *Store }

func (r userRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.emails[user.Email]; ok {
		return domain.Conflict("Email already registered")
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.CreatedAt = r.s.now().UTC()
	r.s.users[user.ID] = *user
	r.s.emails[user.Email] = user.ID
	return nil
}

func (r userRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NotFound("User not found")
	}
	return &u, nil
}

func (r userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, domain.NotFound("User not found")
	}
	u := r.s.users[id]
	return &u, nil
}

type taskRepository struct{ s *Store }

func (r taskRepository) List(_ context.Context, ownerID int64, filter domain.TaskFilter) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tasks := []domain.Task{}
	for _, t := range r.s.tasks {
		if t.UserID == ownerID && filter.Matches(t) {
			tasks = append(tasks, t)
		}
	}
	domain.SortNewestFirst(tasks)
	return tasks, nil
}

func (r taskRepository) GetByID(_ context.Context, ownerID, id int64) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, domain.NotFound("Task not found")
	}
	return &t, nil
}

func (r taskRepository) Create(_ context.Context, task *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextTaskID++
	task.ID = r.s.nextTaskID
	task.CreatedAt = r.s.now().UTC()
	r.s.tasks[task.ID] = *task
	return nil
}

func (r taskRepository) Update(_ context.Context, ownerID, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, domain.NotFound("Task not found")
	}
	if patch.IsEmpty() {
		return nil, domain.Validation("Nothing to update")
	}
	patch.Apply(&t)
	r.s.tasks[id] = t
	return &t, nil
}

func (r taskRepository) Delete(_ context.Context, ownerID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != ownerID {
		return domain.NotFound("Task not found")
	}
	delete(r.s.tasks, id)
	return nil
}
