package googlecloud

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"

	"github.com/locvowork/task_management_sample/internal/domain"
)

type taskStore struct {
	ds *datastore.Client
}

// List runs an ancestor query under the owner's key and applies the filter in
// memory, which avoids composite indexes for every filter combination.
func (s *taskStore) List(ctx context.Context, ownerID int64, filter domain.TaskFilter) ([]domain.Task, error) {
	query := datastore.NewQuery(KindTask).Ancestor(userKey(ownerID))

	var entities []taskEntity
	keys, err := s.ds.GetAll(ctx, query, &entities)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, len(entities))
	for i := range entities {
		t, err := entities[i].toDomain(keys[i])
		if err != nil {
			return nil, fmt.Errorf("decode task %d: %w", keys[i].ID, err)
		}
		if filter.Matches(*t) {
			tasks = append(tasks, *t)
		}
	}
	domain.SortNewestFirst(tasks)
	return tasks, nil
}

func (s *taskStore) GetByID(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	key := taskKey(ownerID, id)
	var e taskEntity
	if err := s.ds.Get(ctx, key, &e); err != nil {
		return nil, WrapDatastoreError(err, "Task not found")
	}
	return e.toDomain(key)
}

func (s *taskStore) Create(ctx context.Context, task *domain.Task) error {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	// IncompleteKey will auto-generate an int64 ID
	key := datastore.IncompleteKey(KindTask, userKey(task.UserID))
	newKey, err := s.ds.Put(ctx, key, newTaskEntity(task))
	if err != nil {
		return fmt.Errorf("put task: %w", err)
	}
	task.ID = newKey.ID
	return nil
}

func (s *taskStore) Update(ctx context.Context, ownerID, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	key := taskKey(ownerID, id)
	var updated *domain.Task

	_, err := s.ds.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var e taskEntity
		if err := tx.Get(key, &e); err != nil {
			return WrapDatastoreError(err, "Task not found")
		}
		if patch.IsEmpty() {
			return domain.Validation("Nothing to update")
		}

		t, err := e.toDomain(key)
		if err != nil {
			return err
		}
		patch.Apply(t)

		if _, err := tx.Put(key, newTaskEntity(t)); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *taskStore) Delete(ctx context.Context, ownerID, id int64) error {
	key := taskKey(ownerID, id)
	_, err := s.ds.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var e taskEntity
		if err := tx.Get(key, &e); err != nil {
			return WrapDatastoreError(err, "Task not found")
		}
		return tx.Delete(key)
	})
	return err
}
