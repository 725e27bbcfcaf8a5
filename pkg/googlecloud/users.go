package googlecloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"

	"github.com/locvowork/task_management_sample/internal/domain"
)

type userStore struct {
	ds *datastore.Client
}

// Create allocates the user id up front so the user and its email reservation can
// be written in the same transaction.
func (s *userStore) Create(ctx context.Context, user *domain.User) error {
	keys, err := s.ds.AllocateIDs(ctx, []*datastore.Key{datastore.IncompleteKey(KindUser, nil)})
	if err != nil {
		return fmt.Errorf("allocate user id: %w", err)
	}
	key := keys[0]
	createdAt := time.Now().UTC()

	_, err = s.ds.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var existing emailEntity
		err := tx.Get(emailKey(user.Email), &existing)
		if err == nil {
			return domain.Conflict("Email already registered")
		}
		if !errors.Is(err, datastore.ErrNoSuchEntity) {
			return err
		}

		entity := &userEntity{Name: user.Name, Email: user.Email, Password: user.PasswordHash, CreatedAt: createdAt}
		if _, err := tx.Put(key, entity); err != nil {
			return err
		}
		_, err = tx.Put(emailKey(user.Email), &emailEntity{UserID: key.ID})
		return err
	})
	if err != nil {
		return err
	}

	user.ID = key.ID
	user.CreatedAt = createdAt
	return nil
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var e userEntity
	if err := s.ds.Get(ctx, userKey(id), &e); err != nil {
		return nil, WrapDatastoreError(err, "User not found")
	}
	return e.toDomain(id), nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var idx emailEntity
	if err := s.ds.Get(ctx, emailKey(email), &idx); err != nil {
		return nil, WrapDatastoreError(err, "User not found")
	}
	return s.GetByID(ctx, idx.UserID)
}
