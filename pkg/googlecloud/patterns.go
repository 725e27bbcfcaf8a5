package googlecloud

import (
	"errors"

	"cloud.google.com/go/datastore"

	"github.com/locvowork/task_management_sample/internal/domain"
)

// WrapDatastoreError converts a missing entity into a domain not-found error
// carrying msg; other errors pass through unchanged.
func WrapDatastoreError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return domain.NotFound(msg)
	}
	return err
}

// IsNotFoundError checks if an error is a not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, datastore.ErrNoSuchEntity)
}
