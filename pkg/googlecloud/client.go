package googlecloud

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/datastore"

	"github.com/locvowork/task_management_sample/internal/domain"
	"github.com/locvowork/task_management_sample/internal/logger"
)

// Client wraps the Google Cloud Datastore client and exposes it as the user and
// task repositories.
type Client struct {
	ds *datastore.Client
}

// NewClient creates a new Google Cloud Datastore client.
// The official client honours DATASTORE_EMULATOR_HOST automatically.
func NewClient(ctx context.Context, projectID string) (*Client, error) {
	if emulatorHost := os.Getenv("DATASTORE_EMULATOR_HOST"); emulatorHost != "" {
		logger.InfoLog(ctx, "Initializing Datastore client against emulator at %s", emulatorHost)
	}

	ds, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}

	return &Client{ds: ds}, nil
}

// Close closes the underlying datastore client.
func (c *Client) Close() error {
	return c.ds.Close()
}

func (c *Client) Users() domain.UserRepository {
	return &userStore{ds: c.ds}
}

func (c *Client) Tasks() domain.TaskRepository {
	return &taskStore{ds: c.ds}
}
