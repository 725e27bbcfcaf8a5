package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithRetry(t *testing.T) {
	ctx := context.Background()
	cfg := RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond}

	t.Run("SuccessAfterRetries", func(t *testing.T) {
		attempts := 0
		err := WithRetry(ctx, cfg, func() error {
			attempts++
			if attempts < 3 {
				return errors.New("fail")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("FailAfterMaxAttempts", func(t *testing.T) {
		attempts := 0
		err := WithRetry(ctx, cfg, func() error {
			attempts++
			return errors.New("permanent fail")
		})
		assert.EqualError(t, err, "permanent fail")
		assert.Equal(t, 3, attempts)
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := WithRetry(cctx, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour}, func() error {
			return errors.New("fail")
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "tasks"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=tasks sslmode=disable", cfg.DSN())

	cfg.SSLMode = "require"
	assert.Contains(t, cfg.DSN(), "sslmode=require")
}
