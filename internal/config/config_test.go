package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestParseEnvConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := parseEnvConfig(lookupFrom(nil))
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.APP_PORT)
		assert.Equal(t, StorageDriverPostgres, cfg.STORAGE_DRIVER)
		assert.Equal(t, DefaultJWTSecret, cfg.JWT_SECRET)
		assert.Equal(t, PasswordHasherSHA256, cfg.PASSWORD_HASHER)
		assert.Equal(t, 5*time.Minute, cfg.DB_CONN_MAX_LIFETIME)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("Overrides", func(t *testing.T) {
		cfg, err := parseEnvConfig(lookupFrom(map[string]string{
			"APP_PORT":             "9000",
			"APP_ENV":              "Production",
			"STORAGE_DRIVER":       "MEMORY",
			"DB_MAX_OPEN_CONNS":    "50",
			"DB_CONN_MAX_LIFETIME": "1h",
			"JWT_SECRET":           "s3cret",
			"PASSWORD_HASHER":      "bcrypt",
		}))
		require.NoError(t, err)
		assert.Equal(t, "9000", cfg.APP_PORT)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, StorageDriverMemory, cfg.STORAGE_DRIVER)
		assert.Equal(t, 50, cfg.DB_MAX_OPEN_CONNS)
		assert.Equal(t, time.Hour, cfg.DB_CONN_MAX_LIFETIME)
		assert.Equal(t, "s3cret", cfg.JWT_SECRET)
		assert.Equal(t, PasswordHasherBcrypt, cfg.PASSWORD_HASHER)
	})

	t.Run("BlankSecretKeepsFallback", func(t *testing.T) {
		cfg, err := parseEnvConfig(lookupFrom(map[string]string{"JWT_SECRET": "  "}))
		require.NoError(t, err)
		assert.Equal(t, DefaultJWTSecret, cfg.JWT_SECRET)
	})

	t.Run("Invalid", func(t *testing.T) {
		cases := map[string]map[string]string{
			"driver":                {"STORAGE_DRIVER": "mongo"},
			"hasher":                {"PASSWORD_HASHER": "md5"},
			"open conns":            {"DB_MAX_OPEN_CONNS": "many"},
			"lifetime":              {"DB_CONN_MAX_LIFETIME": "forever"},
			"datastore w/o project": {"STORAGE_DRIVER": "datastore"},
		}
		for name, env := range cases {
			_, err := parseEnvConfig(lookupFrom(env))
			assert.Error(t, err, name)
		}
	})
}
