package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres  = "postgres"
	StorageDriverDatastore = "datastore"
	StorageDriverMemory    = "memory"

	PasswordHasherSHA256 = "sha256"
	PasswordHasherBcrypt = "bcrypt"

	// DefaultJWTSecret is used when JWT_SECRET is unset. Deployments must override it.
	DefaultJWTSecret = "your-secret-key-change-in-production"
)

type envConfig struct {
	APP_PORT      string
	APP_ENV       string
	LOG_FILE_PATH string
	LOG_LEVEL     string

	STORAGE_DRIVER string

	DB_HOST              string
	DB_PORT              string
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_MAX_OPEN_CONNS    int
	DB_MAX_IDLE_CONNS    int
	DB_CONN_MAX_LIFETIME time.Duration

	GCP_PROJECT_ID string

	JWT_SECRET      string
	PASSWORD_HASHER string
}

// DefaultEnvConfig is populated by LoadEnvConfig.
var DefaultEnvConfig = defaultEnvConfig()

func defaultEnvConfig() envConfig {
	return envConfig{
		APP_PORT:             "8080",
		APP_ENV:              "development",
		LOG_LEVEL:            "info",
		STORAGE_DRIVER:       StorageDriverPostgres,
		DB_HOST:              "localhost",
		DB_PORT:              "5432",
		DB_USER:              "postgres",
		DB_NAME:              "taskmanager",
		DB_SSL_MODE:          "disable",
		DB_MAX_OPEN_CONNS:    25,
		DB_MAX_IDLE_CONNS:    5,
		DB_CONN_MAX_LIFETIME: 5 * time.Minute,
		JWT_SECRET:           DefaultJWTSecret,
		PASSWORD_HASHER:      PasswordHasherSHA256,
	}
}

// IsProduction reports whether APP_ENV is "production".
func (c envConfig) IsProduction() bool {
	return strings.EqualFold(c.APP_ENV, "production")
}

// LoadEnvConfig reads .env (if present) and the process environment into DefaultEnvConfig.
func LoadEnvConfig() error {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := parseEnvConfig(os.LookupEnv)
	if err != nil {
		return err
	}
	DefaultEnvConfig = cfg
	return nil
}

func parseEnvConfig(lookup func(string) (string, bool)) (envConfig, error) {
	cfg := defaultEnvConfig()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("APP_PORT", &cfg.APP_PORT)
	str("APP_ENV", &cfg.APP_ENV)
	str("LOG_FILE_PATH", &cfg.LOG_FILE_PATH)
	str("LOG_LEVEL", &cfg.LOG_LEVEL)
	str("STORAGE_DRIVER", &cfg.STORAGE_DRIVER)
	str("DB_HOST", &cfg.DB_HOST)
	str("DB_PORT", &cfg.DB_PORT)
	str("DB_USER", &cfg.DB_USER)
	str("DB_PASSWORD", &cfg.DB_PASSWORD)
	str("DB_NAME", &cfg.DB_NAME)
	str("DB_SSL_MODE", &cfg.DB_SSL_MODE)
	str("GCP_PROJECT_ID", &cfg.GCP_PROJECT_ID)
	str("JWT_SECRET", &cfg.JWT_SECRET)
	str("PASSWORD_HASHER", &cfg.PASSWORD_HASHER)

	cfg.STORAGE_DRIVER = strings.ToLower(cfg.STORAGE_DRIVER)
	cfg.PASSWORD_HASHER = strings.ToLower(cfg.PASSWORD_HASHER)

	for key, dst := range map[string]*int{
		"DB_MAX_OPEN_CONNS": &cfg.DB_MAX_OPEN_CONNS,
		"DB_MAX_IDLE_CONNS": &cfg.DB_MAX_IDLE_CONNS,
	} {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid %s %q", key, v)
		}
		*dst = n
	}

	if v, ok := lookup("DB_CONN_MAX_LIFETIME"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", v, err)
		}
		cfg.DB_CONN_MAX_LIFETIME = d
	}

	switch cfg.STORAGE_DRIVER {
	case StorageDriverPostgres, StorageDriverMemory:
	case StorageDriverDatastore:
		if cfg.GCP_PROJECT_ID == "" {
			return cfg, fmt.Errorf("GCP_PROJECT_ID is required when STORAGE_DRIVER=%s", StorageDriverDatastore)
		}
	default:
		return cfg, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.STORAGE_DRIVER)
	}

	switch cfg.PASSWORD_HASHER {
	case PasswordHasherSHA256, PasswordHasherBcrypt:
	default:
		return cfg, fmt.Errorf("unsupported PASSWORD_HASHER %q", cfg.PASSWORD_HASHER)
	}

	return cfg, nil
}
