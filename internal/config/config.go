package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	AppPort string `env:"APP_PORT,default=8090"`

	// Remote commerce API
	APIBaseURL  string        `env:"STOREFRONT_API_URL,default=http://localhost:8000/api"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT,default=15s"`
	MaxRetries  int           `env:"HTTP_MAX_RETRIES,default=2"`

	// Durable client state
	StateBackend string `env:"STATE_BACKEND,default=file"`
	StateFile    string `env:"STATE_FILE,default=.storefront/state.yaml"`

	RedisAddr     string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// Load reads an optional .env file, then decodes the environment.
func Load() (Config, error) {
	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: decode env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("config: STOREFRONT_API_URL is required")
	}

	switch c.StateBackend {
	case BackendMemory, BackendRedis:
	case BackendFile:
		if c.StateFile == "" {
			return errors.New("config: STATE_FILE is required for the file backend")
		}
	case BackendPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("config: DATABASE_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown STATE_BACKEND %q", c.StateBackend)
	}

	if c.MaxRetries < 0 {
		return errors.New("config: HTTP_MAX_RETRIES must not be negative")
	}

	return nil
}
