package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures environment driven configuration values for the
// coordinator service.
type Config struct {
	HTTPPort        int           `env:"COORDINATOR_HTTP_PORT" envDefault:"8080"`
	SQLiteDSN       string        `env:"COORDINATOR_SQLITE_DSN" envDefault:"file:coordinator.db?_foreign_keys=on"`
	AMQPURL         string        `env:"COORDINATOR_AMQP_URL"`
	ShutdownTimeout time.Duration `env:"COORDINATOR_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses configuration values from the current process environment.
//
// Every field has a working default except the AMQP URL; notifications stay
// disabled when it is empty.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return Config{}, fmt.Errorf("COORDINATOR_HTTP_PORT must be between 1 and 65535, got %d", cfg.HTTPPort)
	}
	if cfg.SQLiteDSN == "" {
		return Config{}, fmt.Errorf("COORDINATOR_SQLITE_DSN must not be empty")
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("COORDINATOR_SHUTDOWN_TIMEOUT must be positive, got %s", cfg.ShutdownTimeout)
	}

	return cfg, nil
}
