// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime setting. All values come from the environment;
// defaults suit local development.
type Config struct {
	Addr     string        `env:"ADDR" envDefault:":8080"`
	DBPath   string        `env:"DB_PATH" envDefault:"./data/courtmate.db"`
	LogLevel string        `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool          `env:"LOG_JSON" envDefault:"false"`
	JWT      JWT           `envPrefix:"JWT_"`
	Shutdown time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// JWT configures session token signing.
type JWT struct {
	Secret   string        `env:"SECRET,required"`
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
