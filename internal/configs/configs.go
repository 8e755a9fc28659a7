/*
Package configs is responsible for loading and parsing the application's configuration settings.

Values come from environment variables, optionally seeded from a .env file in the working
directory. They cover the running environment, the listening port, the static asset
directory, allowed WebSocket origins, the extra moderation blocklist and rate limits.
*/
package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DotEnvFile is the optional file loaded before the environment is parsed.
// Variables already present in the environment win over the file.
const DotEnvFile = ".env"

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment string `env:"ENVIRONMENT" envDefault:"development" validate:"oneof=development production test"`
	Port        int    `env:"PORT" envDefault:"3000" validate:"min=1,max=65535"`
	PublicDir   string `env:"PUBLIC_DIR" envDefault:"public"`

	// Security Settings
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Moderation Settings
	ExtraBlockedWords []string `env:"EXTRA_BLOCKED_WORDS" envSeparator:","`

	// Rate Limits
	MessageRate  float64 `env:"MESSAGE_RATE" envDefault:"5" validate:"gt=0"`
	MessageBurst int     `env:"MESSAGE_BURST" envDefault:"10" validate:"min=1"`
	ConnectRate  float64 `env:"CONNECT_RATE" envDefault:"0.5" validate:"gt=0"`
	ConnectBurst int     `env:"CONNECT_BURST" envDefault:"5" validate:"min=1"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// Addr returns the listen address for the HTTP server.
func (c *AppConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// LoadConfig reads and parses the application configuration from the environment.
// It returns a pointer to the AppConfig struct and any error encountered.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
	}

	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.AllowedOrigins = cleanList(cfg.AllowedOrigins)
	cfg.ExtraBlockedWords = cleanList(cfg.ExtraBlockedWords)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if !cfg.IsDevelopment() && len(cfg.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("ALLOWED_ORIGINS environment variable is required in %s environment", cfg.Environment)
	}

	return cfg, nil
}

// cleanList trims every entry and drops empty ones.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
