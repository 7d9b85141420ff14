// Package config reads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port           string
	Database       DatabaseConfig
	JWTSecret      string
	LogLevel       string
	LogFormat      string
	PhraseBankPath string
	Generator      GeneratorConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// GeneratorConfig selects the LLM client used to draft phrase sets.
type GeneratorConfig struct {
	APIKey  string
	Model   string
	UseCLI  bool
	CLIPath string
	Mock    bool
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "speak_user"),
			Password: getEnv("DB_PASSWORD", "speak_password"),
			Name:     getEnv("DB_NAME", "speak_practice"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWTSecret:      getEnv("JWT_SECRET", ""),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "json")),
		PhraseBankPath: getEnv("PHRASEBANK_PATH", ""),
		Generator:      LoadGenerator(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadGenerator reads only the generator settings. The CLI uses it where no
// database or JWT secret is configured.
func LoadGenerator() GeneratorConfig {
	return GeneratorConfig{
		APIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		Model:   getEnv("ANTHROPIC_MODEL", "claude-opus-4-5-20251101"),
		UseCLI:  getEnv("USE_CLI_GENERATOR", "") == "true",
		CLIPath: getEnv("CLAUDE_CLI_PATH", "claude"),
		Mock:    getEnv("MOCK_GENERATOR", "") == "true",
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT %q is not a valid port", c.Port))
	}
	if p, err := strconv.Atoi(c.Database.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT %q is not a valid port", c.Database.Port))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be one of debug, info, warn, error", c.LogLevel))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be json or console", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
