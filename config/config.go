package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DatabaseConfig represents a single database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ConnectionString returns a PostgreSQL connection string
func (dc *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		dc.Host, dc.Port, dc.User, dc.Password, dc.DBName,
	)
}

// Config holds the complete application configuration.
// It is read once at startup and handed to constructors by reference.
type Config struct {
	DatabaseURL         string        `validate:"required"`
	Driver              string        `validate:"oneof=pgx postgres"`
	Pool                bool
	ListenAddr          string        `validate:"required,hostname_port"`
	Namespace           string        `validate:"omitempty,excludesall=/ "`
	ReadBufferSize      int           `validate:"min=64"`
	ReadTimeout         time.Duration `validate:"min=0"`
	DistinctInputErrors bool
	MetricsAddr         string `validate:"omitempty,hostname_port"`
	LogLevel            string `validate:"oneof=debug info warn error"`
}

// DefaultConfig returns the configuration used when no environment overrides it
func DefaultConfig() *Config {
	return &Config{
		Driver:         "pgx",
		ListenAddr:     "0.0.0.0:8080",
		ReadBufferSize: 1024,
		LogLevel:       "info",
	}
}

// Load reads an optional dotenv file into the process environment and then
// builds the configuration from it. A missing file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	return FromEnv(os.Getenv)
}

// FromEnv builds and validates a Config from the given lookup function
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	cfg.DatabaseURL = getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" && getenv("DB_HOST") != "" {
		port, err := intValue(getenv, "DB_PORT", 5432)
		if err != nil {
			return nil, err
		}
		db := DatabaseConfig{
			Host:     getenv("DB_HOST"),
			Port:     port,
			User:     getenv("DB_USER"),
			Password: getenv("DB_PASSWORD"),
			DBName:   getenv("DB_NAME"),
		}
		cfg.DatabaseURL = db.ConnectionString()
	}

	if v := getenv("DB_DRIVER"); v != "" {
		cfg.Driver = v
	}
	if v := getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.Namespace = getenv("API_NAMESPACE")
	cfg.MetricsAddr = getenv("METRICS_ADDR")

	var err error
	if cfg.Pool, err = boolValue(getenv, "DB_POOL"); err != nil {
		return nil, err
	}
	if cfg.DistinctInputErrors, err = boolValue(getenv, "DISTINCT_INPUT_ERRORS"); err != nil {
		return nil, err
	}
	if cfg.ReadBufferSize, err = intValue(getenv, "READ_BUFFER_SIZE", cfg.ReadBufferSize); err != nil {
		return nil, err
	}
	if v := getenv("READ_TIMEOUT"); v != "" {
		if cfg.ReadTimeout, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid READ_TIMEOUT %q: %w", v, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func intValue(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func boolValue(getenv func(string) string, key string) (bool, error) {
	v := getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
