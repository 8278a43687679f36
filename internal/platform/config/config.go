// Package config loads runtime configuration from the environment with an
// optional .env overlay. Values are organised by concern and every field has
// a sensible default so the service boots in local development with nothing
// configured except the collaborator base URL.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile        = ".env"
	defaultPort           = "8080"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 120 * time.Second
	defaultRedisAddr      = "localhost:6379"
	defaultSessionTTL     = 24 * time.Hour
	defaultIdemHeader     = "Idempotency-Key"
	defaultIdemTTL        = 24 * time.Hour
	defaultSettingsMaxAge = 5 * time.Minute
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server       ServerConfig
	Collaborator CollaboratorConfig
	Redis        RedisConfig
	Sessions     SessionConfig
	Idempotency  IdempotencyConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CollaboratorConfig points at the backing commerce API.
type CollaboratorConfig struct {
	BaseURL        string
	SettingsMaxAge time.Duration
}

// RedisConfig configures the session and idempotency store connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SessionConfig controls the checkout session blob store.
type SessionConfig struct {
	TTL time.Duration
}

// IdempotencyConfig controls the submit idempotency middleware.
type IdempotencyConfig struct {
	Header string
	TTL    time.Duration
}

// Option customises configuration loading.
type Option func(*loadOptions)

type loadOptions struct {
	envFile   string
	envValues map[string]string
	skipEnv   bool
}

// WithEnvFile overrides the .env file path consulted during loading.
func WithEnvFile(path string) Option {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithEnvMap seeds explicit values, primarily for tests.
func WithEnvMap(values map[string]string) Option {
	return func(o *loadOptions) {
		o.envValues = values
	}
}

// WithoutSystemEnv ignores the process environment, primarily for tests.
func WithoutSystemEnv() Option {
	return func(o *loadOptions) {
		o.skipEnv = true
	}
}

// Load reads configuration from the environment (and a .env overlay) and
// validates required fields.
func Load(opts ...Option) (Config, error) {
	options := loadOptions{envFile: defaultEnvFile}
	for _, opt := range opts {
		opt(&options)
	}

	fileValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envValues != nil {
			if value, ok := options.envValues[key]; ok {
				return value, true
			}
		}
		if !options.skipEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		value, ok := fileValues[key]
		return value, ok
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Collaborator: CollaboratorConfig{
			BaseURL:        stringWithDefault(lookup, "COMMERCE_API_BASE_URL", ""),
			SettingsMaxAge: durationWithDefault(lookup, "SETTINGS_MAX_AGE", defaultSettingsMaxAge),
		},
		Redis: RedisConfig{
			Addr:     stringWithDefault(lookup, "REDIS_ADDR", defaultRedisAddr),
			Password: stringWithDefault(lookup, "REDIS_PASSWORD", ""),
			DB:       intWithDefault(lookup, "REDIS_DB", 0),
		},
		Sessions: SessionConfig{
			TTL: durationWithDefault(lookup, "SESSION_TTL", defaultSessionTTL),
		},
		Idempotency: IdempotencyConfig{
			Header: stringWithDefault(lookup, "IDEMPOTENCY_HEADER", defaultIdemHeader),
			TTL:    durationWithDefault(lookup, "IDEMPOTENCY_TTL", defaultIdemTTL),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidationError reports configuration fields that failed validation.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: invalid fields: %s", strings.Join(e.fields, ", "))
}

// Fields lists the invalid field names.
func (e *ValidationError) Fields() []string {
	return append([]string(nil), e.fields...)
}

func validateConfig(cfg Config) error {
	var invalid []string
	if strings.TrimSpace(cfg.Collaborator.BaseURL) == "" {
		invalid = append(invalid, "COMMERCE_API_BASE_URL")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		invalid = append(invalid, "REDIS_ADDR")
	}
	if cfg.Server.Port == "" {
		invalid = append(invalid, "PORT")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
