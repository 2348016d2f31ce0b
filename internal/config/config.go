// Package config loads server settings from defaults, an optional YAML
// file and LIBRARY_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. LIBRARY_PORT.
const EnvPrefix = "LIBRARY"

// Config holds the server settings.
type Config struct {
	Port            int             `mapstructure:"port"`
	DatabasePath    string          `mapstructure:"database_path"`
	LogLevel        string          `mapstructure:"log_level"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig configures the per-client limiter on write routes. A
// Rate of 0 disables it.
type RateLimitConfig struct {
	Rate  float64 `mapstructure:"rate"`
	Burst float64 `mapstructure:"burst"`
}

// Enabled reports whether write routes should be rate limited.
func (c RateLimitConfig) Enabled() bool {
	return c.Rate > 0
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("database_path", "library.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", 5*time.Second)
	v.SetDefault("rate_limit.rate", 10)
	v.SetDefault("rate_limit.burst", 20)
}

// Load reads the configuration. If path is empty, a config.yaml in the
// working directory is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.DatabasePath == "" {
		return errors.New("database_path must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if c.RateLimit.Rate < 0 {
		return fmt.Errorf("rate_limit.rate must not be negative, got %g", c.RateLimit.Rate)
	}
	if c.RateLimit.Enabled() && c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate_limit.burst must be at least 1, got %g", c.RateLimit.Burst)
	}
	return nil
}

// Level parses LogLevel as a slog level name (debug, info, warn, error).
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
