// Package config loads the server configuration: defaults, an optional YAML
// file, then environment variables (QUICKPOST_* plus a few well-known names).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	envPrefix = "QUICKPOST_"

	// insecureDevSecret is only used when environment=development and no secret is set.
	insecureDevSecret = "quickpost-development-secret"
)

// Config holds the server settings
type Config struct {
	Environment string `yaml:"environment" env:"ENVIRONMENT"`
	FrontendURL string `yaml:"frontend_url" env:"FRONTEND_URL"` // Base URL of the web app, used in magic links and CORS

	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Database  DatabaseConfig  `yaml:"database" envPrefix:"DATABASE_"`
	Auth      AuthConfig      `yaml:"auth" envPrefix:"AUTH_"`
	Feed      FeedConfig      `yaml:"feed" envPrefix:"FEED_"`
	Mail      MailConfig      `yaml:"mail" envPrefix:"MAIL_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
	Scheduler SchedulerConfig `yaml:"scheduler" envPrefix:"SCHEDULER_"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver" env:"DRIVER"` // postgres or sqlite
	URL          string `yaml:"url" env:"URL"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
}

type AuthConfig struct {
	JWTSecret          string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	MagicLinkTTL       time.Duration `yaml:"magic_link_ttl" env:"MAGIC_LINK_TTL"`
	AccessTokenTTL     time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL"`
	SingleActiveToken  bool          `yaml:"single_active_token" env:"SINGLE_ACTIVE_TOKEN"` // Revoke older links on a new request
	MagicLinkPerMinute int           `yaml:"magic_link_per_minute" env:"MAGIC_LINK_PER_MINUTE"`
}

type FeedConfig struct {
	BaseURL     string        `yaml:"base_url" env:"BASE_URL"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT"`
	CacheMaxAge time.Duration `yaml:"cache_max_age" env:"CACHE_MAX_AGE"`
	UserAgent   string        `yaml:"user_agent" env:"USER_AGENT"`
}

type MailConfig struct {
	Driver   string `yaml:"driver" env:"DRIVER"` // log or smtp
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
	From     string `yaml:"from" env:"FROM"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	File   string `yaml:"file" env:"FILE"`
}

type SchedulerConfig struct {
	TokenSweep string `yaml:"token_sweep" env:"TOKEN_SWEEP"` // cron spec, empty disables
}

// DefaultConfig returns development-friendly defaults
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		FrontendURL: "http://localhost:3000",
		Server: ServerConfig{
			Addr:            ":3001",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       "postgres",
			URL:          "postgres://localhost:5432/quickpost?sslmode=disable",
			MaxOpenConns: 10,
		},
		Auth: AuthConfig{
			MagicLinkTTL:       15 * time.Minute,
			AccessTokenTTL:     7 * 24 * time.Hour,
			MagicLinkPerMinute: 5,
		},
		Feed: FeedConfig{
			BaseURL:     "https://dev.to/api/articles",
			Timeout:     10 * time.Second,
			CacheMaxAge: 5 * time.Minute,
			UserAgent:   "Quick-Post-Aggregator/1.0",
		},
		Mail: MailConfig{
			Driver: "log",
			Port:   587,
			From:   "Quick-Post <no-reply@quickpost.local>",
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
		Scheduler: SchedulerConfig{
			TokenSweep: "@every 10m",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when empty or
// missing) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyWellKnownEnv()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.Auth.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.Auth.JWTSecret = insecureDevSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// applyWellKnownEnv honours the unprefixed variables used by common hosting setups.
func (c *Config) applyWellKnownEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		c.FrontendURL = v
	}
	if v := os.Getenv("NODE_ENV"); v != "" {
		c.Environment = v
	}
}

// IsDevelopment reports whether detailed errors and the insecure secret are allowed
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// Validate checks the settings the server cannot run without
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.MagicLinkTTL <= 0 || c.Auth.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("auth token lifetimes must be positive"))
	}
	switch c.Mail.Driver {
	case "log":
	case "smtp":
		if c.Mail.Host == "" {
			errs = append(errs, errors.New("mail.host is required for the smtp driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("mail.driver must be log or smtp, got %q", c.Mail.Driver))
	}
	if c.Feed.BaseURL == "" {
		errs = append(errs, errors.New("feed.base_url is required"))
	}

	return errors.Join(errs...)
}
