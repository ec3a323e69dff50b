package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/gopherauth/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvironmentProduction
	defaultAccessTTL    = 15 * time.Minute
	defaultRefreshTTL   = 7 * 24 * time.Hour
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the auth service will be run
	ListenAddr string

	// Database to connect to: postgres://... or sqlite://path
	DatabaseDSN string

	// Secret keys to sign access and refresh tokens, must differ
	AccessSecret  string
	RefreshSecret string

	// Token lifetimes
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Environment. In production cookies are secure and logs are JSON
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		Environment: defaultEnvironment,
		AccessTTL:   defaultAccessTTL,
		RefreshTTL:  defaultRefreshTTL,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setPort := func(value string) error {
		if value != "" {
			c.ListenAddr = ":" + value
		}
		return nil
	}

	// PORT goes first so RUN_ADDRESS overrides it
	envs := []struct {
		key     string
		parseFn func(string) error
	}{
		{"PORT", setPort},
		{"RUN_ADDRESS", setString(&c.ListenAddr)},
		{"DATABASE_URL", setString(&c.DatabaseDSN)},
		{"ACCESS_TOKEN_SECRET", setString(&c.AccessSecret)},
		{"REFRESH_TOKEN_SECRET", setString(&c.RefreshSecret)},
		{"ACCESS_TOKEN_TTL", setDuration(&c.AccessTTL)},
		{"REFRESH_TOKEN_TTL", setDuration(&c.RefreshTTL)},
		{"LOG_LEVEL", setString(&c.LogLevel)},
		{"ENVIRONMENT", setString(&c.Environment)},
	}

	for _, env := range envs {
		if err := env.parseFn(getenv(env.key)); err != nil {
			return fmt.Errorf("invalid %s: %w", env.key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("authserver", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string (postgres://... or sqlite://path)")
	fs.StringVar(&c.AccessSecret, "access-secret", c.AccessSecret, "Secret key to sign access tokens")
	fs.StringVar(&c.RefreshSecret, "refresh-secret", c.RefreshSecret, "Secret key to sign refresh tokens")
	fs.DurationVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTTL, "refresh-ttl", c.RefreshTTL, "Refresh token lifetime")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (development, production)")

	return fs.Parse(args)
}

// Check options that have no sensible default
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn is required"))
	}
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		errs = append(errs, errors.New("access and refresh secrets are required"))
	}
	if c.AccessSecret != "" && c.AccessSecret == c.RefreshSecret {
		errs = append(errs, errors.New("access and refresh secrets must differ"))
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}

	return errors.Join(errs...)
}
