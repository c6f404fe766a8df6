// Package config assembles the service configuration from defaults,
// command-line flags, a .env file, and environment variables, in that
// order of increasing priority, and validates the result.
package config

import (
	"flag"
	"log"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the service.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	DefaultPage         int           `env:"DEFAULT_PAGE" validate:"gt=0"`
	DefaultPageSize     int           `env:"DEFAULT_PAGE_SIZE" validate:"gt=0"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	LogLevel:            "info",
	DatabaseDSN:         "",
	DBConnectionTimeout: 10 * time.Second,
	DefaultPage:         1,
	DefaultPageSize:     10,
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[fieldLevel.Field().String()]
}

func (c *Config) validate() error {
	validate := validator.New()

	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption customizes New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command-line flag parsing; tests use it
// because the test binary owns the flag set.
func WithDisableFlagsParsing(disable bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disable
	}
}

func applyDefaults(cfg *Config, defaults Config) {
	*cfg = defaults
}

func (c *Config) overlay(other Config) {
	if other.RunAddr != "" {
		c.RunAddr = other.RunAddr
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabaseDSN != "" {
		c.DatabaseDSN = other.DatabaseDSN
	}
	if other.DBConnectionTimeout != 0 {
		c.DBConnectionTimeout = other.DBConnectionTimeout
	}
	if other.DefaultPage != 0 {
		c.DefaultPage = other.DefaultPage
	}
	if other.DefaultPageSize != 0 {
		c.DefaultPageSize = other.DefaultPageSize
	}
}

// New builds the configuration: defaults, then flags, then .env, then
// environment variables, then validation.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	cfg := &Config{}
	applyDefaults(cfg, defaultConfig)

	if !options.disableFlagsParsing {
		flag.StringVar(&cfg.RunAddr, "a", cfg.RunAddr, "address and port to run server")
		flag.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "logger level")
		flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database connection string (empty selects the in-memory backend)")
		flag.IntVar(&cfg.DefaultPage, "p", cfg.DefaultPage, "default page number for user listing")
		flag.IntVar(&cfg.DefaultPageSize, "s", cfg.DefaultPageSize, "default page size for user listing")
		flag.Parse()
	}

	var valuesFromEnv Config
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, err
	}
	cfg.overlay(valuesFromEnv)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
