package config

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"usermanager/internal/services"

	"github.com/spf13/viper"
)

// Supported values for DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// ErrMissingJWTSecret is returned when no token signing key is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

// Config holds the service configuration.
type Config struct {
	AppPort  string
	LogLevel string
	Database DatabaseConfig
	JWT      JWTConfig
	Hashing  HashingConfig
	RabbitMQ RabbitMQConfig
}

// DatabaseConfig describes the user store connection.
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// JWTConfig holds the token signing settings.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// HashingConfig controls the bcrypt work factor and worker pool size.
type HashingConfig struct {
	Cost    int
	Workers int
}

// RabbitMQConfig holds lifecycle event broker details. An empty URL disables
// event publishing.
type RabbitMQConfig struct {
	URL           string
	Queue         string
	ConsumeEvents bool
}

// Load reads configuration from environment variables and, when CONFIG_FILE
// is set, from that file. Environment variables take precedence.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=users port=5432 sslmode=disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("JWT_TTL", "1h")
	v.SetDefault("BCRYPT_COST", services.DefaultHashCost)
	v.SetDefault("HASH_WORKERS", runtime.NumCPU())
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "user_events")
	v.SetDefault("RABBITMQ_CONSUME_EVENTS", false)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:  v.GetString("APP_PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Database: DatabaseConfig{
			Driver:          v.GetString("DATABASE_DRIVER"),
			DSN:             v.GetString("DATABASE_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		Hashing: HashingConfig{
			Cost:    v.GetInt("BCRYPT_COST"),
			Workers: v.GetInt("HASH_WORKERS"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:           v.GetString("RABBITMQ_URL"),
			Queue:         v.GetString("RABBITMQ_QUEUE"),
			ConsumeEvents: v.GetBool("RABBITMQ_CONSUME_EVENTS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings the service cannot start without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWT.TTL)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Hashing.Workers < 1 {
		return fmt.Errorf("HASH_WORKERS must be at least 1, got %d", c.Hashing.Workers)
	}
	return nil
}
