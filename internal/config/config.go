// Package config loads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	apperrors "lazo-pipeline/internal/app/errors"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Job stores
const (
	JobStoreSQL   = "sql"
	JobStoreRedis = "redis"
)

type Config struct {
	Environment         string `env:"LAZO_ENV" env-default:"development"`
	LogLevel            string `env:"LAZO_LOG_LEVEL" env-default:"info"`
	ProvidersConfigPath string `env:"LAZO_PROVIDERS_CONFIG"`

	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Minio    MinioConfig
	Pool     PoolConfig
}

type ServerConfig struct {
	Host         string        `env:"LAZO_HOST" env-default:"0.0.0.0"`
	Port         string        `env:"LAZO_PORT" env-default:"8081"`
	ReadTimeout  time.Duration `env:"LAZO_READ_TIMEOUT" env-default:"2m"`
	WriteTimeout time.Duration `env:"LAZO_WRITE_TIMEOUT" env-default:"2m"`
	IdleTimeout  time.Duration `env:"LAZO_IDLE_TIMEOUT" env-default:"2m"`
	MaxAudioMB   int           `env:"LAZO_MAX_AUDIO_MB" env-default:"100"`
}

type DatabaseConfig struct {
	Driver   string `env:"LAZO_DB_DRIVER" env-default:"sqlite"`
	DSN      string `env:"LAZO_DB_DSN" env-default:"data/lazo.db"`
	JobStore string `env:"LAZO_JOB_STORE" env-default:"sql"`
}

type RedisConfig struct {
	Addr      string        `env:"LAZO_REDIS_ADDR" env-default:"localhost:6379"`
	Password  string        `env:"LAZO_REDIS_PASSWORD"`
	DB        int           `env:"LAZO_REDIS_DB" env-default:"0"`
	Retention time.Duration `env:"LAZO_REDIS_RETENTION" env-default:"168h"`
}

// MinioConfig leaves archiving off while Endpoint is empty
type MinioConfig struct {
	Endpoint  string `env:"LAZO_MINIO_ENDPOINT"`
	AccessKey string `env:"LAZO_MINIO_ACCESS_KEY"`
	SecretKey string `env:"LAZO_MINIO_SECRET_KEY"`
	Bucket    string `env:"LAZO_MINIO_BUCKET" env-default:"lazo-sessions"`
	UseSSL    bool   `env:"LAZO_MINIO_USE_SSL" env-default:"false"`
}

type PoolConfig struct {
	Size            int           `env:"LAZO_POOL_SIZE" env-default:"0"`
	ShutdownTimeout time.Duration `env:"LAZO_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// Load reads .env, then the environment, and validates the result
func Load() (*Config, error) {
	if _, err := LoadEnv(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("failed to read environment variables: " + err.Error())
	}
	return cfg
}

// Validate checks the values cleanenv cannot
func (c *Config) Validate() error {
	err := errors.Join(
		ValidatePort(c.Server.Port, "server"),
		ValidateTimeout(c.Server.ReadTimeout, "server read"),
		ValidateTimeout(c.Server.WriteTimeout, "server write"),
		ValidateTimeout(c.Pool.ShutdownTimeout, "shutdown"),
		ValidatePoolSize(c.Pool.Size, "worker pool"),
		ValidateOneOf(c.Database.Driver, "LAZO_DB_DRIVER", DriverSQLite, DriverPostgres),
		ValidateOneOf(c.Database.JobStore, "LAZO_JOB_STORE", JobStoreSQL, JobStoreRedis),
		ValidateOneOf(c.LogLevel, "LAZO_LOG_LEVEL", "debug", "info", "warn", "error"),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidConfig, err)
	}
	return nil
}

// MaxAudioBytes converts the upload cap to bytes
func (c *Config) MaxAudioBytes() int64 {
	return int64(c.Server.MaxAudioMB) << 20
}

// Development reports whether loggers should use development encoders
func (c *Config) Development() bool {
	return c.Environment != "production"
}
