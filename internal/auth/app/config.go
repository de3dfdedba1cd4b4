package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Password digest schemes.
const (
	HashHMAC     = "hmac"
	HashArgon2id = "argon2id"
)

type Config struct {
	Env       string `env:"ENV" envDefault:"dev"`         // Environment (dev, staging, prod)
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`  // debug, info, warn, error
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json, text

	Port                int           `env:"PORT" envDefault:"8080"`
	BaseURL             string        `env:"BASE_URL" envDefault:"http://localhost:8080"` // Prefix of every short URL
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	// Secrets. When the value is empty it is read from the file, which is
	// created with a random secret on first start. An empty file path means
	// a fresh secret per process.
	JWTSecret          string `env:"JWT_SECRET"`
	JWTSecretFile      string `env:"JWT_SECRET_FILE" envDefault:"jwt_secret"`
	PasswordSecret     string `env:"PASSWORD_SECRET"`
	PasswordSecretFile string `env:"PASSWORD_SECRET_FILE" envDefault:"password_secret"`

	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	PasswordHash string        `env:"PASSWORD_HASH" envDefault:"hmac"` // hmac or argon2id

	StoreDriver  string `env:"STORE_DRIVER" envDefault:"memory"` // memory, sqlite, redis
	DatabaseFile string `env:"DATABASE_FILE" envDefault:"tinylink.db"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	ShortCodeLength      int `env:"SHORTCODE_LENGTH" envDefault:"8"`
	ShortCodeMaxLength   int `env:"SHORTCODE_MAX_LENGTH" envDefault:"12"`
	ShortCodeMaxAttempts int `env:"SHORTCODE_MAX_ATTEMPTS" envDefault:"100"`

	// Optional admin account created on start when both are set.
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// LoadConfig reads an optional .env file and then the environment.
// Variables already set in the environment win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverMemory, DriverSQLite, DriverRedis:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER: unknown driver %q", c.StoreDriver))
	}
	switch c.PasswordHash {
	case HashHMAC, HashArgon2id:
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_HASH: unknown scheme %q", c.PasswordHash))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %d out of range", c.Port))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL: must be positive"))
	}
	if c.ShortCodeLength <= 0 {
		errs = append(errs, errors.New("SHORTCODE_LENGTH: must be positive"))
	}
	if c.ShortCodeMaxLength < c.ShortCodeLength {
		errs = append(errs, errors.New("SHORTCODE_MAX_LENGTH: must not be below SHORTCODE_LENGTH"))
	}
	if c.ShortCodeMaxAttempts <= 0 {
		errs = append(errs, errors.New("SHORTCODE_MAX_ATTEMPTS: must be positive"))
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together"))
	}

	return errors.Join(errs...)
}
