// Package config loads the API configuration from environment variables.
package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	Timezone  string `env:"TIMEZONE,  default=America/Sao_Paulo"`

	Auth     AuthConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Mail     MailConfig
	HTTP     HTTPConfig
	Seed     SeedConfig

	generatedSecret bool
}

type AuthConfig struct {
	SessionTTL       time.Duration `env:"SESSION_TTL,        default=2h"`
	LoginMaxFailures int           `env:"LOGIN_MAX_FAILURES, default=5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
	ProtectedUserIDs []int64       `env:"PROTECTED_USER_IDS, default=1,2"`
}

type DatabaseConfig struct {
	Driver            string        `env:"DB_DRIVER,              default=sqlite"`
	DSN               string        `env:"DB_DSN,                 default=data/tracker.db"`
	FallbackSQLiteDSN string        `env:"DB_FALLBACK_SQLITE_DSN"`
	Timeout           time.Duration `env:"DB_TIMEOUT,             default=5s"`
}

// RedisConfig is optional: with no address the limiter and seen store stay
// in process memory.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// MongoConfig is optional: with no URI the audit log lives in the relational
// store.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=tracker"`
}

type MailConfig struct {
	Transport    string   `env:"MAIL_TRANSPORT,  default=log"`
	From         string   `env:"MAIL_FROM,       default=tracker@localhost"`
	SMTPHost     string   `env:"SMTP_HOST"`
	SMTPPort     int      `env:"SMTP_PORT,       default=587"`
	SMTPUsername string   `env:"SMTP_USERNAME"`
	SMTPPassword string   `env:"SMTP_PASSWORD"`
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC,     default=tracker.emails"`
	Workers      int      `env:"MAIL_WORKERS,    default=2"`
	QueueSize    int      `env:"MAIL_QUEUE_SIZE, default=64"`
}

type HTTPConfig struct {
	RateLimit float64 `env:"HTTP_RATE_LIMIT, default=20"`
	RateBurst int     `env:"HTTP_RATE_BURST, default=40"`
}

// SeedConfig holds the built-in accounts created on first start. Both
// passwords are required while the store is empty; afterwards they are
// ignored and only the usernames are checked against the protected ids.
type SeedConfig struct {
	AdminUsername   string `env:"SEED_ADMIN_USERNAME,   default=admin"`
	AdminPassword   string `env:"SEED_ADMIN_PASSWORD"`
	PrimaryUsername string `env:"SEED_PRIMARY_USERNAME, default=principal"`
	PrimaryPassword string `env:"SEED_PRIMARY_PASSWORD"`
	PrimaryName     string `env:"SEED_PRIMARY_NAME,     default=Principal"`
}

// Load reads configuration from environment variables using go-envconfig.
// Outside production a missing JWT_SECRET is replaced with a random one and
// GeneratedSecret reports it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
		cfg.generatedSecret = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// GeneratedSecret reports whether the JWT secret was generated at start-up,
// in which case sessions do not survive a restart.
func (c *Config) GeneratedSecret() bool {
	return c.generatedSecret
}

// Location resolves the configured time zone used for due computation.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Auth.LoginMaxFailures <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_FAILURES must be positive"))
	}
	if c.Auth.LoginWindow <= 0 {
		errs = append(errs, errors.New("LOGIN_WINDOW must be positive"))
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of sqlite, mysql", c.Database.Driver))
	}
	switch strings.ToLower(c.Mail.Transport) {
	case "log", "smtp", "kafka":
	default:
		errs = append(errs, fmt.Errorf("MAIL_TRANSPORT %q is not one of log, smtp, kafka", c.Mail.Transport))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
