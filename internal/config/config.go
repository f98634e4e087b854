package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
	DBDriverMemory   = "memory"

	HasherArgon2id = "argon2id"
	HasherBcrypt   = "bcrypt"

	MailLog      = "log"
	MailSMTP     = "smtp"
	MailRabbitMQ = "rabbitmq"
)

type Config struct {
	// App
	Env string `env:"ENV" envDefault:"dev"` // dev / staging / prod

	// HTTP
	HTTPAddr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"1m"`

	// Persistence
	DBDriver  string `env:"DB_DRIVER" envDefault:"postgres"`
	DBAddr    string `env:"DB_ADDR"`
	SQLiteDSN string `env:"SQLITE_DSN" envDefault:"file:accounts.db?cache=shared&_pragma=foreign_keys(1)"`
	DBMigrate bool   `env:"DB_MIGRATE" envDefault:"true"`
	DBDebug   bool   `env:"DB_DEBUG" envDefault:"false"`
	DBSeed    bool   `env:"DB_SEED" envDefault:"false"`

	// Redis user cache; empty address disables it.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	UserCacheTTL  time.Duration `env:"USER_CACHE_TTL" envDefault:"5m"`

	// Auth / Security
	JWTSecret        string `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer        string `env:"JWT_ISSUER" envDefault:"accounts-api"`
	JWTExpirySeconds int    `env:"JWT_EXPIRY_SECONDS" envDefault:"86400"`
	PasswordHasher   string `env:"PASSWORD_HASHER" envDefault:"argon2id"`

	// Email verification
	EmailVerificationRequired bool   `env:"EMAIL_VERIFICATION_REQUIRED" envDefault:"true"`
	FrontendURL               string `env:"FRONTEND_URL"`
	BackendURL                string `env:"BACKEND_URL" envDefault:"http://localhost:8080"`

	// Notification transport
	MailTransport  string `env:"MAIL_TRANSPORT" envDefault:"log"`
	MailFrom       string `env:"MAIL_FROM" envDefault:"no-reply@localhost"`
	MailFromName   string `env:"MAIL_FROM_NAME" envDefault:"Accounts"`
	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername   string `env:"SMTP_USERNAME"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	RabbitURL      string `env:"RABBIT_URL"`
	RabbitExchange string `env:"RABBIT_EXCHANGE" envDefault:"accounts.events"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// TokenTTL is JWT_EXPIRY_SECONDS as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpirySeconds) * time.Second
}

func (c *Config) IsProd() bool { return c.Env == "prod" }

// Load reads an optional .env file, then the process environment. Values
// already present in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse()
}

func parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate fails fast on combinations the service cannot start with.
func (c *Config) validate() error {
	switch c.DBDriver {
	case DBDriverPostgres:
		if c.DBAddr == "" {
			return fmt.Errorf("missing required env var: DB_ADDR")
		}
		if !strings.HasPrefix(c.DBAddr, "postgres://") && !strings.HasPrefix(c.DBAddr, "postgresql://") {
			return fmt.Errorf("DB_ADDR must be a postgres:// URL")
		}
	case DBDriverSQLite:
		if c.SQLiteDSN == "" {
			return fmt.Errorf("missing required env var: SQLITE_DSN")
		}
	case DBDriverMemory:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (want postgres|sqlite|memory)", c.DBDriver)
	}

	if c.JWTExpirySeconds <= 0 {
		return fmt.Errorf("JWT_EXPIRY_SECONDS must be positive")
	}
	if c.IsProd() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes in prod")
	}

	switch c.PasswordHasher {
	case HasherArgon2id, HasherBcrypt:
	default:
		return fmt.Errorf("invalid PASSWORD_HASHER %q (want argon2id|bcrypt)", c.PasswordHasher)
	}

	switch c.MailTransport {
	case MailLog:
	case MailSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("missing required env var: SMTP_HOST")
		}
	case MailRabbitMQ:
		if c.RabbitURL == "" {
			return fmt.Errorf("missing required env var: RABBIT_URL")
		}
	default:
		return fmt.Errorf("invalid MAIL_TRANSPORT %q (want log|smtp|rabbitmq)", c.MailTransport)
	}

	if err := checkURL("BACKEND_URL", c.BackendURL); err != nil {
		return err
	}
	if c.FrontendURL != "" {
		if err := checkURL("FRONTEND_URL", c.FrontendURL); err != nil {
			return err
		}
	}
	return nil
}

func checkURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return nil
}
