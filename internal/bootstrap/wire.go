package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/baechuer/accounts-api/internal/application/auth"
	"github.com/baechuer/accounts-api/internal/audit"
	"github.com/baechuer/accounts-api/internal/config"
	"github.com/baechuer/accounts-api/internal/infrastructure/db/bunstore"
	"github.com/baechuer/accounts-api/internal/infrastructure/db/postgres"
	"github.com/baechuer/accounts-api/internal/infrastructure/mail"
	"github.com/baechuer/accounts-api/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/accounts-api/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/accounts-api/internal/infrastructure/redis"
	"github.com/baechuer/accounts-api/internal/infrastructure/security"
	"github.com/baechuer/accounts-api/internal/infrastructure/seed"
	"github.com/baechuer/accounts-api/internal/logger"
	http_handlers "github.com/baechuer/accounts-api/internal/transport/http/handlers"
	"github.com/baechuer/accounts-api/internal/transport/http/middleware"
	"github.com/baechuer/accounts-api/internal/transport/http/router"
)

const (
	bcryptCost      = 12
	startupTimeout  = 30 * time.Second
	redisPingWindow = 2 * time.Second
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	OpenPostgres func(dsn string, debug bool) (*sql.DB, error)
	OpenSQLite   func(dsn string) (*bun.DB, error)

	NewRedis func(addr, password string, db int) RedisClient

	NewPublisher func(url, exchange string) (MailPublisher, error)

	NewRouter func(router.Deps) (http.Handler, error)

	Logger zerolog.Logger
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

// MailPublisher is a notification transport that owns a connection.
type MailPublisher interface {
	auth.EmailSender
	Close() error
}

// userStore is a user directory backend that can report liveness.
type userStore interface {
	auth.UserDirectory
	Ping(ctx context.Context) error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	lg := deps.Logger

	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	var cleanupFns []func()
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 1) user store
	store, closeStore, err := openStore(ctx, cfg, deps, lg)
	if err != nil {
		return fail(err)
	}
	cleanupFns = append(cleanupFns, closeStore)

	// 2) security
	hasher, err := newHasher(cfg.PasswordHasher)
	if err != nil {
		return fail(err)
	}
	lg.Info().Str("issuer", cfg.JWTIssuer).Dur("ttl", cfg.TokenTTL()).Msg("initializing jwt signer")
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL())

	// 3) seed (non-prod only)
	if cfg.DBSeed {
		if cfg.IsProd() {
			lg.Warn().Msg("DB_SEED ignored in prod")
		} else {
			n := seed.Users(ctx, store, hasher, lg)
			lg.Info().Int("created", n).Msg("demo users seeded")
		}
	}

	// 4) redis cache (best-effort)
	var users auth.UserDirectory = store
	if cfg.RedisAddr != "" && deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pctx, pcancel := context.WithTimeout(ctx, redisPingWindow)
		err := c.Ping(pctx)
		pcancel()

		if err != nil {
			lg.Warn().Err(err).Msg("redis unavailable; user cache disabled")
			_ = c.Close()
		} else if rc, ok := c.(*redis.Client); ok {
			lg.Info().Dur("ttl", cfg.UserCacheTTL).Msg("redis connected; user cache enabled")
			users = redis.NewCachedUserDirectory(store, rc, cfg.UserCacheTTL, lg)
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		} else {
			_ = c.Close()
		}
	}

	// 5) notification transport
	mailer, closeMailer, err := newMailer(cfg, deps, lg)
	if err != nil {
		return fail(err)
	}
	if closeMailer != nil {
		cleanupFns = append(cleanupFns, closeMailer)
	}

	// 6) service
	auditLog := audit.New(lg)
	authSvc := auth.NewService(users, hasher, signer, mailer, auth.Config{
		RequireEmailVerification: cfg.EmailVerificationRequired,
		BackendURL:               cfg.BackendURL,
	}).WithAudit(auditLog.Record)

	// 7) handlers + middleware
	authH := http_handlers.NewAuthHandler(authSvc, lg, http_handlers.AuthHandlerOptions{
		FrontendURL: cfg.FrontendURL,
		Audit:       auditLog,
	})
	healthH := http_handlers.NewHealthHandler(store, lg)
	authMW := middleware.Auth(signer, users, lg)

	// 8) router
	newRouter := deps.NewRouter
	if newRouter == nil {
		newRouter = router.New
	}
	mux, err := newRouter(router.Deps{
		Health:      healthH,
		Auth:        authH,
		AuthMW:      authMW,
		Logger:      lg,
		CORSOrigins: cfg.CORSAllowedOrigins,
		Metrics:     true,
	})
	if err != nil {
		return fail(err)
	}

	// 9) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

func openStore(ctx context.Context, cfg *config.Config, deps Deps, lg zerolog.Logger) (userStore, func(), error) {
	switch cfg.DBDriver {
	case config.DBDriverPostgres:
		db, err := deps.OpenPostgres(cfg.DBAddr, cfg.DBDebug)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.DBMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		lg.Info().Str("driver", cfg.DBDriver).Msg("user store ready")
		return postgres.NewUserRepo(db), func() { _ = db.Close() }, nil

	case config.DBDriverSQLite:
		db, err := deps.OpenSQLite(cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := bunstore.CreateSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("create schema: %w", err)
		}
		lg.Info().Str("driver", cfg.DBDriver).Msg("user store ready")
		return bunstore.NewUserRepo(db), func() { _ = db.Close() }, nil

	case config.DBDriverMemory:
		lg.Warn().Msg("using in-memory user store; data is lost on restart")
		return memory.NewUserRepo(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func newHasher(kind string) (auth.PasswordHasher, error) {
	switch kind {
	case config.HasherArgon2id:
		return security.NewArgon2Hasher(security.DefaultArgon2Params), nil
	case config.HasherBcrypt:
		return security.NewBcryptHasher(bcryptCost), nil
	default:
		return nil, fmt.Errorf("unsupported PASSWORD_HASHER %q", kind)
	}
}

// newMailer builds the configured transport. Outside prod an unreachable broker
// degrades to the log sink.
func newMailer(cfg *config.Config, deps Deps, lg zerolog.Logger) (auth.EmailSender, func(), error) {
	switch cfg.MailTransport {
	case config.MailSMTP:
		s, err := mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			FromName: cfg.MailFromName,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil

	case config.MailRabbitMQ:
		pub, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			if cfg.IsProd() {
				return nil, nil, fmt.Errorf("rabbitmq: %w", err)
			}
			lg.Warn().Err(err).Msg("rabbitmq unavailable; logging emails instead")
			return memory.NewLogMailer(lg), nil, nil
		}
		return pub, func() { _ = pub.Close() }, nil

	default:
		return memory.NewLogMailer(lg), nil, nil
	}
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig:   config.Load,
		OpenPostgres: config.NewDB,
		OpenSQLite:   bunstore.Open,
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewPublisher: func(url, exchange string) (MailPublisher, error) {
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
		NewRouter: router.New,
		Logger:    logger.Logger,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
