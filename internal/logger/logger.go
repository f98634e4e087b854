package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	appCtx "github.com/baechuer/accounts-api/internal/pkg/context"
)

const serviceName = "accounts-api"

var Logger zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter reads LOG_LEVEL and LOG_FORMAT ("json" or "console") and
// installs the result as both the package and the zerolog global logger.
func InitWithWriter(w io.Writer) {
	Logger = New(w, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	// set global
	zlog.Logger = Logger
}

// New builds a logger without touching globals. Unknown levels fall back to info.
func New(w io.Writer, levelName, format string) zerolog.Logger {
	if levelName == "" {
		levelName = "info"
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if format == "" {
		format = "console"
	}

	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().
		Timestamp().
		Str("service", serviceName).
		Logger().
		Level(level)
}

// WithCtx returns base enriched with the request id carried by ctx, if any.
func WithCtx(ctx context.Context, base zerolog.Logger) *zerolog.Logger {
	l := base
	if rid := appCtx.GetRequestID(ctx); rid != "" {
		l = base.With().Str("request_id", rid).Logger()
	}
	return &l
}
