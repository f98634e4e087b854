package audit

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	appCtx "github.com/baechuer/accounts-api/internal/pkg/context"
)

// Logger provides structured audit logging for account events.
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// Record is the workflow hook: one event per call, failures at warn level.
func (l *Logger) Record(ctx context.Context, action string, fields map[string]string) {
	ev := l.log.Info()
	if strings.HasSuffix(action, "_failed") {
		ev = l.log.Warn()
	}
	ev = ev.Str("action", action)
	if rid := appCtx.GetRequestID(ctx); rid != "" {
		ev = ev.Str("request_id", rid)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := fields[k]
		if k == "email" {
			v = maskEmail(v)
		}
		ev = ev.Str(k, v)
	}
	ev.Msg("audit event")
}

// LoginFailed logs a rejected login attempt
func (l *Logger) LoginFailed(ctx context.Context, email, ip, reason string) {
	l.log.Warn().
		Str("action", "login_failed").
		Str("email", maskEmail(email)).
		Str("ip", ip).
		Str("reason", reason).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Login attempt failed")
}

// RegisterFailed logs a rejected registration
func (l *Logger) RegisterFailed(ctx context.Context, email, ip, reason string) {
	l.log.Warn().
		Str("action", "register_failed").
		Str("email", maskEmail(email)).
		Str("ip", ip).
		Str("reason", reason).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Registration failed")
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:2] + "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
