package memory

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/baechuer/accounts-api/internal/application/auth"
	"github.com/baechuer/accounts-api/internal/logger"
)

// LogMailer is the default MAIL_TRANSPORT: messages are written to the log
// and kept in memory so tests can read them back.
type LogMailer struct {
	lg zerolog.Logger

	mu   sync.Mutex
	sent []auth.EmailMessage
}

func NewLogMailer(lg zerolog.Logger) *LogMailer {
	return &LogMailer{lg: lg}
}

func (m *LogMailer) SendEmail(ctx context.Context, msg auth.EmailMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	logger.WithCtx(ctx, m.lg).Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("kind", msg.Kind).
		Str("url", msg.URL).
		Msg("email (log transport)")
	return nil
}

// Sent returns a copy of every message handed to the mailer.
func (m *LogMailer) Sent() []auth.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]auth.EmailMessage, len(m.sent))
	copy(out, m.sent)
	return out
}
