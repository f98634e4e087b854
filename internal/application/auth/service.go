package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

type Service struct {
	users  UserDirectory
	hasher PasswordHasher
	signer TokenSigner
	mailer EmailSender

	requireVerification bool
	verifyEmailBaseURL  string // e.g. https://api/api/v1/auth/verify-email?token=

	now   func() time.Time
	audit AuditFunc
}

// AuditFunc receives one event per completed workflow step.
type AuditFunc func(ctx context.Context, action string, fields map[string]string)

type Config struct {
	// RequireEmailVerification gates login on a verified email and defers the
	// first token until verification succeeds.
	RequireEmailVerification bool
	// BackendURL is the public base of this API, used to build verification links.
	BackendURL string
}

func NewService(
	users UserDirectory,
	hasher PasswordHasher,
	signer TokenSigner,
	mailer EmailSender,
	cfg Config,
) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		signer: signer,
		mailer: mailer,

		requireVerification: cfg.RequireEmailVerification,
		verifyEmailBaseURL:  strings.TrimRight(cfg.BackendURL, "/") + "/api/v1/auth/verify-email?token=",

		now:   time.Now,
		audit: func(context.Context, string, map[string]string) {},
	}
}

func (s *Service) WithAudit(fn AuditFunc) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// WithClock replaces the time source; tests use it to pin expiry math.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service) RequiresEmailVerification() bool { return s.requireVerification }

type RegisterResult struct {
	// Token is empty when EmailVerificationNeeded is true.
	Token                   string
	EmailVerificationNeeded bool
}

// newOpaqueToken returns a URL-safe opaque token.
func newOpaqueToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
