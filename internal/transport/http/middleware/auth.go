package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/baechuer/accounts-api/internal/application/auth"
	"github.com/baechuer/accounts-api/internal/domain"
	"github.com/baechuer/accounts-api/internal/logger"
	"github.com/baechuer/accounts-api/internal/transport/http/response"
)

type TokenVerifier interface {
	Verify(token string) (auth.TokenClaims, error)
}

// UserLookup is the slice of the user directory the guard needs.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (domain.User, bool, error)
}

// Auth verifies Authorization: Bearer <token>, resolves the subject to a stored user
// and injects its identity into the request context.
func Auth(verifier TokenVerifier, users UserLookup, lg zerolog.Logger) func(http.Handler) http.Handler {
	if verifier == nil {
		panic("middleware.Auth: nil verifier")
	}
	if users == nil {
		panic("middleware.Auth: nil users")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				unauthorized(w, domain.ReasonMissingToken)
				return
			}

			raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			if raw == "" {
				unauthorized(w, domain.ReasonMissingToken)
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil || strings.TrimSpace(claims.Subject) == "" {
				unauthorized(w, domain.ReasonInvalidToken)
				return
			}

			u, found, err := users.FindByID(r.Context(), claims.Subject)
			if err != nil {
				logger.WithCtx(r.Context(), lg).Error().Err(err).
					Str("user_id", claims.Subject).
					Msg("access guard lookup failed")
				unauthorized(w, domain.ReasonInvalidToken)
				return
			}
			if !found {
				unauthorized(w, domain.ReasonUserNotFound)
				return
			}

			ctx := WithIdentity(r.Context(), u.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, reason string) {
	response.WriteUnauthorized(w, domain.ErrUnauthorized(reason).Message)
}
