package http_handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/baechuer/accounts-api/internal/application/auth"
	"github.com/baechuer/accounts-api/internal/domain"
	"github.com/baechuer/accounts-api/internal/logger"
	"github.com/baechuer/accounts-api/internal/transport/http/dto"
	"github.com/baechuer/accounts-api/internal/transport/http/middleware"
	"github.com/baechuer/accounts-api/internal/transport/http/response"
)

const (
	msgAuthFailed         = "Authentication failed"
	msgRegistrationFailed = "Registration failed"
	msgVerificationFailed = "Verification failed"
	msgTokenRequired      = "Token is required"
)

// AuthService is the workflow surface the HTTP layer drives.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password, name string) (auth.RegisterResult, error)
	VerifyEmail(ctx context.Context, token string) (bool, error)
	ResendVerification(ctx context.Context, email string) error
	GetUserByID(ctx context.Context, userID string) (domain.User, error)
}

// FailureAuditor records rejected login and registration attempts.
type FailureAuditor interface {
	LoginFailed(ctx context.Context, email, ip, reason string)
	RegisterFailed(ctx context.Context, email, ip, reason string)
}

type AuthHandlerOptions struct {
	// FrontendURL, when set, turns a successful verify-email GET into a redirect.
	FrontendURL string
	Audit       FailureAuditor
}

type AuthHandler struct {
	svc         AuthService
	lg          zerolog.Logger
	audit       FailureAuditor
	frontendURL string
}

func NewAuthHandler(svc AuthService, lg zerolog.Logger, opts AuthHandlerOptions) *AuthHandler {
	if svc == nil {
		panic("NewAuthHandler: nil service")
	}
	a := opts.Audit
	if a == nil {
		a = nopAuditor{}
	}
	return &AuthHandler{
		svc:         svc,
		lg:          lg,
		audit:       a,
		frontendURL: strings.TrimRight(strings.TrimSpace(opts.FrontendURL), "/"),
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteBusinessError(w, r, h.lg, err, msgAuthFailed)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteBusinessError(w, r, h.lg, err, msgAuthFailed)
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		reason := outcome(err)
		recordOutcome("login", reason)
		h.audit.LoginFailed(r.Context(), req.Email, middleware.ClientIP(r), reason)
		response.WriteBusinessError(w, r, h.lg, err, msgAuthFailed)
		return
	}

	recordOutcome("login", "success")
	response.OK(w, dto.LoginResponse{Token: token})
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteBusinessError(w, r, h.lg, err, msgRegistrationFailed)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteBusinessError(w, r, h.lg, err, msgRegistrationFailed)
		return
	}

	res, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		reason := outcome(err)
		recordOutcome("register", reason)
		h.audit.RegisterFailed(r.Context(), req.Email, middleware.ClientIP(r), reason)
		response.WriteBusinessError(w, r, h.lg, err, msgRegistrationFailed)
		return
	}

	recordOutcome("register", "success")
	response.OK(w, dto.RegisterResponse{
		Token:                   res.Token,
		EmailVerificationNeeded: res.EmailVerificationNeeded,
	})
}

// VerifyEmail handles GET /api/v1/auth/verify-email?token=...
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		recordOutcome("verify_email", "token_required")
		response.OK(w, dto.VerifyEmailResponse{Success: false, Error: msgTokenRequired})
		return
	}

	if _, err := h.svc.VerifyEmail(r.Context(), token); err != nil {
		recordOutcome("verify_email", outcome(err))
		msg := msgVerificationFailed
		if de, ok := domain.As(err); ok && de.Safe() {
			msg = de.Message
		} else {
			logger.WithCtx(r.Context(), h.lg).Error().Err(err).Msg("verify email failed")
		}
		response.OK(w, dto.VerifyEmailResponse{Success: false, Error: msg})
		return
	}

	recordOutcome("verify_email", "success")
	if h.frontendURL != "" {
		http.Redirect(w, r, h.frontendURL+"/?verify-email-success=true", http.StatusFound)
		return
	}
	response.OK(w, dto.VerifyEmailResponse{Success: true})
}

// ResendVerification handles POST /api/v1/auth/verify-email/resend.
// The reply does not reveal whether the address is registered.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendVerificationRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteBusinessError(w, r, h.lg, err, msgVerificationFailed)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteBusinessError(w, r, h.lg, err, msgVerificationFailed)
		return
	}

	if err := h.svc.ResendVerification(r.Context(), req.Email); err != nil {
		if de, ok := domain.As(err); ok && de.Kind == domain.KindValidation {
			response.WriteBusinessError(w, r, h.lg, err, msgVerificationFailed)
			return
		}
		recordOutcome("resend_verification", outcome(err))
		logger.WithCtx(r.Context(), h.lg).Error().Err(err).Msg("resend verification failed")
	} else {
		recordOutcome("resend_verification", "success")
	}

	response.OK(w, dto.ResendVerificationResponse{Success: true})
}

// Current handles GET /api/v1/auth/current (behind the access guard).
func (h *AuthHandler) Current(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.WriteUnauthorized(w, domain.ErrUnauthorized(domain.ReasonMissingToken).Message)
		return
	}
	response.OK(w, dto.NewIdentityView(id))
}

// UserByID handles GET /api/v1/user/id/{id}
func (h *AuthHandler) UserByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	u, err := h.svc.GetUserByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, h.lg, err)
		return
	}
	response.OK(w, dto.NewUserView(u))
}

func outcome(err error) string {
	if de, ok := domain.As(err); ok {
		return de.Code
	}
	return domain.CodeInternal
}

func recordOutcome(op, result string) {
	middleware.AuthOutcomesTotal.WithLabelValues(op, result).Inc()
}

type nopAuditor struct{}

func (nopAuditor) LoginFailed(context.Context, string, string, string)    {}
func (nopAuditor) RegisterFailed(context.Context, string, string, string) {}
