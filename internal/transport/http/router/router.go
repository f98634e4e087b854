package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/baechuer/accounts-api/internal/transport/http/docs"
	"github.com/baechuer/accounts-api/internal/transport/http/middleware"
)

type HealthHandler interface {
	Health(w http.ResponseWriter, r *http.Request)
}

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	VerifyEmail(w http.ResponseWriter, r *http.Request)
	ResendVerification(w http.ResponseWriter, r *http.Request)
	Current(w http.ResponseWriter, r *http.Request)
	UserByID(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health HealthHandler
	Auth   AuthHandler

	AuthMW func(http.Handler) http.Handler

	Logger      zerolog.Logger
	CORSOrigins []string
	// Metrics exposes /metrics when true.
	Metrics bool
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("nil Auth handler")
	}
	if deps.AuthMW == nil {
		return nil, fmt.Errorf("nil Auth middleware")
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(deps.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics)

	if deps.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", deps.Health.Health)
		r.Get("/openapi.json", docs.OpenAPIHandler)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", deps.Auth.Login)
			r.Post("/register", deps.Auth.Register)
			r.Get("/verify-email", deps.Auth.VerifyEmail) // ?token=...
			r.Post("/verify-email/resend", deps.Auth.ResendVerification)
			r.With(deps.AuthMW).Get("/current", deps.Auth.Current)
		})

		r.Get("/user/id/{id}", deps.Auth.UserByID)
	})

	return r, nil
}
