package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/accounts-api/internal/application/auth"
	"github.com/baechuer/accounts-api/internal/domain"
	"github.com/baechuer/accounts-api/internal/infrastructure/memory"
	"github.com/baechuer/accounts-api/internal/infrastructure/security"
	"github.com/baechuer/accounts-api/internal/transport/http/middleware"
)

const testSecret = "handler-test-secret-at-least-32-bytes!!"

type testEnv struct {
	users   *memory.UserRepo
	mailer  *memory.LogMailer
	signer  *security.JWTSigner
	hasher  *security.BcryptHasher
	audit   *recordingAuditor
	handler *AuthHandler
	router  http.Handler
}

type recordingAuditor struct {
	loginFailed    []string
	registerFailed []string
}

func (a *recordingAuditor) LoginFailed(_ context.Context, _, _, reason string) {
	a.loginFailed = append(a.loginFailed, reason)
}

func (a *recordingAuditor) RegisterFailed(_ context.Context, _, _, reason string) {
	a.registerFailed = append(a.registerFailed, reason)
}

// newTestEnv wires the real workflow over the in-memory directory and mounts
// the handlers on a chi router with the same paths as production.
func newTestEnv(t *testing.T, requireVerification bool, frontendURL string) *testEnv {
	t.Helper()

	env := &testEnv{
		users:  memory.NewUserRepo(),
		mailer: memory.NewLogMailer(zerolog.Nop()),
		signer: security.NewJWTSigner(testSecret, "accounts-api", time.Hour),
		hasher: security.NewBcryptHasher(bcrypt.MinCost),
		audit:  &recordingAuditor{},
	}

	svc := auth.NewService(env.users, env.hasher, env.signer, env.mailer, auth.Config{
		RequireEmailVerification: requireVerification,
		BackendURL:               "http://api.test",
	})
	env.handler = NewAuthHandler(svc, zerolog.Nop(), AuthHandlerOptions{
		FrontendURL: frontendURL,
		Audit:       env.audit,
	})

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", env.handler.Login)
		r.Post("/auth/register", env.handler.Register)
		r.Get("/auth/verify-email", env.handler.VerifyEmail)
		r.Post("/auth/verify-email/resend", env.handler.ResendVerification)
		r.With(middleware.Auth(env.signer, env.users, zerolog.Nop())).Get("/auth/current", env.handler.Current)
		r.Get("/user/id/{id}", env.handler.UserByID)
	})
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		rdr = mustJSONBody(t, b)
	}

	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// seed stores a user with a bcrypt hash of password.
func (e *testEnv) seed(t *testing.T, email, password string, verified bool) domain.User {
	t.Helper()

	hash, err := e.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := e.users.Create(context.Background(), domain.UserDraft{Email: email, PasswordHash: &hash})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if verified {
		now := time.Now()
		u, err = e.users.Update(context.Background(), u.ID, domain.UserPatch{EmailVerifiedAt: &now})
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
	}
	return u
}

func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func mustReadJSON(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("decode json: %v; body=%s", err, rr.Body.String())
	}
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d; body=%s", want, rr.Code, rr.Body.String())
	}
}

func assertErrorBody(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	mustReadJSON(t, rr, &body)
	if body.Error != want {
		t.Fatalf("expected error %q, got %q", want, body.Error)
	}
}
