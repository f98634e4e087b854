package response

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/baechuer/accounts-api/internal/domain"
	appCtx "github.com/baechuer/accounts-api/internal/pkg/context"
)

// ---------- helpers ----------

func mustDecodeJSONLine(t *testing.T, b []byte, dst any) {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(dst); err != nil {
		t.Fatalf("decode json: %v, body=%q", err, string(b))
	}
}

func newReqWithBody(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ---------- DecodeJSON tests ----------

type decodeDst struct {
	A string `json:"a"`
	B int    `json:"b"`
}

func TestDecodeJSON_OK_SingleObject(t *testing.T) {
	req := newReqWithBody(t, `{"a":"x","b":1}`)

	var dst decodeDst
	if err := DecodeJSON(httptest.NewRecorder(), req, &dst); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if dst.A != "x" || dst.B != 1 {
		t.Fatalf("unexpected dst: %+v", dst)
	}
}

func TestDecodeJSON_IgnoresUnknownFields(t *testing.T) {
	req := newReqWithBody(t, `{"a":"x","c":"extra"}`)

	var dst decodeDst
	if err := DecodeJSON(httptest.NewRecorder(), req, &dst); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestDecodeJSON_InvalidJSON_ReturnsInvalidJSON(t *testing.T) {
	for _, body := range []string{`{"a":`, ``, `not json`} {
		var dst decodeDst
		err := DecodeJSON(httptest.NewRecorder(), newReqWithBody(t, body), &dst)
		if !domain.Is(err, domain.CodeInvalidJSON) {
			t.Fatalf("body %q: expected invalid_json, got %v", body, err)
		}
	}
}

func TestDecodeJSON_MultipleJSONValues_ReturnsInvalidJSON(t *testing.T) {
	var dst decodeDst
	err := DecodeJSON(httptest.NewRecorder(), newReqWithBody(t, `{"a":"x"}{"a":"y"}`), &dst)
	if !domain.Is(err, domain.CodeInvalidJSON) {
		t.Fatalf("expected invalid_json, got %v", err)
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	body := `{"a":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	var dst decodeDst
	err := DecodeJSON(httptest.NewRecorder(), newReqWithBody(t, body), &dst)
	if !domain.Is(err, domain.CodeInvalidJSON) {
		t.Fatalf("expected invalid_json, got %v", err)
	}
}

// ---------- error writers ----------

func TestWriteBusinessError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
		wantLogged bool
		wantCode   string
	}{
		{"validation", domain.ErrValidation("email: is required", nil), 400, "email: is required", false, ""},
		{"invalid json", domain.ErrInvalidJSON(errors.New("eof")), 400, "invalid JSON body", false, ""},
		{"credentials", domain.ErrInvalidCredentials(), 200, "Invalid email or password", false, ""},
		{"conflict", domain.ErrUserAlreadyExists(), 200, "User already exists", false, ""},
		{"forbidden", domain.ErrEmailNotVerified(), 200, "Email not verified", false, ""},
		{"infra", domain.ErrDBUnavailable(errors.New("dial tcp")), 200, "Authentication failed", true, domain.CodeDBUnavailable},
		{"plain error", errors.New("boom"), 200, "Authentication failed", true, domain.CodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
			req = req.WithContext(appCtx.WithRequestID(req.Context(), "rid-9"))

			WriteBusinessError(rr, req, zerolog.New(&logs), tc.err, "Authentication failed")

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			var body ErrorBody
			mustDecodeJSONLine(t, rr.Body.Bytes(), &body)
			if body.Error != tc.wantBody {
				t.Fatalf("expected %q, got %q", tc.wantBody, body.Error)
			}
			if strings.Contains(rr.Body.String(), "dial tcp") || strings.Contains(rr.Body.String(), "boom") {
				t.Fatalf("internal detail leaked: %s", rr.Body.String())
			}
			if logged := logs.Len() > 0; logged != tc.wantLogged {
				t.Fatalf("expected logged=%v, got logs=%q", tc.wantLogged, logs.String())
			}
			if tc.wantLogged && !strings.Contains(logs.String(), `"request_id":"rid-9"`) {
				t.Fatalf("expected request id in log, got %q", logs.String())
			}
			if tc.wantCode != "" && !strings.Contains(logs.String(), `"code":"`+tc.wantCode+`"`) {
				t.Fatalf("expected code %q in log, got %q", tc.wantCode, logs.String())
			}
		})
	}
}

func TestWriteError_DomainError_MapsStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/id/x", nil)

	WriteError(rr, req, zerolog.Nop(), domain.ErrUserNotFound())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"error":"User not found"}` {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestWriteError_NonDomainError_HidesDetailsAndReturns500(t *testing.T) {
	var logs bytes.Buffer
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	WriteError(rr, req, zerolog.New(&logs), errors.New("secret detail"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "secret detail") {
		t.Fatalf("leaked: %s", rr.Body.String())
	}
	if !strings.Contains(logs.String(), "secret detail") {
		t.Fatalf("expected detail in logs")
	}
	if !strings.Contains(logs.String(), `"code":"internal_error"`) {
		t.Fatalf("expected internal_error code in logs, got %q", logs.String())
	}
}

func TestWriteError_Infrastructure_503Generic(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, httptest.NewRequest(http.MethodGet, "/x", nil), zerolog.Nop(), domain.ErrDBUnavailable(errors.New("down")))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"error":"internal error"}` {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestWriteUnauthorized(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteUnauthorized(rr, "Unauthorized: Invalid token")

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"message":"Unauthorized: Invalid token"}` {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestStatusFromKind_Mapping(t *testing.T) {
	cases := map[domain.ErrKind]int{
		domain.KindValidation:     400,
		domain.KindAuth:           401,
		domain.KindForbidden:      403,
		domain.KindNotFound:       404,
		domain.KindConflict:       409,
		domain.KindInfrastructure: 503,
		domain.KindInternal:       500,
		domain.ErrKind("weird"):   500,
	}
	for kind, want := range cases {
		if got := StatusFromKind(kind); got != want {
			t.Fatalf("kind=%s expected %d got %d", kind, want, got)
		}
	}
}

// ---------- request id / success ----------

func TestRequestIDFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if got := RequestIDFromContext(req); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}

	req = req.WithContext(appCtx.WithRequestID(context.Background(), "abc"))
	if got := RequestIDFromContext(req); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}

func TestWriteJSON_SetsDefaultContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSON(rr, http.StatusTeapot, map[string]string{"k": "v"})

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestWriteJSON_DoesNotOverrideExistingContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	rr.Header().Set("Content-Type", "application/problem+json")
	OK(rr, map[string]string{"k": "v"})

	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}
