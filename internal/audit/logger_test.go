package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appCtx "github.com/baechuer/accounts-api/internal/pkg/context"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m), "log line: %s", buf.String())
	return m
}

func TestRecord_InfoWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf))

	l.Record(context.Background(), "user_registered", map[string]string{"user_id": "u-1", "email": "alice@example.com"})

	m := decodeLine(t, &buf)
	assert.Equal(t, "info", m["level"])
	assert.Equal(t, true, m["audit"])
	assert.Equal(t, "user_registered", m["action"])
	assert.Equal(t, "u-1", m["user_id"])
	assert.Equal(t, "al***@example.com", m["email"])
}

func TestRecord_FailedActionsAreWarn(t *testing.T) {
	var buf bytes.Buffer
	New(zerolog.New(&buf)).Record(context.Background(), "verification_email_failed", map[string]string{"error": "smtp down"})

	m := decodeLine(t, &buf)
	assert.Equal(t, "warn", m["level"])
	assert.Equal(t, "smtp down", m["error"])
}

func TestRecord_CarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx := appCtx.WithRequestID(context.Background(), "rid-7")

	New(zerolog.New(&buf)).Record(ctx, "email_verified", map[string]string{"user_id": "u-2"})

	m := decodeLine(t, &buf)
	assert.Equal(t, "email_verified", m["action"])
	assert.Equal(t, "rid-7", m["request_id"])
}

func TestRecord_NoRequestIDOutsideRequests(t *testing.T) {
	var buf bytes.Buffer
	New(zerolog.New(&buf)).Record(context.Background(), "user_registered", nil)

	m := decodeLine(t, &buf)
	assert.NotContains(t, m, "request_id")
}

func TestLoginFailed_CarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx := appCtx.WithRequestID(context.Background(), "rid-1")

	New(zerolog.New(&buf)).LoginFailed(ctx, "bob@example.com", "10.0.0.1", "invalid_credentials")

	m := decodeLine(t, &buf)
	assert.Equal(t, "login_failed", m["action"])
	assert.Equal(t, "rid-1", m["request_id"])
	assert.Equal(t, "bo***@example.com", m["email"])
	assert.Equal(t, "10.0.0.1", m["ip"])
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"":                  "***",
		"a@b":               "***",
		"a@example.com":     "a***@example.com",
		"alice@example.com": "al***@example.com",
		"noatsign":          "no***",
	}
	for in, want := range cases {
		assert.Equal(t, want, maskEmail(in), "input %q", in)
	}
}
