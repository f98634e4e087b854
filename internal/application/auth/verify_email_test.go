package auth

import (
	"context"
	"testing"
	"time"

	"github.com/baechuer/accounts-api/internal/domain"
)

func seedPending(d testDeps, id, email, token string, expiresAt time.Time) {
	u := seedUser(d, id, email, "pw", false)
	u.EmailVerificationToken = strPtr(token)
	u.EmailVerificationTokenExpiresAt = timePtr(expiresAt)
	d.users.put(u)
}

func TestVerifyEmail_UnknownToken(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t, true)

	_, err := svc.VerifyEmail(context.Background(), "nope")
	requireErrCode(t, err, domain.CodeInvalidOrExpiredToken)
	if d.users.updates != 0 {
		t.Fatalf("expected no update")
	}
}

func TestVerifyEmail_Expired_NoMutation(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t, true)
	seedPending(d, "u1", "a@b.com", "t1", fixedNow.Add(-time.Second))

	_, err := svc.VerifyEmail(context.Background(), "t1")
	requireErrCode(t, err, domain.CodeTokenExpired)

	u := d.users.get("u1")
	if u.EmailVerified() {
		t.Fatalf("expected still unverified")
	}
	if u.EmailVerificationToken == nil || *u.EmailVerificationToken != "t1" {
		t.Fatalf("expected token kept")
	}
	if d.users.updates != 0 {
		t.Fatalf("expected no update")
	}
}

func TestVerifyEmail_Success_ClearsToken_NoLoginToken(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t, true)
	seedPending(d, "u1", "a@b.com", "t1", fixedNow.Add(time.Hour))

	ok, err := svc.VerifyEmail(context.Background(), "t1")
	if err != nil || !ok {
		t.Fatalf("expected success, got ok=%v err=%v", ok, err)
	}
	if d.signer.signCalls != 0 {
		t.Fatalf("verification must not issue a token")
	}

	u := d.users.get("u1")
	if u.EmailVerifiedAt == nil || !u.EmailVerifiedAt.Equal(fixedNow) {
		t.Fatalf("expected verified at now, got %v", u.EmailVerifiedAt)
	}
	if u.EmailVerificationToken != nil || u.EmailVerificationTokenExpiresAt != nil {
		t.Fatalf("expected token cleared")
	}
	requireAudit(t, *d.audits, "email_verified")
}

func TestVerifyEmail_RepeatFails(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t, true)
	seedPending(d, "u1", "a@b.com", "t1", fixedNow.Add(time.Hour))

	if _, err := svc.VerifyEmail(context.Background(), "t1"); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	_, err := svc.VerifyEmail(context.Background(), "t1")
	requireErrCode(t, err, domain.CodeInvalidOrExpiredToken)
}

func TestRegisterVerifyLogin_Flow(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t, true)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "flow@example.com", "pw", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Login(ctx, "flow@example.com", "pw")
	requireErrCode(t, err, domain.CodeEmailNotVerified)

	u, _, _ := d.users.FindByEmail(ctx, "flow@example.com")
	if _, err := svc.VerifyEmail(ctx, *u.EmailVerificationToken); err != nil {
		t.Fatalf("verify: %v", err)
	}

	tok, err := svc.Login(ctx, "flow@example.com", "pw")
	if err != nil || tok == "" {
		t.Fatalf("expected login after verify, got %q err=%v", tok, err)
	}
}

func TestResendVerification_UnknownEmail_Silent(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t, true)

	if err := svc.ResendVerification(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(d.mailer.sent) != 0 {
		t.Fatalf("expected no email")
	}
}

func TestResendVerification_AlreadyVerified_Silent(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t, true)
	seedUser(d, "u1", "a@b.com", "pw", true)

	if err := svc.ResendVerification(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if d.users.updates != 0 || len(d.mailer.sent) != 0 {
		t.Fatalf("expected no side effects")
	}
}

func TestResendVerification_RotatesToken(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t, true)
	seedPending(d, "u1", "a@b.com", "old", fixedNow.Add(-time.Hour))

	if err := svc.ResendVerification(context.Background(), " a@b.com "); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	u := d.users.get("u1")
	if u.EmailVerificationToken == nil || *u.EmailVerificationToken == "old" {
		t.Fatalf("expected new token")
	}
	if !u.EmailVerificationTokenExpiresAt.Equal(fixedNow.Add(domain.EmailVerificationTTL)) {
		t.Fatalf("expected fresh expiry")
	}
	msg := d.mailer.last(t)
	if msg.URL != "http://api.test/api/v1/auth/verify-email?token="+*u.EmailVerificationToken {
		t.Fatalf("unexpected url %q", msg.URL)
	}

	_, err := svc.VerifyEmail(context.Background(), "old")
	requireErrCode(t, err, domain.CodeInvalidOrExpiredToken)
}

func TestResendVerification_EmptyEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t, true)
	requireErrCode(t, svc.ResendVerification(context.Background(), "  "), domain.CodeEmailRequired)
}
