package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/baechuer/accounts-api/internal/domain"
)

// VerifyEmail redeems a verification token. It never issues a login token.
func (s *Service) VerifyEmail(ctx context.Context, token string) (bool, error) {
	u, found, err := s.users.FindByVerificationToken(ctx, token)
	if err != nil {
		return false, err
	}
	if !found {
		return false, domain.ErrInvalidOrExpiredToken()
	}

	now := s.now()
	if u.EmailVerificationTokenExpiresAt == nil || u.EmailVerificationTokenExpiresAt.Before(now) {
		return false, domain.ErrTokenExpired()
	}

	if _, err := s.users.Update(ctx, u.ID, domain.UserPatch{
		EmailVerifiedAt:             &now,
		ClearEmailVerificationToken: true,
	}); err != nil {
		return false, err
	}

	s.audit(ctx, "email_verified", map[string]string{"user_id": u.ID})
	return true, nil
}

// ResendVerification issues a fresh verification token for an unverified account.
// IMPORTANT: non-enumerating - unknown or already verified emails return nil.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.ErrEmailRequired()
	}

	u, found, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !found || u.EmailVerified() {
		return nil
	}

	token, err := newOpaqueToken(32)
	if err != nil {
		return domain.ErrRandomFailed(err)
	}
	expiresAt := s.now().Add(domain.EmailVerificationTTL)

	if _, err := s.users.Update(ctx, u.ID, domain.UserPatch{
		EmailVerificationToken:          &token,
		EmailVerificationTokenExpiresAt: &expiresAt,
	}); err != nil {
		return err
	}

	s.audit(ctx, "verification_resent", map[string]string{"user_id": u.ID})
	return s.sendVerification(ctx, u.Email, token)
}

func (s *Service) sendVerification(ctx context.Context, email, token string) error {
	if s.mailer == nil {
		return nil
	}
	url := s.verifyEmailBaseURL + token
	return s.mailer.SendEmail(ctx, EmailMessage{
		To:      email,
		Subject: "Verify your email address",
		Text:    fmt.Sprintf("Please verify your email address by opening this link: %s\nThe link expires in 24 hours.", url),
		HTML:    renderVerificationHTML(url),
		Kind:    MessageKindVerifyEmail,
		URL:     url,
	})
}
