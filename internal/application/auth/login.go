package auth

import (
	"context"

	"github.com/baechuer/accounts-api/internal/domain"
)

// Login authenticates a user and issues a bearer token.
// IMPORTANT: must not leak whether the email exists (avoid user enumeration).
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, found, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !found {
		return "", domain.ErrInvalidCredentials()
	}

	// Checked before the password so an unverified account never reaches the hasher.
	if s.requireVerification && !u.EmailVerified() {
		return "", domain.ErrEmailNotVerified()
	}

	// Accounts without a local credential cannot log in with a password.
	if !u.HasPassword() {
		return "", domain.ErrInvalidCredentials()
	}

	if err := s.hasher.Compare(*u.PasswordHash, password); err != nil {
		return "", domain.ErrInvalidCredentials()
	}

	token, err := s.signer.Sign(u.ID, u.Email)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}

	s.audit(ctx, "user_logged_in", map[string]string{"user_id": u.ID})
	return token, nil
}
