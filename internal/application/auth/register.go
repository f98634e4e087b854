package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/baechuer/accounts-api/internal/domain"
)

// Register creates a local account. With verification required the caller gets
// no token until the emailed link is redeemed.
func (s *Service) Register(ctx context.Context, email, password, name string) (RegisterResult, error) {
	if email == "" {
		return RegisterResult{}, domain.ErrEmailRequired()
	}

	// Fail fast before any hashing or write.
	_, exists, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return RegisterResult{}, err
	}
	if exists {
		return RegisterResult{}, domain.ErrUserAlreadyExists()
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return RegisterResult{}, domain.ErrHashFailed(err)
	}

	if name == "" {
		name = domain.EmailLocalPart(email)
	}

	now := s.now()
	draft := domain.UserDraft{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: &hash,
		Name:         name,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if !s.requireVerification {
		created, err := s.users.Create(ctx, draft)
		if err != nil {
			return RegisterResult{}, err
		}

		token, err := s.signer.Sign(created.ID, created.Email)
		if err != nil {
			return RegisterResult{}, domain.ErrTokenSignFailed(err)
		}

		s.audit(ctx, "user_registered", map[string]string{"user_id": created.ID, "verification": "skipped"})
		return RegisterResult{Token: token}, nil
	}

	verifyToken, err := newOpaqueToken(32)
	if err != nil {
		return RegisterResult{}, domain.ErrRandomFailed(err)
	}
	expiresAt := now.Add(domain.EmailVerificationTTL)
	draft.EmailVerificationToken = &verifyToken
	draft.EmailVerificationTokenExpiresAt = &expiresAt

	created, err := s.users.Create(ctx, draft)
	if err != nil {
		return RegisterResult{}, err
	}

	// Delivery problems do not undo the registration; the user can ask for a resend.
	if err := s.sendVerification(ctx, created.Email, verifyToken); err != nil {
		s.audit(ctx, "verification_email_failed", map[string]string{"user_id": created.ID, "error": err.Error()})
	}

	s.audit(ctx, "user_registered", map[string]string{"user_id": created.ID, "verification": "pending"})
	return RegisterResult{EmailVerificationNeeded: true}, nil
}
