package seed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/accounts-api/internal/domain"
)

type Hasher interface {
	Hash(password string) (string, error)
}

// Directory is the slice of auth.UserDirectory the seeder writes through.
type Directory interface {
	Create(ctx context.Context, d domain.UserDraft) (domain.User, error)
	Update(ctx context.Context, id string, p domain.UserPatch) (domain.User, error)
}

type account struct {
	Email string
	Name  string
	Role  domain.Role
	Pass  string
}

var demoAccounts = []account{
	{Email: "admin@example.com", Name: "Admin", Role: domain.RoleAdmin, Pass: "AdminPassword123!"},
	{Email: "user@example.com", Name: "User", Role: domain.RoleUser, Pass: "UserPassword123!"},
}

// Users creates verified demo accounts for local development. Safe to call
// on every start: existing accounts and hash failures are skipped.
func Users(ctx context.Context, users Directory, hasher Hasher, lg zerolog.Logger) int {
	created := 0
	for _, a := range demoAccounts {
		hash, err := hasher.Hash(a.Pass)
		if err != nil {
			lg.Warn().Err(err).Str("email", a.Email).Msg("seed: hash failed")
			continue
		}

		u, err := users.Create(ctx, domain.UserDraft{
			Email:        a.Email,
			PasswordHash: &hash,
			Name:         a.Name,
			Role:         a.Role,
		})
		if err != nil {
			if !domain.Is(err, domain.CodeUserAlreadyExists) {
				lg.Warn().Err(err).Str("email", a.Email).Msg("seed: create failed")
			}
			continue
		}

		now := time.Now()
		if _, err := users.Update(ctx, u.ID, domain.UserPatch{EmailVerifiedAt: &now}); err != nil {
			lg.Warn().Err(err).Str("email", a.Email).Msg("seed: verify failed")
			continue
		}
		created++
	}

	lg.Info().Int("created", created).Msg("seed: demo users ready")
	return created
}
