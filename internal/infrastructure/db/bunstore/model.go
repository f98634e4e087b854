package bunstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/baechuer/accounts-api/internal/domain"
)

type userModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                              string     `bun:"id,pk"`
	Email                           string     `bun:"email,notnull,unique"`
	PasswordHash                    *string    `bun:"password_hash"`
	Name                            string     `bun:"name,notnull"`
	Role                            string     `bun:"role,notnull"`
	EmailVerifiedAt                 *time.Time `bun:"email_verified_at"`
	EmailVerificationToken          *string    `bun:"email_verification_token"`
	EmailVerificationTokenExpiresAt *time.Time `bun:"email_verification_token_expires_at"`
	CreatedAt                       time.Time  `bun:"created_at,notnull"`
	UpdatedAt                       time.Time  `bun:"updated_at,notnull"`
}

func (m *userModel) toDomain() domain.User {
	return domain.User{
		ID:                              m.ID,
		Email:                           m.Email,
		PasswordHash:                    m.PasswordHash,
		Name:                            m.Name,
		Role:                            domain.Role(m.Role),
		EmailVerifiedAt:                 m.EmailVerifiedAt,
		EmailVerificationToken:          m.EmailVerificationToken,
		EmailVerificationTokenExpiresAt: m.EmailVerificationTokenExpiresAt,
		CreatedAt:                       m.CreatedAt,
		UpdatedAt:                       m.UpdatedAt,
	}
}

func fromDomain(u domain.User) *userModel {
	return &userModel{
		ID:                              u.ID,
		Email:                           u.Email,
		PasswordHash:                    u.PasswordHash,
		Name:                            u.Name,
		Role:                            string(u.Role),
		EmailVerifiedAt:                 u.EmailVerifiedAt,
		EmailVerificationToken:          u.EmailVerificationToken,
		EmailVerificationTokenExpiresAt: u.EmailVerificationTokenExpiresAt,
		CreatedAt:                       u.CreatedAt,
		UpdatedAt:                       u.UpdatedAt,
	}
}
