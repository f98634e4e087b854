package postgres

import (
	"database/sql"
	"time"

	"github.com/baechuer/accounts-api/internal/domain"
)

const userColumns = `id, email, password_hash, name, role, email_verified_at,
email_verification_token, email_verification_token_expires_at, created_at, updated_at`

type userRow struct {
	ID                              string
	Email                           string
	PasswordHash                    sql.NullString
	Name                            string
	Role                            string
	EmailVerifiedAt                 sql.NullTime
	EmailVerificationToken          sql.NullString
	EmailVerificationTokenExpiresAt sql.NullTime
	CreatedAt                       time.Time
	UpdatedAt                       time.Time
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUserRow(s scanner) (userRow, error) {
	var ur userRow
	err := s.Scan(
		&ur.ID,
		&ur.Email,
		&ur.PasswordHash,
		&ur.Name,
		&ur.Role,
		&ur.EmailVerifiedAt,
		&ur.EmailVerificationToken,
		&ur.EmailVerificationTokenExpiresAt,
		&ur.CreatedAt,
		&ur.UpdatedAt,
	)
	return ur, err
}

func (ur userRow) toDomain() domain.User {
	return domain.User{
		ID:                              ur.ID,
		Email:                           ur.Email,
		PasswordHash:                    nullString(ur.PasswordHash),
		Name:                            ur.Name,
		Role:                            domain.Role(ur.Role),
		EmailVerifiedAt:                 nullTime(ur.EmailVerifiedAt),
		EmailVerificationToken:          nullString(ur.EmailVerificationToken),
		EmailVerificationTokenExpiresAt: nullTime(ur.EmailVerificationTokenExpiresAt),
		CreatedAt:                       ur.CreatedAt,
		UpdatedAt:                       ur.UpdatedAt,
	}
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
