package domain

import (
	"strings"
	"time"
)

// EmailVerificationTTL is the validity window of a freshly issued verification token.
const EmailVerificationTTL = 24 * time.Hour

type User struct {
	ID           string
	Email        string
	PasswordHash *string
	Name         string
	Role         Role

	EmailVerifiedAt                 *time.Time
	EmailVerificationToken          *string
	EmailVerificationTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) EmailVerified() bool { return u.EmailVerifiedAt != nil }

func (u User) HasPassword() bool { return u.PasswordHash != nil && *u.PasswordHash != "" }

// DisplayName falls back to the email local part for records created without a name.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return EmailLocalPart(u.Email)
}

// Identity is the request-scoped view of an authenticated user.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.DisplayName(), Role: u.Role}
}

// Identity is attached to a request context by the access guard.
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// UserDraft is the partial record accepted by a user directory on create.
// ID, timestamps and Role are filled in by the directory when left empty.
type UserDraft struct {
	ID           string
	Email        string
	PasswordHash *string
	Name         string
	Role         Role

	EmailVerificationToken          *string
	EmailVerificationTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserPatch lists the fields to merge into an existing record. Nil fields are left untouched.
type UserPatch struct {
	Name            *string
	Role            *Role
	EmailVerifiedAt *time.Time

	EmailVerificationToken          *string
	EmailVerificationTokenExpiresAt *time.Time
	// ClearEmailVerificationToken nulls both token fields and wins over the two above.
	ClearEmailVerificationToken bool
}

// Apply merges p into u and stamps UpdatedAt.
func (p UserPatch) Apply(u User, now time.Time) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.EmailVerifiedAt != nil {
		t := *p.EmailVerifiedAt
		u.EmailVerifiedAt = &t
	}
	if p.EmailVerificationToken != nil {
		tok := *p.EmailVerificationToken
		u.EmailVerificationToken = &tok
	}
	if p.EmailVerificationTokenExpiresAt != nil {
		t := *p.EmailVerificationTokenExpiresAt
		u.EmailVerificationTokenExpiresAt = &t
	}
	if p.ClearEmailVerificationToken {
		u.EmailVerificationToken = nil
		u.EmailVerificationTokenExpiresAt = nil
	}
	u.UpdatedAt = now
	return u
}

// EmailLocalPart returns the substring before the first '@'.
func EmailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
