package auth

import (
	"context"
	"time"

	"github.com/baechuer/accounts-api/internal/domain"
)

/*
UserDirectory
-------------
Persistence port for users.
Only describes WHAT the auth service needs, not HOW it's stored.
Lookups report absence with found=false and a nil error.
*/
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (domain.User, bool, error)
	FindByEmail(ctx context.Context, email string) (domain.User, bool, error)
	FindByVerificationToken(ctx context.Context, token string) (domain.User, bool, error)

	// Create fails with EmailRequired when draft.Email is empty and with
	// UserAlreadyExists when the email is taken.
	Create(ctx context.Context, draft domain.UserDraft) (domain.User, error)
	// Update merges patch into the stored record and returns the result.
	Update(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error)
}

/*
PasswordHasher
--------------
Abstracts argon2id / bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies bearer tokens (JWT).
Used by service + auth middleware.
*/
type TokenClaims struct {
	Subject string
	Email   string
	Exp     time.Time
}

type TokenSigner interface {
	Sign(subject, email string) (string, error)
	Verify(token string) (TokenClaims, error)
}

/*
EmailSender
-----------
Delivers a message to an address. The transport (log sink, SMTP, RabbitMQ)
is chosen at bootstrap and injected here.
*/
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`

	// Kind tags the message for transports that route on it (e.g. "verify_email").
	Kind string `json:"kind,omitempty"`
	// URL is the action link embedded in the message, when there is one.
	URL string `json:"url,omitempty"`
}

type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

const MessageKindVerifyEmail = "verify_email"
