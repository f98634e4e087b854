package dto

import "github.com/baechuer/accounts-api/internal/domain"

// LoginResponse carries either a token or a business error message.
type LoginResponse struct {
	Token string `json:"token,omitempty"`
	Error string `json:"error,omitempty"`
}

type RegisterResponse struct {
	Token                   string `json:"token,omitempty"`
	EmailVerificationNeeded bool   `json:"emailVerificationNeeded"`
}

type VerifyEmailResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ResendVerificationResponse struct {
	Success bool `json:"success"`
}

// UserView is the public shape of a user. It never carries the password hash
// or verification token.
type UserView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.DisplayName(),
		Role:  string(u.Role),
	}
}

func NewIdentityView(id domain.Identity) UserView {
	return UserView{
		ID:    id.ID,
		Email: id.Email,
		Name:  id.Name,
		Role:  string(id.Role),
	}
}

type HealthResponse struct {
	Message   string `json:"message"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}
