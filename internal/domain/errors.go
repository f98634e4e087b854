package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for clients (avoid leaking sensitive details)
// - Meta: optional details (field, reason, etc.)
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Safe reports whether Message may be shown to a client as-is.
func (e *Error) Safe() bool {
	return e.Kind != KindInternal && e.Kind != KindInfrastructure
}

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// As returns the domain error wrapped in err, if any.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Stable error codes.
const (
	CodeInvalidJSON           = "invalid_json"
	CodeValidationFailed      = "validation_failed"
	CodeEmailRequired         = "email_required"
	CodeInvalidCredentials    = "invalid_credentials"
	CodeEmailNotVerified      = "email_not_verified"
	CodeUserAlreadyExists     = "user_already_exists"
	CodeInvalidOrExpiredToken = "invalid_or_expired_token"
	CodeTokenExpired          = "token_expired"
	CodeUnauthorized          = "unauthorized"
	CodeUserNotFound          = "user_not_found"
	CodeHashFailed            = "hash_failed"
	CodeTokenSignFailed       = "token_sign_failed"
	CodeRandomFailed          = "random_failed"
	CodeDBUnavailable         = "db_unavailable"
	CodeInternal              = "internal_error"
)

// Unauthorized reasons surfaced by the access guard.
const (
	ReasonMissingToken = "Missing or invalid token"
	ReasonInvalidToken = "Invalid token"
	ReasonUserNotFound = "User not found"
)

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, CodeInvalidJSON, "invalid JSON body", cause)
}

// ErrValidation carries the joined "<field>: <message>" summary as its message.
func ErrValidation(summary string, fields map[string]string) *Error {
	return WithMeta(New(KindValidation, CodeValidationFailed, summary), fields)
}

func ErrEmailRequired() *Error {
	return WithMeta(New(KindValidation, CodeEmailRequired, "Email is required"), map[string]string{
		"field": "email",
	})
}

// ----------------------
// Auth errors (401)
// ----------------------

// IMPORTANT: use this for every login failure that could reveal whether an account exists.
func ErrInvalidCredentials() *Error {
	return New(KindAuth, CodeInvalidCredentials, "Invalid email or password")
}

func ErrInvalidOrExpiredToken() *Error {
	return New(KindAuth, CodeInvalidOrExpiredToken, "Invalid or expired verification token")
}

func ErrTokenExpired() *Error {
	return New(KindAuth, CodeTokenExpired, "Verification token has expired")
}

func ErrUnauthorized(reason string) *Error {
	return WithMeta(New(KindAuth, CodeUnauthorized, "Unauthorized: "+reason), map[string]string{
		"reason": reason,
	})
}

// ----------------------
// Forbidden (403)
// ----------------------

func ErrEmailNotVerified() *Error {
	return New(KindForbidden, CodeEmailNotVerified, "Email not verified")
}

// ----------------------
// Not Found (404)
// ----------------------

func ErrUserNotFound() *Error {
	return New(KindNotFound, CodeUserNotFound, "User not found")
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrUserAlreadyExists() *Error {
	return New(KindConflict, CodeUserAlreadyExists, "User already exists")
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, CodeDBUnavailable, "database unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, CodeHashFailed, "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, CodeTokenSignFailed, "token signing failed", cause)
}

func ErrRandomFailed(cause error) *Error {
	return Wrap(KindInternal, CodeRandomFailed, "random generation failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, CodeInternal, "internal error", cause)
}
