package response

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/baechuer/accounts-api/internal/domain"
	"github.com/baechuer/accounts-api/internal/logger"
)

// ErrorBody is the {"error": "..."} shape used by the auth and user routes.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is the {"message": "..."} shape used by the access guard.
type MessageBody struct {
	Message string `json:"message"`
}

// WriteBusinessError renders a workflow failure.
//   - validation errors: 400 {"error": message}
//   - other client-safe domain errors: 200 {"error": message}
//   - internal, infrastructure and non-domain errors: logged, 200 {"error": fallback}
func WriteBusinessError(w http.ResponseWriter, r *http.Request, lg zerolog.Logger, err error, fallback string) {
	de := asDomain(err)
	switch {
	case de.Kind == domain.KindValidation:
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: de.Message})
	case de.Safe():
		WriteJSON(w, http.StatusOK, ErrorBody{Error: de.Message})
	default:
		logger.WithCtx(r.Context(), lg).Error().Err(err).Str("code", de.Code).Str("path", r.URL.Path).Msg(fallback)
		WriteJSON(w, http.StatusOK, ErrorBody{Error: fallback})
	}
}

// WriteError maps a domain error to its HTTP status with an {"error": message} body.
// Unsafe and non-domain errors are logged and hidden behind a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, lg zerolog.Logger, err error) {
	de := asDomain(err)
	if !de.Safe() {
		logger.WithCtx(r.Context(), lg).Error().Err(err).Str("code", de.Code).Str("path", r.URL.Path).Msg("request failed")
		WriteJSON(w, StatusFromKind(de.Kind), ErrorBody{Error: "internal error"})
		return
	}
	WriteJSON(w, StatusFromKind(de.Kind), ErrorBody{Error: de.Message})
}

// asDomain returns the domain error in err, wrapping anything else as internal.
func asDomain(err error) *domain.Error {
	if de, ok := domain.As(err); ok {
		return de
	}
	return domain.ErrInternal(err)
}

// WriteUnauthorized writes 401 {"message": message}.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusUnauthorized, MessageBody{Message: message})
}

// StatusFromKind maps domain error kinds to HTTP status codes.
func StatusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
