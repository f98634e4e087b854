package http_handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/baechuer/accounts-api/internal/logger"
	"github.com/baechuer/accounts-api/internal/transport/http/dto"
	"github.com/baechuer/accounts-api/internal/transport/http/response"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by every user directory backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db  Pinger
	lg  zerolog.Logger
	now func() time.Time
}

func NewHealthHandler(db Pinger, lg zerolog.Logger) *HealthHandler {
	return &HealthHandler{db: db, lg: lg, now: time.Now}
}

// Health handles GET /api/v1/health. It always answers 200; status turns to "error" when the store is unreachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := dto.HealthResponse{
		Message: "System is healthy",
		Status:  "ok",
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			logger.WithCtx(r.Context(), h.lg).Error().Err(err).Msg("health check: database ping failed")
			res.Message = "System health check failed"
			res.Status = "error"
		}
	}

	res.Timestamp = h.now().UnixMilli()
	response.OK(w, res)
}
