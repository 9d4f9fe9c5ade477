package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/aissms/reeval-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const healthTimeout = 2 * time.Second

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

// SystemHandler reports process and dependency health.
type SystemHandler struct {
	checks    map[string]HealthCheck
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a SystemHandler. checks is keyed by dependency name.
func NewSystemHandler(checks map[string]HealthCheck, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		checks:    checks,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
// Returns 200 when every dependency answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	deps := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			deps[name] = "down"
			healthy = false
			continue
		}
		deps[name] = "ok"
	}

	payload := gin.H{
		"status":       "ok",
		"uptime":       time.Since(h.startTime).Round(time.Second).String(),
		"dependencies": deps,
	}
	if !healthy {
		payload["status"] = "degraded"
		response.FailWithData(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable, payload)
		return
	}
	response.Success(c, http.StatusOK, payload)
}
