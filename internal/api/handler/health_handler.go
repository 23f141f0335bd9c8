package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crazylearners/portal/internal/core/domain"
	"github.com/crazylearners/portal/internal/core/ports"
)

// HealthHandler handles GET /health, the liveness probe.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ReadinessHandler handles GET /health/ready. The process is ready once the
// slot store answers and the session has left the loading phase.
type ReadinessHandler struct {
	slots    ports.SlotStore
	sessions ports.SessionManager
	driver   string
}

func NewReadinessHandler(slots ports.SlotStore, sessions ports.SessionManager, driver string) *ReadinessHandler {
	return &ReadinessHandler{slots: slots, sessions: sessions, driver: driver}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true

	if err := h.slots.Ping(ctx); err != nil {
		deps[h.driver] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps[h.driver] = dependencyStatus{Status: "ok"}
	}

	if h.sessions.CurrentSession().Phase() == domain.PhaseLoading {
		deps["session"] = dependencyStatus{Status: "loading"}
		healthy = false
	} else {
		deps["session"] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
