package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crazylearners/portal/internal/core/domain"
	"github.com/crazylearners/portal/internal/core/ports"
)

const keepAliveInterval = 25 * time.Second

// SessionHandler exposes the session snapshot and its change stream to the
// navigation bar and route guards.
type SessionHandler struct {
	manager ports.SessionManager
}

func NewSessionHandler(manager ports.SessionManager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// Get returns the current session snapshot.
func (h *SessionHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, toSessionResponse(h.manager.CurrentSession(), h.manager.IsDemoMode()))
}

// Me returns the identity of a guarded request.
func (h *SessionHandler) Me(c echo.Context) error {
	uid, email, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identityResponse{UID: uid, Email: email})
}

// Events streams session changes as server-sent events. The first event is
// the current snapshot.
func (h *SessionHandler) Events(c echo.Context) error {
	events, cancel := h.manager.Subscribe()
	defer cancel()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	current := h.manager.CurrentSession()
	if err := h.writeEvent(w, domain.SessionEvent{State: current, Phase: current.Phase(), At: time.Now().UTC()}); err != nil {
		return nil
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := h.writeEvent(w, ev); err != nil {
				return nil
			}
		}
	}
}

func (h *SessionHandler) writeEvent(w *echo.Response, ev domain.SessionEvent) error {
	data, err := json.Marshal(sessionEventResponse{
		sessionResponse: toSessionResponse(ev.State, h.manager.IsDemoMode()),
		At:              ev.At,
	})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: session\ndata: %s\n\n", data); err != nil {
		return err
	}
	w.Flush()
	return nil
}
