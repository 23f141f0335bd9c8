package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crazylearners/portal/internal/core/domain"
	"github.com/crazylearners/portal/internal/core/ports"
)

const defaultSettleTimeout = 2 * time.Second

// AuthHandler serves the login form. Errors go to the central error handler,
// which renders the display message.
//
// The real backend reports session changes on the provider's listener, after
// the call has returned. Login and Register therefore wait up to settle for
// the change before answering. If it has not arrived by then the response
// carries the current snapshot and /v1/session/events delivers the rest.
type AuthHandler struct {
	manager ports.SessionManager
	settle  time.Duration
}

func NewAuthHandler(manager ports.SessionManager) *AuthHandler {
	return &AuthHandler{manager: manager, settle: defaultSettleTimeout}
}

// Login signs in with email and password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	events, cancel := h.manager.Subscribe()
	defer cancel()

	if err := h.manager.Login(ctx, req.Email, req.Password); err != nil {
		return err
	}
	s := h.awaitSession(ctx, events, func(s domain.SessionState) bool {
		return s.CurrentUser != nil && strings.EqualFold(s.CurrentUser.Email, req.Email)
	})
	return c.JSON(http.StatusOK, toSessionResponse(s, h.manager.IsDemoMode()))
}

// Register creates an account and sets its display name.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	events, cancel := h.manager.Subscribe()
	defer cancel()

	if err := h.manager.Register(ctx, req.Email, req.Password, req.Name); err != nil {
		return err
	}
	s := h.awaitSession(ctx, events, func(s domain.SessionState) bool {
		return s.CurrentUser != nil && strings.EqualFold(s.CurrentUser.Email, req.Email) && s.CurrentUser.DisplayName == req.Name
	})
	return c.JSON(http.StatusCreated, toSessionResponse(s, h.manager.IsDemoMode()))
}

// Logout ends the session. Logging out twice is not an error.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.manager.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// awaitSession returns the first snapshot accepted by done, or the current
// one once settle elapses or the stream ends.
func (h *AuthHandler) awaitSession(ctx context.Context, events <-chan domain.SessionEvent, done func(domain.SessionState) bool) domain.SessionState {
	if s := h.manager.CurrentSession(); done(s) {
		return s
	}

	timer := time.NewTimer(h.settle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return h.manager.CurrentSession()
		case <-timer.C:
			return h.manager.CurrentSession()
		case ev, ok := <-events:
			if !ok {
				return h.manager.CurrentSession()
			}
			if done(ev.State) {
				return ev.State
			}
		}
	}
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
