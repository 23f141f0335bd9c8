package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crazylearners/portal/internal/core/domain"
)

// SessionReader is the part of the session manager a route guard needs.
type SessionReader interface {
	CurrentSession() domain.SessionState
}

// RequireSession guards routes that need a signed-in user. While the session
// is still loading it answers 503 so the page can show a spinner instead of
// redirecting to login.
func RequireSession(sessions SessionReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := sessions.CurrentSession()
			switch s.Phase() {
			case domain.PhaseLoading:
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session is loading")
			case domain.PhaseAnonymous:
				return echo.NewHTTPError(http.StatusUnauthorized, "login required")
			}

			c.Set("uid", s.CurrentUser.UID)
			c.Set("email", s.CurrentUser.Email)
			return next(c)
		}
	}
}
