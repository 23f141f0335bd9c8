package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxIdentity reads the identity set by the RequireSession middleware. An
// empty uid means the middleware did not run on this route.
func ctxIdentity(c echo.Context) (uid, email string, err error) {
	uid, _ = c.Get("uid").(string)
	if uid == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing session identity")
	}
	email, _ = c.Get("email").(string)
	return uid, email, nil
}
