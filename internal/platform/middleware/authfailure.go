package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rheumacare/portal/internal/platform/gateway"
	"github.com/rheumacare/portal/internal/platform/session"
	"github.com/rheumacare/portal/internal/platform/web"
)

// AuthFailure converts backend auth errors into the portal-wide reactions:
// a 401 from any call tears down the local session and sends the user back
// to the login page; a 403 keeps the session and bounces to the editor with
// an "Admin access required" toast. API requests get JSON with the same
// status instead of a redirect.
func AuthFailure(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			switch {
			case gateway.IsStatus(err, http.StatusUnauthorized):
				store.Clear(c.Response())
				if isAPIRequest(c) {
					return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Session expired"})
				}
				web.SetFlash(c.Response(), web.FlashError, "Session expired. Please log in again.")
				return c.Redirect(http.StatusSeeOther, "/login")

			case gateway.IsStatus(err, http.StatusForbidden):
				if isAPIRequest(c) {
					return c.JSON(http.StatusForbidden, map[string]string{"detail": "Admin access required"})
				}
				web.SetFlash(c.Response(), web.FlashError, "Admin access required")
				return c.Redirect(http.StatusSeeOther, "/")
			}

			return err
		}
	}
}
