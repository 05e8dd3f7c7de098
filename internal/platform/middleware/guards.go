package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rheumacare/portal/internal/platform/session"
	"github.com/rheumacare/portal/internal/platform/web"
)

const sessionKey = "session"

// CurrentSession returns the session stashed by RequireSession. It panics if
// called from a route outside the guarded group.
func CurrentSession(c echo.Context) *session.Session {
	return c.Get(sessionKey).(*session.Session)
}

// RequireSession loads the signed-in session and stashes it in the request
// context. Requests without one are sent to the login page; API requests get
// a 401 body instead so page scripts can handle it.
func RequireSession(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := store.Load(c.Request())
			if err != nil {
				if isAPIRequest(c) {
					return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
				}
				return c.Redirect(http.StatusSeeOther, "/login")
			}

			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

// RequireAdmin gates the admin panel. Non-admin users keep their session and
// are bounced to the editor with a toast.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentSession(c).IsAdmin() {
				web.SetFlash(c.Response(), web.FlashError, "Admin access required")
				return c.Redirect(http.StatusSeeOther, "/")
			}
			return next(c)
		}
	}
}

func isAPIRequest(c echo.Context) bool {
	p := c.Request().URL.Path
	return len(p) >= 5 && p[:5] == "/api/"
}
