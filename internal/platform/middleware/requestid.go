// Package middleware holds the portal's echo middleware chain: request
// identity, structured request logging, panic recovery, security headers,
// session guards, and the global backend auth-failure handler.
package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader is the header the request id is read from and echoed on.
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an id for log correlation. An id supplied
// by the caller is preserved; otherwise a fresh UUID is generated.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}

			c.Set("request_id", rid)
			c.Response().Header().Set(RequestIDHeader, rid)

			return next(c)
		}
	}
}
