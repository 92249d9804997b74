package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// DriverAuth returns echo middleware that validates the Bearer JWT on driver
// endpoints and stores the Principal on the request context.
func DriverAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := ParseBearer(c.Request().Header.Get(echo.HeaderAuthorization), secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "auth error: "+err.Error())
			}
			req := c.Request()
			c.SetRequest(req.WithContext(WithPrincipal(req.Context(), p)))
			return next(c)
		}
	}
}
