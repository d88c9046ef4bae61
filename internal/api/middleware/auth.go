package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AccountIDKey is the echo.Context key holding the authenticated account id.
const AccountIDKey = "account_id"

// AccessTokenParser resolves an access token to the account id it was issued for.
type AccessTokenParser interface {
	ParseAccess(token string) (int64, error)
}

// Auth validates the bearer access token and stores the account id in context.
func Auth(tokens AccessTokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			accountID, err := tokens.ParseAccess(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(AccountIDKey, accountID)
			return next(c)
		}
	}
}
