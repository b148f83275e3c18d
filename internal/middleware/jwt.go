package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/userhub/internal/apperr"
	"github.com/sudo-init-do/userhub/internal/auth"
	"github.com/sudo-init-do/userhub/internal/user"
)

// TokenVerifier returns the user id named by a valid session token.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserLookup resolves a user id to the stored user.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// RequireAuth rejects requests without a valid session and attaches the
// resolved user to the request context.
func RequireAuth(tokens TokenVerifier, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := sessionToken(c)
			if token == "" {
				return apperr.New(apperr.CodeUnauthorized, "Not authorized, please login")
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			u, err := users.GetByID(ctx, userID)
			if err != nil {
				return err
			}

			c.SetRequest(c.Request().WithContext(user.NewContext(ctx, u)))
			return next(c)
		}
	}
}

// sessionToken reads the cookie first, then an Authorization: Bearer header.
func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(auth.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	const prefix = "Bearer "
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
