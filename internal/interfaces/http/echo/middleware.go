package echo

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mohammadpnp/content-inventory/internal/domain/identity"
)

const userContextKey = "authenticated_user"

// Auth resolves the caller from a bearer API key and stores the user on the
// request context. Unauthenticated callers get 401 before any handler runs.
func Auth(users identity.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if apiKey == "" {
				return c.JSON(http.StatusUnauthorized, apiResponse{Error: &errorBody{
					Code:    "unauthenticated",
					Message: "missing bearer token",
				}})
			}

			user, err := users.GetByAPIKey(c.Request().Context(), apiKey)
			if err != nil {
				if errors.Is(err, identity.ErrUnknownAPIKey) {
					return c.JSON(http.StatusUnauthorized, apiResponse{Error: &errorBody{
						Code:    "unauthenticated",
						Message: "invalid api key",
					}})
				}
				return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
					Code:    "internal_error",
					Message: "failed to authenticate",
				}})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// RequireRole gates a route group on a minimum role.
func RequireRole(required identity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := currentUser(c)
			if user == nil || !user.Role.AtLeast(required) {
				return c.JSON(http.StatusForbidden, apiResponse{Error: &errorBody{
					Code:    "forbidden",
					Message: "insufficient role",
				}})
			}
			return next(c)
		}
	}
}

func currentUser(c echo.Context) *identity.User {
	user, _ := c.Get(userContextKey).(*identity.User)
	return user
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
