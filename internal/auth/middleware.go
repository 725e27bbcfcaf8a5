package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/task_management_sample/internal/domain"
	"github.com/locvowork/task_management_sample/internal/logger"
	"github.com/locvowork/task_management_sample/internal/service/serviceutils"
)

const userContextKey = "currentUser"

// RequireUser rejects requests without a valid session with 401 and stores the
// resolved user on the echo context for CurrentUser.
func RequireUser(resolver *SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			user, err := resolver.ResolveCurrentUser(ctx, c.Request())
			if err != nil {
				logger.ErrorLog(ctx, "failed to resolve session: %v", err)
				return serviceutils.ResponseError(c, http.StatusInternalServerError, "Internal server error", nil)
			}
			if user == nil {
				return serviceutils.ResponseError(c, http.StatusUnauthorized, "Unauthorized", nil)
			}
			SetCurrentUser(c, user)
			return next(c)
		}
	}
}

func SetCurrentUser(c echo.Context, user *domain.User) {
	c.Set(userContextKey, user)
}

// CurrentUser returns the user stored by RequireUser.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userContextKey).(*domain.User)
	return user, ok && user != nil
}
