package echoapi

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core"
)

func requestLogger(logger core.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(ctx echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info(fmt.Sprintf("%s %s", v.Method, v.URI), map[string]interface{}{
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
				"remote_ip":  v.RemoteIP,
			})
			return nil
		},
	})
}

// adminMiddleware lets through admins having any of `roles` (any admin when empty).
func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return claimsMiddleware(func(ctx echo.Context, claims Claims) bool {
		return claims.IsAdmin && contextHasAnyRole(ctx, roles)
	})
}

// staffMiddleware lets through admins & secretaries.
func staffMiddleware() echo.MiddlewareFunc {
	return claimsMiddleware(func(_ echo.Context, claims Claims) bool {
		return claims.IsAdmin || claims.IsSecretary
	})
}

// teacherMiddleware lets through the staff & teachers.
func teacherMiddleware() echo.MiddlewareFunc {
	return claimsMiddleware(func(_ echo.Context, claims Claims) bool {
		return claims.IsAdmin || claims.IsSecretary || claims.IsTeacher
	})
}

func claimsMiddleware(allowed func(echo.Context, Claims) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if allowed(ctx, claims) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
