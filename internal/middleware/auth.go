package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Lamb-Project/lamb-sub000/pkg/jwtutil"
	"github.com/Lamb-Project/lamb-sub000/pkg/logger"
)

// AuthMiddleware validates the JWT token from the Authorization header.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Error("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Error("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("organization_id", claims.OrganizationID)
		c.Set("user_role", claims.Role)

		return next(c)
	}
}

// RequireAdmin allows only users holding the owner or admin role. Migration
// endpoints are destructive and stay behind this gate.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, _ := c.Get("user_role").(string)
		if role != "owner" && role != "admin" {
			log := logger.FromContext(c)
			log.Warn("Non-admin attempted a migration operation",
				zap.String("role", role),
				zap.Any("user_id", c.Get("user_id")))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "administrator role required"})
		}
		return next(c)
	}
}
