package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"loyalty-platform/internal/model"
	"loyalty-platform/pkg/database"
	"loyalty-platform/pkg/jwtutil"
	"loyalty-platform/pkg/logger"
)

// AuthMiddleware validates the JWT token and stores the actor in the context
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// A deactivated actor keeps a syntactically valid token until it
		// expires; check the live record so deactivation takes effect now.
		if err := checkActorActive(claims); err != nil {
			log.Warn("Deactivated actor rejected",
				zap.Uint("actor_id", claims.ActorID),
				zap.String("role", claims.Role))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "account is deactivated"})
		}

		// Store actor info in context for later use
		c.Set("actor_id", claims.ActorID)
		c.Set("actor_role", claims.Role)
		c.Set("actor_email", claims.Email)

		return next(c)
	}
}

// RequireRole gates a route group to the given roles. It must run after
// AuthMiddleware.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("actor_role").(string)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			logger.FromContext(c).Warn("Role not permitted for route",
				zap.String("role", role),
				zap.String("path", c.Path()))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
		}
	}
}

func checkActorActive(claims *jwtutil.Claims) error {
	db := database.GetDB()
	switch claims.Role {
	case jwtutil.RoleBusiness:
		var b model.Business
		if err := db.Where("id = ? AND is_active = ?", claims.ActorID, true).First(&b).Error; err != nil {
			return err
		}
	case jwtutil.RoleUser:
		var cu model.Customer
		if err := db.Where("id = ? AND is_active = ?", claims.ActorID, true).First(&cu).Error; err != nil {
			return err
		}
	}
	return nil
}

// ActorIDFromContext retrieves the authenticated actor's ID from the context.
// Returns 0, false if the request is unauthenticated.
func ActorIDFromContext(c echo.Context) (uint, bool) {
	id, ok := c.Get("actor_id").(uint)
	return id, ok
}
