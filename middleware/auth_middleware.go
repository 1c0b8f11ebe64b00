// middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/models"
)

// SalesRoles are the ranks allowed to register customers
var SalesRoles = func() []string {
	roles := make([]string, 0, len(models.RoleOrder))
	for _, r := range models.RoleOrder {
		roles = append(roles, string(r))
	}
	return roles
}()

// DashboardRoles are the back-office roles plus admin
var DashboardRoles = []string{
	string(models.RoleAdmin),
	string(models.StaffHR),
	string(models.StaffRecoveryAdmin),
	string(models.StaffCallCentre),
	string(models.StaffTechnicalOfficer),
}

// RequireRole checks if the authenticated user has one of the allowed roles
func RequireRole(log *zap.Logger, allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := ExtractRole(c)
			if role == "" {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: role not found",
				})
			}

			for _, a := range allowed {
				if role == a {
					return next(c)
				}
			}

			log.Info("access denied",
				zap.String("path", c.Path()),
				zap.String("role", role),
				zap.Strings("allowed", allowed),
			)
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied for your role",
			})
		}
	}
}
