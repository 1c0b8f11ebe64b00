package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/controllers"
	"github.com/lexora/lexora_backend/middleware"
	"github.com/lexora/lexora_backend/repositories"
	"github.com/lexora/lexora_backend/websocket"
)

// Controllers bundles every handler the API exposes
type Controllers struct {
	Auth      *controllers.AuthController
	Users     *controllers.UserController
	Customers *controllers.CustomerController
	Reports   *controllers.ReportController
	Admin     *controllers.AdminController
	Hierarchy *controllers.HierarchyController
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, store repositories.Store, hub *websocket.Hub, ctrl Controllers, jwtSecret string, log *zap.Logger) {
	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", func(c echo.Context) error {
		status, database := http.StatusOK, "connected"
		if err := store.Ping(c.Request().Context()); err != nil {
			status, database = http.StatusServiceUnavailable, "unreachable"
		}
		return c.JSON(status, map[string]string{
			"status":   http.StatusText(status),
			"backend":  store.Name(),
			"database": database,
		})
	})

	RegisterAuthRoutes(e, ctrl.Auth)
	RegisterHierarchyRoutes(e, ctrl.Hierarchy)

	api := e.Group("/api", middleware.JWTMiddleware(jwtSecret))
	RegisterUserRoutes(api, ctrl.Users, hub)
	RegisterSalesRoutes(api, ctrl.Customers, log)
	RegisterReportRoutes(api, ctrl.Reports, log)
	RegisterAdminRoutes(api, ctrl.Admin, log)
}
