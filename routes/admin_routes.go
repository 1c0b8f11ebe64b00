package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/controllers"
	"github.com/lexora/lexora_backend/middleware"
	"github.com/lexora/lexora_backend/models"
)

// RegisterAdminRoutes sets up admin-only routes
func RegisterAdminRoutes(api *echo.Group, adminController *controllers.AdminController, log *zap.Logger) {
	admin := api.Group("/admin", middleware.RequireRole(log, string(models.RoleAdmin)))
	admin.POST("/staff", adminController.CreateStaff)
}
