package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/controllers"
	"github.com/lexora/lexora_backend/middleware"
)

func RegisterReportRoutes(api *echo.Group, reportController *controllers.ReportController, log *zap.Logger) {
	reports := api.Group("/reports")
	reports.GET("/downline/:id", reportController.GetDownlineReport)
	reports.GET("/insights", reportController.GetInsights)
	reports.GET("/dashboard", reportController.GetDashboard, middleware.RequireRole(log, middleware.DashboardRoles...))
}
