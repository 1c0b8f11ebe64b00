package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/controllers"
	"github.com/lexora/lexora_backend/middleware"
)

// RegisterSalesRoutes sets up customer registration for every sales rank
func RegisterSalesRoutes(api *echo.Group, customerController *controllers.CustomerController, log *zap.Logger) {
	api.POST("/customers", customerController.RegisterCustomer, middleware.RequireRole(log, middleware.SalesRoles...))
	api.GET("/customers/:id/token-barcode", customerController.GetTokenBarcode)
}
