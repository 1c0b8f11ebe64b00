package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/lexora/lexora_backend/controllers"
)

// RegisterAuthRoutes sets up the public authentication routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.POST("/api/auth/signup", authController.Signup)
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/firebase", authController.FirebaseLogin)
}

// RegisterHierarchyRoutes exposes the public rank lookup used by the signup form
func RegisterHierarchyRoutes(e *echo.Echo, hierarchyController *controllers.HierarchyController) {
	e.GET("/api/hierarchy/next-role/:role", hierarchyController.GetNextRole)
}
