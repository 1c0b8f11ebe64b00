package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/lexora/lexora_backend/controllers"
	"github.com/lexora/lexora_backend/middleware"
	"github.com/lexora/lexora_backend/websocket"
)

// RegisterUserRoutes sets up profile, downline and realtime routes for any signed in user
func RegisterUserRoutes(api *echo.Group, userController *controllers.UserController, hub *websocket.Hub) {
	api.GET("/users/me", userController.GetProfile)
	api.GET("/users/me/downline", userController.GetDownline)

	api.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, hub, middleware.GetUserIDFromToken(c))
	})
}
