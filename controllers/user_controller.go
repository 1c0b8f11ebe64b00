package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/middleware"
	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/repositories"
	"github.com/lexora/lexora_backend/services"
)

type UserController struct {
	store repositories.Store
	log   *zap.Logger
}

func NewUserController(store repositories.Store, log *zap.Logger) *UserController {
	return &UserController{store: store, log: log.Named("users")}
}

// GetProfile handles GET /api/users/me
func (uc *UserController) GetProfile(c echo.Context) error {
	user, err := uc.store.GetUser(c.Request().Context(), middleware.GetUserIDFromToken(c))
	if err != nil {
		return respondError(c, uc.log, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    user,
	})
}

// GetDownline handles GET /api/users/me/downline
func (uc *UserController) GetDownline(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	users, err := uc.store.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(c, uc.log, err)
	}

	ids, downline := services.GetDownline(userID, users)
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Downline retrieved successfully",
		Data: map[string]interface{}{
			"ids":   ids,
			"users": downline,
		},
	})
}
