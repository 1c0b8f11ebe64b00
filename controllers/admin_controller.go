package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/services"
)

type AdminController struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewAdminController(auth *services.AuthService, log *zap.Logger) *AdminController {
	return &AdminController{auth: auth, log: log.Named("admin")}
}

// CreateStaff handles POST /api/admin/staff
func (ac *AdminController) CreateStaff(c echo.Context) error {
	var req models.StaffRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	staff, err := ac.auth.CreateStaff(c.Request().Context(), req)
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Staff account created",
		Data:    staff,
	})
}
