package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lexora/lexora_backend/models"
)

type HierarchyController struct{}

func NewHierarchyController() *HierarchyController {
	return &HierarchyController{}
}

type nextRoleResponse struct {
	Role       models.Role `json:"role"`
	Label      string      `json:"label"`
	NextRole   models.Role `json:"nextRole"`
	NextLabel  string      `json:"nextLabel"`
	Commission int64       `json:"commission"`
}

// GetNextRole handles GET /api/hierarchy/next-role/:role
func (hc *HierarchyController) GetNextRole(c echo.Context) error {
	role, err := models.ParseRole(c.Param("role"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	next := models.NextRoleDown(role)
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Next role resolved",
		Data: nextRoleResponse{
			Role:       role,
			Label:      role.Label(),
			NextRole:   next,
			NextLabel:  next.Label(),
			Commission: models.CommissionFor(role),
		},
	})
}
