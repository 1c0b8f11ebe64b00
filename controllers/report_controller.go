package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/middleware"
	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/repositories"
	"github.com/lexora/lexora_backend/services"
)

type ReportController struct {
	reports  *services.ReportService
	insights *services.InsightService
	store    repositories.Store
	log      *zap.Logger
}

func NewReportController(reports *services.ReportService, insights *services.InsightService, store repositories.Store, log *zap.Logger) *ReportController {
	return &ReportController{reports: reports, insights: insights, store: store, log: log.Named("reports")}
}

// canView reports whether the requester may see targetID's report: themselves,
// anyone in their downline, or anyone at all for admin and staff
func (rc *ReportController) canView(ctx context.Context, requesterID, role, targetID string) (bool, error) {
	if requesterID == targetID || isDashboardRole(role) {
		return true, nil
	}
	users, err := rc.store.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	ids, _ := services.GetDownline(requesterID, users)
	for _, id := range ids {
		if id == targetID {
			return true, nil
		}
	}
	return false, nil
}

// GetDownlineReport handles GET /api/reports/downline/:id
func (rc *ReportController) GetDownlineReport(c echo.Context) error {
	ctx := c.Request().Context()
	targetID := c.Param("id")
	if targetID == "me" {
		targetID = middleware.GetUserIDFromToken(c)
	}

	ok, err := rc.canView(ctx, middleware.GetUserIDFromToken(c), middleware.ExtractRole(c), targetID)
	if err != nil {
		return respondError(c, rc.log, err)
	}
	if !ok {
		return forbidden(c)
	}

	report, err := rc.reports.Downline(ctx, targetID)
	if err != nil {
		return respondError(c, rc.log, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Downline report generated",
		Data:    report,
	})
}

// GetDashboard handles GET /api/reports/dashboard for admin and staff
func (rc *ReportController) GetDashboard(c echo.Context) error {
	dash, err := rc.reports.Dashboard(c.Request().Context(), middleware.ExtractRole(c))
	if err != nil {
		return respondError(c, rc.log, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard generated",
		Data:    dash,
	})
}

// GetInsights handles GET /api/reports/insights?userId=
func (rc *ReportController) GetInsights(c echo.Context) error {
	ctx := c.Request().Context()
	requesterID := middleware.GetUserIDFromToken(c)
	targetID := c.QueryParam("userId")
	if targetID == "" {
		targetID = requesterID
	}

	ok, err := rc.canView(ctx, requesterID, middleware.ExtractRole(c), targetID)
	if err != nil {
		return respondError(c, rc.log, err)
	}
	if !ok {
		return forbidden(c)
	}

	insight, err := rc.insights.Insights(ctx, targetID)
	if err != nil {
		return respondError(c, rc.log, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Insights generated",
		Data:    insight,
	})
}
