package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/middleware"
	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/repositories"
	"github.com/lexora/lexora_backend/services"
	"github.com/lexora/lexora_backend/utils"
)

// statusFor maps service errors onto HTTP statuses and client-safe messages
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrReferrerRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, services.ErrInvalidCredentials.Error()
	case errors.Is(err, services.ErrNotSalesman):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrBrokenChain), errors.Is(err, services.ErrReferralCycle):
		return http.StatusConflict, err.Error()
	case errors.Is(err, utils.ErrTooManyAttempts):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, services.ErrInsightsDisabled):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, services.ErrCommitFailed):
		return http.StatusInternalServerError, "Failed to register customer, nothing was saved"
	}
	return http.StatusInternalServerError, "Internal server error"
}

func respondError(c echo.Context, log *zap.Logger, err error) error {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
	})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.Response{
		Status:  http.StatusBadRequest,
		Message: message,
	})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, models.Response{
		Status:  http.StatusForbidden,
		Message: "Access denied",
	})
}

func isDashboardRole(role string) bool {
	for _, r := range middleware.DashboardRoles {
		if role == r {
			return true
		}
	}
	return false
}
