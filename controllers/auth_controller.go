package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/services"
)

// AuthController contains authentication logic
type AuthController struct {
	auth *services.AuthService
	log  *zap.Logger
}

func NewAuthController(auth *services.AuthService, log *zap.Logger) *AuthController {
	return &AuthController{auth: auth, log: log.Named("auth")}
}

// Signup handles POST /api/auth/signup
func (ac *AuthController) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := ac.auth.Signup(c.Request().Context(), req)
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Account created successfully",
		Data:    resp,
	})
}

// Login handles POST /api/auth/login
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := ac.auth.Login(c.Request().Context(), req)
	if err != nil {
		ac.log.Info("login failed", zap.String("ip", c.RealIP()), zap.Error(err))
		return respondError(c, ac.log, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    resp,
	})
}

// FirebaseLogin handles POST /api/auth/firebase
func (ac *AuthController) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := c.Bind(&req); err != nil || req.IDToken == "" {
		return badRequest(c, "idToken is required")
	}

	resp, err := ac.auth.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return respondError(c, ac.log, err)
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    resp,
	})
}
