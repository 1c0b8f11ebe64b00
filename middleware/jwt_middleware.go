// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/lexora/lexora_backend/models"
)

// JwtCustomClaims for JWT token
type JwtCustomClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// GenerateJWT signs an HS256 token for the user. A zero lifetime means no expiry.
func GenerateJWT(secret string, lifetime time.Duration, user *models.User) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET environment variable is required")
	}
	now := time.Now()
	claims := &JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.AccessRole(),
		StandardClaims: jwt.StandardClaims{
			IssuedAt: now.Unix(),
			Subject:  user.ID,
		},
	}
	if lifetime > 0 {
		claims.ExpiresAt = now.Add(lifetime).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// JWTMiddleware validates the bearer token and stores userId, role and email in the context
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	if secret == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return echo.NewHTTPError(http.StatusUnauthorized, "JWT configuration error")
			}
		}
	}

	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:  []byte(secret),
		Claims:      &JwtCustomClaims{},
		TokenLookup: "header:" + echo.HeaderAuthorization + ",query:token",
		SuccessHandler: func(c echo.Context) {
			claims := GetUserFromToken(c)
			if claims == nil {
				return
			}
			c.Set("userId", claims.UserID)
			c.Set("role", claims.Role)
			c.Set("email", claims.Email)
		},
		ErrorHandler: func(err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Please provide valid credentials")
		},
	})
}

// GetUserFromToken extracts user information from JWT token
func GetUserFromToken(c echo.Context) *JwtCustomClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetUserIDFromToken returns the authenticated user id, or "" when unauthenticated
func GetUserIDFromToken(c echo.Context) string {
	if userID, ok := c.Get("userId").(string); ok && userID != "" {
		return userID
	}
	if claims := GetUserFromToken(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// ExtractRole returns the role claim of the authenticated user
func ExtractRole(c echo.Context) string {
	if role, ok := c.Get("role").(string); ok && role != "" {
		return role
	}
	if claims := GetUserFromToken(c); claims != nil {
		return claims.Role
	}
	return ""
}
