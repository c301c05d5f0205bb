package controllers

import (
	"errors"
	"net/http"

	"wewearapi/logger"
	"wewearapi/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// UserMiddleware resolves the JWT subject into currentUser.
func UserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		db := c.Get("__db").(*gorm.DB)
		userRaw := c.Get("user")
		if userRaw == nil {
			return echo.ErrUnauthorized
		}
		token, ok := userRaw.(*jwt.Token)
		if !ok {
			return echo.ErrUnauthorized
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return echo.ErrUnauthorized
		}
		if typ, _ := claims["typ"].(string); typ == "refresh" {
			return echo.ErrUnauthorized
		}
		userID, _ := claims["sub"].(string)
		if userID == "" {
			logger.L().Warn("token without subject")
			return echo.ErrUnauthorized
		}

		var currentUser models.UserAccount
		result := db.WithContext(c.Request().Context()).Where("id = ?", userID).Take(&currentUser)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return echo.ErrUnauthorized
		}
		if result.Error != nil {
			logger.L().Error("failed to load current user", "user_id", userID, "error", result.Error)
			return echo.ErrInternalServerError
		}
		if currentUser.Banned {
			return echo.NewHTTPError(http.StatusLocked, "account is locked")
		}
		c.Set("currentUser", currentUser)
		return next(c)
	}
}
