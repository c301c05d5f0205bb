package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"wewearapi/config"
	"wewearapi/laundry"
	"wewearapi/logger"
	"wewearapi/models"
	"wewearapi/services"
	"wewearapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func jsonError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// errorHandler renders every error as {"error": "..."}.
func errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		message := http.StatusText(status)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			message = fmt.Sprint(he.Message)
		} else {
			logger.L().Error("unhandled request error", "path", c.Path(), "error", err)
			sentry.CaptureException(err)
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = jsonError(c, status, message)
		}
		if err != nil {
			e.Logger.Error(err)
		}
	}
}

// serviceError maps repository errors onto HTTP responses.
func serviceError(c echo.Context, err error, what string) error {
	switch {
	case errors.Is(err, services.ErrNoPackingList):
		return jsonError(c, http.StatusNotFound, "Packing list not found for this trip")
	case errors.Is(err, services.ErrTripCompleted):
		return jsonError(c, http.StatusConflict, "Cannot change a completed trip")
	case errors.Is(err, services.ErrNotFound):
		return jsonError(c, http.StatusNotFound, fmt.Sprintf("%s not found", what))
	case errors.Is(err, services.ErrNoOwnedItems):
		return jsonError(c, http.StatusBadRequest, "none of the given items belong to you")
	default:
		logger.L().Error("request failed", "path", c.Path(), "error", err)
		sentry.CaptureException(err)
		return jsonError(c, http.StatusInternalServerError, "internal server error")
	}
}

func currentUser(c echo.Context) models.UserAccount {
	return c.Get("currentUser").(models.UserAccount)
}

func dbFrom(c echo.Context) *gorm.DB {
	return c.Get("__db").(*gorm.DB)
}

func taskClient(c echo.Context) tasks.Enqueuer {
	client, _ := c.Get("__asynqclient").(tasks.Enqueuer)
	return client
}

func pathID(c echo.Context, name string) (uint, error) {
	var id uint
	if err := echo.PathParamsBinder(c).Uint(name, &id).BindError(); err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

func queryInt(c echo.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return fallback
	}
	return value
}

func bindAndValidate(c echo.Context, in interface{}) error {
	if err := c.Bind(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(in)
}

func overdueAfter(cfg config.Config) time.Duration {
	if cfg.OverdueAfterDays <= 0 {
		return laundry.DefaultOverdueAfter
	}
	return time.Duration(cfg.OverdueAfterDays) * 24 * time.Hour
}

func GenerateUserToken(userPk string, hours uint64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * time.Duration(hours))),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	return token.SignedString(config.JWTSecret())
}

func GenerateRefreshToken(userPk string) (string, error) {
	refreshToken := jwt.New(jwt.SigningMethodHS256)
	rtClaims := refreshToken.Claims.(jwt.MapClaims)
	rtClaims["sub"] = userPk
	rtClaims["typ"] = "refresh"
	rtClaims["exp"] = time.Now().Add(time.Hour * 24 * 30 * 12).Unix()
	return refreshToken.SignedString(config.JWTSecret())
}
