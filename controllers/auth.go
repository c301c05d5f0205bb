package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"wewearapi/config"
	"wewearapi/laundry"
	"wewearapi/logger"
	"wewearapi/models"
	"wewearapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const accessTokenHours = 72

type AuthController struct {
	Google     services.GoogleServiceProvider
	Thresholds laundry.Thresholds
}

func signInResponse(c echo.Context, user models.UserAccount, isNew bool) error {
	accessToken, err := GenerateUserToken(fmt.Sprint(user.ID), accessTokenHours)
	if err != nil {
		return err
	}
	refreshToken, err := GenerateRefreshToken(fmt.Sprint(user.ID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.GoogleSignInOut{
		Id:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		New:          isNew,
		Avatar:       user.AvatarURL,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (m *AuthController) AuthRoutes(g *echo.Group, jwtMiddleware echo.MiddlewareFunc) {
	g.POST("/google", func(c echo.Context) error {
		creds := new(models.GoogleAuthSignIn)
		if err := bindAndValidate(c, creds); err != nil {
			return err
		}
		payload, err := m.Google.ValidateIdToken(c.Request().Context(), creds.IdToken, config.GetEnv("GOOGLE_CLIENT_ID", ""))
		if err != nil {
			logger.L().Warn("google id token rejected", "error", err)
			return jsonError(c, http.StatusForbidden, "Couldn't verify credentials")
		}
		googleID, _ := payload.Claims["sub"].(string)
		email, _ := payload.Claims["email"].(string)
		if googleID == "" || email == "" {
			sentry.CaptureMessage(fmt.Sprintf("Error when fetching user data %v", payload.Claims))
			return jsonError(c, http.StatusForbidden, "Couldn't verify credentials")
		}
		picture, _ := payload.Claims["picture"].(string)
		name, _ := payload.Claims["name"].(string)
		if creds.Name != "" {
			name = creds.Name
		}

		db := dbFrom(c)
		var user models.UserAccount
		r := db.WithContext(c.Request().Context()).Where("google_id = ?", googleID).Limit(1).Find(&user)
		if r.Error != nil {
			return r.Error
		}
		if r.RowsAffected > 0 {
			if user.Banned {
				return echo.ErrForbidden
			}
			user.LastIp = c.RealIP()
			user.Platform = models.ScanPlatform(creds.Platform)
			db.Save(&user)
			return signInResponse(c, user, false)
		}

		user = models.UserAccount{
			Name:                 name,
			Email:                email,
			GoogleID:             googleID,
			Platform:             models.ScanPlatform(creds.Platform),
			AvatarURL:            picture,
			LastIp:               c.RealIP(),
			Status:               "FINISHED_AUTH",
			ReceiveNotifications: true,
			WashThresholds:       datatypes.NewJSONType(map[string]int{}),
		}
		if err := db.WithContext(c.Request().Context()).Create(&user).Error; err != nil {
			return err
		}
		logger.L().Info("user signed up", "user_id", user.ID, "platform", creds.Platform)
		return signInResponse(c, user, true)
	})

	g.POST("/refresh-token", func(c echo.Context) error {
		type tokenReqBody struct {
			RefreshToken string `json:"refresh_token"`
		}
		tokenReq := new(tokenReqBody)
		if err := c.Bind(tokenReq); err != nil || tokenReq.RefreshToken == "" {
			return echo.ErrBadRequest
		}
		token, err := jwt.Parse(tokenReq.RefreshToken, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return config.JWTSecret(), nil
		})
		if err != nil || !token.Valid {
			return echo.ErrUnauthorized
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return echo.ErrUnauthorized
		}
		if typ, _ := claims["typ"].(string); typ != "refresh" {
			return echo.ErrUnauthorized
		}
		sub, _ := claims["sub"].(string)
		userID, err := strconv.Atoi(sub)
		if err != nil || userID < 1 {
			return echo.ErrBadRequest
		}
		var user models.UserAccount
		result := dbFrom(c).WithContext(c.Request().Context()).First(&user, userID)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return echo.ErrForbidden
		}
		if result.Error != nil {
			return result.Error
		}
		if user.Banned {
			return echo.ErrUnauthorized
		}
		accessToken, err := GenerateUserToken(sub, accessTokenHours)
		if err != nil {
			return err
		}
		refreshToken, err := GenerateRefreshToken(sub)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		})
	})

	g.GET("/me", func(c echo.Context) error {
		user := currentUser(c)
		ctx := c.Request().Context()
		repo := services.NewWardrobeRepository(dbFrom(c))
		itemCount, err := repo.CountItems(ctx, user.ID)
		if err != nil {
			return err
		}
		outfitCount, err := repo.CountOutfits(ctx, user.ID)
		if err != nil {
			return err
		}
		out := userMeOut(user)
		out.ItemCount = itemCount
		out.OutfitCount = outfitCount
		return c.JSON(http.StatusOK, out)
	}, jwtMiddleware, UserMiddleware)

	g.POST("/settings", func(c echo.Context) error {
		user := currentUser(c)
		settingsIn := new(models.UserSettingsIn)
		if err := bindAndValidate(c, settingsIn); err != nil {
			return err
		}
		if settingsIn.Location != nil {
			user.Location = *settingsIn.Location
		}
		if settingsIn.ReceiveNotifications != nil {
			user.ReceiveNotifications = *settingsIn.ReceiveNotifications
		}
		if settingsIn.TelegramChatID != nil {
			if *settingsIn.TelegramChatID == 0 {
				user.TelegramChatID = nil
			} else {
				user.TelegramChatID = settingsIn.TelegramChatID
			}
		}
		thresholdsChanged := settingsIn.WashThresholds != nil
		if thresholdsChanged {
			user.WashThresholds = datatypes.NewJSONType(settingsIn.WashThresholds)
		}
		ctx := c.Request().Context()
		db := dbFrom(c)
		if err := db.WithContext(ctx).Save(&user).Error; err != nil {
			return err
		}
		refreshed := 0
		if thresholdsChanged {
			_, changed, err := services.NewWardrobeRepository(db).RefreshUrgency(ctx, user.ID, laundry.ForUser(m.Thresholds, user))
			if err != nil {
				return serviceError(c, err, "items")
			}
			refreshed = changed
		}
		return c.JSON(http.StatusOK, echo.Map{
			"user":            userMeOut(user),
			"items_refreshed": refreshed,
		})
	}, jwtMiddleware, UserMiddleware)

	g.POST("/register-push", func(c echo.Context) error {
		user := currentUser(c)
		tokenRequest := new(models.UserPushIn)
		if err := bindAndValidate(c, tokenRequest); err != nil {
			return err
		}
		pushData := models.UserPushToken{
			Platform:      models.ScanPlatform(tokenRequest.Platform),
			Token:         tokenRequest.Token,
			UserAccountID: user.ID,
			Active:        true,
		}
		// the same device may be registered for several accounts
		result := dbFrom(c).WithContext(c.Request().Context()).
			Where("token = ? and user_account_id = ?", tokenRequest.Token, user.ID).
			FirstOrCreate(&pushData)
		if result.Error != nil {
			return result.Error
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message": "registered",
			"push_id": pushData.ID,
		})
	}, jwtMiddleware, UserMiddleware)

	g.POST("/delete-push", func(c echo.Context) error {
		user := currentUser(c)
		tokenRequest := new(models.UserPushIn)
		if err := bindAndValidate(c, tokenRequest); err != nil {
			return err
		}
		result := dbFrom(c).WithContext(c.Request().Context()).
			Where("token = ? and user_account_id = ? and platform = ?", tokenRequest.Token, user.ID, tokenRequest.Platform).
			Delete(&models.UserPushToken{})
		if result.Error != nil {
			return result.Error
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message": "deleted",
			"deleted": result.RowsAffected > 0,
		})
	}, jwtMiddleware, UserMiddleware)
}

func userMeOut(user models.UserAccount) models.UserMeOut {
	return models.UserMeOut{
		Id:                   user.ID,
		Name:                 user.Name,
		Email:                user.Email,
		AvatarURL:            user.AvatarURL,
		Location:             user.Location,
		ReceiveNotifications: user.ReceiveNotifications,
		TelegramLinked:       user.TelegramChatID != nil,
		WashThresholds:       user.CustomThresholds(),
	}
}
