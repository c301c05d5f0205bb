package controllers

import (
	"context"
	"net/http"

	"wewearapi/config"
	"wewearapi/laundry"
	"wewearapi/logger"
	"wewearapi/models"
	"wewearapi/outfit"
	"wewearapi/packing"
	"wewearapi/services"
	"wewearapi/tasks"

	"github.com/go-playground/validator"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("platform", models.ValidatePlatform)
	v.RegisterValidation("season", models.ValidateSeason)
	v.RegisterValidation("laundrystate", models.ValidateLaundryState)
	return &CustomValidator{validator: v}
}

// ServerDeps are the collaborators the HTTP layer talks to.
type ServerDeps struct {
	Google     services.GoogleServiceProvider
	AWS        services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
	Weather    services.WeatherProvider
	Engine     *outfit.Engine
	Packing    *packing.Planner
	Tasks      tasks.Enqueuer
	Thresholds laundry.Thresholds
	Config     config.Config
}

func SetupServer(db *gorm.DB, deps ServerDeps) *echo.Echo {
	if deps.AWS != nil {
		if err := deps.AWS.InitPresignClient(context.Background()); err != nil {
			logger.L().Error("failed to initialize storage presign client", "error", err)
		}
	}
	if deps.Engine == nil {
		deps.Engine = outfit.NewEngine()
	}
	if deps.Packing == nil {
		deps.Packing = packing.NewPlanner()
	}
	if deps.Thresholds.Defaults == nil {
		deps.Thresholds = laundry.DefaultThresholds()
	}

	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = errorHandler(e)
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			c.Set("__asynqclient", deps.Tasks)
			return next(c)
		}
	})
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	jwtMiddleware := echojwt.JWT(config.JWTSecret())

	authController := AuthController{Google: deps.Google, Thresholds: deps.Thresholds}
	authController.AuthRoutes(api.Group("/auth"), jwtMiddleware)

	protected := api.Group("", jwtMiddleware, UserMiddleware)

	items := ItemController{
		AWSService: deps.AWS,
		URLCache:   deps.URLCache,
		Thresholds: deps.Thresholds,
		BucketName: deps.Config.R2BucketName,
	}
	items.ItemRoutes(protected.Group("/items"))

	outfits := OutfitController{
		Engine:      deps.Engine,
		Weather:     deps.Weather,
		Items:       items,
		Thresholds:  deps.Thresholds,
		HistoryDays: deps.Config.HistoryWindowDays,
	}
	outfits.OutfitRoutes(protected.Group("/outfits"))

	laundryController := LaundryController{
		Items:        items,
		Thresholds:   deps.Thresholds,
		OverdueAfter: overdueAfter(deps.Config),
	}
	laundryController.LaundryRoutes(protected.Group("/laundry"))

	styleController := StyleController{Palette: deps.Engine.Palette()}
	styleController.StyleRoutes(protected.Group("/style"))

	tripController := TripController{
		Planner:    deps.Packing,
		Weather:    deps.Weather,
		Thresholds: deps.Thresholds,
	}
	tripController.TripRoutes(protected.Group("/trips"))
	tripController.PackingItemRoutes(protected.Group("/packing-list-items"))

	notificationController := NotificationController{}
	notificationController.NotificationRoutes(protected.Group("/notifications"))

	return e
}
