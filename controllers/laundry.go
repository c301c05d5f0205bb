package controllers

import (
	"net/http"
	"time"

	"wewearapi/laundry"
	"wewearapi/logger"
	"wewearapi/models"
	"wewearapi/services"
	"wewearapi/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

type LaundryController struct {
	Items        ItemController
	Thresholds   laundry.Thresholds
	OverdueAfter time.Duration
}

type alertsOut struct {
	Urgent     []models.ClothingItemOut `json:"urgent"`
	High       []models.ClothingItemOut `json:"high"`
	Medium     []models.ClothingItemOut `json:"medium"`
	Overdue    []models.ClothingItemOut `json:"overdue"`
	CleanCount int                      `json:"clean_count"`
	DirtyCount int                      `json:"dirty_count"`
	Total      int                      `json:"total"`
}

func (m *LaundryController) LaundryRoutes(g *echo.Group) {
	g.GET("/alerts", func(c echo.Context) error {
		user := currentUser(c)
		ctx := c.Request().Context()
		items, _, err := services.NewWardrobeRepository(dbFrom(c)).RefreshUrgency(ctx, user.ID, laundry.ForUser(m.Thresholds, user))
		if err != nil {
			return serviceError(c, err, "items")
		}
		alerts := laundry.BuildAlerts(items, time.Now(), m.OverdueAfter)
		return c.JSON(http.StatusOK, alertsOut{
			Urgent:     m.Items.outList(ctx, alerts.Urgent),
			High:       m.Items.outList(ctx, alerts.High),
			Medium:     m.Items.outList(ctx, alerts.Medium),
			Overdue:    m.Items.outList(ctx, alerts.Overdue),
			CleanCount: alerts.CleanCount,
			DirtyCount: alerts.DirtyCount,
			Total:      alerts.Total,
		})
	})

	g.GET("/wash-loads", func(c echo.Context) error {
		user := currentUser(c)
		repo := services.NewWardrobeRepository(dbFrom(c))
		ctx := c.Request().Context()
		if _, _, err := repo.RefreshUrgency(ctx, user.ID, laundry.ForUser(m.Thresholds, user)); err != nil {
			return serviceError(c, err, "items")
		}
		items, err := repo.ListItemsNeedingWash(ctx, user.ID)
		if err != nil {
			return serviceError(c, err, "items")
		}
		return c.JSON(http.StatusOK, echo.Map{
			"loads":       laundry.SuggestWashLoads(items),
			"total_items": len(items),
		})
	})

	g.GET("/health", func(c echo.Context) error {
		user := currentUser(c)
		items, _, err := services.NewWardrobeRepository(dbFrom(c)).RefreshUrgency(c.Request().Context(), user.ID, laundry.ForUser(m.Thresholds, user))
		if err != nil {
			return serviceError(c, err, "items")
		}
		return c.JSON(http.StatusOK, laundry.ComputeHealthScore(items, time.Now(), m.OverdueAfter))
	})

	g.POST("/mark-washed", func(c echo.Context) error {
		in := new(models.LaundryBatchIn)
		if err := bindAndValidate(c, in); err != nil {
			return err
		}
		user := currentUser(c)
		ctx := c.Request().Context()
		items, err := services.NewWardrobeRepository(dbFrom(c)).MarkWashed(ctx, user.ID, in.ItemIDs, time.Now())
		if err != nil {
			return serviceError(c, err, "items")
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message":       "Items marked as washed",
			"updated_count": len(items),
			"items":         m.Items.outList(ctx, items),
		})
	})

	g.POST("/mark-dirty", func(c echo.Context) error {
		in := new(models.LaundryBatchIn)
		if err := bindAndValidate(c, in); err != nil {
			return err
		}
		user := currentUser(c)
		ctx := c.Request().Context()
		transitions, err := services.NewWardrobeRepository(dbFrom(c)).MarkDirty(ctx, user.ID, in.ItemIDs, laundry.ForUser(m.Thresholds, user), time.Now())
		if err != nil {
			return serviceError(c, err, "items")
		}
		if err := tasks.EnqueueUrgencyAlert(taskClient(c), user.ID, transitions); err != nil {
			logger.L().Error("failed to enqueue urgency alert", "user_id", user.ID, "error", err)
			sentry.CaptureException(err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message":       "Items marked as dirty",
			"updated_count": len(transitions),
			"transitions":   transitions,
		})
	})
}
