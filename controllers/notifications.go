package controllers

import (
	"net/http"

	"wewearapi/services"

	"github.com/labstack/echo/v4"
)

const notificationListLimit = 50

type NotificationController struct{}

func (m *NotificationController) NotificationRoutes(g *echo.Group) {
	g.GET("", func(c echo.Context) error {
		user := currentUser(c)
		ctx := c.Request().Context()
		db := dbFrom(c)
		notifications, err := services.ListNotifications(ctx, db, user.ID, notificationListLimit)
		if err != nil {
			return serviceError(c, err, "notifications")
		}
		unread, err := services.CountUnread(ctx, db, user.ID)
		if err != nil {
			return serviceError(c, err, "notifications")
		}
		return c.JSON(http.StatusOK, echo.Map{
			"notifications": notifications,
			"unread_count":  unread,
		})
	})

	g.POST("/:id/read", func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		user := currentUser(c)
		if err := services.MarkNotificationRead(c.Request().Context(), dbFrom(c), user.ID, id); err != nil {
			return serviceError(c, err, "notification")
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read"})
	})

	g.POST("/read-all", func(c echo.Context) error {
		user := currentUser(c)
		updated, err := services.MarkAllNotificationsRead(c.Request().Context(), dbFrom(c), user.ID)
		if err != nil {
			return serviceError(c, err, "notifications")
		}
		return c.JSON(http.StatusOK, echo.Map{"updated_count": updated})
	})
}
