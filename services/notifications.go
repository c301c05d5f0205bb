package services

import (
	"context"
	"fmt"
	"time"

	"wewearapi/models"

	"gorm.io/gorm"
)

const (
	NotificationLaundryUrgent   = "laundry_urgent"
	NotificationLaundryReminder = "laundry_reminder"
	NotificationOutfitReminder  = "outfit_reminder"
)

func CreateNotification(ctx context.Context, db *gorm.DB, userID uint, kind, message, link string) (models.Notification, error) {
	n := models.Notification{
		UserAccountID: userID,
		Kind:          kind,
		Message:       message,
		Link:          link,
	}
	err := db.WithContext(ctx).Create(&n).Error
	return n, err
}

// StartOfDay is midnight of t in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NotifiedToday reports whether a notification of kind was already created on now's calendar day.
func NotifiedToday(ctx context.Context, db *gorm.DB, userID uint, kind string, now time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_account_id = ? AND kind = ? AND created_at >= ?", userID, kind, StartOfDay(now)).
		Count(&count).Error
	return count > 0, err
}

// ListNotifications returns unread first, newest first within each group.
func ListNotifications(ctx context.Context, db *gorm.DB, userID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	q := db.WithContext(ctx).Where("user_account_id = ?", userID).Order("is_read asc, created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&notifications).Error
	return notifications, err
}

func CountUnread(ctx context.Context, db *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_account_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func MarkNotificationRead(ctx context.Context, db *gorm.DB, userID, notificationID uint) error {
	result := db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_account_id = ? AND id = ?", userID, notificationID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification %d: %w", notificationID, ErrNotFound)
	}
	return nil
}

func MarkAllNotificationsRead(ctx context.Context, db *gorm.DB, userID uint) (int64, error) {
	result := db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_account_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
