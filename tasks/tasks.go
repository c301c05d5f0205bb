package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"wewearapi/laundry"
	"wewearapi/logger"
	"wewearapi/models"
	"wewearapi/services"
	"wewearapi/telegram"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

const (
	TypeUrgencyAlert    = "laundry:urgency_alert"
	TypeLaundryReminder = "laundry:daily_reminder"
	TypeOutfitReminder  = "outfit:daily_reminder"
	TypeProcessImage    = "wardrobe:process_image"

	QueueNotifications = "notifications"
	QueueImages        = "images"
)

// Enqueuer is the part of *asynq.Client the API needs.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type UrgencyAlertPayload struct {
	UserID  uint   `json:"user_id"`
	ItemIDs []uint `json:"item_ids"`
}

type ProcessImagePayload struct {
	UserID uint `json:"user_id"`
	ItemID uint `json:"item_id"`
}

func NewClient(brokerAddress string) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: brokerAddress})
}

func NewUrgencyAlertTask(userID uint, itemIDs []uint) (*asynq.Task, error) {
	payload, err := json.Marshal(UrgencyAlertPayload{UserID: userID, ItemIDs: itemIDs})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeUrgencyAlert, payload), nil
}

func NewProcessImageTask(userID, itemID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(ProcessImagePayload{UserID: userID, ItemID: itemID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeProcessImage, payload), nil
}

func NewLaundryReminderTask() *asynq.Task {
	return asynq.NewTask(TypeLaundryReminder, []byte{})
}

func NewOutfitReminderTask() *asynq.Task {
	return asynq.NewTask(TypeOutfitReminder, []byte{})
}

// EnqueueUrgencyAlert schedules an alert for every transition that crossed into high or urgent.
// Nothing is enqueued when no item escalated.
func EnqueueUrgencyAlert(client Enqueuer, userID uint, transitions []laundry.Transition) error {
	if client == nil {
		return nil
	}
	var escalated []uint
	for _, tr := range transitions {
		if tr.Escalated() {
			escalated = append(escalated, tr.ItemID)
		}
	}
	if len(escalated) == 0 {
		return nil
	}
	task, err := NewUrgencyAlertTask(userID, escalated)
	if err != nil {
		return err
	}
	_, err = client.Enqueue(task, asynq.MaxRetry(3), asynq.Queue(QueueNotifications))
	return err
}

// Notifiers bundles the outbound channels. Either may be nil.
type Notifiers struct {
	Push     services.PushNotifier
	Telegram telegram.Sender
}

// deliver stores the in-app notification and fans out to push and telegram.
// Delivery failures are reported but never fail the task.
func (n Notifiers) deliver(ctx context.Context, db *gorm.DB, user models.UserAccount, kind, title, message, link string) error {
	if _, err := services.CreateNotification(ctx, db, user.ID, kind, message, link); err != nil {
		return err
	}
	if !user.ReceiveNotifications {
		return nil
	}
	if n.Push != nil {
		if err := n.Push.Notify(ctx, user.ID, title, message, map[string]string{"kind": kind, "link": link}); err != nil {
			logger.L().Warn("push delivery failed", "user_id", user.ID, "kind", kind, "error", err)
			sentry.CaptureException(err)
		}
	}
	if n.Telegram != nil && user.TelegramChatID != nil {
		text := fmt.Sprintf("*%s*\n%s", telegram.EscapeMessage(title), telegram.EscapeMessage(message))
		if err := telegram.SendWithTimeout(ctx, n.Telegram, user, text); err != nil {
			logger.L().Warn("telegram delivery failed", "user_id", user.ID, "kind", kind, "error", err)
		}
	}
	return nil
}

func itemNames(items []models.ClothingItem) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return strings.Join(names, ", ")
}

func HandleUrgencyAlertTask(ctx context.Context, t *asynq.Task, db *gorm.DB, notifiers Notifiers) error {
	var payload UrgencyAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("urgency alert payload: %v: %w", err, asynq.SkipRetry)
	}
	var user models.UserAccount
	if err := db.WithContext(ctx).First(&user, payload.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("[User: %v] not found: %w", payload.UserID, asynq.SkipRetry)
		}
		return err
	}
	items, err := services.NewWardrobeRepository(db).ItemsByIDs(ctx, user.ID, payload.ItemIDs)
	if err != nil {
		return err
	}
	var pressing []models.ClothingItem
	for _, item := range items {
		// the item may have been washed since the alert was queued
		if item.WashUrgency.Rank() >= models.UrgencyHigh.Rank() {
			pressing = append(pressing, item)
		}
	}
	if len(pressing) == 0 {
		return nil
	}
	message := fmt.Sprintf("Time to wash: %s", itemNames(pressing))
	logger.L().Info("urgency alert", "user_id", user.ID, "items", len(pressing))
	return notifiers.deliver(ctx, db, user, services.NotificationLaundryUrgent, "Laundry alert", message, "/laundry")
}

func receivingUsers(ctx context.Context, db *gorm.DB) ([]models.UserAccount, error) {
	var users []models.UserAccount
	err := db.WithContext(ctx).
		Where("receive_notifications = ? AND banned = ?", true, false).
		Order("id").Find(&users).Error
	return users, err
}

// HandleLaundryReminderTask reminds every user with high or urgent items, once per day.
func HandleLaundryReminderTask(ctx context.Context, t *asynq.Task, db *gorm.DB, notifiers Notifiers, now time.Time) error {
	users, err := receivingUsers(ctx, db)
	if err != nil {
		return err
	}
	sent := 0
	for _, user := range users {
		var count int64
		err := db.WithContext(ctx).Model(&models.ClothingItem{}).
			Where("owner_id = ? AND wash_urgency IN ?", user.ID, []models.WashUrgency{models.UrgencyHigh, models.UrgencyUrgent}).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			continue
		}
		already, err := services.NotifiedToday(ctx, db, user.ID, services.NotificationLaundryReminder, now)
		if err != nil {
			return err
		}
		if already {
			continue
		}
		message := fmt.Sprintf("%d item(s) need washing soon. Plan a laundry day!", count)
		if err := notifiers.deliver(ctx, db, user, services.NotificationLaundryReminder, "Laundry reminder", message, "/laundry"); err != nil {
			return err
		}
		sent++
	}
	logger.L().Info("laundry reminders sent", "count", sent)
	return nil
}

// HandleOutfitReminderTask nudges users who have not saved an outfit today, once per day.
func HandleOutfitReminderTask(ctx context.Context, t *asynq.Task, db *gorm.DB, notifiers Notifiers, now time.Time) error {
	users, err := receivingUsers(ctx, db)
	if err != nil {
		return err
	}
	repo := services.NewWardrobeRepository(db)
	sent := 0
	for _, user := range users {
		items, err := repo.CountItems(ctx, user.ID)
		if err != nil {
			return err
		}
		if items == 0 {
			continue
		}
		today, err := repo.RecentOutfits(ctx, user.ID, services.StartOfDay(now))
		if err != nil {
			return err
		}
		if len(today) > 0 {
			continue
		}
		already, err := services.NotifiedToday(ctx, db, user.ID, services.NotificationOutfitReminder, now)
		if err != nil {
			return err
		}
		if already {
			continue
		}
		if err := notifiers.deliver(ctx, db, user, services.NotificationOutfitReminder,
			"What are you wearing today?", "Get a fresh outfit suggestion for today's weather.", "/outfits/suggest"); err != nil {
			return err
		}
		sent++
	}
	logger.L().Info("outfit reminders sent", "count", sent)
	return nil
}

// HandleProcessImageTask downloads the uploaded photo, normalizes it and stores the result next to it.
func HandleProcessImageTask(ctx context.Context, t *asynq.Task, db *gorm.DB, awsService services.AWSServiceProvider, bucketName string) error {
	var payload ProcessImagePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("process image payload: %v: %w", err, asynq.SkipRetry)
	}
	repo := services.NewWardrobeRepository(db)
	item, err := repo.GetItem(ctx, payload.UserID, payload.ItemID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return fmt.Errorf("[Item: %v] %v: %w", payload.ItemID, err, asynq.SkipRetry)
		}
		return err
	}
	if item.ImageURL == nil {
		return fmt.Errorf("[Item: %v] has no image: %w", item.ID, asynq.SkipRetry)
	}

	fail := func(err error) error {
		sentry.CaptureException(fmt.Errorf("[Item: %v] image processing: %w", item.ID, err))
		logger.L().Error("image processing failed", "item_id", item.ID, "error", err)
		db.WithContext(ctx).Model(&models.ClothingItem{}).Where("id = ?", item.ID).Update("image_status", models.ImageStatusFailed)
		return err
	}

	readURL, err := awsService.GetPresignedR2FileReadURL(ctx, bucketName, *item.ImageURL)
	if err != nil {
		return fail(err)
	}
	raw, err := services.ReadFileFromUrl(ctx, readURL)
	if err != nil {
		return fail(err)
	}
	processed, err := services.ProcessItemImage(raw, services.DefaultImageOptions)
	if err != nil {
		return fail(err)
	}
	processedKey := services.ProcessedImageKey(*item.ImageURL)
	uploadURL, err := awsService.PresignLink(ctx, bucketName, processedKey)
	if err != nil {
		return fail(err)
	}
	if _, err := awsService.UploadToPresignedURL(ctx, uploadURL, processed); err != nil {
		return fail(err)
	}
	err = db.WithContext(ctx).Model(&models.ClothingItem{}).Where("id = ?", item.ID).
		Updates(map[string]interface{}{"image_url": processedKey, "image_status": models.ImageStatusProcessed}).Error
	if err != nil {
		return fail(err)
	}
	logger.L().Info("item image processed", "item_id", item.ID, "key", processedKey)
	return nil
}
