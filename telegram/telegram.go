package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wewearapi/laundry"
	"wewearapi/logger"
	"wewearapi/models"
	"wewearapi/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"
)

var ErrNotLinked = errors.New("telegram chat is not linked")

func EscapeMessage(message string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return r.Replace(message)
}

// Sender delivers plain text to a chat.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

type BotSender struct {
	Bot *tgbotapi.BotAPI
}

func NewBotSender(token string) (*BotSender, error) {
	if token == "" {
		return nil, errors.New("TG_TOKEN is not set")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	logger.L().Info("telegram bot authorized", "username", bot.Self.UserName)
	return &BotSender{Bot: bot}, nil
}

func (s *BotSender) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := s.Bot.Send(msg)
	return err
}

// NotifyUser sends text to the user's linked chat, if any.
func NotifyUser(ctx context.Context, sender Sender, user models.UserAccount, text string) error {
	if sender == nil || user.TelegramChatID == nil {
		return ErrNotLinked
	}
	return sender.SendText(ctx, *user.TelegramChatID, text)
}

// LaundrySummary renders the items that need attention for a chat reply.
func LaundrySummary(items []models.ClothingItem, th laundry.Thresholds) string {
	var b strings.Builder
	listed := 0
	for _, item := range items {
		if item.WashUrgency.Rank() < models.UrgencyMedium.Rank() {
			continue
		}
		rec := laundry.Recommend(item, th)
		b.WriteString(fmt.Sprintf("• *%s* (%s): %s\n", EscapeMessage(item.Name), item.WashUrgency, EscapeMessage(rec.Message)))
		listed++
	}
	if listed == 0 {
		return "Everything is fresh. Nothing needs washing right now ✅"
	}
	return fmt.Sprintf("%d item(s) need attention:\n%s", listed, b.String())
}

const startText = "Hi! Your chat id is `%d`. Paste it into the WeWear app settings to receive laundry reminders here.\n/laundry shows what needs washing."

// RunBot answers /start with the chat id and /laundry with the linked user's wash list.
// It blocks until ctx is cancelled.
func RunBot(ctx context.Context, sender *BotSender, db *gorm.DB, base laundry.Thresholds) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := sender.Bot.GetUpdatesChan(u)
	defer sender.Bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			reply := handleCommand(ctx, db, base, update.Message.Chat.ID, update.Message.Command())
			if reply == "" {
				continue
			}
			if err := sender.SendText(ctx, update.Message.Chat.ID, reply); err != nil {
				logger.L().Warn("telegram reply failed", "chat_id", update.Message.Chat.ID, "error", err)
			}
		}
	}
}

func handleCommand(ctx context.Context, db *gorm.DB, base laundry.Thresholds, chatID int64, command string) string {
	switch command {
	case "start":
		return fmt.Sprintf(startText, chatID)
	case "laundry":
		var user models.UserAccount
		if err := db.WithContext(ctx).Where("telegram_chat_id = ?", chatID).First(&user).Error; err != nil {
			return "This chat is not linked to a WeWear account yet. Send /start to get your chat id."
		}
		repo := services.NewWardrobeRepository(db)
		th := laundry.ForUser(base, user)
		items, _, err := repo.RefreshUrgency(ctx, user.ID, th)
		if err != nil {
			logger.L().Error("telegram laundry lookup failed", "user_id", user.ID, "error", err)
			return "Something went wrong, try again later."
		}
		return LaundrySummary(items, th)
	default:
		return ""
	}
}

// sendTimeout bounds a single outbound notification.
const sendTimeout = 10 * time.Second

func SendWithTimeout(parent context.Context, sender Sender, user models.UserAccount, text string) error {
	ctx, cancel := context.WithTimeout(parent, sendTimeout)
	defer cancel()
	return NotifyUser(ctx, sender, user, text)
}
