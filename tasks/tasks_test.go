package tasks

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wewearapi/dbhelper"
	"wewearapi/laundry"
	"wewearapi/models"
	"wewearapi/services"
	"wewearapi/test"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enqueuerMock struct {
	tasks []*asynq.Task
}

func (m *enqueuerMock) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.tasks = append(m.tasks, task)
	return &asynq.TaskInfo{ID: "fake", Type: task.Type()}, nil
}

func TestEnqueueUrgencyAlertOnlyOnEscalation(t *testing.T) {
	client := &enqueuerMock{}
	err := EnqueueUrgencyAlert(client, 1, []laundry.Transition{
		{ItemID: 1, Previous: models.UrgencyNone, Current: models.UrgencyLow},
		{ItemID: 2, Previous: models.UrgencyHigh, Current: models.UrgencyHigh},
	})
	require.NoError(t, err)
	assert.Empty(t, client.tasks)

	err = EnqueueUrgencyAlert(client, 1, []laundry.Transition{
		{ItemID: 3, Previous: models.UrgencyMedium, Current: models.UrgencyUrgent},
	})
	require.NoError(t, err)
	require.Len(t, client.tasks, 1)
	assert.Equal(t, TypeUrgencyAlert, client.tasks[0].Type())
	assert.JSONEq(t, `{"user_id":1,"item_ids":[3]}`, string(client.tasks[0].Payload()))
}

func TestUrgencyAlertCreatesNotificationAndPush(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	ctx := context.Background()

	user := test.FakeUser(db, "")
	chatID := int64(55)
	db.Model(user).Update("telegram_chat_id", chatID)
	tee := test.FakeItem(db, user, "White Tee", "t-shirt", "white", "casual")
	db.Model(tee).Updates(map[string]interface{}{"wash_urgency": models.UrgencyUrgent, "wear_count_since_wash": 2})

	push := &test.PushNotifierMock{}
	tg := &test.TelegramSenderMock{}
	task, err := NewUrgencyAlertTask(user.ID, []uint{tee.ID})
	require.NoError(t, err)
	require.NoError(t, HandleUrgencyAlertTask(ctx, task, db, Notifiers{Push: push, Telegram: tg}))

	notifications, err := services.ListNotifications(ctx, db, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, services.NotificationLaundryUrgent, notifications[0].Kind)
	assert.Contains(t, notifications[0].Message, "White Tee")
	assert.Equal(t, 1, push.Count())
	require.Len(t, tg.Messages, 1)
	assert.Equal(t, chatID, tg.Messages[0].ChatID)
}

func TestUrgencyAlertSkipsWashedItems(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()

	user := test.FakeUser(db, "")
	tee := test.FakeItem(db, user, "White Tee", "t-shirt", "white", "casual")
	push := &test.PushNotifierMock{}
	task, _ := NewUrgencyAlertTask(user.ID, []uint{tee.ID})
	require.NoError(t, HandleUrgencyAlertTask(context.Background(), task, db, Notifiers{Push: push}))
	assert.Equal(t, 0, push.Count())
}

func TestLaundryReminderOncePerDay(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	ctx := context.Background()
	now := time.Now()

	user := test.FakeUser(db, "")
	muted := test.FakeUser(db, "muted@example.com")
	db.Model(muted).Update("receive_notifications", false)
	for _, owner := range []*models.UserAccount{user, muted} {
		item := test.FakeItem(db, owner, "Jeans", "jeans", "blue", "casual")
		db.Model(item).Update("wash_urgency", models.UrgencyHigh)
	}

	push := &test.PushNotifierMock{}
	notifiers := Notifiers{Push: push}
	require.NoError(t, HandleLaundryReminderTask(ctx, NewLaundryReminderTask(), db, notifiers, now))
	require.NoError(t, HandleLaundryReminderTask(ctx, NewLaundryReminderTask(), db, notifiers, now))

	assert.Equal(t, 1, push.Count())
	assert.Equal(t, user.ID, push.Calls[0].UserID)
	unread, err := services.CountUnread(ctx, db, muted.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)
}

func TestOutfitReminderSkipsUsersWhoSavedToday(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	ctx := context.Background()
	now := time.Now()

	dressed := test.FakeUser(db, "dressed@example.com")
	idle := test.FakeUser(db, "idle@example.com")
	empty := test.FakeUser(db, "empty@example.com")
	wardrobe := test.FakeWardrobe(db, dressed)
	test.FakeWardrobe(db, idle)
	_, err := services.NewWardrobeRepository(db).SaveOutfit(ctx, &models.Outfit{OwnerID: dressed.ID},
		[]uint{wardrobe[0].ID}, laundry.DefaultThresholds(), now)
	require.NoError(t, err)

	push := &test.PushNotifierMock{}
	require.NoError(t, HandleOutfitReminderTask(ctx, NewOutfitReminderTask(), db, Notifiers{Push: push}, now))
	require.Equal(t, 1, push.Count())
	assert.Equal(t, idle.ID, push.Calls[0].UserID)

	unread, err := services.CountUnread(ctx, db, empty.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)
}

func TestProcessImageTask(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()

	src := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			src.Set(x, y, color.NRGBA{R: 20, G: 40, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	user := test.FakeUser(db, "")
	item := test.FakeItem(db, user, "Shirt", "shirt", "blue", "casual")
	db.Model(item).Updates(map[string]interface{}{"image_url": "items/1/abc.jpg", "image_status": models.ImageStatusUploaded})

	task, err := NewProcessImageTask(user.ID, item.ID)
	require.NoError(t, err)
	err = HandleProcessImageTask(context.Background(), task, db, &test.AWSProviderMock{MockUrl: server.URL}, "bucket")
	require.NoError(t, err)

	stored, err := services.NewWardrobeRepository(db).GetItem(context.Background(), user.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ImageStatusProcessed, stored.ImageStatus)
	require.NotNil(t, stored.ImageURL)
	assert.Equal(t, "items/1/abc-processed.png", *stored.ImageURL)
}

func TestProcessImageTaskMissingItemSkipsRetry(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()

	task, _ := NewProcessImageTask(1, 424242)
	err := HandleProcessImageTask(context.Background(), task, db, &test.AWSProviderMock{}, "bucket")
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
