package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"wewearapi/dbhelper"
	"wewearapi/laundry"
	"wewearapi/models"
	"wewearapi/services"
	"wewearapi/tasks"
	"wewearapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaundryAlerts(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")
	wardrobe := test.FakeWardrobe(db, user)
	longAgo := time.Now().AddDate(0, 0, -45)
	// stale counters on purpose: the endpoint refreshes urgency before grouping
	db.Model(wardrobe[0]).Updates(map[string]interface{}{"wear_count": 2, "wear_count_since_wash": 2})
	db.Model(wardrobe[1]).Updates(map[string]interface{}{"wear_count": 4, "wear_count_since_wash": 4})
	db.Model(wardrobe[3]).Updates(map[string]interface{}{"wear_count": 5, "wear_count_since_wash": 5, "last_worn": longAgo})

	rec := serve(e, test.NewJSONAuthRequest(http.MethodGet, "/api/laundry/alerts", test.UserPk(user), nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	urgent := resp["urgent"].([]interface{})
	require.Len(t, urgent, 1)
	assert.Equal(t, "White Tee", urgent[0].(map[string]interface{})["name"])
	high := resp["high"].([]interface{})
	require.Len(t, high, 1)
	assert.Equal(t, "Blue Jeans", high[0].(map[string]interface{})["name"])
	medium := resp["medium"].([]interface{})
	require.Len(t, medium, 1)
	assert.Equal(t, "Denim Jacket", medium[0].(map[string]interface{})["name"])
	assert.Len(t, resp["overdue"], 1)
	assert.EqualValues(t, 5, resp["total"])
	assert.EqualValues(t, 4, resp["clean_count"])
	assert.EqualValues(t, 1, resp["dirty_count"])
}

func TestWashLoads(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")
	wardrobe := test.FakeWardrobe(db, user)
	silk := test.FakeItem(db, user, "Silk Blouse", "blouse", "cream", "elegant")
	db.Model(silk).Updates(map[string]interface{}{"fabric": "silk", "is_clean": false, "needs_washing": true})
	db.Model(wardrobe[0]).Updates(map[string]interface{}{"wear_count": 2, "wear_count_since_wash": 2})
	db.Model(wardrobe[1]).Updates(map[string]interface{}{"is_clean": false, "needs_washing": true})

	rec := serve(e, test.NewJSONAuthRequest(http.MethodGet, "/api/laundry/wash-loads", test.UserPk(user), nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.EqualValues(t, 3, resp["total_items"])
	loads := resp["loads"].([]interface{})
	names := []string{}
	for _, load := range loads {
		names = append(names, load.(map[string]interface{})["name"].(string))
	}
	assert.Equal(t, []string{laundry.LoadWhites, laundry.LoadColors, laundry.LoadDelicates}, names)
	assert.Equal(t, "high", loads[0].(map[string]interface{})["priority"])
}

func TestLaundryHealth(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")

	rec := serve(e, test.NewJSONAuthRequest(http.MethodGet, "/api/laundry/health", test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.EqualValues(t, 100, resp["score"])
	assert.EqualValues(t, 0, resp["total_items"])

	test.FakeWardrobe(db, user)
	rec = serve(e, test.NewJSONAuthRequest(http.MethodGet, "/api/laundry/health", test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode(t, rec)
	assert.EqualValues(t, 100, resp["score"])
	assert.EqualValues(t, 5, resp["clean_items"])
	assert.Equal(t, []interface{}{"Great job! Your wardrobe is in excellent condition"}, resp["recommendations"])
}

func TestMarkWashedAndDirty(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	enqueuer := &enqueuerMock{}
	e := newTestServer(db, enqueuer)
	user := test.FakeUser(db, "")
	wardrobe := test.FakeWardrobe(db, user)
	ids := []uint{wardrobe[0].ID, wardrobe[4].ID}

	rec := serve(e, test.NewJSONAuthRequest(http.MethodPost, "/api/laundry/mark-dirty", test.UserPk(user), models.LaundryBatchIn{ItemIDs: ids}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, decode(t, rec)["updated_count"])
	// neither reaches high after one wear, still nothing to alert about
	assert.Empty(t, enqueuer.Tasks)

	var tee models.ClothingItem
	require.NoError(t, db.First(&tee, wardrobe[0].ID).Error)
	assert.False(t, tee.IsClean)
	assert.True(t, tee.NeedsWashing)
	assert.Equal(t, models.LaundryDirty, tee.LaundryState)
	assert.Equal(t, 1, tee.WearCount)

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, "/api/laundry/mark-dirty", test.UserPk(user), models.LaundryBatchIn{ItemIDs: ids}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{tasks.TypeUrgencyAlert}, enqueuer.Types())

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, "/api/laundry/mark-washed", test.UserPk(user), models.LaundryBatchIn{ItemIDs: ids}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode(t, rec)["updated_count"])

	require.NoError(t, db.First(&tee, wardrobe[0].ID).Error)
	assert.True(t, tee.IsClean)
	assert.False(t, tee.NeedsWashing)
	assert.Equal(t, models.UrgencyNone, tee.WashUrgency)
	assert.Equal(t, 0, tee.WearCountSinceWash)
	assert.Equal(t, 2, tee.WearCount)
	assert.NotNil(t, tee.LastWashed)
}

func TestMarkWashedRejectsForeignItems(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")
	mine := test.FakeItem(db, user, "Tee", "t-shirt", "white", "casual")
	other := test.FakeUser(db, "other@example.com")
	foreign := test.FakeItem(db, other, "Not mine", "jeans", "black", "casual")
	db.Model(&models.ClothingItem{}).Where("id IN ?", []uint{mine.ID, foreign.ID}).Update("is_clean", false)

	rec := serve(e, test.NewJSONAuthRequest(http.MethodPost, "/api/laundry/mark-washed", test.UserPk(user), models.LaundryBatchIn{ItemIDs: []uint{mine.ID, foreign.ID}}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var stored models.ClothingItem
	require.NoError(t, db.First(&stored, mine.ID).Error)
	assert.False(t, stored.IsClean)

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, "/api/laundry/mark-washed", test.UserPk(user), models.LaundryBatchIn{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStyleDNA(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")
	wardrobe := test.FakeWardrobe(db, user)
	_, err := services.NewWardrobeRepository(db).SaveOutfit(t.Context(), &models.Outfit{OwnerID: user.ID, Mood: "casual", WasActuallyWorn: true},
		[]uint{wardrobe[0].ID, wardrobe[1].ID}, laundry.DefaultThresholds(), time.Now())
	require.NoError(t, err)

	rec := serve(e, test.NewJSONAuthRequest(http.MethodGet, "/api/style/dna?mood=casual", test.UserPk(user), nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.EqualValues(t, 5, resp["total_items"])
	assert.EqualValues(t, 1, resp["total_outfits"])
	profile := resp["style_profile"].(map[string]interface{})
	assert.Equal(t, "casual", profile["dominant_styles"].([]interface{})[0])
	assert.Contains(t, profile["favorite_colors"], "white")
}

func TestNotifications(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")
	other := test.FakeUser(db, "other@example.com")
	ctx := t.Context()
	first, err := services.CreateNotification(ctx, db, user.ID, services.NotificationLaundryUrgent, "Time to wash your White Tee", "/laundry")
	require.NoError(t, err)
	_, err = services.CreateNotification(ctx, db, user.ID, services.NotificationOutfitReminder, "Plan tomorrow's outfit", "/outfits")
	require.NoError(t, err)
	foreign, err := services.CreateNotification(ctx, db, other.ID, services.NotificationOutfitReminder, "Not yours", "/outfits")
	require.NoError(t, err)

	rec := serve(e, test.NewJSONAuthRequest(http.MethodGet, "/api/notifications", test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Len(t, resp["notifications"], 2)
	assert.EqualValues(t, 2, resp["unread_count"])

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", first.ID), test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", foreign.ID), test.UserPk(user), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(e, test.NewJSONAuthRequest(http.MethodGet, "/api/notifications", test.UserPk(user), nil))
	resp = decode(t, rec)
	assert.EqualValues(t, 1, resp["unread_count"])
	// unread first
	assert.Equal(t, "Plan tomorrow's outfit", resp["notifications"].([]interface{})[0].(map[string]interface{})["message"])

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, "/api/notifications/read-all", test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["updated_count"])

	var unread int64
	db.Model(&models.Notification{}).Where("user_account_id = ? AND is_read = ?", other.ID, false).Count(&unread)
	assert.EqualValues(t, 1, unread)
}
