package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"wewearapi/dbhelper"
	"wewearapi/models"
	"wewearapi/tasks"
	"wewearapi/test"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTrip(t *testing.T, e *echo.Echo, user *models.UserAccount, in models.TripIn) uint {
	rec := serve(e, test.NewJSONAuthRequest(http.MethodPost, "/api/trips", test.UserPk(user), in))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return uint(decode(t, rec)["id"].(float64))
}

func summerTrip() models.TripIn {
	return models.TripIn{Destination: "Lisbon", StartDate: "2025-07-01", EndDate: "2025-07-03", TripType: "leisure"}
}

func packingLines(t *testing.T, list echo.Map) map[string]echo.Map {
	lines := map[string]echo.Map{}
	for _, raw := range list["items"].([]interface{}) {
		line := echo.Map(raw.(map[string]interface{}))
		lines[line["item_name"].(string)] = line
	}
	return lines
}

func TestCreateTrip(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")

	rec := serve(e, test.NewJSONAuthRequest(http.MethodPost, "/api/trips", test.UserPk(user), summerTrip()))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.Equal(t, "Lisbon", resp["destination"])
	assert.Equal(t, "2025-07-01", resp["start_date"])
	assert.Equal(t, "2025-07-03", resp["end_date"])
	assert.EqualValues(t, 3, resp["duration_days"])
	assert.Equal(t, "summer", resp["season"])
	assert.Equal(t, models.TripPlanned, resp["status"])
	assert.Nil(t, resp["packing_list"])
}

func TestCreateTripValidation(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")

	cases := map[string]models.TripIn{
		"missing destination": {StartDate: "2025-07-01", EndDate: "2025-07-03"},
		"bad date":            {Destination: "Lisbon", StartDate: "01/07/2025", EndDate: "2025-07-03"},
		"reversed dates":      {Destination: "Lisbon", StartDate: "2025-07-05", EndDate: "2025-07-03"},
	}
	for name, in := range cases {
		rec := serve(e, test.NewJSONAuthRequest(http.MethodPost, "/api/trips", test.UserPk(user), in))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
	var count int64
	db.Model(&models.Trip{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestListTripsNewestFirst(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")
	other := test.FakeUser(db, "other@example.com")
	createTrip(t, e, user, summerTrip())
	createTrip(t, e, user, models.TripIn{Destination: "Oslo", StartDate: "2025-12-20", EndDate: "2025-12-27"})
	createTrip(t, e, other, summerTrip())

	rec := serve(e, test.NewJSONAuthRequest(http.MethodGet, "/api/trips", test.UserPk(user), nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	trips := decode(t, rec)["trips"].([]interface{})
	require.Len(t, trips, 2)
	assert.Equal(t, "Oslo", trips[0].(map[string]interface{})["destination"])
	assert.Equal(t, "winter", trips[0].(map[string]interface{})["season"])
}

func TestTripOfAnotherUserIsNotFound(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")
	other := test.FakeUser(db, "other@example.com")
	id := createTrip(t, e, user, summerTrip())

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/trips/%d"},
		{http.MethodGet, "/api/trips/%d/packing-list"},
		{http.MethodPost, "/api/trips/%d/complete"},
		{http.MethodDelete, "/api/trips/%d"},
	} {
		path := fmt.Sprintf(req.path, id)
		rec := serve(e, test.NewJSONAuthRequest(req.method, path, test.UserPk(other), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestPackingListIsGeneratedOnce(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")
	wardrobe := test.FakeWardrobe(db, user)
	id := createTrip(t, e, user, summerTrip())
	path := fmt.Sprintf("/api/trips/%d/packing-list", id)

	rec := serve(e, test.NewJSONAuthRequest(http.MethodGet, path, test.UserPk(user), nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode(t, rec)
	assert.Equal(t, "fallback", first["source"])
	lines := packingLines(t, first)
	// the test weather is 8°C with rain, so the jacket comes along
	for _, item := range wardrobe {
		require.Contains(t, lines, item.Name)
		assert.EqualValues(t, item.ID, lines[item.Name]["clothing_item_id"])
		assert.Equal(t, false, lines[item.Name]["is_packed"])
	}
	assert.EqualValues(t, 3, lines["Socks"]["quantity"])
	assert.Nil(t, lines["Socks"]["clothing_item_id"])

	rec = serve(e, test.NewJSONAuthRequest(http.MethodGet, path, test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode(t, rec)
	assert.Equal(t, first["id"], second["id"])
	assert.Len(t, second["items"], len(first["items"].([]interface{})))

	rec = serve(e, test.NewJSONAuthRequest(http.MethodGet, fmt.Sprintf("/api/trips/%d", id), test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first["id"], decode(t, rec)["packing_list"].(map[string]interface{})["id"])
}

func TestTogglePackedItem(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")
	other := test.FakeUser(db, "other@example.com")
	test.FakeWardrobe(db, user)
	id := createTrip(t, e, user, summerTrip())
	rec := serve(e, test.NewJSONAuthRequest(http.MethodGet, fmt.Sprintf("/api/trips/%d/packing-list", id), test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	lineID := uint(packingLines(t, decode(t, rec))["White Tee"]["id"].(float64))
	path := fmt.Sprintf("/api/packing-list-items/%d/toggle", lineID)

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, path, test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["is_packed"])

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, path, test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["is_packed"])

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, path, test.UserPk(other), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompleteTripDirtiesPackedItems(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	enqueuer := &enqueuerMock{}
	e := newTestServer(db, enqueuer)
	user := test.FakeUser(db, "")
	wardrobe := test.FakeWardrobe(db, user)
	// one more wear makes the tee urgent
	db.Model(wardrobe[0]).Updates(map[string]interface{}{"wear_count": 1, "wear_count_since_wash": 1})
	id := createTrip(t, e, user, summerTrip())

	rec := serve(e, test.NewJSONAuthRequest(http.MethodGet, fmt.Sprintf("/api/trips/%d/packing-list", id), test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	lines := packingLines(t, decode(t, rec))
	for _, name := range []string{"White Tee", "Blue Jeans", "Socks"} {
		path := fmt.Sprintf("/api/packing-list-items/%d/toggle", uint(lines[name]["id"].(float64)))
		rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, path, test.UserPk(user), nil))
		require.Equal(t, http.StatusOK, rec.Code, name)
	}

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, fmt.Sprintf("/api/trips/%d/complete", id), test.UserPk(user), nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.EqualValues(t, 2, resp["updated_count"])
	assert.Equal(t, models.TripCompleted, resp["trip"].(map[string]interface{})["status"])
	assert.Equal(t, []string{tasks.TypeUrgencyAlert}, enqueuer.Types())

	packed := map[uint]bool{wardrobe[0].ID: true, wardrobe[1].ID: true}
	var items []models.ClothingItem
	require.NoError(t, db.Order("id").Find(&items, "owner_id = ?", user.ID).Error)
	require.Len(t, items, len(wardrobe))
	for _, item := range items {
		if packed[item.ID] {
			assert.False(t, item.IsClean, item.Name)
			assert.True(t, item.NeedsWashing, item.Name)
			assert.Equal(t, models.LaundryDirty, item.LaundryState, item.Name)
		} else {
			assert.True(t, item.IsClean, item.Name)
			assert.Equal(t, 0, item.WearCountSinceWash, item.Name)
		}
	}
	assert.Equal(t, models.UrgencyUrgent, items[0].WashUrgency)
	assert.Equal(t, 2, items[0].WearCountSinceWash)
	assert.Equal(t, 1, items[1].WearCountSinceWash)
}

func TestCompletedTripIsFrozen(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")
	test.FakeWardrobe(db, user)
	id := createTrip(t, e, user, summerTrip())

	rec := serve(e, test.NewJSONAuthRequest(http.MethodPost, fmt.Sprintf("/api/trips/%d/complete", id), test.UserPk(user), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "no packing list yet")

	rec = serve(e, test.NewJSONAuthRequest(http.MethodGet, fmt.Sprintf("/api/trips/%d/packing-list", id), test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	lineID := uint(packingLines(t, decode(t, rec))["Sneakers"]["id"].(float64))
	rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, fmt.Sprintf("/api/trips/%d/complete", id), test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 0, decode(t, rec)["updated_count"])

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, fmt.Sprintf("/api/trips/%d/complete", id), test.UserPk(user), nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = serve(e, test.NewJSONAuthRequest(http.MethodPut, fmt.Sprintf("/api/trips/%d", id), test.UserPk(user), models.TripUpdateIn{Notes: test.NewRefString("late")}))
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = serve(e, test.NewJSONAuthRequest(http.MethodPost, fmt.Sprintf("/api/packing-list-items/%d/toggle", lineID), test.UserPk(user), nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateTripDropsStalePackingList(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")
	test.FakeWardrobe(db, user)
	id := createTrip(t, e, user, summerTrip())
	tripPath := fmt.Sprintf("/api/trips/%d", id)
	rec := serve(e, test.NewJSONAuthRequest(http.MethodGet, tripPath+"/packing-list", test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPut, tripPath, test.UserPk(user), models.TripUpdateIn{Notes: test.NewRefString("bring a book")}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.Equal(t, "bring a book", resp["notes"])
	assert.NotNil(t, resp["packing_list"])

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPut, tripPath, test.UserPk(user), models.TripUpdateIn{EndDate: test.NewRefString("2025-06-01")}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, test.NewJSONAuthRequest(http.MethodPut, tripPath, test.UserPk(user), models.TripUpdateIn{Destination: test.NewRefString("Porto"), EndDate: test.NewRefString("2025-07-06")}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = decode(t, rec)
	assert.Equal(t, "Porto", resp["destination"])
	assert.EqualValues(t, 6, resp["duration_days"])
	assert.Nil(t, resp["packing_list"])

	var lines int64
	db.Model(&models.PackingListItem{}).Count(&lines)
	assert.EqualValues(t, 0, lines)
}

func TestDeleteTrip(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")
	test.FakeWardrobe(db, user)
	id := createTrip(t, e, user, summerTrip())
	path := fmt.Sprintf("/api/trips/%d", id)
	rec := serve(e, test.NewJSONAuthRequest(http.MethodGet, path+"/packing-list", test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, test.NewJSONAuthRequest(http.MethodDelete, path, test.UserPk(user), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(e, test.NewJSONAuthRequest(http.MethodGet, path, test.UserPk(user), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var lists int64
	db.Model(&models.PackingList{}).Count(&lists)
	assert.EqualValues(t, 0, lists)
}
