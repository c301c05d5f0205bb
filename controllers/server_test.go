package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wewearapi/dbhelper"
	"wewearapi/services"
	"wewearapi/test"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// enqueuerMock keeps tasks in memory instead of pushing them to redis.
type enqueuerMock struct {
	Tasks []*asynq.Task
}

func (m *enqueuerMock) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.Tasks = append(m.Tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func (m *enqueuerMock) Types() []string {
	types := make([]string, 0, len(m.Tasks))
	for _, task := range m.Tasks {
		types = append(types, task.Type())
	}
	return types
}

func testDeps(enqueuer *enqueuerMock) ServerDeps {
	deps := ServerDeps{
		Google:   test.GoogleServiceMock{},
		AWS:      test.AWSProviderMock{},
		URLCache: test.URLCacheMock{},
		Weather: test.WeatherMock{Weather: services.Weather{
			Temperature:   8,
			FeelsLike:     5,
			Condition:     "light rain",
			MainCondition: "Rain",
			Humidity:      85,
			WindSpeed:     12,
		}},
	}
	if enqueuer != nil {
		deps.Tasks = enqueuer
	}
	return deps
}

func newTestServer(db *gorm.DB, enqueuer *enqueuerMock) *echo.Echo {
	return SetupServer(db, testDeps(enqueuer))
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) echo.Map {
	var resp echo.Map
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestHealth(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)

	for _, path := range []string{"/api/items", "/api/outfits", "/api/laundry/alerts", "/api/style/dna", "/api/notifications", "/api/trips"} {
		rec := serve(e, test.NewJSONRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestUnknownUserIsUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)

	rec := serve(e, test.NewJSONAuthRequest(http.MethodGet, "/api/items", "99999", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBannedUserIsLocked(t *testing.T) {
	db := dbhelper.SetupTestDB()
	defer dbhelper.SetupCleaner(db)()
	e := newTestServer(db, nil)
	user := test.FakeUser(db, "")
	db.Model(user).Update("banned", true)

	rec := serve(e, test.NewJSONAuthRequest(http.MethodGet, "/api/items", test.UserPk(user), nil))

	assert.Equal(t, http.StatusLocked, rec.Code)
	assert.Equal(t, "account is locked", decode(t, rec)["error"])
}
