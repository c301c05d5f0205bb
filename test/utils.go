package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"wewearapi/config"
	"wewearapi/models"
	"wewearapi/outfit"
	"wewearapi/services"

	"github.com/golang-jwt/jwt/v4"
	"google.golang.org/api/idtoken"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString(config.JWTSecret())
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

func NewJSONAuthRequestRaw(method string, target string, userPk string, json string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(json))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

func UserPk(user *models.UserAccount) string {
	return fmt.Sprintf("%d", user.ID)
}

func FakeUser(db *gorm.DB, email string) *models.UserAccount {
	if email == "" {
		email = "email@example.com"
	}
	user := &models.UserAccount{
		Name:                 "OurName",
		Email:                email,
		GoogleID:             "12232",
		Platform:             models.PlatformIOS,
		LastIp:               "123.122.122.122",
		Status:               "FINISHED_AUTH",
		AvatarURL:            "pictureurl",
		ReceiveNotifications: true,
		WashThresholds:       datatypes.NewJSONType(map[string]int{}),
	}
	db.Create(user)
	db.Create(&models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      models.PlatformAndroid,
		Token:         "cX-UZ3zwQEiPt-2GJkG2gA:APA91bGqRflaGrJrnynhRwZ442HdgUjVcO7mWMFnx6IwAdJ9RRKopvSP4QU7hbvTmk1XAp8XGvtHZLvo5JmOPTVKBbGqqvhfbZWKlXA9csEjx1hgpNvrWepU",
		Active:        true,
	})
	return user
}

// FakeItem stores a clean item of the given type for owner.
func FakeItem(db *gorm.DB, owner *models.UserAccount, name, itemType, color, style string) *models.ClothingItem {
	item := &models.ClothingItem{
		OwnerID:      owner.ID,
		Name:         name,
		Type:         itemType,
		Color:        color,
		Style:        style,
		Season:       models.SeasonAll,
		MoodTags:     datatypes.JSONSlice[string]{},
		CustomTags:   datatypes.JSONSlice[string]{},
		IsClean:      true,
		WashUrgency:  models.UrgencyNone,
		LaundryState: models.LaundryClean,
	}
	if err := db.Create(item).Error; err != nil {
		log.Fatalf("fake item: %v", err)
	}
	return item
}

// FakeWardrobe stores a small complete wardrobe: top, bottom, shoes, jacket, dress.
func FakeWardrobe(db *gorm.DB, owner *models.UserAccount) []*models.ClothingItem {
	return []*models.ClothingItem{
		FakeItem(db, owner, "White Tee", "t-shirt", "white", "casual"),
		FakeItem(db, owner, "Blue Jeans", "jeans", "blue", "casual"),
		FakeItem(db, owner, "Sneakers", "sneakers", "white", "casual"),
		FakeItem(db, owner, "Denim Jacket", "jacket", "blue", "casual"),
		FakeItem(db, owner, "Red Dress", "dress", "red", "elegant"),
	}
}

func NewRefString(data string) *string {
	return &data
}

type GoogleServiceMock struct{}

func (gsm GoogleServiceMock) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {
	return &idtoken.Payload{Issuer: "Issue", Audience: "AAA", Expires: 119919191919, IssuedAt: 12312321321, Subject: "fake@example.com", Claims: map[string]interface{}{
		"email":   "fake@example.com",
		"picture": "pictureurl",
		"sub":     "123googleid",
	}}, nil
}

type AWSProviderMock struct {
	MockUrl string
}

func (awsService AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {
	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	if awsService.MockUrl != "" {
		return awsService.MockUrl, nil
	}
	return fmt.Sprintf("https://fakebucketurl.com/read/%s", fileKey), nil
}

func (awsService AWSProviderMock) UploadToPresignedURL(ctx context.Context, url string, fileContent []byte) (int, error) {
	return 204, nil
}

type URLCacheMock struct{}

func (URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", nil
	}
	return fmt.Sprintf("https://fakebucketurl.com/read/%s", objectKey), nil
}

// WeatherMock always reports the same weather.
type WeatherMock struct {
	Weather services.Weather
}

func (m WeatherMock) Current(ctx context.Context, location string) (services.Weather, error) {
	w := m.Weather
	w.Location = location
	return w, nil
}

type PushCall struct {
	UserID  uint
	Title   string
	Message string
	Data    map[string]string
}

// PushNotifierMock records every push instead of sending it.
type PushNotifierMock struct {
	mu    sync.Mutex
	Calls []PushCall
}

func (m *PushNotifierMock) Notify(ctx context.Context, userID uint, title, message string, data map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, PushCall{UserID: userID, Title: title, Message: message, Data: data})
	return nil
}

func (m *PushNotifierMock) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

type TelegramMessage struct {
	ChatID int64
	Text   string
}

type TelegramSenderMock struct {
	mu       sync.Mutex
	Messages []TelegramMessage
}

func (m *TelegramSenderMock) SendText(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, TelegramMessage{ChatID: chatID, Text: text})
	return nil
}

// GeneratorMock returns a fixed suggestion, or Err when set.
type GeneratorMock struct {
	Suggestion outfit.Suggestion
	Err        error
}

func (g GeneratorMock) Generate(ctx context.Context, in outfit.GenerateInput) (outfit.Suggestion, error) {
	if g.Err != nil {
		return outfit.Suggestion{}, g.Err
	}
	return g.Suggestion, nil
}
