package services

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"time"

	"wewearapi/config"
	"wewearapi/logger"
	"wewearapi/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt"
	"gorm.io/gorm"
)

type PushNotifier interface {
	Notify(ctx context.Context, userID uint, title, message string, data map[string]string) error
}

// FirebasePushNotifier sends to Android and web tokens through FCM and to iOS
// tokens directly through APNS.
type FirebasePushNotifier struct {
	App *firebase.App
	DB  *gorm.DB
}

func NewFirebasePushNotifier(ctx context.Context, db *gorm.DB) *FirebasePushNotifier {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		logger.L().Warn("firebase app not configured, push disabled", "error", err)
		return &FirebasePushNotifier{DB: db}
	}
	return &FirebasePushNotifier{App: app, DB: db}
}

func stringMapToInterfaceMap(stringMap map[string]string) map[string]interface{} {
	interfaceMap := make(map[string]interface{}, len(stringMap))
	for key, value := range stringMap {
		interfaceMap[key] = value
	}
	return interfaceMap
}

func (p *FirebasePushNotifier) Notify(ctx context.Context, userID uint, title, message string, data map[string]string) error {
	var tokens []models.UserPushToken
	if err := p.DB.WithContext(ctx).Where("user_account_id = ? AND active = ?", userID, true).Find(&tokens).Error; err != nil {
		return fmt.Errorf("loading push tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	var fcmMessages, iosMessages []*messaging.Message
	var iosData map[string]interface{}
	if data != nil {
		iosData = stringMapToInterfaceMap(data)
	}
	for _, token := range tokens {
		msg := &messaging.Message{
			Notification: &messaging.Notification{Title: title, Body: message},
			APNS: &messaging.APNSConfig{
				FCMOptions: &messaging.APNSFCMOptions{AnalyticsLabel: "wewear"},
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						ContentAvailable: true,
						Alert:            &messaging.ApsAlert{Title: title, Body: message},
						Sound:            "default",
					},
					CustomData: iosData,
				},
			},
			Android: &messaging.AndroidConfig{
				Notification: &messaging.AndroidNotification{
					Priority:  messaging.AndroidNotificationPriority(messaging.PriorityMax),
					ChannelID: "wewear-laundry",
				},
				Data: data,
			},
			Token: token.Token,
		}
		if token.Platform == models.PlatformIOS {
			iosMessages = append(iosMessages, msg)
		} else {
			fcmMessages = append(fcmMessages, msg)
		}
	}

	if len(fcmMessages) > 0 {
		if p.App == nil {
			logger.L().Warn("skipping FCM push, firebase not configured", "user_id", userID)
		} else if err := p.sendFCM(ctx, fcmMessages); err != nil {
			sentry.CaptureException(err)
			return err
		}
	}
	if len(iosMessages) > 0 {
		if errs := sendIOSNotificationDirect(ctx, iosMessages); len(errs) > 0 {
			logger.L().Warn("apns push failures", "user_id", userID, "count", len(errs))
			return errs[0]
		}
	}
	return nil
}

func (p *FirebasePushNotifier) sendFCM(ctx context.Context, messages []*messaging.Message) error {
	client, err := p.App.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("init FCM client: %w", err)
	}
	br, err := client.SendEach(ctx, messages)
	if err != nil {
		return fmt.Errorf("FCM send: %w", err)
	}
	if br.FailureCount > 0 {
		for _, resp := range br.Responses {
			if resp != nil && !resp.Success {
				logger.L().Warn("FCM delivery failed", "error", resp.Error)
			}
		}
	}
	return nil
}

func DecodeBase64EnvPrivateKey(envKey string) (string, error) {
	base64Key := config.GetEnv(envKey, "")
	if base64Key == "" {
		return "", fmt.Errorf("%s environment variable is not set", envKey)
	}
	decoded, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 private key: %v", err)
	}
	return string(decoded), nil
}

func apnsProviderToken() (string, error) {
	privateKeyPEM, err := DecodeBase64EnvPrivateKey("APPLE_PUSH_KEY_BASE64")
	if err != nil {
		return "", err
	}
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return "", fmt.Errorf("APPLE_PUSH_KEY_BASE64 is not PEM")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("parse apns key: %w", err)
	}
	privateKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return "", fmt.Errorf("apns key is not ECDSA")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": config.GetEnv("APPLE_TEAM_ID", ""),
		"iat": time.Now().Unix(),
	})
	token.Header["kid"] = config.GetEnv("APPLE_PUSH_KEY_ID", "")
	return token.SignedString(privateKey)
}

func sendIOSNotificationDirect(ctx context.Context, messages []*messaging.Message) []error {
	providerToken, err := apnsProviderToken()
	if err != nil {
		return []error{err}
	}
	bundleID := config.GetEnv("APPLE_BUNDLE_ID", "app.wewear")
	client := &http.Client{Timeout: 10 * time.Second}

	var errs []error
	for _, message := range messages {
		payload := map[string]interface{}{
			"aps": map[string]interface{}{
				"alert": map[string]string{
					"title": message.APNS.Payload.Aps.Alert.Title,
					"body":  message.APNS.Payload.Aps.Alert.Body,
				},
			},
		}
		payloadBytes, _ := json.Marshal(payload)
		url := fmt.Sprintf("https://api.push.apple.com/3/device/%s", message.Token)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadBytes))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		req.Header.Set("Authorization", "Bearer "+providerToken)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("apns-topic", bundleID)

		resp, err := client.Do(req)
		if err != nil {
			errs = append(errs, err)
			sentry.CaptureMessage(fmt.Sprintf("Error sending apns push %s", message.APNS.Payload.Aps.Alert.Title))
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 300 {
			errs = append(errs, fmt.Errorf("apns status %d: %s", resp.StatusCode, string(body)))
		}
	}
	return errs
}
