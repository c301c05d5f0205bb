package models

import "time"

type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GoogleAuthSignIn struct {
	IdToken  string `json:"idToken" validate:"required"`
	Platform string `json:"platform" validate:"required,platform"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

type GoogleSignInOut struct {
	Id           uint   `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	New          bool   `json:"new"`
	Avatar       string `json:"avatar"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserMeOut struct {
	Id                   uint           `json:"id"`
	Name                 string         `json:"name"`
	Email                string         `json:"email"`
	AvatarURL            string         `json:"avatar_url"`
	Location             string         `json:"location"`
	ReceiveNotifications bool           `json:"receive_notifications"`
	TelegramLinked       bool           `json:"telegram_linked"`
	WashThresholds       map[string]int `json:"wash_thresholds"`
	ItemCount            int64          `json:"item_count"`
	OutfitCount          int64          `json:"outfit_count"`
}
