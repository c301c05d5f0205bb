package models

import (
	"time"

	"gorm.io/datatypes"
)

type UserAccount struct {
	JsonModel
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Banned   bool   `gorm:"default:false" json:"-"`
	LastIp   string `json:"-"`
	//"STARTED_AUTH", "FINISHED_AUTH"
	Status    string   `json:"-"`
	GoogleID  string   `gorm:"index" json:"-"`
	Platform  Platform `json:"platform"`
	AvatarURL string   `json:"avatar_url"`

	Location             string `json:"location"` // city used for weather lookups
	ReceiveNotifications bool   `json:"receive_notifications"`
	TelegramChatID       *int64 `json:"telegram_chat_id"`
	// custom laundry preferences: clothing type -> wears before wash
	WashThresholds      datatypes.JSONType[map[string]int] `json:"wash_thresholds"`
	ConfirmedDeleteDate *time.Time                         `json:"-"`
}

// CustomThresholds never returns nil.
func (u UserAccount) CustomThresholds() map[string]int {
	data := u.WashThresholds.Data()
	if data == nil {
		return map[string]int{}
	}
	return data
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint
	UserAccount   UserAccount `json:"user_account"`
	Platform      Platform    `json:"platform"`
	Token         string      `json:"token"`
	Active        bool        `gorm:"default:false" json:"-"`
}

type UserPushIn struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,platform"`
}

type UserSettingsIn struct {
	Location             *string        `json:"location" validate:"omitempty,max=200"`
	ReceiveNotifications *bool          `json:"receive_notifications"`
	TelegramChatID       *int64         `json:"telegram_chat_id"`
	WashThresholds       map[string]int `json:"wash_thresholds" validate:"omitempty,dive,keys,required,endkeys,min=1,max=100"`
}
