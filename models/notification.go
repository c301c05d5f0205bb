package models

type Notification struct {
	JsonModel
	UserAccountID uint        `gorm:"index;not null" json:"-"`
	UserAccount   UserAccount `json:"-"`
	Message       string      `json:"message"`
	Link          string      `json:"link"`
	Kind          string      `gorm:"index" json:"kind"` // laundry_urgent, laundry_reminder, outfit_reminder
	IsRead        bool        `json:"is_read"`
}
