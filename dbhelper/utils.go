package dbhelper

import (
	"wewearapi/models"

	"gorm.io/gorm"
)

// SetupCleaner returns a func wiping every table, children first.
func SetupCleaner(db *gorm.DB) func() {
	return func() {
		session := db.Session(&gorm.Session{AllowGlobalUpdate: true})
		session.Delete(&models.PackingListItem{})
		session.Delete(&models.PackingList{})
		session.Delete(&models.Trip{})
		session.Delete(&models.Notification{})
		session.Delete(&models.OutfitItem{})
		session.Delete(&models.Outfit{})
		session.Delete(&models.ClothingItem{})
		session.Delete(&models.UserPushToken{})
		session.Delete(&models.UserAccount{})
	}
}
