package models

// Outfit is a saved combination. Item references are plain ids so that
// deleting an item leaves the outfit history untouched.
type Outfit struct {
	JsonModel
	OwnerID         uint         `gorm:"index;not null" json:"-"`
	Owner           UserAccount  `json:"-"`
	Weather         string       `json:"weather"`
	Mood            string       `json:"mood"`
	Season          string       `json:"season"`
	Reasoning       string       `gorm:"type:text" json:"reasoning"`
	StyleNotes      string       `gorm:"type:text" json:"style_notes"`
	Confidence      *float64     `json:"confidence"`
	WasActuallyWorn bool         `json:"was_actually_worn"`
	Rating          *int         `json:"rating"`
	Notes           *string      `gorm:"type:text" json:"notes"`
	Items           []OutfitItem `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

type OutfitItem struct {
	ID             uint `gorm:"primarykey" json:"-"`
	OutfitID       uint `gorm:"index;not null" json:"-"`
	ClothingItemID uint `gorm:"index;not null" json:"clothing_item_id"`
	Position       int  `json:"position"`
}

func (o Outfit) ItemIDs() []uint {
	ids := make([]uint, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ClothingItemID)
	}
	return ids
}
