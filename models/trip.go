package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TripPlanned   = "planned"
	TripCompleted = "completed"
)

// TripDateLayout is the wire format of trip dates.
const TripDateLayout = "2006-01-02"

// Trip is a planned journey. Its packing list is generated on first request and
// dropped again when the destination or the dates change.
type Trip struct {
	JsonModel
	OwnerID     uint           `gorm:"index;not null" json:"-"`
	Owner       UserAccount    `json:"-"`
	Destination string         `json:"destination"`
	StartDate   datatypes.Date `gorm:"index" json:"-"`
	EndDate     datatypes.Date `json:"-"`
	TripType    string         `json:"trip_type"`
	Notes       string         `gorm:"type:text" json:"notes"`
	Status      string         `gorm:"default:planned" json:"status"`
	CompletedAt *time.Time     `json:"completed_at"`
	PackingList *PackingList   `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

func (t Trip) Start() time.Time {
	return time.Time(t.StartDate)
}

func (t Trip) End() time.Time {
	return time.Time(t.EndDate)
}

// DurationDays counts both the first and the last day.
func (t Trip) DurationDays() int {
	days := int(t.End().Sub(t.Start()).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

func (t Trip) Completed() bool {
	return t.Status == TripCompleted
}

type PackingList struct {
	JsonModel
	TripID    uint              `gorm:"uniqueIndex;not null" json:"trip_id"`
	OwnerID   uint              `gorm:"index;not null" json:"-"`
	Reasoning string            `gorm:"type:text" json:"reasoning"`
	Source    string            `json:"source"`
	Items     []PackingListItem `gorm:"constraint:OnDelete:CASCADE;" json:"items"`
}

// PackingListItem is one line of a packing list. ClothingItemID links it to the
// wardrobe; essentials such as socks stay unlinked.
type PackingListItem struct {
	JsonModel
	PackingListID  uint   `gorm:"index;not null" json:"packing_list_id"`
	OwnerID        uint   `gorm:"index;not null" json:"-"`
	Category       string `json:"category"`
	ItemName       string `json:"item_name"`
	Quantity       int    `json:"quantity"`
	ClothingItemID *uint  `gorm:"index" json:"clothing_item_id"`
	IsPacked       bool   `json:"is_packed"`
}

// PackedClothingIDs lists the wardrobe items that are checked off.
func (p PackingList) PackedClothingIDs() []uint {
	var ids []uint
	for _, item := range p.Items {
		if item.IsPacked && item.ClothingItemID != nil {
			ids = append(ids, *item.ClothingItemID)
		}
	}
	return ids
}
