package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

type LaundryState string

const (
	LaundryClean     LaundryState = "clean"
	LaundryDirty     LaundryState = "dirty"
	LaundryInLaundry LaundryState = "in_laundry"
	LaundryDrying    LaundryState = "drying"
)

type WashUrgency string

const (
	UrgencyNone   WashUrgency = "none"
	UrgencyLow    WashUrgency = "low"
	UrgencyMedium WashUrgency = "medium"
	UrgencyHigh   WashUrgency = "high"
	UrgencyUrgent WashUrgency = "urgent"
)

// Rank orders urgency levels, none being 0.
func (u WashUrgency) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyHigh:
		return 3
	case UrgencyUrgent:
		return 4
	default:
		return 0
	}
}

const SeasonAll = "all"

const (
	ImageStatusDraft     = "draft"
	ImageStatusUploaded  = "uploaded"
	ImageStatusProcessed = "processed"
	ImageStatusFailed    = "failed"
)

type ClothingItem struct {
	JsonModel
	OwnerID      uint                        `gorm:"index;not null" json:"-"`
	Owner        UserAccount                 `json:"-"`
	Name         string                      `json:"name"`
	Type         string                      `gorm:"index" json:"type"` // e.g. shirt, jeans, shoes
	Style        string                      `json:"style"`
	Color        string                      `json:"color"`
	Season       string                      `gorm:"default:all" json:"season"` // spring, summer, fall, winter, all
	Fabric       string                      `json:"fabric"`
	Brand        string                      `json:"brand"`
	MoodTags     datatypes.JSONSlice[string] `json:"mood_tags"`
	CustomTags   datatypes.JSONSlice[string] `json:"custom_tags"`
	ImageURL     *string                     `json:"-"`
	ImageStatus  string                      `json:"image_status"`
	PurchaseCost *float64                    `json:"purchase_cost"`
	DryCleanOnly bool                        `json:"dry_clean_only"`

	WearCount          int          `json:"wear_count"`
	WearCountSinceWash int          `json:"wear_count_since_wash"`
	LastWorn           *time.Time   `json:"last_worn"`
	LastWashed         *time.Time   `json:"last_washed"`
	IsClean            bool         `json:"is_clean"`
	NeedsWashing       bool         `json:"needs_washing"`
	WashUrgency        WashUrgency  `gorm:"default:none" json:"wash_urgency"`
	LaundryState       LaundryState `gorm:"default:clean" json:"laundry_state"`
}

// DaysSinceWash is nil until the item has been washed once.
func (item ClothingItem) DaysSinceWash(now time.Time) *int {
	if item.LastWashed == nil {
		return nil
	}
	days := int(now.Sub(*item.LastWashed).Hours() / 24)
	return &days
}

func (item ClothingItem) CostPerWear() *float64 {
	if item.PurchaseCost == nil || *item.PurchaseCost <= 0 || item.WearCount == 0 {
		return nil
	}
	value := math.Round(*item.PurchaseCost/float64(item.WearCount)*100) / 100
	return &value
}
