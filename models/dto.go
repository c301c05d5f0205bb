package models

type ClothingItemIn struct {
	Name         string   `json:"name" validate:"required,max=100"`
	Type         string   `json:"type" validate:"required,max=50"`
	Style        string   `json:"style" validate:"max=50"`
	Color        string   `json:"color" validate:"max=50"`
	Season       string   `json:"season" validate:"omitempty,season"`
	Fabric       string   `json:"fabric" validate:"max=50"`
	Brand        string   `json:"brand" validate:"max=100"`
	MoodTags     []string `json:"mood_tags" validate:"max=20,dive,max=50"`
	CustomTags   []string `json:"custom_tags" validate:"max=20,dive,max=50"`
	PurchaseCost *float64 `json:"purchase_cost" validate:"omitempty,min=0"`
	DryCleanOnly bool     `json:"dry_clean_only"`
}

// ClothingItemUpdateIn only touches the fields that are present.
type ClothingItemUpdateIn struct {
	Name         *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Type         *string   `json:"type" validate:"omitempty,min=1,max=50"`
	Style        *string   `json:"style" validate:"omitempty,max=50"`
	Color        *string   `json:"color" validate:"omitempty,max=50"`
	Season       *string   `json:"season" validate:"omitempty,season"`
	Fabric       *string   `json:"fabric" validate:"omitempty,max=50"`
	Brand        *string   `json:"brand" validate:"omitempty,max=100"`
	MoodTags     *[]string `json:"mood_tags" validate:"omitempty,max=20,dive,max=50"`
	CustomTags   *[]string `json:"custom_tags" validate:"omitempty,max=20,dive,max=50"`
	PurchaseCost *float64  `json:"purchase_cost" validate:"omitempty,min=0"`
	DryCleanOnly *bool     `json:"dry_clean_only"`
}

type ClothingItemOut struct {
	ClothingItem
	ImageURL      string   `json:"image_url"`
	DaysSinceWash *int     `json:"days_since_wash"`
	CostPerWear   *float64 `json:"cost_per_wear"`
}

type ImageUploadIn struct {
	FileName string `json:"file_name" validate:"required,max=1000"`
}

type OutfitSuggestIn struct {
	Weather    string `json:"weather" validate:"max=200"`
	Location   string `json:"location" validate:"max=200"`
	Mood       string `json:"mood" validate:"max=50"`
	Season     string `json:"season" validate:"omitempty,season|eq=any"`
	ExcludeIDs []uint `json:"exclude_ids"`
}

type OutfitSaveIn struct {
	ItemIDs         []uint   `json:"item_ids" validate:"required,min=1"`
	Weather         string   `json:"weather" validate:"max=200"`
	Mood            string   `json:"mood" validate:"max=50"`
	Season          string   `json:"season" validate:"max=20"`
	Reasoning       string   `json:"reasoning"`
	StyleNotes      string   `json:"style_notes"`
	Confidence      *float64 `json:"confidence" validate:"omitempty,min=0,max=1"`
	WasActuallyWorn *bool    `json:"was_actually_worn"`
	Rating          *int     `json:"rating" validate:"omitempty,min=1,max=5"`
	Notes           *string  `json:"notes" validate:"omitempty,max=2000"`
}

type OutfitUpdateIn struct {
	Rating          *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Notes           *string `json:"notes" validate:"omitempty,max=2000"`
	WasActuallyWorn *bool   `json:"was_actually_worn"`
}

type OutfitOut struct {
	Outfit
	ItemIDs        []uint            `json:"item_ids"`
	Items          []ClothingItemOut `json:"items"`
	MissingItemIDs []uint            `json:"missing_item_ids"`
}

type LaundryBatchIn struct {
	ItemIDs []uint `json:"item_ids" validate:"required,min=1"`
}

type TripIn struct {
	Destination string `json:"destination" validate:"required,max=200"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
	TripType    string `json:"trip_type" validate:"max=50"`
	Notes       string `json:"notes" validate:"max=2000"`
}

type TripUpdateIn struct {
	Destination *string `json:"destination" validate:"omitempty,min=1,max=200"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	TripType    *string `json:"trip_type" validate:"omitempty,max=50"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
}

type TripOut struct {
	Trip
	StartDate    string       `json:"start_date"`
	EndDate      string       `json:"end_date"`
	DurationDays int          `json:"duration_days"`
	Season       string       `json:"season"`
	PackingList  *PackingList `json:"packing_list"`
}
