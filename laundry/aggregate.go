package laundry

import (
	"math"
	"strings"
	"time"

	"wewearapi/models"
)

const DefaultOverdueAfter = 30 * day

type Alerts struct {
	Urgent     []models.ClothingItem `json:"urgent"`
	High       []models.ClothingItem `json:"high"`
	Medium     []models.ClothingItem `json:"medium"`
	Overdue    []models.ClothingItem `json:"overdue"`
	CleanCount int                   `json:"clean_count"`
	DirtyCount int                   `json:"dirty_count"`
	Total      int                   `json:"total"`
}

const day = 24 * time.Hour

// isOverdue compares whole elapsed days; a partial day does not count.
func isOverdue(item models.ClothingItem, now time.Time, overdueAfter time.Duration) bool {
	if item.LastWorn == nil {
		return false
	}
	return int(now.Sub(*item.LastWorn)/day) > int(overdueAfter/day)
}

// BuildAlerts trusts the stored urgency; nothing is recomputed here.
func BuildAlerts(items []models.ClothingItem, now time.Time, overdueAfter time.Duration) Alerts {
	alerts := Alerts{
		Urgent:  []models.ClothingItem{},
		High:    []models.ClothingItem{},
		Medium:  []models.ClothingItem{},
		Overdue: []models.ClothingItem{},
		Total:   len(items),
	}
	for _, item := range items {
		switch item.WashUrgency {
		case models.UrgencyUrgent:
			alerts.Urgent = append(alerts.Urgent, item)
		case models.UrgencyHigh:
			alerts.High = append(alerts.High, item)
		case models.UrgencyMedium:
			alerts.Medium = append(alerts.Medium, item)
		}
		if isOverdue(item, now, overdueAfter) {
			alerts.Overdue = append(alerts.Overdue, item)
		}
		if item.IsClean {
			alerts.CleanCount++
		} else {
			alerts.DirtyCount++
		}
	}
	return alerts
}

type WashLoad struct {
	Name        string   `json:"name"`
	Temperature string   `json:"temperature"`
	Priority    string   `json:"priority"`
	SpecialCare bool     `json:"special_care"`
	ItemIDs     []uint   `json:"item_ids"`
	ItemNames   []string `json:"item_names"`
	Count       int      `json:"count"`
}

const (
	LoadWhites    = "Whites"
	LoadDarks     = "Darks"
	LoadColors    = "Colors"
	LoadDelicates = "Delicates"
)

var (
	delicateFabrics = []string{"silk", "wool", "lace"}
	whiteColors     = []string{"white", "cream", "ivory", "beige"}
	darkColors      = []string{"black", "navy", "dark", "charcoal"}
)

func containsAny(value string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(value, keyword) {
			return true
		}
	}
	return false
}

// ClassifyLoad picks the load for one item; fabric wins over color.
func ClassifyLoad(item models.ClothingItem) string {
	if item.DryCleanOnly || containsAny(strings.ToLower(item.Fabric), delicateFabrics) {
		return LoadDelicates
	}
	color := strings.ToLower(item.Color)
	switch {
	case containsAny(color, whiteColors):
		return LoadWhites
	case containsAny(color, darkColors):
		return LoadDarks
	default:
		return LoadColors
	}
}

// SuggestWashLoads is a single greedy pass, loads are returned in a fixed order and empty ones are dropped.
func SuggestWashLoads(items []models.ClothingItem) []WashLoad {
	loads := map[string]*WashLoad{
		LoadWhites:    {Name: LoadWhites, Temperature: "hot"},
		LoadDarks:     {Name: LoadDarks, Temperature: "cold"},
		LoadColors:    {Name: LoadColors, Temperature: "warm"},
		LoadDelicates: {Name: LoadDelicates, Temperature: "cold", SpecialCare: true},
	}
	urgent := map[string]bool{}
	for _, item := range items {
		name := ClassifyLoad(item)
		load := loads[name]
		load.ItemIDs = append(load.ItemIDs, item.ID)
		load.ItemNames = append(load.ItemNames, item.Name)
		load.Count++
		if item.WashUrgency == models.UrgencyUrgent {
			urgent[name] = true
		}
	}
	result := []WashLoad{}
	for _, name := range []string{LoadWhites, LoadDarks, LoadColors, LoadDelicates} {
		load := loads[name]
		if load.Count == 0 {
			continue
		}
		load.Priority = "medium"
		if urgent[name] {
			load.Priority = "high"
		}
		result = append(result, *load)
	}
	return result
}

type HealthScore struct {
	Score           float64  `json:"score"`
	Message         string   `json:"message"`
	TotalItems      int      `json:"total_items"`
	CleanItems      int      `json:"clean_items"`
	NeedsWashing    int      `json:"needs_washing"`
	OverdueItems    int      `json:"overdue_items"`
	Recommendations []string `json:"recommendations"`
}

const emptyWardrobeMessage = "No items in wardrobe yet - add some clothes to get started!"

func ComputeHealthScore(items []models.ClothingItem, now time.Time, overdueAfter time.Duration) HealthScore {
	total := len(items)
	if total == 0 {
		return HealthScore{Score: 100, Message: emptyWardrobeMessage, Recommendations: []string{}}
	}
	var clean, wash, overdue int
	for _, item := range items {
		if item.IsClean {
			clean++
		}
		if item.NeedsWashing {
			wash++
		}
		if isOverdue(item, now, overdueAfter) {
			overdue++
		}
	}
	cleanRatio := float64(clean) / float64(total)
	washRatio := float64(wash) / float64(total)
	overdueRatio := float64(overdue) / float64(total)
	score := 50*cleanRatio + 30*(1-washRatio) + 20*(1-overdueRatio)
	score = math.Round(score*10) / 10

	return HealthScore{
		Score:           score,
		Message:         healthMessage(score),
		TotalItems:      total,
		CleanItems:      clean,
		NeedsWashing:    wash,
		OverdueItems:    overdue,
		Recommendations: healthRecommendations(cleanRatio, washRatio, overdueRatio),
	}
}

func healthMessage(score float64) string {
	switch {
	case score >= 90:
		return "Excellent! Your wardrobe is well-maintained."
	case score >= 75:
		return "Good! Just a few items need attention."
	case score >= 60:
		return "Fair. Consider doing laundry soon."
	case score >= 40:
		return "Poor. Several items need washing."
	default:
		return "Critical! Time for a laundry day!"
	}
}

func healthRecommendations(cleanRatio, washRatio, overdueRatio float64) []string {
	recommendations := []string{}
	if cleanRatio < 0.7 {
		recommendations = append(recommendations, "Do a load of laundry to increase your clean clothes ratio")
	}
	if washRatio > 0.3 {
		recommendations = append(recommendations, "Several items need washing - consider a laundry day")
	}
	if overdueRatio > 0.2 {
		recommendations = append(recommendations, "Some items haven't been worn in a while - try rotating them into your outfits")
	}
	if len(recommendations) == 0 {
		if cleanRatio > 0.9 {
			recommendations = append(recommendations, "Great job! Your wardrobe is in excellent condition")
		} else {
			recommendations = append(recommendations, "Your laundry routine is on track")
		}
	}
	return recommendations
}
