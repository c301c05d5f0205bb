package laundry

import (
	"fmt"

	"wewearapi/models"
)

// WearPercentage is wears since wash relative to the threshold, in percent.
func WearPercentage(wearsSinceWash, threshold int) float64 {
	if threshold <= 0 {
		return 0
	}
	return float64(wearsSinceWash) / float64(threshold) * 100
}

func UrgencyFor(wearsSinceWash, threshold int) models.WashUrgency {
	if threshold <= 0 {
		return models.UrgencyNone
	}
	pct := WearPercentage(wearsSinceWash, threshold)
	switch {
	case pct >= 100:
		return models.UrgencyUrgent
	case pct >= 80:
		return models.UrgencyHigh
	case pct >= 60:
		return models.UrgencyMedium
	case pct >= 40:
		return models.UrgencyLow
	default:
		return models.UrgencyNone
	}
}

type Recommendation struct {
	Urgency        models.WashUrgency `json:"urgency"`
	WearPercentage float64            `json:"wear_percentage"`
	Threshold      int                `json:"threshold"`
	WearsRemaining int                `json:"wears_remaining"`
	Message        string             `json:"message"`
}

// Recommend computes the wash recommendation live from the stored counters.
func Recommend(item models.ClothingItem, th Thresholds) Recommendation {
	threshold := th.ForItem(item)
	urgency := UrgencyFor(item.WearCountSinceWash, threshold)
	remaining := threshold - item.WearCountSinceWash
	if remaining < 0 {
		remaining = 0
	}
	return Recommendation{
		Urgency:        urgency,
		WearPercentage: WearPercentage(item.WearCountSinceWash, threshold),
		Threshold:      threshold,
		WearsRemaining: remaining,
		Message:        recommendationMessage(urgency, remaining),
	}
}

func recommendationMessage(urgency models.WashUrgency, remaining int) string {
	switch urgency {
	case models.UrgencyUrgent:
		return "Wash before wearing again"
	case models.UrgencyHigh:
		return "Wash soon"
	case models.UrgencyMedium:
		return fmt.Sprintf("Plan a wash in the next %d wears", remaining)
	case models.UrgencyLow:
		return fmt.Sprintf("Fine for %d more wears", remaining)
	default:
		return "Fresh and ready to wear"
	}
}
