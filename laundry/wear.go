package laundry

import (
	"time"

	"wewearapi/models"
)

// Transition reports how an item's urgency moved during one event.
type Transition struct {
	ItemID   uint               `json:"item_id"`
	Previous models.WashUrgency `json:"previous"`
	Current  models.WashUrgency `json:"current"`
}

// Escalated is true when the item just crossed into high or urgent.
func (t Transition) Escalated() bool {
	return t.Current.Rank() >= models.UrgencyHigh.Rank() && t.Current.Rank() > t.Previous.Rank()
}

// Recompute refreshes the stored urgency from the counters and reports whether it changed.
func Recompute(item *models.ClothingItem, th Thresholds) bool {
	urgency := UrgencyFor(item.WearCountSinceWash, th.ForItem(*item))
	changed := urgency != item.WashUrgency
	item.WashUrgency = urgency
	applyUrgencyFlags(item)
	return changed
}

func applyUrgencyFlags(item *models.ClothingItem) {
	if item.WashUrgency.Rank() >= models.UrgencyHigh.Rank() {
		item.NeedsWashing = true
	}
	if item.WashUrgency == models.UrgencyUrgent {
		item.IsClean = false
		if item.LaundryState == models.LaundryClean || item.LaundryState == "" {
			item.LaundryState = models.LaundryDirty
		}
	}
}

func RecordWear(item *models.ClothingItem, th Thresholds, now time.Time) Transition {
	previous := item.WashUrgency
	item.WearCount++
	item.WearCountSinceWash++
	worn := now
	item.LastWorn = &worn
	Recompute(item, th)
	return Transition{ItemID: item.ID, Previous: previous, Current: item.WashUrgency}
}

func MarkWashed(item *models.ClothingItem, now time.Time) {
	washed := now
	item.WearCountSinceWash = 0
	item.LastWashed = &washed
	item.IsClean = true
	item.NeedsWashing = false
	item.WashUrgency = models.UrgencyNone
	item.LaundryState = models.LaundryClean
}

// MarkDirty counts as one wear and forces the item into the wash pile.
func MarkDirty(item *models.ClothingItem, th Thresholds, now time.Time) Transition {
	transition := RecordWear(item, th, now)
	item.IsClean = false
	item.NeedsWashing = true
	item.LaundryState = models.LaundryDirty
	return transition
}

// NextState is the manual toggle cycle clean -> dirty -> in_laundry -> drying -> clean.
func NextState(state models.LaundryState) models.LaundryState {
	switch state {
	case models.LaundryClean:
		return models.LaundryDirty
	case models.LaundryDirty:
		return models.LaundryInLaundry
	case models.LaundryInLaundry:
		return models.LaundryDrying
	default:
		return models.LaundryClean
	}
}

// Toggle advances the item one step and keeps the parallel flags consistent.
func Toggle(item *models.ClothingItem, now time.Time) models.LaundryState {
	current := item.LaundryState
	if current == "" {
		current = models.LaundryClean
	}
	next := NextState(current)
	switch next {
	case models.LaundryClean:
		MarkWashed(item, now)
	case models.LaundryDirty:
		item.IsClean = false
		item.NeedsWashing = true
	default:
		item.IsClean = false
	}
	item.LaundryState = next
	return next
}
