package outfit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wewearapi/models"
	"wewearapi/style"
)

var (
	ErrGeneratorUnavailable = errors.New("suggestion generator unavailable")
	ErrMalformedOutput      = errors.New("suggestion generator returned malformed output")
)

type Suggestion struct {
	SelectedItems []uint  `json:"selected_items"`
	Reasoning     string  `json:"reasoning"`
	StyleNotes    string  `json:"style_notes"`
	ColorStory    string  `json:"color_story,omitempty"`
	WeatherNotes  string  `json:"weather_notes,omitempty"`
	Confidence    float64 `json:"confidence"`
}

// Rules are the composition constraints handed to a generator.
type Rules struct {
	OuterwearRequired bool
	Composition       []string
	Color             []string
}

func RulesFor(weather string) Rules {
	rules := Rules{
		OuterwearRequired: IsCold(weather) || IsRainy(weather),
		Composition: []string{
			"Choose exactly one item from 'dresses', OR exactly one item from 'tops' AND exactly one item from 'bottoms'. Never combine a dress with a top or bottom.",
			"Choose exactly one item from 'shoes'.",
			"Choose zero or one item from 'outerwear', depending on the weather.",
			"You may choose one or more items from 'accessories' to complete the look.",
		},
		Color: []string{
			"Use at most three colors.",
			"Dominant color (60%) on the largest items like a coat, dress or pants.",
			"Secondary color (30%) on a major piece like a shirt or top.",
			"Accent color (10%) on small accessories.",
			"Neutrals like black, white, grey and beige are free and do not count toward the limit.",
		},
	}
	if rules.OuterwearRequired {
		rules.Composition = append(rules.Composition, "The weather is cold, cool or rainy: an 'outerwear' item is mandatory.")
	}
	return rules
}

// GenerateInput is everything a generator may look at for one suggestion.
type GenerateInput struct {
	Pool    []models.ClothingItem
	Weather string
	Mood    string
	Season  string
	Profile style.Profile
	History []style.HistoryEntry
	Rules   Rules
}

type Generator interface {
	Generate(ctx context.Context, in GenerateInput) (Suggestion, error)
}

// Validate checks a generator's output against the pool it was given.
// Duplicate ids are dropped.
func Validate(s Suggestion, pool []models.ClothingItem) (Suggestion, error) {
	if len(s.SelectedItems) == 0 {
		return s, fmt.Errorf("%w: no items selected", ErrMalformedOutput)
	}
	available := make(map[uint]struct{}, len(pool))
	for _, item := range pool {
		available[item.ID] = struct{}{}
	}
	seen := make(map[uint]struct{}, len(s.SelectedItems))
	ids := make([]uint, 0, len(s.SelectedItems))
	for _, id := range s.SelectedItems {
		if _, ok := available[id]; !ok {
			return s, fmt.Errorf("%w: item %d is not a candidate", ErrMalformedOutput, id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(strings.TrimSpace(s.Reasoning)) < 10 {
		return s, fmt.Errorf("%w: reasoning too short", ErrMalformedOutput)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return s, fmt.Errorf("%w: confidence %v out of range", ErrMalformedOutput, s.Confidence)
	}
	s.SelectedItems = ids
	return s, nil
}
