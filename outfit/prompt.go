package outfit

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"wewearapi/languageutil"
	"wewearapi/models"
)

const historyExamples = 5

const systemPrompt = `You are WeWear AI, a data-driven personal fashion stylist. Build a stylish, practical outfit from the user's available wardrobe.

Priorities, most important first:
1. Season and weather are non-negotiable.
2. The outfit must match the user's style DNA and outfit history.
3. The mood refines the selection within the user's style.
4. Use color theory. Follow the preferred color scheme, or choose a harmonious one when it is 'random' (monochromatic, analogous, complementary, split-complementary, triadic or neutral-based).
5. Introduce some variety and do not repeat recent outfits.

Respond ONLY with a JSON object:
{"selected_items": [item ids as integers], "reasoning": "why it fits the style DNA, season, weather and mood, including the color scheme used", "style_notes": "styling tips", "color_story": "the palette", "weather_notes": "how it handles the weather", "confidence": 0.0-1.0}`

var moodContexts = map[string][]string{
	"casual":       {"relaxed and comfortable", "everyday and effortless", "laid-back and easy-going"},
	"professional": {"workplace appropriate and polished", "business attire with confidence", "professional and sophisticated"},
	"sporty":       {"athletic and active", "performance-oriented and dynamic", "sporty and energetic"},
	"cozy":         {"warm and comfortable", "soft and homey", "snug and relaxed"},
	"date":         {"romantic and attractive", "charming and special", "alluring and confident"},
	"party":        {"fun and festive", "eye-catching and social", "vibrant and celebratory"},
	"elegant":      {"sophisticated and refined", "graceful and classy", "timeless and polished"},
	"trendy":       {"fashionable and current", "stylish and modern", "on-trend and fresh"},
}

var varietyInstructions = []string{
	"Try a different color combination than usual.",
	"Experiment with layering techniques.",
	"Consider unexpected but stylish pairings.",
	"Focus on texture mixing for visual interest.",
	"Think about proportion balance in the outfit.",
}

type promptItem struct {
	ID       uint     `json:"id"`
	Name     string   `json:"name"`
	Color    string   `json:"color,omitempty"`
	Style    string   `json:"style,omitempty"`
	Fabric   string   `json:"fabric,omitempty"`
	Season   string   `json:"season,omitempty"`
	Brand    string   `json:"brand,omitempty"`
	MoodTags []string `json:"mood_tags,omitempty"`
}

type promptHistoryItem struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Style string `json:"style,omitempty"`
	Color string `json:"color,omitempty"`
}

type promptHistory struct {
	Mood  string              `json:"mood"`
	Items []promptHistoryItem `json:"items"`
}

func toPromptItem(item models.ClothingItem) promptItem {
	return promptItem{
		ID:       item.ID,
		Name:     item.Name,
		Color:    item.Color,
		Style:    item.Style,
		Fabric:   item.Fabric,
		Season:   item.Season,
		Brand:    item.Brand,
		MoodTags: []string(item.MoodTags),
	}
}

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

// BuildPrompt renders the user prompt for a language model generator.
func BuildPrompt(in GenerateInput, r *rand.Rand, now time.Time) string {
	mood := languageutil.Canonical(in.Mood)
	moodContext := "general everyday wear"
	if options, ok := moodContexts[mood]; ok {
		moodContext = options[r.Intn(len(options))]
	}
	variety := varietyInstructions[r.Intn(len(varietyInstructions))]

	history := in.History
	if len(history) > historyExamples {
		history = history[len(history)-historyExamples:]
	}
	var recentIDs []uint
	examples := make([]promptHistory, 0, len(history))
	for _, entry := range history {
		example := promptHistory{Mood: entry.Mood, Items: []promptHistoryItem{}}
		for _, item := range entry.Items {
			recentIDs = append(recentIDs, item.ID)
			example.Items = append(example.Items, promptHistoryItem{Name: item.Name, Type: item.Type, Style: item.Style, Color: item.Color})
		}
		examples = append(examples, example)
	}

	groups := GroupByCategory(in.Pool)

	var b strings.Builder
	fmt.Fprintf(&b, "OUTFIT REQUEST #%d:\n", now.Unix())
	fmt.Fprintf(&b, "Weather: %s\nMood: %s (%s)\nSeason: %s\n\n", in.Weather, in.Mood, moodContext, in.Season)
	fmt.Fprintf(&b, "USER'S %s STYLE DNA:\n%s\n\n", strings.ToUpper(mood), mustJSON(in.Profile))
	if len(examples) > 0 {
		fmt.Fprintf(&b, "USER'S OUTFIT HISTORY (examples of what they like):\n%s\n\n", mustJSON(examples))
	}
	b.WriteString("CONTEXT:\n")
	fmt.Fprintf(&b, "- Preferred color scheme: %s\n", in.Profile.PreferredColorScheme)
	fmt.Fprintf(&b, "- Recently worn items to avoid (IDs): %v\n", recentIDs)
	fmt.Fprintf(&b, "- Special instruction: %s\n\n", variety)

	b.WriteString("OUTFIT RULES (you MUST follow these):\n")
	for _, rule := range in.Rules.Composition {
		fmt.Fprintf(&b, "- %s\n", rule)
	}
	b.WriteString("COLOR RULES (60/30/10):\n")
	for _, rule := range in.Rules.Color {
		fmt.Fprintf(&b, "- %s\n", rule)
	}

	b.WriteString("\nAVAILABLE WARDROBE:\n")
	for _, c := range Categories {
		items := make([]promptItem, 0, len(groups[c]))
		for _, item := range groups[c] {
			items = append(items, toPromptItem(item))
		}
		fmt.Fprintf(&b, "%s: %s\n", languageutil.DisplayName(string(c)), mustJSON(items))
	}
	fmt.Fprintf(&b, "\nCreate a complete, layered, %s outfit for %s. %s Respond with JSON only.\n", mood, in.Season, variety)
	return b.String()
}
