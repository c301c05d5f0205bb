package outfit

import (
	"context"
	"fmt"
	"math"
	"strings"

	"wewearapi/languageutil"
	"wewearapi/models"
)

var dressMoods = map[string]bool{"date": true, "elegant": true, "party": true}

var moodStyles = map[string][]string{
	"professional": {"formal", "business"},
	"casual":       {"casual"},
	"sporty":       {"sporty", "athletic"},
	"elegant":      {"elegant", "formal"},
	"party":        {"trendy", "elegant"},
	"cozy":         {"casual"},
}

var moodTips = map[string]string{
	"casual":       "Keep it comfortable and relaxed. Roll up sleeves or add casual accessories.",
	"professional": "Ensure clean lines and polished appearance. Tuck in shirts and choose minimal accessories.",
	"sporty":       "Focus on comfort and functionality. Layer appropriately for activity level.",
	"cozy":         "Prioritize soft textures and comfort. Don't be afraid to layer for extra warmth.",
	"date":         "Balance comfort with attractiveness. Pay attention to fit and choose flattering silhouettes.",
	"party":        "Have fun with colors and textures. Accessories can elevate the look.",
	"elegant":      "Focus on quality fabrics and classic silhouettes. Less is often more.",
}

func MoodTip(mood string) string {
	if tip, ok := moodTips[languageutil.Canonical(mood)]; ok {
		return tip
	}
	return "Choose pieces that make you feel confident and comfortable."
}

func styleMatchesMood(itemStyle, mood string) bool {
	s := languageutil.Canonical(itemStyle)
	m := languageutil.Canonical(mood)
	if s == "" {
		return false
	}
	if s == m {
		return true
	}
	for _, preferred := range moodStyles[m] {
		if s == preferred {
			return true
		}
	}
	return false
}

// RuleBased is the deterministic-structure fallback generator. Only the picks
// within a category and the confidence are random.
type RuleBased struct {
	rand *lockedRand
}

// pick prefers an item styled for the mood, else any.
func (g *RuleBased) pick(items []models.ClothingItem, mood string) (models.ClothingItem, bool) {
	if len(items) == 0 {
		return models.ClothingItem{}, false
	}
	var matching []models.ClothingItem
	for _, item := range items {
		if styleMatchesMood(item.Style, mood) {
			matching = append(matching, item)
		}
	}
	if len(matching) > 0 {
		items = matching
	}
	return items[g.rand.Intn(len(items))], true
}

func (g *RuleBased) Generate(ctx context.Context, in GenerateInput) (Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return Suggestion{}, err
	}
	groups := GroupByCategory(in.Pool)
	mood := languageutil.Canonical(in.Mood)

	var selected []uint
	var clauses []string
	add := func(item models.ClothingItem, clause string) {
		selected = append(selected, item.ID)
		clauses = append(clauses, clause)
	}

	dresses := groups[CategoryDress]
	if len(dresses) > 0 && dressMoods[mood] && g.rand.Float64() > 0.3 {
		dress, _ := g.pick(dresses, mood)
		add(dress, fmt.Sprintf("Selected %s as it's perfect for a %s mood", dress.Name, mood))
	} else {
		if top, ok := g.pick(groups[CategoryTop], mood); ok {
			add(top, fmt.Sprintf("Chose %s for the top", top.Name))
		} else {
			clauses = append(clauses, "No clean tops available")
		}
		if bottom, ok := g.pick(groups[CategoryBottom], mood); ok {
			add(bottom, fmt.Sprintf("Paired with %s for the bottom", bottom.Name))
		} else {
			clauses = append(clauses, "No clean bottoms available")
		}
	}

	if shoe, ok := g.pick(groups[CategoryShoes], mood); ok {
		add(shoe, fmt.Sprintf("Added %s to complete the look", shoe.Name))
	} else {
		clauses = append(clauses, "No clean shoes available")
	}

	if in.Rules.OuterwearRequired && len(groups[CategoryOuterwear]) > 0 {
		layer, _ := g.pick(groups[CategoryOuterwear], mood)
		add(layer, fmt.Sprintf("Added %s for warmth/protection", layer.Name))
	}

	if len(selected) == 0 && len(in.Pool) > 0 {
		item := in.Pool[g.rand.Intn(len(in.Pool))]
		add(item, fmt.Sprintf("Built the look around %s", item.Name))
	}

	reasoning := strings.Join(clauses, ". ") +
		fmt.Sprintf(". This combination works well for %s mood and %s weather.", in.Mood, in.Weather)

	return Suggestion{
		SelectedItems: selected,
		Reasoning:     reasoning,
		StyleNotes:    MoodTip(mood),
		WeatherNotes:  fmt.Sprintf("Appropriate for %s conditions", in.Weather),
		Confidence:    math.Round((0.6+g.rand.Float64()*0.2)*100) / 100,
	}, nil
}
