package packing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"wewearapi/models"
	"wewearapi/outfit"
)

// RuleBased packs the freshest in-season items in amounts scaled to the trip length.
type RuleBased struct{}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func quotas(days int, layered bool) map[outfit.Category]int {
	q := map[outfit.Category]int{
		outfit.CategoryTop:       clamp(days, 1, 7),
		outfit.CategoryBottom:    clamp((days+1)/2, 1, 4),
		outfit.CategoryShoes:     clamp(1+days/5, 1, 2),
		outfit.CategoryAccessory: clamp(days/3, 0, 2),
	}
	if days >= 3 {
		q[outfit.CategoryDress] = 1
	}
	if layered {
		q[outfit.CategoryOuterwear] = 1
	}
	return q
}

// freshest orders by wears since the last wash, then id.
func freshest(items []models.ClothingItem, n int) []models.ClothingItem {
	sorted := append([]models.ClothingItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].WearCountSinceWash != sorted[j].WearCountSinceWash {
			return sorted[i].WearCountSinceWash < sorted[j].WearCountSinceWash
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func (RuleBased) Generate(ctx context.Context, in Input) (List, error) {
	if err := ctx.Err(); err != nil {
		return List{}, err
	}
	season := in.Season()
	days := in.Days()
	layered := season == "winter" || outfit.IsCold(in.Weather) || outfit.IsRainy(in.Weather)

	pool, skipped := outfit.ApplySoft(in.Wardrobe, []outfit.Filter{outfit.SeasonFilter(season)})
	groups := outfit.GroupByCategory(pool)
	q := quotas(days, layered)

	var list List
	for _, category := range outfit.Categories {
		for _, item := range freshest(groups[category], q[category]) {
			id := item.ID
			list.Entries = append(list.Entries, Entry{Category: string(category), Name: item.Name, ItemID: &id, Quantity: 1})
		}
	}

	clauses := []string{fmt.Sprintf("Packed for %d day(s) in %s during %s", days, destinationOr(in.Destination), season)}
	if layered {
		if len(groups[outfit.CategoryOuterwear]) > 0 {
			clauses = append(clauses, "Added a layer for cold or wet weather")
		} else {
			clauses = append(clauses, "No clean outerwear for the cold, consider washing a jacket")
		}
	}
	if len(skipped) > 0 {
		clauses = append(clauses, fmt.Sprintf("Few clean %s items, so pieces from other seasons are included", season))
	}
	clauses = append(clauses, "Tops and bottoms are chosen to mix and match")
	list.Reasoning = strings.Join(clauses, ". ") + "."
	return list, nil
}

func destinationOr(destination string) string {
	if strings.TrimSpace(destination) == "" {
		return "your destination"
	}
	return destination
}
