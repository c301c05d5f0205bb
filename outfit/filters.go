package outfit

import (
	"wewearapi/languageutil"
	"wewearapi/models"
)

// Filter is one soft constraint of the candidate pipeline.
type Filter struct {
	Name string
	Keep func(models.ClothingItem) bool
}

// ApplySoft applies filters in order. A filter that would empty the pool is skipped
// and its name is reported.
func ApplySoft(pool []models.ClothingItem, filters []Filter) ([]models.ClothingItem, []string) {
	var skipped []string
	for _, f := range filters {
		kept := make([]models.ClothingItem, 0, len(pool))
		for _, item := range pool {
			if f.Keep(item) {
				kept = append(kept, item)
			}
		}
		if len(kept) == 0 {
			skipped = append(skipped, f.Name)
			continue
		}
		pool = kept
	}
	return pool, skipped
}

// SeasonFilter keeps items of the requested season or "all". An empty or "any" season keeps everything.
func SeasonFilter(season string) Filter {
	season = languageutil.Canonical(season)
	return Filter{
		Name: "season",
		Keep: func(item models.ClothingItem) bool {
			if season == "" || season == "any" {
				return true
			}
			s := languageutil.Canonical(item.Season)
			return s == season || s == models.SeasonAll
		},
	}
}

// StyleFilter keeps items without a style or whose style equals the mood.
func StyleFilter(mood string) Filter {
	mood = languageutil.Canonical(mood)
	return Filter{
		Name: "style",
		Keep: func(item models.ClothingItem) bool {
			s := languageutil.Canonical(item.Style)
			return s == "" || s == mood
		},
	}
}

func DefaultFilters(season, mood string) []Filter {
	return []Filter{SeasonFilter(season), StyleFilter(mood)}
}

func excludeIDs(items []models.ClothingItem, ids []uint) []models.ClothingItem {
	if len(ids) == 0 {
		return items
	}
	skip := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}
	out := make([]models.ClothingItem, 0, len(items))
	for _, item := range items {
		if _, ok := skip[item.ID]; !ok {
			out = append(out, item)
		}
	}
	return out
}

func cleanOnly(items []models.ClothingItem) []models.ClothingItem {
	out := make([]models.ClothingItem, 0, len(items))
	for _, item := range items {
		if item.IsClean {
			out = append(out, item)
		}
	}
	return out
}
