package style

import (
	"sort"
	"strings"

	"wewearapi/languageutil"
	"wewearapi/models"
)

const (
	wardrobeWeight = 1
	historyWeight  = 2
	topN           = 3
)

// HistoryEntry is a past outfit with its items resolved.
type HistoryEntry struct {
	Mood  string
	Items []models.ClothingItem
}

// Profile is the user's style DNA.
type Profile struct {
	DominantStyles       []string `json:"dominant_styles"`
	FavoriteColors       []string `json:"favorite_colors"`
	PreferredBrands      []string `json:"preferred_brands"`
	CommonFabrics        []string `json:"common_fabrics"`
	PreferredColorScheme Scheme   `json:"preferred_color_scheme"`
}

// counter keeps first-seen order so ties resolve deterministically.
// Values are matched case-insensitively; a displayed counter reports the
// first-seen spelling instead of the canonical key.
type counter struct {
	counts    map[string]int
	order     []string
	display   map[string]string
	displayed bool
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func newDisplayCounter() *counter {
	return &counter{counts: map[string]int{}, display: map[string]string{}, displayed: true}
}

func (c *counter) add(value string, weight int) {
	key := languageutil.Canonical(value)
	if key == "" {
		return
	}
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
		if c.displayed {
			c.display[key] = strings.TrimSpace(value)
		}
	}
	c.counts[key] += weight
}

func (c *counter) top(n int) []string {
	values := append([]string{}, c.order...)
	sort.SliceStable(values, func(i, j int) bool {
		return c.counts[values[i]] > c.counts[values[j]]
	})
	if len(values) > n {
		values = values[:n]
	}
	if c.displayed {
		for i, key := range values {
			values[i] = c.display[key]
		}
	}
	return values
}

type profileCounters struct {
	styles, colors, brands, fabrics *counter
}

func (pc profileCounters) add(item models.ClothingItem, weight int) {
	pc.styles.add(item.Style, weight)
	pc.colors.add(item.Color, weight)
	pc.brands.add(item.Brand, weight)
	pc.fabrics.add(item.Fabric, weight)
}

// BuildProfile counts the whole wardrobe once and doubles the items of past outfits worn in the same mood.
func (p Palette) BuildProfile(wardrobe []models.ClothingItem, history []HistoryEntry, mood string) Profile {
	pc := profileCounters{newCounter(), newCounter(), newDisplayCounter(), newCounter()}
	for _, item := range wardrobe {
		pc.add(item, wardrobeWeight)
	}
	mood = languageutil.Canonical(mood)
	for _, entry := range history {
		if languageutil.Canonical(entry.Mood) != mood {
			continue
		}
		for _, item := range entry.Items {
			pc.add(item, historyWeight)
		}
	}

	colors := pc.colors.top(topN)
	return Profile{
		DominantStyles:       pc.styles.top(topN),
		FavoriteColors:       colors,
		PreferredBrands:      pc.brands.top(topN),
		CommonFabrics:        pc.fabrics.top(topN),
		PreferredColorScheme: p.InferScheme(colors),
	}
}
