package laundry

import (
	"strings"

	"wewearapi/models"
)

// Thresholds maps a clothing type to the number of wears tolerated before washing.
type Thresholds struct {
	Defaults map[string]int
	Fallback int
	custom   map[string]int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Defaults: map[string]int{
			"t-shirt":     2,
			"shirt":       2,
			"blouse":      2,
			"tank-top":    2,
			"dress":       2,
			"underwear":   1,
			"socks":       1,
			"workout":     1,
			"jeans":       5,
			"pants":       3,
			"shorts":      3,
			"skirt":       3,
			"sweater":     4,
			"jacket":      8,
			"coat":        10,
			"cardigan":    4,
			"shoes":       20,
			"accessories": 10,
		},
		Fallback: 3,
	}
}

// WithOverrides returns a copy where the user's custom values take precedence.
func (t Thresholds) WithOverrides(custom map[string]int) Thresholds {
	merged := make(map[string]int, len(custom))
	for k, v := range custom {
		merged[strings.ToLower(k)] = v
	}
	return Thresholds{Defaults: t.Defaults, Fallback: t.Fallback, custom: merged}
}

// ForUser is a shortcut for DefaultThresholds().WithOverrides(user prefs).
func ForUser(base Thresholds, user models.UserAccount) Thresholds {
	return base.WithOverrides(user.CustomThresholds())
}

func (t Thresholds) base(itemType string) int {
	if v, ok := t.custom[itemType]; ok {
		return v
	}
	if v, ok := t.Defaults[itemType]; ok {
		return v
	}
	return t.Fallback
}

// For resolves the fabric-adjusted threshold of an item type.
func (t Thresholds) For(itemType, fabric string) int {
	return AdjustForFabric(t.base(itemType), fabric)
}

func (t Thresholds) ForItem(item models.ClothingItem) int {
	return t.For(item.Type, item.Fabric)
}

// AdjustForFabric: pure cotton and synthetics get washed sooner, wool later.
func AdjustForFabric(threshold int, fabric string) int {
	if threshold <= 0 {
		return threshold
	}
	f := strings.ToLower(fabric)
	switch {
	case strings.Contains(f, "cotton") && !strings.Contains(f, "blend"):
		threshold--
	case strings.Contains(f, "wool"):
		threshold += 2
	case strings.Contains(f, "synthetic") || strings.Contains(f, "polyester"):
		threshold--
	default:
		return threshold
	}
	if threshold < 1 {
		return 1
	}
	return threshold
}
