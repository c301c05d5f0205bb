package outfit

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const coldBelowCelsius = 15

var temperatureRule = regexp.MustCompile(`(?i)(-?\d+(?:\.\d+)?)\s*(°\s*[CF]?|[CF]\b|%)?`)

// Temperature returns the temperature of a weather description in Celsius.
// A number with a degree sign or unit wins over a bare one; percentages are skipped
// and Fahrenheit is converted.
func Temperature(weather string) (int, bool) {
	bare, haveBare := 0, false
	for _, m := range temperatureRule.FindAllStringSubmatch(weather, -1) {
		if m[2] == "%" {
			continue
		}
		unit := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(m[2], "°")))
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if unit == "F" {
			v = (v - 32) * 5 / 9
		}
		if m[2] != "" {
			return int(math.Round(v)), true
		}
		if !haveBare {
			bare, haveBare = int(math.Round(v)), true
		}
	}
	return bare, haveBare
}

func containsWord(weather string, words ...string) bool {
	w := strings.ToLower(weather)
	for _, word := range words {
		if strings.Contains(w, word) {
			return true
		}
	}
	return false
}

func IsCold(weather string) bool {
	if t, ok := Temperature(weather); ok && t < coldBelowCelsius {
		return true
	}
	return containsWord(weather, "cold", "cool", "chilly", "snow")
}

func IsRainy(weather string) bool {
	return containsWord(weather, "rain", "shower", "drizzle", "storm")
}
