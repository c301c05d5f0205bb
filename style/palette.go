package style

import "wewearapi/languageutil"

type Scheme string

const (
	SchemeMonochromatic Scheme = "monochromatic"
	SchemeComplementary Scheme = "complementary"
	SchemeAnalogous     Scheme = "analogous"
	SchemeRandom        Scheme = "random"
)

// Palette is a color wheel plus the aliases that fold clothing color names onto it.
type Palette struct {
	Wheel   []string
	Aliases map[string]string
}

func DefaultPalette() Palette {
	return Palette{
		Wheel: []string{
			"red", "red-orange", "orange", "yellow-orange", "yellow", "yellow-green",
			"green", "blue-green", "blue", "blue-violet", "violet", "red-violet",
		},
		Aliases: map[string]string{
			"pink": "red", "rose": "red-violet", "burgundy": "red", "maroon": "red",
			"coral": "red-orange", "peach": "orange", "tan": "yellow-orange", "beige": "yellow-orange",
			"mustard": "yellow", "gold": "yellow", "lime": "yellow-green", "olive": "yellow-green",
			"teal": "blue-green", "turquoise": "blue-green", "aqua": "blue-green", "mint": "green",
			"navy": "blue", "sky blue": "blue", "royal blue": "blue", "indigo": "blue-violet",
			"purple": "violet", "lavender": "violet", "magenta": "red-violet",
			"brown": "orange", "cream": "yellow", "ivory": "yellow",
		},
	}
}

// WithOverrides replaces the wheel when one is given and adds or replaces aliases.
func (p Palette) WithOverrides(wheel []string, aliases map[string]string) Palette {
	out := Palette{Wheel: p.Wheel, Aliases: make(map[string]string, len(p.Aliases)+len(aliases))}
	if len(wheel) > 0 {
		out.Wheel = make([]string, 0, len(wheel))
		for _, hue := range wheel {
			out.Wheel = append(out.Wheel, languageutil.Canonical(hue))
		}
	}
	for k, v := range p.Aliases {
		out.Aliases[k] = v
	}
	for k, v := range aliases {
		out.Aliases[languageutil.Canonical(k)] = languageutil.Canonical(v)
	}
	return out
}

// Position returns the wheel index of a color name after alias folding.
func (p Palette) Position(color string) (int, bool) {
	c := languageutil.Canonical(color)
	if alias, ok := p.Aliases[c]; ok {
		c = alias
	}
	for i, hue := range p.Wheel {
		if hue == c {
			return i, true
		}
	}
	return 0, false
}

func (p Palette) Normalize(color string) (string, bool) {
	i, ok := p.Position(color)
	if !ok {
		return "", false
	}
	return p.Wheel[i], true
}

func (p Palette) distance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if n := len(p.Wheel); n-d < d {
		d = n - d
	}
	return d
}

// Complement is the hue opposite the color, empty when the color is not on the wheel.
func (p Palette) Complement(color string) string {
	i, ok := p.Position(color)
	if !ok || len(p.Wheel) == 0 {
		return ""
	}
	return p.Wheel[(i+len(p.Wheel)/2)%len(p.Wheel)]
}

// InferScheme classifies favorite colors. Colors that are not on the wheel are ignored.
func (p Palette) InferScheme(colors []string) Scheme {
	positions := make([]int, 0, len(colors))
	for _, color := range colors {
		if i, ok := p.Position(color); ok {
			positions = append(positions, i)
		}
	}
	if len(positions) < 2 {
		return SchemeRandom
	}

	mono := true
	for _, pos := range positions[1:] {
		if pos != positions[0] {
			mono = false
			break
		}
	}
	if mono {
		return SchemeMonochromatic
	}

	half := len(p.Wheel) / 2
	if anyPair(positions, func(a, b int) bool { return p.distance(a, b) == half }) {
		return SchemeComplementary
	}
	if anyPair(positions, func(a, b int) bool { return p.distance(a, b) == 1 }) {
		return SchemeAnalogous
	}
	return SchemeRandom
}

func anyPair(positions []int, match func(a, b int) bool) bool {
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			if match(positions[i], positions[j]) {
				return true
			}
		}
	}
	return false
}
