package packing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wewearapi/logger"
	"wewearapi/models"
	"wewearapi/outfit"
)

// CategoryEssentials holds the unlinked basics added to every list.
const CategoryEssentials = "essentials"

var ErrMalformedList = errors.New("packing generator returned malformed output")

const emptyWardrobeReasoning = "Your wardrobe is empty or all items are dirty. Can't create a packing list."

// Entry is one line of a generated list. ItemID is set when the line is a wardrobe item.
type Entry struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	ItemID   *uint  `json:"id,omitempty"`
	Quantity int    `json:"quantity"`
}

type List struct {
	Reasoning string  `json:"reasoning"`
	Entries   []Entry `json:"entries"`
}

// Input describes the trip. Wardrobe holds the user's items; dirty ones are ignored.
type Input struct {
	Destination string
	TripType    string
	Notes       string
	Start       time.Time
	End         time.Time
	Weather     string
	Wardrobe    []models.ClothingItem
}

func (in Input) Days() int {
	days := int(in.End.Sub(in.Start).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

func (in Input) Season() string {
	return SeasonFor(in.Start)
}

// SeasonFor is the northern hemisphere meteorological season of a date.
func SeasonFor(t time.Time) string {
	switch t.Month() {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "fall"
	}
}

type Generator interface {
	Generate(ctx context.Context, in Input) (List, error)
}

type Planner struct {
	generator Generator
	fallback  Generator
	timeout   time.Duration
}

type Option func(*Planner)

func WithGenerator(g Generator) Option {
	return func(p *Planner) { p.generator = g }
}

func WithTimeout(d time.Duration) Option {
	return func(p *Planner) { p.timeout = d }
}

func NewPlanner(opts ...Option) *Planner {
	p := &Planner{fallback: RuleBased{}, timeout: outfit.DefaultGeneratorTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan builds the packing list for a trip from the clean wardrobe. A failing
// generator falls back to the rule-based planner. Essentials are always added.
func (p *Planner) Plan(ctx context.Context, in Input) (List, outfit.Source, error) {
	clean := make([]models.ClothingItem, 0, len(in.Wardrobe))
	for _, item := range in.Wardrobe {
		if item.IsClean {
			clean = append(clean, item)
		}
	}
	in.Wardrobe = clean
	if len(clean) == 0 {
		return WithEssentials(List{Reasoning: emptyWardrobeReasoning}, in.Days()), outfit.SourceEmpty, nil
	}

	if p.generator != nil {
		gctx, cancel := context.WithTimeout(ctx, p.timeout)
		list, err := p.generator.Generate(gctx, in)
		cancel()
		if err == nil {
			list, err = Resolve(list, clean)
		}
		if err == nil {
			return WithEssentials(list, in.Days()), outfit.SourceGenerator, nil
		}
		logger.L().Warn("packing generator failed, using rule-based list", "error", err)
	}

	list, err := p.fallback.Generate(ctx, in)
	if err != nil {
		return List{}, "", fmt.Errorf("fallback packing list: %w", err)
	}
	return WithEssentials(list, in.Days()), outfit.SourceFallback, nil
}

// Resolve links generated lines to the clean wardrobe, by id first and then by
// name, and drops duplicate names. Lines that match nothing stay unlinked.
func Resolve(list List, clean []models.ClothingItem) (List, error) {
	byID := make(map[uint]models.ClothingItem, len(clean))
	byName := make(map[string]models.ClothingItem, len(clean))
	for _, item := range clean {
		byID[item.ID] = item
		if _, ok := byName[strings.ToLower(item.Name)]; !ok {
			byName[strings.ToLower(item.Name)] = item
		}
	}

	seen := map[string]bool{}
	out := List{Reasoning: strings.TrimSpace(list.Reasoning)}
	for _, entry := range list.Entries {
		entry.Name = strings.TrimSpace(entry.Name)
		item, linked := models.ClothingItem{}, false
		if entry.ItemID != nil {
			item, linked = byID[*entry.ItemID]
		}
		if !linked {
			item, linked = byName[strings.ToLower(entry.Name)]
		}
		entry.ItemID = nil
		if linked {
			id := item.ID
			entry.ItemID = &id
			entry.Name = item.Name
			entry.Category = string(outfit.CategoryOf(item.Type))
		}
		key := strings.ToLower(entry.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if entry.Quantity < 1 {
			entry.Quantity = 1
		}
		if entry.Category == "" {
			entry.Category = string(outfit.CategoryAccessory)
		}
		out.Entries = append(out.Entries, entry)
	}
	if len(out.Entries) == 0 {
		return list, fmt.Errorf("%w: no usable lines", ErrMalformedList)
	}
	return out, nil
}

// WithEssentials adds socks and underwear for every day plus one pajamas,
// replacing the quantity of a line that already names them.
func WithEssentials(list List, days int) List {
	essentials := []Entry{
		{Category: CategoryEssentials, Name: "Socks", Quantity: days},
		{Category: CategoryEssentials, Name: "Underwear", Quantity: days},
		{Category: CategoryEssentials, Name: "Pajamas", Quantity: 1},
	}
	entries := append([]Entry(nil), list.Entries...)
	for _, essential := range essentials {
		found := false
		for i := range entries {
			if strings.EqualFold(entries[i].Name, essential.Name) {
				entries[i].Quantity = essential.Quantity
				found = true
				break
			}
		}
		if !found {
			entries = append(entries, essential)
		}
	}
	list.Entries = entries
	return list
}
