package outfit

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"wewearapi/logger"
	"wewearapi/models"
	"wewearapi/style"
)

const DefaultGeneratorTimeout = 20 * time.Second

type Source string

const (
	SourceGenerator Source = "generator"
	SourceFallback  Source = "fallback"
	SourceEmpty     Source = "empty"
)

const (
	noCleanItemsReasoning  = "No clean items available in your wardrobe. Time to do some laundry!"
	noCleanItemsStyleNotes = "Clean your clothes first, then come back for outfit suggestions."
)

// Request is the input of one suggestion. Wardrobe is the user's full item set.
type Request struct {
	Wardrobe   []models.ClothingItem
	Weather    string
	Mood       string
	Season     string
	History    []style.HistoryEntry
	ExcludeIDs []uint
}

type Result struct {
	Suggestion
	Items          []models.ClothingItem `json:"items"`
	Source         Source                `json:"source"`
	Profile        style.Profile         `json:"style_profile"`
	SkippedFilters []string              `json:"skipped_filters,omitempty"`
	Warnings       []string              `json:"warnings,omitempty"`
}

type Engine struct {
	generator Generator
	fallback  Generator
	palette   style.Palette
	timeout   time.Duration
	rand      *lockedRand
}

type Option func(*Engine)

// WithGenerator sets the primary generator. Without one every suggestion is rule-based.
func WithGenerator(g Generator) Option {
	return func(e *Engine) { e.generator = g }
}

func WithPalette(p style.Palette) Option {
	return func(e *Engine) { e.palette = p }
}

func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithRand seeds both the pool shuffle and the rule-based fallback.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rand = newLockedRand(r)
		e.fallback = &RuleBased{rand: e.rand}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		palette: style.DefaultPalette(),
		timeout: DefaultGeneratorTimeout,
	}
	e.rand = newLockedRand(nil)
	e.fallback = &RuleBased{rand: e.rand}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Palette() style.Palette {
	return e.palette
}

func (e *Engine) GenerateSuggestion(ctx context.Context, req Request) (Result, error) {
	candidates := excludeIDs(req.Wardrobe, req.ExcludeIDs)
	clean := cleanOnly(candidates)
	if len(clean) == 0 {
		return Result{
			Suggestion: Suggestion{
				SelectedItems: []uint{},
				Reasoning:     noCleanItemsReasoning,
				StyleNotes:    noCleanItemsStyleNotes,
				Confidence:    0,
			},
			Items:  []models.ClothingItem{},
			Source: SourceEmpty,
		}, nil
	}

	pool, skipped := ApplySoft(clean, DefaultFilters(req.Season, req.Mood))
	pool = append([]models.ClothingItem(nil), pool...)
	e.rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	profile := e.palette.BuildProfile(req.Wardrobe, req.History, req.Mood)
	in := GenerateInput{
		Pool:    pool,
		Weather: req.Weather,
		Mood:    req.Mood,
		Season:  req.Season,
		Profile: profile,
		History: req.History,
		Rules:   RulesFor(req.Weather),
	}

	suggestion, source, err := e.generate(ctx, in)
	if err != nil {
		return Result{}, err
	}

	suggestion, warnings := e.repair(suggestion, clean, req.Mood)
	return Result{
		Suggestion:     suggestion,
		Items:          resolve(suggestion.SelectedItems, clean),
		Source:         source,
		Profile:        profile,
		SkippedFilters: skipped,
		Warnings:       warnings,
	}, nil
}

func (e *Engine) generate(ctx context.Context, in GenerateInput) (Suggestion, Source, error) {
	if e.generator != nil {
		gctx, cancel := context.WithTimeout(ctx, e.timeout)
		suggestion, err := e.generator.Generate(gctx, in)
		cancel()
		if err == nil {
			suggestion, err = Validate(suggestion, in.Pool)
		}
		if err == nil {
			return suggestion, SourceGenerator, nil
		}
		logger.L().Warn("generator failed, using rule-based fallback", "error", err)
	}

	suggestion, err := e.fallback.Generate(ctx, in)
	if err != nil {
		return Suggestion{}, "", fmt.Errorf("fallback generator: %w", err)
	}
	return suggestion, SourceFallback, nil
}

// repair appends a shoe when one is missing. An incomplete base layer is only reported.
func (e *Engine) repair(s Suggestion, clean []models.ClothingItem, mood string) (Suggestion, []string) {
	byID := make(map[uint]models.ClothingItem, len(clean))
	for _, item := range clean {
		byID[item.ID] = item
	}
	present := map[Category]bool{}
	for _, id := range s.SelectedItems {
		if item, ok := byID[id]; ok {
			present[CategoryOf(item.Type)] = true
		}
	}

	var warnings []string
	if !present[CategoryShoes] {
		if shoe, ok := pickShoe(clean, mood); ok {
			s.SelectedItems = append(s.SelectedItems, shoe.ID)
			s.Reasoning += fmt.Sprintf(" Added %s to finish the outfit with footwear.", shoe.Name)
			present[CategoryShoes] = true
		} else {
			s.Reasoning += " No clean shoes are available, so footwear is left out."
			warnings = append(warnings, "no clean shoes available")
		}
	}

	switch {
	case present[CategoryDress] && (present[CategoryTop] || present[CategoryBottom]):
		warnings = append(warnings, "dress combined with separates")
		logger.L().Warn("outfit mixes a dress with separates", "items", s.SelectedItems)
	case present[CategoryDress], present[CategoryTop] && present[CategoryBottom]:
	default:
		var missing []string
		if !present[CategoryTop] {
			missing = append(missing, string(CategoryTop))
		}
		if !present[CategoryBottom] {
			missing = append(missing, string(CategoryBottom))
		}
		warnings = append(warnings, fmt.Sprintf("incomplete base layer: missing %v", missing))
		logger.L().Warn("incomplete base layer", "missing", missing, "items", s.SelectedItems)
	}
	return s, warnings
}

func pickShoe(clean []models.ClothingItem, mood string) (models.ClothingItem, bool) {
	var first *models.ClothingItem
	for i, item := range clean {
		if CategoryOf(item.Type) != CategoryShoes {
			continue
		}
		if styleMatchesMood(item.Style, mood) {
			return item, true
		}
		if first == nil {
			first = &clean[i]
		}
	}
	if first == nil {
		return models.ClothingItem{}, false
	}
	return *first, true
}

func resolve(ids []uint, items []models.ClothingItem) []models.ClothingItem {
	byID := make(map[uint]models.ClothingItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	out := make([]models.ClothingItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out
}
