package packing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"wewearapi/logger"
	"wewearapi/models"
	"wewearapi/outfit"

	"google.golang.org/genai"
)

const systemPrompt = `You are a packing assistant. Build a versatile, minimal packing list for a trip from the user's clean wardrobe.
Respect the trip season: never pack winter items for a summer or beach trip, nor shorts for a winter trip unless the notes ask for it.
If the notes describe activities (hiking, a formal dinner), include the items those activities need first, then fill the rest with mix-and-match pieces.
Only reference wardrobe items by their id. Do not invent items; basics like socks are added separately.
Respond ONLY with JSON of this shape:
{"reasoning": "<one short paragraph>", "packing_list": {"tops": [{"id": 1, "name": "..."}], "bottoms": [], "outerwear": [], "shoes": [], "dresses": [], "accessories": []}}`

type promptItem struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Style  string `json:"style,omitempty"`
	Fabric string `json:"fabric,omitempty"`
	Season string `json:"season,omitempty"`
}

// BuildPrompt renders the trip and the wardrobe grouped by category.
func BuildPrompt(in Input) string {
	groups := outfit.GroupByCategory(in.Wardrobe)
	wardrobe := make(map[string][]promptItem, len(outfit.Categories))
	for _, category := range outfit.Categories {
		items := make([]promptItem, 0, len(groups[category]))
		for _, item := range groups[category] {
			items = append(items, promptItem{ID: item.ID, Name: item.Name, Style: item.Style, Fabric: item.Fabric, Season: item.Season})
		}
		wardrobe[string(category)] = items
	}
	encoded, _ := json.MarshalIndent(wardrobe, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "Trip to %s, %d day(s), starting %s (season: %s).\n", destinationOr(in.Destination), in.Days(), in.Start.Format(models.TripDateLayout), in.Season())
	if in.TripType != "" {
		fmt.Fprintf(&b, "Trip type: %s.\n", in.TripType)
	}
	if in.Weather != "" {
		fmt.Fprintf(&b, "Weather at the destination: %s.\n", in.Weather)
	}
	if in.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", in.Notes)
	}
	fmt.Fprintf(&b, "Available clean wardrobe:\n%s\n", encoded)
	return b.String()
}

// GeminiGenerator asks a Gemini model for the packing list.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, outfit.ErrGeneratorUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", outfit.ErrGeneratorUnavailable, err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, in Input) (List, error) {
	temperature := float32(0.6)
	result, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{{Parts: []*genai.Part{{Text: BuildPrompt(in)}}}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  2000,
		Temperature:      &temperature,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	})
	if err != nil {
		return List{}, fmt.Errorf("%w: %v", outfit.ErrGeneratorUnavailable, err)
	}
	if result.PromptFeedback != nil {
		return List{}, fmt.Errorf("%w: prompt blocked: %s", outfit.ErrGeneratorUnavailable, result.PromptFeedback.BlockReasonMessage)
	}
	if result.UsageMetadata != nil {
		logger.L().Debug("gemini packing list",
			"model", g.model,
			"input_tokens", result.UsageMetadata.PromptTokenCount,
			"output_tokens", result.UsageMetadata.CandidatesTokenCount,
		)
	}
	return ParseList(result.Text())
}

type rawList struct {
	Reasoning   string                       `json:"reasoning"`
	PackingList map[string][]json.RawMessage `json:"packing_list"`
}

// ParseList decodes model output. A line is either {"id": 1, "name": "..."} or a bare name.
func ParseList(text string) (List, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return List{}, fmt.Errorf("%w: no JSON object found", ErrMalformedList)
	}
	var raw rawList
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return List{}, fmt.Errorf("%w: %v", ErrMalformedList, err)
	}

	byCategory := make(map[string][]json.RawMessage, len(raw.PackingList))
	for key, lines := range raw.PackingList {
		key = strings.ToLower(strings.TrimSpace(key))
		byCategory[key] = append(byCategory[key], lines...)
	}

	list := List{Reasoning: raw.Reasoning}
	for _, category := range outfit.Categories {
		for _, line := range byCategory[string(category)] {
			entry := Entry{Category: string(category), Quantity: 1}
			var name string
			if err := json.Unmarshal(line, &name); err == nil {
				entry.Name = name
			} else if err := json.Unmarshal(line, &entry); err != nil {
				return List{}, fmt.Errorf("%w: %v", ErrMalformedList, err)
			}
			entry.Category = string(category)
			list.Entries = append(list.Entries, entry)
		}
	}
	return list, nil
}
