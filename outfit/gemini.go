package outfit

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"wewearapi/logger"

	"google.golang.org/genai"
)

func floatPointer(f float32) *float32 {
	return &f
}

// GeminiGenerator asks a Gemini model for the outfit.
type GeminiGenerator struct {
	client *genai.Client
	model  string

	mu   sync.Mutex
	rand *rand.Rand
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrGeneratorUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}
	return &GeminiGenerator{
		client: client,
		model:  model,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (g *GeminiGenerator) prompt(in GenerateInput) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return BuildPrompt(in, g.rand, time.Now())
}

func (g *GeminiGenerator) Generate(ctx context.Context, in GenerateInput) (Suggestion, error) {
	parts := []*genai.Part{{Text: g.prompt(in)}}
	result, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  1500,
		Temperature:      floatPointer(0.7),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	})
	if err != nil {
		return Suggestion{}, fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}
	if result.PromptFeedback != nil {
		return Suggestion{}, fmt.Errorf("%w: prompt blocked: %s", ErrGeneratorUnavailable, result.PromptFeedback.BlockReasonMessage)
	}
	for _, cand := range result.Candidates {
		for _, rating := range cand.SafetyRatings {
			if rating.Blocked {
				return Suggestion{}, fmt.Errorf("%w: blocked by safety setting %s", ErrGeneratorUnavailable, rating.Category)
			}
		}
	}
	if result.UsageMetadata != nil {
		logger.L().Debug("gemini outfit suggestion",
			"model", g.model,
			"input_tokens", result.UsageMetadata.PromptTokenCount,
			"output_tokens", result.UsageMetadata.CandidatesTokenCount,
			"total_tokens", result.UsageMetadata.TotalTokenCount,
		)
	}
	return ParseSuggestion(result.Text())
}

// ParseSuggestion decodes model output, tolerating code fences and text around the JSON object.
func ParseSuggestion(text string) (Suggestion, error) {
	text = stripCodeFence(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Suggestion{}, fmt.Errorf("%w: no JSON object found", ErrMalformedOutput)
	}
	var s Suggestion
	if err := json.Unmarshal([]byte(text[start:end+1]), &s); err != nil {
		return Suggestion{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return s, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.Index(text, "\n"); nl >= 0 {
		text = text[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(text), "```")
}
