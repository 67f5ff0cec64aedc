package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"autoposter/internal/models"
	"autoposter/shared/config"

	"google.golang.org/genai"
)

// ErrCostCeiling signals that the call was skipped to stay within the
// configured spend ceiling. Callers fall back to local content.
var ErrCostCeiling = errors.New("generation skipped: cost ceiling reached")

const promptTemplate = `You are an expert motivational content creator. Generate JSON with keys quote, caption, keywords.
- quote: A short motivational statement under 20 words.
- caption: Short-video caption with compelling hook, CTA, and 4-6 SEO-rich hashtags related to motivation and inspiration.
- keywords: array of 5 SEO keywords focused on motivation and life inspiration.
Ensure the JSON is valid and concise.`

// Generator produces quote/caption/keywords payloads with a Gemini model.
type Generator struct {
	client          *genai.Client
	model           string
	maxOutputTokens int
	tracker         *CostTracker
}

func NewGenerator(cfg *config.Config) (*Generator, error) {
	if cfg.AI.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the content generator")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.AI.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Generator{
		client:          client,
		model:           cfg.AI.Model,
		maxOutputTokens: cfg.AI.MaxOutputTokens,
		tracker:         NewCostTracker(cfg.AI.MaxCostUSD),
	}, nil
}

// Tracker exposes the cumulative usage, mostly for logging.
func (g *Generator) Tracker() *CostTracker {
	return g.tracker
}

// GeneratePost asks the model for a quote/caption/keywords payload. It
// returns ErrCostCeiling without calling the API when the projected spend
// would exceed the ceiling. Worst case is a full prompt plus a full
// completion, so the expected token count is twice the output budget.
func (g *Generator) GeneratePost(ctx context.Context) (*models.GeneratedPost, error) {
	expectedTokens := g.maxOutputTokens * 2
	if !g.tracker.CanAfford(expectedTokens) {
		log.Printf("Skipping generation call to stay within cost ceiling ($%.2f spent so far)", g.tracker.EstimatedCost())
		return nil, ErrCostCeiling
	}

	parts := []*genai.Part{
		genai.NewPartFromText(promptTemplate),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.maxOutputTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}

	if meta := result.UsageMetadata; meta != nil {
		tokens := int(meta.TotalTokenCount)
		if tokens == 0 {
			tokens = int(meta.PromptTokenCount + meta.CandidatesTokenCount)
		}
		g.tracker.Record(tokens)
	}

	responseText := result.Text()
	if responseText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	post, err := parsePostPayload(responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse generation response: %w", err)
	}
	return post, nil
}

// parsePostPayload extracts the first JSON object from the model output and
// validates it into a structured record. Anything that is not an object with
// a non-empty quote is rejected so the caller falls back locally.
func parsePostPayload(response string) (*models.GeneratedPost, error) {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("no JSON object found in response: %s", response)
	}
	jsonStr := response[startIdx : endIdx+1]

	var payload struct {
		Quote    string   `json:"quote"`
		Caption  string   `json:"caption"`
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON %q: %w", jsonStr, err)
	}

	quote := strings.TrimSpace(payload.Quote)
	if quote == "" {
		return nil, fmt.Errorf("payload is missing a quote")
	}

	return &models.GeneratedPost{
		Quote:    quote,
		Caption:  strings.TrimSpace(payload.Caption),
		Keywords: strings.Join(payload.Keywords, ", "),
	}, nil
}
