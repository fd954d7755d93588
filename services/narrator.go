package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"spark-feed/config"
	"spark-feed/logging"
	"spark-feed/models"
	"spark-feed/prompts"
)

// maxNarrativeHighlights bounds the prompt size
const maxNarrativeHighlights = 5

// chatCompleter is the slice of the OpenAI client the narrator uses
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// DigestNarrator writes a one-sentence narrative for a digest through an
// OpenAI-compatible chat API. Narratives are cached per user, day and summary.
type DigestNarrator struct {
	client chatCompleter
	model  string
	cache  sync.Map
}

// NewDigestNarrator creates a narrator for the configured provider
func NewDigestNarrator(cfg config.LLMConfig) (*DigestNarrator, error) {
	var clientConfig openai.ClientConfig

	switch cfg.Provider {
	case "openai":
		clientConfig = openai.DefaultConfig(cfg.OpenAIKey)
	case "groq":
		clientConfig = openai.DefaultConfig(cfg.GroqKey)
		clientConfig.BaseURL = cfg.BaseURL
	default:
		return nil, fmt.Errorf("invalid LLM provider: %s", cfg.Provider)
	}

	return &DigestNarrator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.NarrativeModel,
	}, nil
}

// narrativeInput is the JSON handed to the model
type narrativeInput struct {
	Date       string                `json:"date"`
	Summary    models.DigestSummary  `json:"summary"`
	Highlights []string              `json:"highlights"`
	Insights   models.DigestInsights `json:"insights"`
}

// Narrate returns the narrative for digest, from cache when the same day
// was narrated before with identical counters
func (n *DigestNarrator) Narrate(ctx context.Context, userID string, digest *models.DigestResult) (string, error) {
	key := narrativeCacheKey(userID, digest)
	if cached, ok := n.cache.Load(key); ok {
		return cached.(string), nil
	}

	input := narrativeInput{
		Date:     digest.Date,
		Summary:  digest.Summary,
		Insights: digest.Insights,
	}
	for i, h := range digest.Highlights {
		if i == maxNarrativeHighlights {
			break
		}
		input.Highlights = append(input.Highlights, h.Title+": "+h.Description)
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to encode narrative input: %w", err)
	}

	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompts.DigestNarrativePrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		Temperature: 0.4,
		MaxTokens:   80,
	})
	if err != nil {
		return "", fmt.Errorf("narrative completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("narrative completion returned no choices")
	}

	narrative := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"`)
	if narrative == "" {
		return "", errors.New("narrative completion was empty")
	}

	n.cache.Store(key, narrative)
	return narrative, nil
}

// PurgeCache drops every cached narrative and returns how many were removed
func (n *DigestNarrator) PurgeCache() int {
	removed := 0
	n.cache.Range(func(key, _ interface{}) bool {
		n.cache.Delete(key)
		removed++
		return true
	})
	logging.Info().Int("entries", removed).Msg("Narrative cache purged")
	return removed
}

func narrativeCacheKey(userID string, d *models.DigestResult) string {
	s := d.Summary
	return fmt.Sprintf("%s|%s|%d|%d|%d|%d", userID, d.Date, s.TotalConnections, s.NewSparks, s.RevisitedSpots, s.MeaningfulInteractions)
}
