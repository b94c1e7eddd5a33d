package summarizer

import (
	"context"
	"fmt"

	"github.com/oranihq/orani-voice-service/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const systemInstruction = "You are an expert assistant that analyzes call transcripts and provides structured JSON output based on user instructions."

// OpenAISummarizer produces structured call summaries through an
// OpenAI-compatible chat completion endpoint. Best effort by contract:
// callers substitute a fixed fallback on any error.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

// New creates a summarizer. baseURL may point at any OpenAI-compatible
// gateway.
func New(apiKey, baseURL, model string) *OpenAISummarizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAISummarizer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Summarize sends the prompt and returns the model's raw JSON text.
func (s *OpenAISummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.5,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: summarization request failed: %v", domain.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: summarizer returned no choices", domain.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}
