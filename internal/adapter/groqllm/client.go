// Package groqllm integrates an OpenAI-compatible chat completion API for
// demand-insight generation. The default base URL targets Groq; any
// OpenAI-compatible endpoint works.
package groqllm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrInvalidConfig indicates missing required configuration.
var ErrInvalidConfig = errors.New("invalid completion provider configuration")

// Completions are generated with a low temperature for more factual output
// and enough headroom for the full product table.
const (
	temperature = 0.5
	maxTokens   = 2000
)

// Config holds the completion provider settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Validate checks required fields.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: API key required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// Client wraps the langchaingo OpenAI-compatible client.
type Client struct {
	llm *openai.LLM
}

// NewClient creates a completion client for the configured endpoint.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}

	llm, err := openai.New(
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithBaseURL(cfg.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("create completion client: %w", err)
	}
	return &Client{llm: llm}, nil
}

// Complete sends the prompt and returns the model's reply text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reply, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	return reply, nil
}
