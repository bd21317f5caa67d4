package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/fixit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	llm         llms.Model
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.LLMHost),
		openai.WithToken("none"),
		openai.WithModel(config.LLMModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		llm:         client,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
		logger:      slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new text generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate produces a completion for the given prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: %w", ai.ErrProvider, ai.ErrEmptyInput)
	}

	g.logger.Debug("generating completion", "prompt_length", len(prompt))

	resp, err := g.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		},
		llms.WithTemperature(g.temperature),
		llms.WithMaxTokens(g.maxTokens),
	)
	if err != nil {
		g.logger.Error("completion failed", "err", err)
		return "", fmt.Errorf("%w: %w", ai.ErrProvider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: model returned no choices", ai.ErrProvider)
	}

	return resp.Choices[0].Content, nil
}
