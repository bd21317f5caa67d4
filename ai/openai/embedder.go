package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/fixit/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
// Returned vectors are checked against the configured dimension and
// L2-normalized before they leave this package.
type Embedder struct {
	embedder  embeddings.Embedder
	dimension int
	maxTokens int
	logger    *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for embeddings
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:  embedder,
		dimension: config.EmbeddingDimension,
		maxTokens: config.MaxEmbedTokens,
		logger:    slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := e.checkInput(text); err != nil {
		return nil, err
	}

	e.logger.Debug("generating embedding for single text", "length", len(text))

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrEmbedding, err)
	}

	if len(vectors) == 0 {
		e.logger.Warn("embedder returned empty result")
		return nil, fmt.Errorf("%w: service returned no vectors", ai.ErrEmbedding)
	}

	return e.checkVector(vectors[0])
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	for _, text := range texts {
		if err := e.checkInput(text); err != nil {
			return nil, err
		}
	}

	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrEmbedding, err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d vectors, received %d", ai.ErrEmbedding, len(texts), len(vectors))
	}

	for i := range vectors {
		vectors[i], err = e.checkVector(vectors[i])
		if err != nil {
			return nil, err
		}
	}

	return vectors, nil
}

// checkInput rejects input the model cannot embed. The caller must truncate
// or reject upstream; nothing is truncated here.
func (e *Embedder) checkInput(text string) error {
	if text == "" {
		return fmt.Errorf("%w: %w", ai.ErrEmbedding, ai.ErrEmptyInput)
	}
	if n := countTokens(text); n > e.maxTokens {
		return fmt.Errorf("%w: %w: %d tokens, limit %d", ai.ErrEmbedding, ai.ErrInputTooLong, n, e.maxTokens)
	}
	return nil
}

// checkVector enforces the configured dimension and unit length.
func (e *Embedder) checkVector(v []float32) ([]float32, error) {
	if len(v) != e.dimension {
		return nil, fmt.Errorf("%w: %w: got %d, want %d", ai.ErrEmbedding, ai.ErrDimensionMismatch, len(v), e.dimension)
	}
	return ai.NormalizeVector(v), nil
}
