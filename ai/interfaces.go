package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector is L2-normalized to unit length.
	// Returns an error wrapping ErrEmptyInput for empty text and
	// ErrInputTooLong for text beyond the model's token limit; the caller
	// must truncate or reject upstream, nothing is truncated silently.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces answer text from a fully assembled prompt.
// Generation parameters (temperature, max tokens) are fixed at construction.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate invokes the language model with the given prompt and returns
	// the answer text. Failures wrap ErrProvider.
	Generate(ctx context.Context, prompt string) (string, error)
}

// TextExtractor converts uploaded file bytes into raw text.
// The real extraction engine is an external service; the core only depends
// on this narrow interface.
type TextExtractor interface {
	// Extract returns the raw text of the file. Unreadable, corrupt or
	// unsupported input fails with an error wrapping ErrExtraction.
	Extract(ctx context.Context, fileBytes []byte, fileType string) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Generator instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the answer generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
