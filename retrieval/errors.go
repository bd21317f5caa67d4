package retrieval

import "errors"

var (
	// ErrVectorIndexRequired indicates a nil vector index was provided.
	ErrVectorIndexRequired = errors.New("vector index is required")

	// ErrAIProviderRequired indicates a nil AI provider was provided.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrEmptyQuery indicates an empty query string.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrInvalidConfig indicates invalid retriever configuration.
	ErrInvalidConfig = errors.New("invalid retriever configuration")
)
