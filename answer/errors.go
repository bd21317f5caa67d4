package answer

import "errors"

var (
	// ErrRetrieverRequired indicates a nil retriever was provided.
	ErrRetrieverRequired = errors.New("retriever is required")

	// ErrAIProviderRequired indicates a nil AI provider was provided.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrInvalidConfig indicates invalid generator configuration.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
