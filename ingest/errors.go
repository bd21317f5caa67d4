package ingest

import "errors"

var (
	// ErrDocumentRepositoryRequired indicates a nil document repository was provided.
	ErrDocumentRepositoryRequired = errors.New("document repository is required")

	// ErrVectorIndexRequired indicates a nil vector index was provided.
	ErrVectorIndexRequired = errors.New("vector index is required")

	// ErrAIProviderRequired indicates a nil AI provider was provided.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrUnsupportedFileType indicates a file type no extractor handles.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrInsufficientText indicates extraction produced too little text to index.
	ErrInsufficientText = errors.New("insufficient text extracted from document")

	// ErrAlreadyProcessing indicates the document already has a processing job in flight.
	ErrAlreadyProcessing = errors.New("document is already being processed")

	// ErrInvalidChunking indicates invalid chunker configuration.
	ErrInvalidChunking = errors.New("invalid chunking parameters")
)
