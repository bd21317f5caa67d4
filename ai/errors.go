package ai

import "errors"

var (
	// ErrEmbedding indicates the embedding service failed or rejected its input.
	ErrEmbedding = errors.New("embedding failed")

	// ErrEmptyInput indicates empty text was passed to the embedder.
	ErrEmptyInput = errors.New("input text is empty")

	// ErrInputTooLong indicates text beyond the embedding model's token limit.
	ErrInputTooLong = errors.New("input text exceeds model token limit")

	// ErrDimensionMismatch indicates the service returned a vector of an
	// unexpected dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrProvider indicates the language-model call failed (quota, auth, timeout).
	// Distinct from the successful "no relevant context" outcome.
	ErrProvider = errors.New("language model call failed")

	// ErrExtraction indicates the text-extraction service could not read the
	// source document.
	ErrExtraction = errors.New("text extraction failed")
)
