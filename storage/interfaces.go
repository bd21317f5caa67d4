package storage

import (
	"context"

	"github.com/poiesic/fixit/core"
)

// ChunkMatch pairs an indexed chunk with its distance from a query vector.
// Distance is cosine distance over unit vectors: 0 means identical direction,
// larger means less similar.
type ChunkMatch struct {
	Record   *core.ChunkRecord
	Distance float32
}

// VectorIndex stores chunk records with their embeddings and answers
// nearest-neighbour queries over them.
// Implementations must be thread-safe and support concurrent access.
type VectorIndex interface {
	// Upsert inserts or replaces chunk records by ID.
	// Records with the same ID are overwritten, not duplicated.
	// Every record must carry a vector of the index dimension.
	Upsert(ctx context.Context, records ...*core.ChunkRecord) error

	// Query returns up to limit chunks matching the filter, ordered by
	// ascending distance from the query vector. Ties are broken by
	// ChunkIndex so results are deterministic.
	Query(ctx context.Context, vector []float32, filter Filter, limit int) ([]ChunkMatch, error)

	// DeleteDocument removes every chunk belonging to a document.
	// The removal is atomic: a concurrent Query sees either all of the
	// document's chunks or none of them. Deleting a document with no
	// chunks is not an error.
	DeleteDocument(ctx context.Context, documentID core.ID) (int, error)

	// Count reports the number of chunks currently indexed.
	Count(ctx context.Context) (int, error)

	// Close closes the index and releases resources.
	Close() error
}

// DocumentRepository tracks uploaded documents and their processing state.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// AddDocument stores a new document record in StatusPending.
	// For documents with ID=0, generates a new ID from sequence.
	// Sets UploadedAt if not already set. Returns the stored document.
	AddDocument(ctx context.Context, document *core.Document) (*core.Document, error)

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// ListDocuments retrieves all documents ordered by UploadedAt descending,
	// most recent first.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// MarkProcessing transitions a document into StatusProcessing.
	// Legal from StatusPending, StatusIndexed and StatusFailed; returns
	// core.ErrInvalidTransition when the document is already processing.
	MarkProcessing(ctx context.Context, id core.ID) (*core.Document, error)

	// MarkIndexed transitions a document from StatusProcessing to
	// StatusIndexed, recording the chunk count and ProcessedAt timestamp.
	MarkIndexed(ctx context.Context, id core.ID, chunksCount int) (*core.Document, error)

	// MarkFailed transitions a document from StatusProcessing to
	// StatusFailed, recording the failure reason.
	MarkFailed(ctx context.Context, id core.ID, reason string) (*core.Document, error)

	// DeleteDocument removes a document record.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error

	// Close closes the repository and releases resources.
	Close() error
}
