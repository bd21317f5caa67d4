package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Document IDs come from database sequences; chunk IDs are content-derived.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkID derives the deterministic ID for a chunk of a document.
// Re-ingesting the same document overwrites its chunks in place.
func ChunkID(documentID ID, chunkIndex int) ID {
	return IDFromContent(fmt.Sprintf("doc:%d:chunk:%d", documentID, chunkIndex))
}

// DocumentStatus tracks a document through the ingestion lifecycle.
//
// Valid transitions are Pending -> Processing and
// Processing -> {Indexed, Failed}. Indexed and Failed are terminal.
type DocumentStatus int

const (
	// StatusPending means the upload was accepted but processing has not started.
	StatusPending DocumentStatus = iota + 1
	// StatusProcessing covers extraction, normalization, chunking, embedding and indexing.
	StatusProcessing
	// StatusIndexed means every chunk of the document has been upserted into the index.
	StatusIndexed
	// StatusFailed is terminal; the document carries a non-empty ErrorMessage.
	StatusFailed
)

// String returns the lifecycle state name.
func (s DocumentStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusProcessing:
		return "PROCESSING"
	case StatusIndexed:
		return "INDEXED"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("DocumentStatus(%d)", int(s))
	}
}

// Document represents an uploaded manual and its ingestion state.
// Once Indexed a document is immutable except for deletion, which also
// removes all derived chunks from the vector index.
type Document struct {
	Id           ID
	Filename     string
	FileType     string // "pdf", "txt", ...
	DeviceType   string
	Brand        string
	Model        string // empty means unknown; chunks default it to "Unknown"
	Status       DocumentStatus
	ErrorMessage string // populated only in StatusFailed
	ChunksCount  int    // set atomically with the transition to StatusIndexed
	UploadedAt   time.Time
	ProcessedAt  time.Time // zero until a terminal state is reached
}

// ChunkRecord is the durable (vector, text, metadata) triple owned by the
// vector index. Chunks of a document are ordered and overlapping; ChunkIndex
// is contiguous 0..TotalChunks-1.
type ChunkRecord struct {
	Id            ID
	DocumentId    ID
	ChunkIndex    int
	TotalChunks   int
	Text          string
	Vector        []float32 // L2-normalized embedding
	DeviceType    string
	Brand         string
	Model         string // "Unknown" when the document carries no model
	SourceFile    string
	SectionType   string // auto-detected ("troubleshooting", "installation", ...)
	DetectedModel string // model line auto-detected from the document header
	PageNumber    int    // 0 means unknown
	InsertedAt    time.Time
}

// UnknownModel is the literal stored on chunks whose document has no model.
// It participates in equality filtering like any other value.
const UnknownModel = "Unknown"

// RetrievalResult is a scored chunk returned by the retriever.
// Results are ordered by descending Score; Rank is the position in that order.
type RetrievalResult struct {
	Chunk *ChunkRecord
	Score float32 // relevance in [0,1], 1/(1+distance)
	Rank  int
}

// CitationContentLimit bounds the excerpt length carried by a Citation.
const CitationContentLimit = 200

// Citation is a read-only projection of a retrieved chunk for user-facing
// provenance. It is derived per answer and never persisted.
type Citation struct {
	Content        string // chunk text truncated to CitationContentLimit
	SourceFile     string
	PageNumber     int // 0 means unknown
	SectionName    string
	RelevanceScore float32
}

// Answer is the generated response plus the ordered citations for the chunks
// that were actually included in the prompt context.
type Answer struct {
	Text    string
	Sources []Citation
}
