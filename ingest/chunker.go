package ingest

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Default chunking parameters, sized for dense manual text where a
// paragraph of troubleshooting steps fits comfortably in one chunk.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// defaultSeparators is the split hierarchy, coarsest first. A region is
// only split on a finer separator when it still exceeds the chunk size
// after splitting on the coarser one. The empty separator means "split
// anywhere" and is the final fallback.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Chunker splits normalized text into overlapping segments.
// Lengths are measured in Unicode characters, not bytes.
type Chunker struct {
	size    int
	overlap int
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker) error

// WithChunkSize sets the maximum chunk length in characters.
// Default is DefaultChunkSize.
func WithChunkSize(size int) ChunkerOption {
	return func(c *Chunker) error {
		if size < 1 {
			return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidChunking, size)
		}
		c.size = size
		return nil
	}
}

// WithChunkOverlap sets the target overlap between consecutive chunks.
// Must be non-negative and smaller than the chunk size.
// Default is DefaultChunkOverlap.
func WithChunkOverlap(overlap int) ChunkerOption {
	return func(c *Chunker) error {
		if overlap < 0 {
			return fmt.Errorf("%w: chunk overlap must be non-negative, got %d", ErrInvalidChunking, overlap)
		}
		c.overlap = overlap
		return nil
	}
}

// NewChunker creates a chunker with the given options.
func NewChunker(opts ...ChunkerOption) (*Chunker, error) {
	c := &Chunker{
		size:    DefaultChunkSize,
		overlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.overlap >= c.size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidChunking, c.overlap, c.size)
	}
	return c, nil
}

// Size returns the configured chunk size.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured chunk overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Split divides text into overlapping chunks. Chunk boundaries prefer
// paragraph breaks, then line breaks, then spaces, falling back to
// character boundaries only for regions with no finer separator. Windows
// advance by size-overlap characters, snapped forward to the nearest
// split boundary, so consecutive chunks share up to overlap characters.
//
// Chunks are verbatim slices of the input with separators attached, so
// dropping each chunk's overlapping prefix reconstructs the text exactly
// even when adjacent chunks end up sharing nothing.
//
// Text that fits in a single chunk is returned whole. Output is
// deterministic for identical input and configuration.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= c.size {
		return []string{strings.TrimSpace(text)}
	}

	atoms := atomize(text, c.size, defaultSeparators)

	// offsets[i] is the length in characters of atoms[0:i].
	offsets := make([]int, len(atoms)+1)
	for i, atom := range atoms {
		offsets[i+1] = offsets[i] + utf8.RuneCountInString(atom)
	}

	stride := c.size - c.overlap
	var chunks []string
	start := 0
	for start < len(atoms) {
		// Grow the window while it fits the chunk size. A single atom
		// longer than the chunk size is emitted alone.
		end := start
		for end < len(atoms) && offsets[end+1]-offsets[start] <= c.size {
			end++
		}
		if end == start {
			end = start + 1
		}

		// No trimming here: the tail separator belongs to the chunk, or
		// it would vanish whenever the next window starts right after
		// this one.
		chunk := strings.Join(atoms[start:end], "")
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}

		// Advance by the nominal stride, snapped forward to an atom
		// boundary. The window cap keeps coverage contiguous; the
		// progress floor guarantees termination.
		target := offsets[start] + stride
		next := start
		for next < len(atoms) && offsets[next] < target {
			next++
		}
		if next > end {
			next = end
		}
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// atomize splits text into pieces no longer than size characters, using
// the coarsest separator that suffices for each region. Separators stay
// attached to the preceding piece, so joining the atoms reproduces the
// input exactly.
func atomize(text string, size int, separators []string) []string {
	if utf8.RuneCountInString(text) <= size {
		return []string{text}
	}

	if len(separators) == 0 || separators[0] == "" {
		return splitEvery(text, size)
	}

	sep := separators[0]
	pieces := splitAfter(text, sep)
	var atoms []string
	for _, piece := range pieces {
		if utf8.RuneCountInString(piece) > size {
			atoms = append(atoms, atomize(piece, size, separators[1:])...)
		} else {
			atoms = append(atoms, piece)
		}
	}
	return atoms
}

// splitAfter is strings.SplitAfter without the trailing empty piece that
// appears when text ends with the separator.
func splitAfter(text, sep string) []string {
	pieces := strings.SplitAfter(text, sep)
	if n := len(pieces); n > 0 && pieces[n-1] == "" {
		pieces = pieces[:n-1]
	}
	return pieces
}

// splitEvery cuts text into pieces of at most size characters, never
// splitting inside a multi-byte rune.
func splitEvery(text string, size int) []string {
	var pieces []string
	var current strings.Builder
	count := 0
	for _, r := range text {
		current.WriteRune(r)
		count++
		if count == size {
			pieces = append(pieces, current.String())
			current.Reset()
			count = 0
		}
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}
