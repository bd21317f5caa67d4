package ingest

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/fixit/ai"
)

// minExtractedLength is the minimum usable text length in characters.
// Anything shorter indicates a scan-only PDF or a broken upload.
const minExtractedLength = 100

// PlainTextExtractor implements ai.TextExtractor for plain text uploads.
// Binary formats need an external extraction service and are rejected
// with ErrUnsupportedFileType.
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates an extractor for plain text files.
//
// Returns ai.TextExtractor interface to enforce abstraction.
func NewPlainTextExtractor() ai.TextExtractor {
	return &PlainTextExtractor{}
}

// Extract decodes the file bytes as UTF-8 text.
func (e *PlainTextExtractor) Extract(ctx context.Context, fileBytes []byte, fileType string) (string, error) {
	switch normalizeFileType(fileType) {
	case "txt", "text":
		if !utf8.Valid(fileBytes) {
			return "", fmt.Errorf("%w: file is not valid UTF-8", ai.ErrExtraction)
		}
		return string(fileBytes), nil
	default:
		return "", fmt.Errorf("%w: %w: %q", ai.ErrExtraction, ErrUnsupportedFileType, fileType)
	}
}

// normalizeFileType lowercases a file type and strips a leading dot so
// ".TXT", "txt" and "TXT" are treated alike.
func normalizeFileType(fileType string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(fileType)), ".")
}
