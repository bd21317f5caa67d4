package mock

import (
	"context"
)

// MockTextExtractor is a test double for ai.TextExtractor.
// It allows custom behavior injection via function fields.
type MockTextExtractor struct {
	// ExtractFunc is called by Extract if set.
	// If nil, the raw bytes are returned as text.
	ExtractFunc func(ctx context.Context, fileBytes []byte, fileType string) (string, error)

	callCount int
}

// NewMockTextExtractor creates a mock extractor with default passthrough behavior.
func NewMockTextExtractor() *MockTextExtractor {
	return &MockTextExtractor{}
}

// Extract returns the file bytes as text unless custom behavior is injected.
func (m *MockTextExtractor) Extract(ctx context.Context, fileBytes []byte, fileType string) (string, error) {
	m.callCount++

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, fileBytes, fileType)
	}

	return string(fileBytes), nil
}

// CallCount returns the number of times Extract was called.
func (m *MockTextExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockTextExtractor) Reset() {
	m.callCount = 0
	m.ExtractFunc = nil
}
