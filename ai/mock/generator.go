package mock

import (
	"context"
	"fmt"
	"hash/fnv"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default deterministic behavior.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	callCount  int
	lastPrompt string
}

// NewMockGenerator creates a mock generator with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a deterministic answer derived from the prompt hash.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.callCount++
	m.lastPrompt = prompt

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}

	h := fnv.New32a()
	h.Write([]byte(prompt))
	return fmt.Sprintf("mock answer %08x", h.Sum32()), nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// LastPrompt returns the prompt from the most recent Generate call.
// Useful for asserting that retrieved context made it into the prompt.
func (m *MockGenerator) LastPrompt() string {
	return m.lastPrompt
}

// Reset clears the call count and any injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.lastPrompt = ""
	m.GenerateFunc = nil
}
