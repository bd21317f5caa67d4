package answer

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/fixit/ai/mock"
	"github.com/poiesic/fixit/core"
	"github.com/poiesic/fixit/retrieval"
	"github.com/poiesic/fixit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubIndex serves preset matches regardless of the query vector.
type stubIndex struct {
	matches []storage.ChunkMatch
}

func (s *stubIndex) Upsert(ctx context.Context, records ...*core.ChunkRecord) error { return nil }

func (s *stubIndex) Query(ctx context.Context, vector []float32, filter storage.Filter, limit int) ([]storage.ChunkMatch, error) {
	return s.matches, nil
}

func (s *stubIndex) DeleteDocument(ctx context.Context, documentID core.ID) (int, error) {
	return 0, nil
}

func (s *stubIndex) Count(ctx context.Context) (int, error) { return len(s.matches), nil }

func (s *stubIndex) Close() error { return nil }

func stubMatch(index int, text string, distance float32) storage.ChunkMatch {
	return storage.ChunkMatch{
		Record: &core.ChunkRecord{
			Id:          core.ChunkID(1, index),
			DocumentId:  1,
			ChunkIndex:  index,
			TotalChunks: 10,
			Text:        text,
			SourceFile:  "washer.txt",
			SectionType: "troubleshooting",
			PageNumber:  index + 1,
		},
		Distance: distance,
	}
}

func setupGenerator(t *testing.T, matches []storage.ChunkMatch) (*Generator, *mock.MockGenerator) {
	t.Helper()

	llm := mock.NewMockGenerator()
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), llm)

	retriever, err := retrieval.NewRetriever(&stubIndex{matches: matches}, provider)
	require.NoError(t, err)

	generator, err := NewGenerator(retriever, provider)
	require.NoError(t, err)
	return generator, llm
}

func TestAnswerWithContext(t *testing.T) {
	generator, llm := setupGenerator(t, []storage.ChunkMatch{
		stubMatch(0, "Clean the drain pump filter.", 0.1),
		stubMatch(1, "Check the drain hose for kinks.", 0.4),
	})
	llm.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		return "Try cleaning the filter first.", nil
	}

	result, err := generator.Answer(context.Background(), "washer will not drain", storage.Filter{})
	require.NoError(t, err)

	assert.Equal(t, "Try cleaning the filter first.", result.Text)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "Clean the drain pump filter.", result.Sources[0].Content)
	assert.Equal(t, "washer.txt", result.Sources[0].SourceFile)
	assert.Equal(t, 1, result.Sources[0].PageNumber)
	assert.Equal(t, "troubleshooting", result.Sources[0].SectionName)
	assert.InDelta(t, 1.0/1.1, result.Sources[0].RelevanceScore, 1e-5)

	t.Run("prompt carries context and question", func(t *testing.T) {
		prompt := llm.LastPrompt()
		assert.Contains(t, prompt, "Clean the drain pump filter.")
		assert.Contains(t, prompt, "[Source: washer.txt, Page: 1]")
		assert.Contains(t, prompt, "User Question: washer will not drain")
		assert.NotContains(t, prompt, "{context}")
		assert.NotContains(t, prompt, "{question}")
	})
}

func TestAnswerWithoutContext(t *testing.T) {
	generator, llm := setupGenerator(t, nil)

	result, err := generator.Answer(context.Background(), "how do I fix a spaceship", storage.Filter{})
	require.NoError(t, err)

	assert.Equal(t, NoContextAnswer, result.Text)
	assert.NotNil(t, result.Sources)
	assert.Empty(t, result.Sources)
	assert.Zero(t, llm.CallCount(), "model must not be called without context")
}

func TestAnswerBelowThresholdBehavesAsNoContext(t *testing.T) {
	// distance 3.0 gives relevance 0.25, under the default 0.3 threshold.
	generator, llm := setupGenerator(t, []storage.ChunkMatch{
		stubMatch(0, "Barely related text.", 3.0),
	})

	result, err := generator.Answer(context.Background(), "unrelated question", storage.Filter{})
	require.NoError(t, err)
	assert.Equal(t, NoContextAnswer, result.Text)
	assert.Empty(t, result.Sources)
	assert.Zero(t, llm.CallCount())
}

func TestAnswerCitationTruncation(t *testing.T) {
	long := strings.Repeat("a", core.CitationContentLimit+50)
	exact := strings.Repeat("b", core.CitationContentLimit)

	generator, _ := setupGenerator(t, []storage.ChunkMatch{
		stubMatch(0, long, 0.1),
		stubMatch(1, exact, 0.2),
	})

	result, err := generator.Answer(context.Background(), "question", storage.Filter{})
	require.NoError(t, err)
	require.Len(t, result.Sources, 2)

	assert.Equal(t, strings.Repeat("a", core.CitationContentLimit)+"...", result.Sources[0].Content)
	assert.Equal(t, exact, result.Sources[1].Content, "no ellipsis at exactly the limit")
}

func TestAnswerSurfacesGeneratorErrors(t *testing.T) {
	generator, llm := setupGenerator(t, []storage.ChunkMatch{
		stubMatch(0, "Some relevant text.", 0.1),
	})
	llm.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", assert.AnError
	}

	_, err := generator.Answer(context.Background(), "question", storage.Filter{})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestNewGeneratorValidation(t *testing.T) {
	provider := mock.NewMockProvider()
	retriever, err := retrieval.NewRetriever(&stubIndex{}, provider)
	require.NoError(t, err)

	_, err = NewGenerator(nil, provider)
	assert.ErrorIs(t, err, ErrRetrieverRequired)

	_, err = NewGenerator(retriever, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)

	_, err = NewGenerator(retriever, provider, WithTopK(0))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
