package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/fixit/ai/mock"
	"github.com/poiesic/fixit/core"
	"github.com/poiesic/fixit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex implements storage.VectorIndex with injectable query behavior.
type fakeIndex struct {
	queryFunc  func(vector []float32, filter storage.Filter, limit int) ([]storage.ChunkMatch, error)
	queryCalls int
}

func (f *fakeIndex) Upsert(ctx context.Context, records ...*core.ChunkRecord) error { return nil }

func (f *fakeIndex) Query(ctx context.Context, vector []float32, filter storage.Filter, limit int) ([]storage.ChunkMatch, error) {
	f.queryCalls++
	if f.queryFunc != nil {
		return f.queryFunc(vector, filter, limit)
	}
	return nil, nil
}

func (f *fakeIndex) DeleteDocument(ctx context.Context, documentID core.ID) (int, error) {
	return 0, nil
}

func (f *fakeIndex) Count(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeIndex) Close() error { return nil }

func matchesAt(distances ...float32) []storage.ChunkMatch {
	matches := make([]storage.ChunkMatch, len(distances))
	for i, d := range distances {
		matches[i] = storage.ChunkMatch{
			Record: &core.ChunkRecord{
				Id:          core.ChunkID(1, i),
				DocumentId:  1,
				ChunkIndex:  i,
				TotalChunks: len(distances),
				Text:        fmt.Sprintf("chunk %d", i),
			},
			Distance: d,
		}
	}
	return matches
}

func TestNewRetriever(t *testing.T) {
	provider := mock.NewMockProvider()

	t.Run("requires index and provider", func(t *testing.T) {
		_, err := NewRetriever(nil, provider)
		assert.ErrorIs(t, err, ErrVectorIndexRequired)

		_, err = NewRetriever(&fakeIndex{}, nil)
		assert.ErrorIs(t, err, ErrAIProviderRequired)
	})

	t.Run("rejects out of range threshold", func(t *testing.T) {
		_, err := NewRetriever(&fakeIndex{}, provider, WithThreshold(1.5))
		assert.ErrorIs(t, err, ErrInvalidConfig)

		_, err = NewRetriever(&fakeIndex{}, provider, WithThreshold(-0.1))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects non-positive over-fetch", func(t *testing.T) {
		_, err := NewRetriever(&fakeIndex{}, provider, WithOverFetch(0))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects invalid retry settings", func(t *testing.T) {
		_, err := NewRetriever(&fakeIndex{}, provider, WithMaxRetries(0))
		assert.ErrorIs(t, err, ErrInvalidConfig)

		_, err = NewRetriever(&fakeIndex{}, provider, WithRetryDelay(0))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestRetrieveScoring(t *testing.T) {
	ctx := context.Background()

	index := &fakeIndex{
		queryFunc: func(_ []float32, _ storage.Filter, _ int) ([]storage.ChunkMatch, error) {
			return matchesAt(0, 1, 3), nil
		},
	}
	r, err := NewRetriever(index, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := r.Retrieve(ctx, "washer will not drain", storage.Filter{}, 5)
	require.NoError(t, err)

	// relevance = 1/(1+d): 1.0, 0.5 pass the 0.3 threshold; 0.25 does not.
	require.Len(t, results, 2)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.InDelta(t, 0.5, results[1].Score, 1e-6)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 2, results[1].Rank)
}

func TestRetrieveAllBelowThreshold(t *testing.T) {
	index := &fakeIndex{
		queryFunc: func(_ []float32, _ storage.Filter, _ int) ([]storage.ChunkMatch, error) {
			return matchesAt(3.0, 4.0), nil
		},
	}
	r, err := NewRetriever(index, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "unrelated question", storage.Filter{}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieveZeroK(t *testing.T) {
	index := &fakeIndex{}
	provider := mock.NewMockProvider().(*mock.MockProvider)

	r, err := NewRetriever(index, provider)
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "anything", storage.Filter{}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, index.queryCalls, "index must not be queried for k<=0")
	assert.Zero(t, provider.GetMockEmbedder().CallCount(), "embedder must not be called for k<=0")
}

func TestRetrieveEmptyQuery(t *testing.T) {
	r, err := NewRetriever(&fakeIndex{}, mock.NewMockProvider())
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "", storage.Filter{}, 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestRetrieveTruncatesToK(t *testing.T) {
	index := &fakeIndex{
		queryFunc: func(_ []float32, _ storage.Filter, limit int) ([]storage.ChunkMatch, error) {
			assert.Equal(t, 2*DefaultOverFetch, limit, "index query should over-fetch")
			return matchesAt(0, 0.1, 0.2, 0.3, 0.4), nil
		},
	}
	r, err := NewRetriever(index, mock.NewMockProvider())
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "drum noise", storage.Filter{}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Chunk.ChunkIndex)
	assert.Equal(t, 1, results[1].Chunk.ChunkIndex)
}

func TestRetrieveEmbedderError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

	index := &fakeIndex{}
	r, err := NewRetriever(index, provider)
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "query", storage.Filter{}, 5)
	assert.Error(t, err)
	assert.Zero(t, index.queryCalls)
}

func TestRetrieveRetriesUnavailableIndex(t *testing.T) {
	index := &fakeIndex{}
	index.queryFunc = func(_ []float32, _ storage.Filter, _ int) ([]storage.ChunkMatch, error) {
		if index.queryCalls < 3 {
			return nil, fmt.Errorf("%w: transient", storage.ErrIndexUnavailable)
		}
		return matchesAt(0), nil
	}

	r, err := NewRetriever(index, mock.NewMockProvider(), WithRetryDelay(time.Millisecond))
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "query", storage.Filter{}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 3, index.queryCalls)
}

func TestRetrieveDoesNotRetryOtherErrors(t *testing.T) {
	boom := errors.New("dimension mismatch")
	index := &fakeIndex{
		queryFunc: func(_ []float32, _ storage.Filter, _ int) ([]storage.ChunkMatch, error) {
			return nil, boom
		},
	}

	r, err := NewRetriever(index, mock.NewMockProvider())
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "query", storage.Filter{}, 5)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, index.queryCalls)
}

