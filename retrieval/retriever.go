package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/fixit/ai"
	"github.com/poiesic/fixit/core"
	"github.com/poiesic/fixit/storage"
)

// Retrieval defaults, taken from the backend this system replaces.
const (
	DefaultTopK      = 5
	DefaultThreshold = 0.3

	// DefaultOverFetch is the multiplier applied to k when querying the
	// index. The threshold drops low-relevance matches after the query,
	// so fetching only k rows could return fewer than k passing results
	// even when more exist.
	DefaultOverFetch = 3

	// DefaultMaxRetries and DefaultRetryDelay bound the backoff applied
	// to transient index failures.
	DefaultMaxRetries = 3
	DefaultRetryDelay = 50 * time.Millisecond
)

// Retriever embeds a query, searches the vector index and converts
// distances to relevance scores.
type Retriever struct {
	index      storage.VectorIndex
	embedder   ai.Embedder
	threshold  float32
	overFetch  int
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithThreshold sets the minimum relevance score a chunk must reach to
// be returned. Must be within [0, 1]. Default is DefaultThreshold.
func WithThreshold(threshold float32) Option {
	return func(r *Retriever) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("%w: threshold %v outside [0, 1]", ErrInvalidConfig, threshold)
		}
		r.threshold = threshold
		return nil
	}
}

// WithOverFetch sets the index over-fetch multiplier.
// Default is DefaultOverFetch.
func WithOverFetch(factor int) Option {
	return func(r *Retriever) error {
		if factor < 1 {
			return fmt.Errorf("%w: over-fetch factor must be positive, got %d", ErrInvalidConfig, factor)
		}
		r.overFetch = factor
		return nil
	}
}

// WithMaxRetries sets how many times a transient index failure is tried.
// Default is DefaultMaxRetries.
func WithMaxRetries(attempts int) Option {
	return func(r *Retriever) error {
		if attempts < 1 {
			return fmt.Errorf("%w: max retries must be positive, got %d", ErrInvalidConfig, attempts)
		}
		r.maxRetries = attempts
		return nil
	}
}

// WithRetryDelay sets the base delay for the exponential backoff between
// index query retries. Default is DefaultRetryDelay.
func WithRetryDelay(delay time.Duration) Option {
	return func(r *Retriever) error {
		if delay <= 0 {
			return fmt.Errorf("%w: retry delay must be positive, got %v", ErrInvalidConfig, delay)
		}
		r.retryDelay = delay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(index storage.VectorIndex, provider ai.Provider, opts ...Option) (*Retriever, error) {
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		index:      index,
		embedder:   provider.Embedder(),
		threshold:  DefaultThreshold,
		overFetch:  DefaultOverFetch,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		logger:     slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Threshold returns the configured relevance threshold.
func (r *Retriever) Threshold() float32 {
	return r.threshold
}

// Retrieve returns up to k chunks relevant to the query, filtered by the
// metadata constraint and scored by relevance = 1 / (1 + distance).
// Results are ranked by descending relevance; ranks start at 1.
// k <= 0 short-circuits to an empty result without touching the embedder
// or the index.
func (r *Retriever) Retrieve(ctx context.Context, query string, filter storage.Filter, k int) ([]*core.RetrievalResult, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		return []*core.RetrievalResult{}, nil
	}

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	// Transient index failures are retried; anything else surfaces
	// immediately.
	var matches []storage.ChunkMatch
	var queryErr error
	err = storage.RetryWithBackoff(ctx, func() error {
		matches, queryErr = r.index.Query(ctx, vector, filter, k*r.overFetch)
		if queryErr != nil && !errors.Is(queryErr, storage.ErrIndexUnavailable) {
			// Not retryable; stop the backoff loop and surface below.
			return nil
		}
		return queryErr
	}, r.maxRetries, r.retryDelay)
	if err == nil {
		err = queryErr
	}
	if err != nil {
		r.logger.Error("error querying vector index", "err", err)
		return nil, err
	}

	results := make([]*core.RetrievalResult, 0, len(matches))
	for _, match := range matches {
		score := relevanceScore(match.Distance)
		if score < r.threshold {
			continue
		}
		results = append(results, &core.RetrievalResult{
			Chunk: match.Record,
			Score: score,
		})
	}

	// The index returns ascending distance, which maps to descending
	// relevance; sorting again keeps the contract explicit and the tie
	// order stable.
	slices.SortStableFunc(results, func(a, b *core.RetrievalResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return a.Chunk.ChunkIndex - b.Chunk.ChunkIndex
	})

	if len(results) > k {
		results = results[:k]
	}
	for i, result := range results {
		result.Rank = i + 1
	}

	r.logger.Debug("retrieved chunks", "query_length", len(query), "results", len(results))
	return results, nil
}

// relevanceScore converts a non-negative distance into a score in (0, 1].
// Distance zero (exact match) maps to 1; larger distances decay towards 0.
func relevanceScore(distance float32) float32 {
	return 1 / (1 + distance)
}
