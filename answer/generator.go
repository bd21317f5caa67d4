package answer

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/poiesic/fixit/ai"
	"github.com/poiesic/fixit/core"
	"github.com/poiesic/fixit/retrieval"
	"github.com/poiesic/fixit/storage"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// Generator orchestrates the question answering flow: retrieve, assemble
// context, prompt the language model, and cite sources.
type Generator struct {
	retriever *retrieval.Retriever
	llm       ai.Generator
	topK      int
	logger    *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithTopK sets how many chunks are retrieved per question.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(g *Generator) error {
		if k < 1 {
			return fmt.Errorf("%w: top-k must be positive, got %d", ErrInvalidConfig, k)
		}
		g.topK = k
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// NewGenerator creates an answer generator.
func NewGenerator(retriever *retrieval.Retriever, provider ai.Provider, opts ...Option) (*Generator, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	g := &Generator{
		retriever: retriever,
		llm:       provider.Generator(),
		topK:      DefaultTopK,
		logger:    slog.Default().With("component", "answer-generator"),
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Answer retrieves relevant manual excerpts for the question and asks
// the language model for troubleshooting instructions grounded in them.
// When nothing relevant is found the model is skipped entirely and a
// fixed fallback answer with no sources is returned.
func (g *Generator) Answer(ctx context.Context, question string, filter storage.Filter) (*core.Answer, error) {
	results, err := g.retriever.Retrieve(ctx, question, filter, g.topK)
	if err != nil {
		return nil, err
	}

	assembled := AssembleContext(results)
	if assembled.Empty() {
		g.logger.Info("no relevant chunks found", "question_length", len(question))
		return &core.Answer{
			Text:    NoContextAnswer,
			Sources: []core.Citation{},
		}, nil
	}

	text, err := g.llm.Generate(ctx, buildPrompt(assembled, question))
	if err != nil {
		return nil, err
	}

	sources := make([]core.Citation, len(results))
	for i, result := range results {
		sources[i] = makeCitation(result)
	}

	g.logger.Debug("answer generated", "sources", len(sources))
	return &core.Answer{
		Text:    text,
		Sources: sources,
	}, nil
}

// makeCitation projects a retrieval result into its user-facing source
// record. Chunk text longer than the citation limit is truncated with an
// ellipsis.
func makeCitation(result *core.RetrievalResult) core.Citation {
	content := result.Chunk.Text
	if utf8.RuneCountInString(content) > core.CitationContentLimit {
		runes := []rune(content)
		content = string(runes[:core.CitationContentLimit]) + "..."
	}

	return core.Citation{
		Content:        content,
		SourceFile:     result.Chunk.SourceFile,
		PageNumber:     result.Chunk.PageNumber,
		SectionName:    result.Chunk.SectionType,
		RelevanceScore: result.Score,
	}
}
