package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/fixit/ai"
	"github.com/poiesic/fixit/core"
	"github.com/poiesic/fixit/storage"
)

// DefaultJobTimeout bounds a single document processing job, covering
// extraction, embedding and indexing.
const DefaultJobTimeout = 5 * time.Minute

// Transient index failures during the final upsert are retried with a
// short bounded backoff before the job is marked failed.
const (
	upsertMaxRetries = 3
	upsertRetryDelay = 50 * time.Millisecond
)

// Upload describes a document handed to the pipeline for ingestion.
type Upload struct {
	Filename   string
	FileType   string
	DeviceType string
	Brand      string
	Model      string // optional, defaults to "Unknown" at the chunk level
	FileBytes  []byte
}

// Pipeline orchestrates document ingestion: extraction, cleaning,
// chunking, embedding and indexing. Jobs run asynchronously on a worker
// pool; document status records their progress.
type Pipeline struct {
	documents  storage.DocumentRepository
	index      storage.VectorIndex
	embedder   ai.Embedder
	extractor  ai.TextExtractor
	chunker    *Chunker
	pool       *ants.Pool
	jobTimeout time.Duration
	logger     *slog.Logger

	mu       sync.Mutex
	inFlight map[core.ID]struct{}
	jobs     sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunker sets a custom chunker.
// Default uses DefaultChunkSize and DefaultChunkOverlap.
func WithChunker(chunker *Chunker) Option {
	return func(p *Pipeline) error {
		if chunker == nil {
			return fmt.Errorf("%w: chunker is nil", ErrInvalidChunking)
		}
		p.chunker = chunker
		return nil
	}
}

// WithExtractor sets a custom text extractor.
// Default is the plain text extractor.
func WithExtractor(extractor ai.TextExtractor) Option {
	return func(p *Pipeline) error {
		if extractor != nil {
			p.extractor = extractor
		}
		return nil
	}
}

// WithJobTimeout bounds each processing job.
// Default is DefaultJobTimeout.
func WithJobTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout > 0 {
			p.jobTimeout = timeout
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documents storage.DocumentRepository,
	index storage.VectorIndex,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	chunker, err := NewChunker()
	if err != nil {
		pool.Release()
		return nil, err
	}

	p := &Pipeline{
		documents:  documents,
		index:      index,
		embedder:   provider.Embedder(),
		extractor:  NewPlainTextExtractor(),
		chunker:    chunker,
		pool:       pool,
		jobTimeout: DefaultJobTimeout,
		logger:     slog.Default().With("component", "ingest-pipeline"),
		inFlight:   make(map[core.ID]struct{}),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest registers an upload and processes it asynchronously.
// The returned document is in StatusPending; its status advances as the
// background job runs. Processing errors are recorded on the document,
// not returned here.
func (p *Pipeline) Ingest(ctx context.Context, upload *Upload) (*core.Document, error) {
	if upload == nil {
		return nil, fmt.Errorf("%w: upload is nil", core.ErrInvalidDocument)
	}

	doc := &core.Document{
		Filename:   upload.Filename,
		FileType:   upload.FileType,
		DeviceType: upload.DeviceType,
		Brand:      upload.Brand,
		Model:      upload.Model,
		Status:     core.StatusPending,
	}
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	added, err := p.documents.AddDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	if err := p.submit(added.Id, upload.FileBytes); err != nil {
		return nil, err
	}
	return added, nil
}

// Reprocess re-runs ingestion for an existing document with fresh file
// content. Raw uploads are not persisted, so the caller supplies the
// bytes again. Returns ErrAlreadyProcessing if a job for this document
// is still in flight.
func (p *Pipeline) Reprocess(ctx context.Context, id core.ID, fileBytes []byte) (*core.Document, error) {
	doc, err := p.documents.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status == core.StatusProcessing {
		return nil, fmt.Errorf("%w: document %d", ErrAlreadyProcessing, id)
	}

	if err := p.submit(id, fileBytes); err != nil {
		return nil, err
	}
	return doc, nil
}

// submit registers the document as in flight and queues its job.
func (p *Pipeline) submit(id core.ID, fileBytes []byte) error {
	p.mu.Lock()
	if _, busy := p.inFlight[id]; busy {
		p.mu.Unlock()
		return fmt.Errorf("%w: document %d", ErrAlreadyProcessing, id)
	}
	p.inFlight[id] = struct{}{}
	p.mu.Unlock()

	p.jobs.Add(1)
	err := p.pool.Submit(func() {
		defer p.jobs.Done()
		defer p.finish(id)
		p.run(id, fileBytes)
	})
	if err != nil {
		p.jobs.Done()
		p.finish(id)
		return err
	}
	return nil
}

func (p *Pipeline) finish(id core.ID) {
	p.mu.Lock()
	delete(p.inFlight, id)
	p.mu.Unlock()
}

// run executes one processing job under the configured timeout.
// Any failure marks the document failed and removes whatever chunks the
// job got into the index before it broke.
func (p *Pipeline) run(id core.ID, fileBytes []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), p.jobTimeout)
	defer cancel()

	doc, err := p.documents.MarkProcessing(ctx, id)
	if err != nil {
		p.logger.Error("cannot start processing", "document", id, "err", err)
		return
	}

	p.logger.Info("processing document", "document", id, "filename", doc.Filename)

	chunksCount, err := p.process(ctx, doc, fileBytes)
	if err != nil {
		p.fail(id, err)
		return
	}

	if _, err := p.documents.MarkIndexed(ctx, id, chunksCount); err != nil {
		p.logger.Error("cannot mark document indexed", "document", id, "err", err)
		p.fail(id, err)
		return
	}

	p.logger.Info("document indexed", "document", id, "chunks", chunksCount)
}

// process turns the raw upload into indexed chunk records and reports
// how many were stored.
func (p *Pipeline) process(ctx context.Context, doc *core.Document, fileBytes []byte) (int, error) {
	text, err := p.extractor.Extract(ctx, fileBytes, doc.FileType)
	if err != nil {
		return 0, err
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < minExtractedLength {
		return 0, fmt.Errorf("%w: got %d characters", ErrInsufficientText, n)
	}

	text = CleanText(text)
	hints := ExtractHints(text)
	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: no chunks produced", ErrInsufficientText)
	}

	p.logger.Debug("split document", "document", doc.Id, "chunks", len(chunks))

	model := doc.Model
	if model == "" {
		model = core.UnknownModel
	}

	now := time.Now().UTC()
	records := make([]*core.ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = &core.ChunkRecord{
			Id:            core.ChunkID(doc.Id, i),
			DocumentId:    doc.Id,
			ChunkIndex:    i,
			TotalChunks:   len(chunks),
			Text:          chunk,
			DeviceType:    doc.DeviceType,
			Brand:         doc.Brand,
			Model:         model,
			SourceFile:    doc.Filename,
			SectionType:   hints.SectionType,
			DetectedModel: hints.DetectedModel,
			InsertedAt:    now,
		}
		if err := core.ValidateChunkRecord(records[i]); err != nil {
			return 0, err
		}
	}

	// Embed the whole batch before touching the index so a mid-batch
	// embedding failure leaves nothing half-indexed.
	vectors, err := p.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return 0, err
	}
	for i, vector := range vectors {
		records[i].Vector = vector
	}

	var upsertErr error
	err = storage.RetryWithBackoff(ctx, func() error {
		upsertErr = p.index.Upsert(ctx, records...)
		if upsertErr != nil && !errors.Is(upsertErr, storage.ErrIndexUnavailable) {
			// Not retryable; stop the backoff loop and surface below.
			return nil
		}
		return upsertErr
	}, upsertMaxRetries, upsertRetryDelay)
	if err == nil {
		err = upsertErr
	}
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// fail records the failure reason and rolls back any chunks the broken
// job already indexed. Rollback uses a fresh context because the job
// context may already be cancelled.
func (p *Pipeline) fail(id core.ID, cause error) {
	p.logger.Error("document processing failed", "document", id, "err", cause)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := p.documents.MarkFailed(ctx, id, cause.Error()); err != nil {
		p.logger.Error("cannot mark document failed", "document", id, "err", err)
	}
	if _, err := p.index.DeleteDocument(ctx, id); err != nil {
		p.logger.Error("cannot roll back indexed chunks", "document", id, "err", err)
	}
}

// Wait blocks until every submitted job has finished.
// Intended for tests and shutdown paths.
func (p *Pipeline) Wait() {
	p.jobs.Wait()
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
