// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package fixit

import (
	"context"
	"log/slog"

	"github.com/poiesic/fixit/ai"
	"github.com/poiesic/fixit/ai/openai"
	"github.com/poiesic/fixit/answer"
	"github.com/poiesic/fixit/core"
	"github.com/poiesic/fixit/ingest"
	"github.com/poiesic/fixit/retrieval"
	"github.com/poiesic/fixit/storage"
	"github.com/poiesic/fixit/storage/badger"
)

// Service is the top-level entry point. It owns the storage backend, the
// AI provider and the ingestion, retrieval and answering components built
// on top of them.
type Service struct {
	backend   *badger.Backend
	documents storage.DocumentRepository
	index     storage.VectorIndex
	provider  ai.Provider
	pipeline  *ingest.Pipeline
	retriever *retrieval.Retriever
	answerer  *answer.Generator
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig      *ai.Config
	provider      ai.Provider
	inMemory      bool
	pipelineOpts  []ingest.Option
	retrieverOpts []retrieval.Option
	answerOpts    []answer.Option
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a pre-built AI provider. When set, the
// configured hosts and models are ignored.
func WithAIProvider(provider ai.Provider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the storage backend in memory, without touching disk.
func WithInMemory() ServiceOption {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// WithPipelineOptions forwards options to the ingestion pipeline.
func WithPipelineOptions(opts ...ingest.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// WithRetrieverOptions forwards options to the retriever.
func WithRetrieverOptions(opts ...retrieval.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.retrieverOpts = append(o.retrieverOpts, opts...)
	}
}

// WithAnswerOptions forwards options to the answer generator.
func WithAnswerOptions(opts ...answer.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.answerOpts = append(o.answerOpts, opts...)
	}
}

// Open wires the full stack over a badger database at filePath.
func Open(filePath string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if err := options.aiConfig.Validate(); err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	index, err := badger.NewVectorIndex(backend, options.aiConfig.EmbeddingDimension)
	if err != nil {
		documents.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			index.Close()
			documents.Close()
			backend.Close()
			return nil, err
		}
	}

	pipeline, err := ingest.NewPipeline(documents, index, provider, options.pipelineOpts...)
	if err != nil {
		provider.Close()
		index.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	retriever, err := retrieval.NewRetriever(index, provider, options.retrieverOpts...)
	if err != nil {
		pipeline.Release()
		provider.Close()
		index.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	answerer, err := answer.NewGenerator(retriever, provider, options.answerOpts...)
	if err != nil {
		pipeline.Release()
		provider.Close()
		index.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	return &Service{
		backend:   backend,
		documents: documents,
		index:     index,
		provider:  provider,
		pipeline:  pipeline,
		retriever: retriever,
		answerer:  answerer,
		logger:    slog.Default(),
	}, nil
}

// Ingest registers an uploaded manual and indexes it in the background.
// The returned document starts in StatusPending; use Wait or poll
// Document to observe the outcome.
func (s *Service) Ingest(ctx context.Context, upload *ingest.Upload) (*core.Document, error) {
	return s.pipeline.Ingest(ctx, upload)
}

// Reprocess re-runs ingestion for an existing document.
func (s *Service) Reprocess(ctx context.Context, id core.ID, fileBytes []byte) (*core.Document, error) {
	return s.pipeline.Reprocess(ctx, id, fileBytes)
}

// Query answers a troubleshooting question grounded in indexed manuals
// matching the filter.
func (s *Service) Query(ctx context.Context, question string, filter storage.Filter) (*core.Answer, error) {
	return s.answerer.Answer(ctx, question, filter)
}

// Retrieve returns the k most relevant indexed chunks for a query.
func (s *Service) Retrieve(ctx context.Context, query string, filter storage.Filter, k int) ([]*core.RetrievalResult, error) {
	return s.retriever.Retrieve(ctx, query, filter, k)
}

// Document returns a document record by ID.
func (s *Service) Document(ctx context.Context, id core.ID) (*core.Document, error) {
	return s.documents.GetDocument(ctx, id)
}

// Documents lists all documents, most recently uploaded first.
func (s *Service) Documents(ctx context.Context) ([]*core.Document, error) {
	return s.documents.ListDocuments(ctx)
}

// DeleteDocument removes a document and all of its indexed chunks.
// Chunks go first so a failure cannot leave orphaned vectors behind a
// missing record.
func (s *Service) DeleteDocument(ctx context.Context, id core.ID) error {
	if _, err := s.documents.GetDocument(ctx, id); err != nil {
		return err
	}

	deleted, err := s.index.DeleteDocument(ctx, id)
	if err != nil {
		return err
	}
	s.logger.Debug("deleted document chunks", "id", id, "chunks", deleted)

	return s.documents.DeleteDocument(ctx, id)
}

// Wait blocks until all in-flight ingestion jobs finish.
func (s *Service) Wait() {
	s.pipeline.Wait()
}

// Close releases every component. Ingestion jobs still running are
// waited for first.
func (s *Service) Close() error {
	s.pipeline.Wait()
	s.pipeline.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.index.Close(); err != nil {
		s.logger.Error("error closing vector index", "err", err)
		return err
	}
	if err := s.documents.Close(); err != nil {
		s.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
