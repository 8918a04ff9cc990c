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


package corpus

import (
	"log/slog"
	"path/filepath"

	"github.com/poiesic/corpus/ai"
	"github.com/poiesic/corpus/ai/openai"
	"github.com/poiesic/corpus/config"
	"github.com/poiesic/corpus/index"
	indexbadger "github.com/poiesic/corpus/index/badger"
	"github.com/poiesic/corpus/ingest"
	"github.com/poiesic/corpus/process"
	"github.com/poiesic/corpus/search"
	"github.com/poiesic/corpus/storage"
	"github.com/poiesic/corpus/storage/fsstore"
)

const vectorDBName = "vectors"

// Corpus wires the raw store, processor, vector index, ingestion
// orchestrator, and searcher into one handle.
type Corpus struct {
	store        storage.RawStore
	backend      *indexbadger.Backend
	provider     index.Provider
	manager      *index.Manager
	orchestrator *ingest.Orchestrator
	searcher     *search.Searcher
	logger       *slog.Logger
}

// Option configures a Corpus.
type Option func(*corpusOptions)

type corpusOptions struct {
	embedder      ai.Embedder
	logger        *slog.Logger
	inMemoryIndex bool
	ingestOpts    []ingest.Option
}

// WithEmbedder overrides the embedding client. Intended for tests and
// embedded deployments without an embedding service.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(o *corpusOptions) {
		o.embedder = embedder
	}
}

// WithLogger sets the logger shared by all components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *corpusOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// WithInMemoryIndex keeps the vector database in memory. Intended for tests.
func WithInMemoryIndex() Option {
	return func(o *corpusOptions) {
		o.inMemoryIndex = true
	}
}

// WithChatConnector wires a chat connector into the ingestion orchestrator.
func WithChatConnector(connector ingest.ChatConnector) Option {
	return func(o *corpusOptions) {
		o.ingestOpts = append(o.ingestOpts, ingest.WithChatConnector(connector))
	}
}

// WithWikiConnector wires a wiki connector into the ingestion orchestrator.
func WithWikiConnector(connector ingest.WikiConnector) Option {
	return func(o *corpusOptions) {
		o.ingestOpts = append(o.ingestOpts, ingest.WithWikiConnector(connector))
	}
}

// WithPDFExtractor wires a PDF text extractor into the ingestion orchestrator.
func WithPDFExtractor(extractor ingest.PDFExtractor) Option {
	return func(o *corpusOptions) {
		o.ingestOpts = append(o.ingestOpts, ingest.WithPDFExtractor(extractor))
	}
}

// Open builds a fully wired Corpus from the given configuration.
func Open(cfg *config.AppConfig, opts ...Option) (*Corpus, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	options := &corpusOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	store, err := fsstore.New(cfg.DataDir, fsstore.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(ai.NewConfig(
			ai.WithHost(cfg.Embedding.Host),
			ai.WithEmbeddingModel(cfg.Embedding.Model),
			ai.WithAPIToken(cfg.APIToken()),
		))
		if err != nil {
			return nil, err
		}
	}

	backend, err := indexbadger.OpenBackend(filepath.Join(cfg.IndexDir, vectorDBName), options.inMemoryIndex)
	if err != nil {
		return nil, err
	}

	provider, err := indexbadger.NewProvider(backend, embedder,
		indexbadger.WithLogger(logger),
		indexbadger.WithRetry(cfg.Index.RetryAttempts, cfg.RetryBaseDelay()),
	)
	if err != nil {
		backend.Close()
		return nil, err
	}

	splitter, err := process.NewSplitter(
		process.WithChunkSize(cfg.Chunking.Size),
		process.WithChunkOverlap(cfg.Chunking.Overlap),
	)
	if err != nil {
		backend.Close()
		return nil, err
	}
	processor, err := process.New(store,
		process.WithSplitter(splitter),
		process.WithLogger(logger),
	)
	if err != nil {
		backend.Close()
		return nil, err
	}

	managerOpts := []index.Option{
		index.WithEmbeddingModel(cfg.Embedding.Model),
		index.WithLogger(logger),
	}
	if cfg.Index.PoolSize > 0 {
		managerOpts = append(managerOpts, index.WithPoolSize(cfg.Index.PoolSize))
	}
	manager, err := index.NewManager(store, processor, provider, cfg.IndexDir, managerOpts...)
	if err != nil {
		backend.Close()
		return nil, err
	}

	ingestOpts := append([]ingest.Option{
		ingest.WithIndexManager(manager),
		ingest.WithLogger(logger),
	}, options.ingestOpts...)
	orchestrator, err := ingest.New(store, ingestOpts...)
	if err != nil {
		manager.Release()
		backend.Close()
		return nil, err
	}

	searcher, err := search.NewSearcher(provider, search.WithLogger(logger))
	if err != nil {
		manager.Release()
		backend.Close()
		return nil, err
	}

	return &Corpus{
		store:        store,
		backend:      backend,
		provider:     provider,
		manager:      manager,
		orchestrator: orchestrator,
		searcher:     searcher,
		logger:       logger,
	}, nil
}

// Close releases the worker pool and the vector database.
func (c *Corpus) Close() error {
	c.manager.Release()
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing index provider", "err", err)
		return err
	}
	return nil
}

// Store returns the raw document store.
func (c *Corpus) Store() storage.RawStore {
	return c.store
}

// Manager returns the vector index manager.
func (c *Corpus) Manager() *index.Manager {
	return c.manager
}

// Orchestrator returns the ingestion orchestrator.
func (c *Corpus) Orchestrator() *ingest.Orchestrator {
	return c.orchestrator
}

// Searcher returns the query interface.
func (c *Corpus) Searcher() *search.Searcher {
	return c.searcher
}
