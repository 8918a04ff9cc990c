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


package process

import (
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/storage"
)

// DocumentResult is the outcome of processing one document from a batch.
// A non-nil Err marks the document as failed; the rest of the batch is
// unaffected.
type DocumentResult struct {
	DocumentID string
	Chunks     []core.Chunk
	Err        error
}

// Processor reads raw batches, renders each document to plain text, and
// cuts the text into provenance-carrying chunks. It is a pure transform:
// chunking the same batch twice yields identical chunks with identical IDs.
type Processor struct {
	store    storage.RawStore
	splitter *Splitter
	logger   *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor) error

// WithSplitter replaces the default splitter.
func WithSplitter(splitter *Splitter) Option {
	return func(p *Processor) error {
		if splitter == nil {
			return fmt.Errorf("%w: nil splitter", ErrInvalidChunking)
		}
		p.splitter = splitter
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// New creates a document processor over the given raw store.
func New(store storage.RawStore, opts ...Option) (*Processor, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	splitter, err := NewSplitter()
	if err != nil {
		return nil, err
	}

	p := &Processor{
		store:    store,
		splitter: splitter,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ProcessBatch chunks every processable document in a batch. Structural
// failures (missing batch, unreadable manifest) abort the whole call;
// individual document failures are isolated into their DocumentResult.
// Binary entries are archival only and skipped.
func (p *Processor) ProcessBatch(h storage.BatchHandle) ([]DocumentResult, error) {
	manifest, err := p.store.LoadManifest(h)
	if err != nil {
		return nil, err
	}

	results := make([]DocumentResult, 0, len(manifest.Documents))
	for _, entry := range manifest.Documents {
		if entry.Binary {
			p.logger.Debug("skipping binary entry", "batch_id", h.BatchID, "id", entry.ID)
			continue
		}
		results = append(results, p.processDocument(h, entry))
	}

	p.logger.Info("processed batch",
		"source", h.SourceType.String(),
		"batch_id", h.BatchID,
		"documents", len(results),
		"failed", countFailed(results))
	return results, nil
}

func (p *Processor) processDocument(h storage.BatchHandle, entry core.ManifestEntry) DocumentResult {
	content, meta, err := p.store.LoadDocument(h, entry)
	if err != nil {
		return DocumentResult{DocumentID: entry.ID, Err: err}
	}

	text, err := RenderDocument(h.SourceType, content)
	if err != nil {
		return DocumentResult{DocumentID: entry.ID, Err: err}
	}

	pieces := p.splitter.Split(text)
	chunkMeta := chunkMetadata(h, meta)

	chunks := make([]core.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, core.Chunk{
			ID:         core.ChunkID(entry.ID, i, piece),
			DocumentID: entry.ID,
			Index:      i,
			Content:    piece,
			// Each chunk owns its metadata; mutating one must not leak
			// into its siblings.
			Metadata: maps.Clone(chunkMeta),
		})
	}
	return DocumentResult{DocumentID: entry.ID, Chunks: chunks}
}

// chunkMetadata flattens document metadata onto the string map carried by
// every chunk. Origin-specific Extra entries are merged first so the
// well-known provenance keys always win on collision.
func chunkMetadata(h storage.BatchHandle, meta *core.DocumentMetadata) map[string]string {
	m := make(map[string]string)
	if meta == nil {
		m["batch_id"] = h.BatchID
		m["source_type"] = h.SourceType.String()
		return m
	}

	for k, v := range meta.Extra {
		m[k] = v
	}

	m["batch_id"] = h.BatchID
	m["source_type"] = meta.SourceType.String()
	m["source_id"] = meta.SourceID
	if meta.SourceName != "" {
		m["source_name"] = meta.SourceName
	}
	if !meta.IngestedAt.IsZero() {
		m["ingested_at"] = meta.IngestedAt.UTC().Format(time.RFC3339)
	}
	if meta.SourceTimestamp != nil {
		m["source_timestamp"] = meta.SourceTimestamp.UTC().Format(time.RFC3339)
	}
	if meta.Author != "" {
		m["author"] = meta.Author
	}
	if meta.Title != "" {
		m["title"] = meta.Title
	}
	if meta.URL != "" {
		m["url"] = meta.URL
	}
	return m
}

func countFailed(results []DocumentResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
