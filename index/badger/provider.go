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


package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/corpus/ai"
	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/index"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond

	// Sets per transaction; keeps large batches under badger's txn limits.
	writeBatchSize = 100
)

var (
	// ErrBackendRequired indicates a nil backend was passed to NewProvider.
	ErrBackendRequired = errors.New("badger backend is required")

	// ErrEmbedderRequired indicates a nil embedder was passed to NewProvider.
	ErrEmbedderRequired = errors.New("embedder is required")
)

// storedChunk is the persisted form of an indexed chunk: the chunk itself
// plus its normalized embedding vector.
type storedChunk struct {
	Chunk  core.Chunk `json:"chunk"`
	Vector []float32  `json:"vector"`
}

// Provider implements index.Provider on BadgerDB. Vectors are normalized
// at write time so query-time similarity is a plain dot product.
type Provider struct {
	backend     *Backend
	embedder    ai.Embedder
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

var _ index.Provider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithRetry configures embedding retry behavior.
// Defaults: 3 attempts, 500ms base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Provider) error {
		if maxAttempts < 1 {
			return index.ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// NewProvider creates a BadgerDB-backed index provider.
//
// Returns index.Provider interface to enforce abstraction.
func NewProvider(backend *Backend, embedder ai.Embedder, opts ...Option) (index.Provider, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	p := &Provider{
		backend:     backend,
		embedder:    embedder,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Add embeds and stores chunks. Writes are strictly additive: a chunk
// whose ID is already present is stored again as a new entry, never
// deduplicated or overwritten.
func (p *Provider) Add(ctx context.Context, chunks []core.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	var vectors [][]float32
	err := index.RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	ids := make([]string, 0, len(chunks))
	for start := 0; start < len(chunks); start += writeBatchSize {
		end := start + writeBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		err := p.backend.WithTx(func(tx *badger.Txn) error {
			for i := start; i < end; i++ {
				value, err := json.Marshal(storedChunk{
					Chunk:  chunks[i],
					Vector: index.NormalizeVector(vectors[i]),
				})
				if err != nil {
					return err
				}
				if err := tx.Set(makeChunkEntryKey(chunks[i].ID), value); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return nil, err
		}
		for i := start; i < end; i++ {
			ids = append(ids, chunks[i].ID)
		}
	}

	p.logger.Debug("indexed chunks", "count", len(ids))
	return ids, nil
}

// Query embeds the query text and scans stored chunks for the k nearest by
// cosine similarity, applying the metadata filter first.
func (p *Provider) Query(ctx context.Context, text string, k int, filter map[string]string) ([]core.ScoredChunk, error) {
	var queryVec []float32
	err := index.RetryWithBackoff(ctx, func() error {
		var embedErr error
		queryVec, embedErr = p.embedder.EmbedText(ctx, text)
		return embedErr
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	queryVec = index.NormalizeVector(queryVec)

	var results []core.ScoredChunk
	err = p.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var stored storedChunk
			if err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			}); err != nil {
				return err
			}

			if !matchesFilter(stored.Chunk, filter) {
				continue
			}

			results = append(results, core.ScoredChunk{
				Chunk: stored.Chunk,
				Score: dotProduct(queryVec, stored.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b core.ScoredChunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count returns the number of stored chunks.
func (p *Provider) Count(ctx context.Context) (int, error) {
	count := 0
	err := p.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// DeleteAll removes every stored chunk.
func (p *Provider) DeleteAll(ctx context.Context) error {
	return p.backend.DropAll()
}

// Backup writes a full snapshot of the index to the given file path.
func (p *Provider) Backup(ctx context.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.backend.Backup(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Close closes the underlying database.
func (p *Provider) Close() error {
	return p.backend.Close()
}

func matchesFilter(chunk core.Chunk, filter map[string]string) bool {
	for k, v := range filter {
		if chunk.Metadata[k] != v {
			return false
		}
	}
	return true
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
