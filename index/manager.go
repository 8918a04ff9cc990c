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


package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/process"
	"github.com/poiesic/corpus/storage"
)

const (
	opInitialize    = "initialize"
	opUpdate        = "update"
	opReindexSource = "reindex_source"
	opRebuild       = "rebuild"

	backupsDirName = "backups"
)

// Manager owns the vector index lifecycle: building it from raw batches,
// keeping the version record in lockstep with the provider's content, and
// rebuilding from scratch with a safety backup.
//
// The version record is only ever written after the provider operation
// succeeded, so a failed operation leaves the previous record untouched.
type Manager struct {
	store     storage.RawStore
	processor *process.Processor
	provider  Provider
	indexDir  string
	model     string
	pool      *ants.Pool
	logger    *slog.Logger

	// serializes mutating operations; processing inside them is still
	// concurrent
	mu sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager) error

// WithPoolSize sets the worker pool size for concurrent batch processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(m *Manager) error {
		if size < 1 {
			size = 1
		}
		if m.pool != nil {
			m.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		m.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithEmbeddingModel records the embedding model identifier in the version
// record, so a model change is visible in index lineage.
func WithEmbeddingModel(model string) Option {
	return func(m *Manager) error {
		m.model = model
		return nil
	}
}

// NewManager creates an index manager. The version record and rebuild
// backups live under indexDir.
func NewManager(store storage.RawStore, processor *process.Processor, provider Provider, indexDir string, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if processor == nil {
		return nil, ErrProcessorRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		store:     store,
		processor: processor,
		provider:  provider,
		indexDir:  indexDir,
		pool:      pool,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			m.Release()
			return nil, err
		}
	}
	return m, nil
}

// Release frees the worker pool. The provider is owned by the caller and
// is not closed here.
func (m *Manager) Release() {
	if m.pool != nil {
		m.pool.Release()
	}
}

// Version returns the current version record.
func (m *Manager) Version() (*core.IndexVersion, error) {
	return LoadVersion(m.indexDir)
}

// Initialize builds the index from every batch in the raw store. It fails
// closed when a version record already exists: an existing index is never
// silently destroyed, use Rebuild for that.
func (m *Manager) Initialize(ctx context.Context) (*core.IndexVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := LoadVersion(m.indexDir); err == nil {
		return nil, ErrIndexExists
	} else if !errors.Is(err, ErrVersionNotFound) {
		return nil, err
	}

	return m.buildFresh(ctx, opInitialize, "")
}

// buildFresh indexes every batch in the store and writes a version-1 record.
// Caller must hold m.mu.
func (m *Manager) buildFresh(ctx context.Context, operation, backupPath string) (*core.IndexVersion, error) {
	handles, err := m.store.AllBatches()
	if err != nil {
		return nil, err
	}

	batchCounts, err := m.addBatches(ctx, handles)
	if err != nil {
		return nil, err
	}

	count, err := m.provider.Count(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	version := &core.IndexVersion{
		Version:        1,
		CreatedAt:      now,
		LastUpdated:    now,
		EmbeddingModel: m.model,
		DocumentCount:  count,
		BatchCounts:    batchCounts,
		LastOperation:  operation,
		BackupPath:     backupPath,
	}
	if err := SaveVersion(m.indexDir, version); err != nil {
		return nil, err
	}

	m.logger.Info("index built", "operation", operation, "batches", len(handles), "chunks", count)
	return version, nil
}

// Update adds the given batches to an existing index. With no handles it
// re-adds every batch in the store.
//
// Updates are strictly additive: nothing is removed or deduplicated, so
// running the same update twice stores the batch's chunks twice. Use
// Rebuild for an index that exactly reflects the raw store.
func (m *Manager) Update(ctx context.Context, handles ...storage.BatchHandle) (*core.IndexVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	version, err := m.requireVersion()
	if err != nil {
		return nil, err
	}

	if len(handles) == 0 {
		handles, err = m.store.AllBatches()
		if err != nil {
			return nil, err
		}
	}

	return m.applyAdditive(ctx, version, handles, opUpdate)
}

// ReindexSource re-processes every batch of one source type into the index.
//
// This is an ADDITIVE operation, not a replacement: chunks from the
// source's current raw data are stored alongside whatever the index
// already holds for that source, duplicates included. Use Rebuild to get
// an index that exactly reflects the raw store.
func (m *Manager) ReindexSource(ctx context.Context, source core.SourceType) (*core.IndexVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	version, err := m.requireVersion()
	if err != nil {
		return nil, err
	}

	manifests, err := m.store.ListBatches(source)
	if err != nil {
		return nil, err
	}
	handles := make([]storage.BatchHandle, 0, len(manifests))
	for _, manifest := range manifests {
		handles = append(handles, storage.BatchHandle{SourceType: source, BatchID: manifest.BatchID})
	}

	m.logger.Info("reindexing source additively", "source", source.String(), "batches", len(handles))
	return m.applyAdditive(ctx, version, handles, opReindexSource)
}

// Rebuild replaces the index wholesale: snapshot the current provider state
// to a backup, clear it, and re-index every batch in the raw store. The
// version resets to 1 with fresh lineage. When no index exists yet, Rebuild
// degrades to a fresh build with nothing to back up.
//
// Ordering is deliberate: the old version record is kept until the backup
// and re-index both succeed, so a failed rebuild leaves the previous record
// describing the previous (backed up) index.
func (m *Manager) Rebuild(ctx context.Context) (*core.IndexVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.requireVersion(); err != nil {
		if errors.Is(err, ErrIndexNotFound) {
			// Nothing to back up or clear; an absent index builds fresh.
			return m.buildFresh(ctx, opInitialize, "")
		}
		return nil, err
	}

	backupDir := filepath.Join(m.indexDir, backupsDirName)
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return nil, err
	}
	backupPath := filepath.Join(backupDir, fmt.Sprintf("backup_%s.bak", time.Now().UTC().Format("20060102_150405")))

	if err := m.provider.Backup(ctx, backupPath); err != nil {
		return nil, fmt.Errorf("rebuild backup: %w", err)
	}
	m.logger.Info("index backed up", "path", backupPath)

	if err := m.provider.DeleteAll(ctx); err != nil {
		return nil, err
	}

	handles, err := m.store.AllBatches()
	if err != nil {
		return nil, err
	}
	batchCounts, err := m.addBatches(ctx, handles)
	if err != nil {
		return nil, err
	}

	count, err := m.provider.Count(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	version := &core.IndexVersion{
		Version:        1,
		CreatedAt:      now,
		LastUpdated:    now,
		EmbeddingModel: m.model,
		DocumentCount:  count,
		BatchCounts:    batchCounts,
		LastOperation:  opRebuild,
		BackupPath:     backupPath,
	}
	if err := SaveVersion(m.indexDir, version); err != nil {
		return nil, err
	}

	m.logger.Info("index rebuilt", "batches", len(handles), "chunks", count, "backup", backupPath)
	return version, nil
}

// Info describes the index from both bookkeeping and provider perspectives.
type Info struct {
	// Version is nil when the index has never been initialized.
	Version *core.IndexVersion

	// ProviderCount is the chunk count reported by the provider itself.
	ProviderCount int

	// Discrepancy is set when ProviderCount disagrees with the version
	// record, which indicates the index was modified outside the manager.
	Discrepancy bool
}

// Info cross-checks the version record against the provider's own count.
func (m *Manager) Info(ctx context.Context) (*Info, error) {
	count, err := m.provider.Count(ctx)
	if err != nil {
		return nil, err
	}

	version, err := LoadVersion(m.indexDir)
	if err != nil {
		if errors.Is(err, ErrVersionNotFound) {
			return &Info{ProviderCount: count, Discrepancy: count != 0}, nil
		}
		return nil, err
	}

	return &Info{
		Version:       version,
		ProviderCount: count,
		Discrepancy:   count != version.DocumentCount,
	}, nil
}

// Helper methods

func (m *Manager) requireVersion() (*core.IndexVersion, error) {
	version, err := LoadVersion(m.indexDir)
	if err != nil {
		if errors.Is(err, ErrVersionNotFound) {
			return nil, ErrIndexNotFound
		}
		return nil, err
	}
	return version, nil
}

// applyAdditive adds batches to the provider, then advances the version
// record. Caller must hold m.mu and have loaded the current version.
func (m *Manager) applyAdditive(ctx context.Context, version *core.IndexVersion, handles []storage.BatchHandle, operation string) (*core.IndexVersion, error) {
	batchCounts, err := m.addBatches(ctx, handles)
	if err != nil {
		return nil, err
	}

	count, err := m.provider.Count(ctx)
	if err != nil {
		return nil, err
	}

	if version.BatchCounts == nil {
		version.BatchCounts = make(map[string]int)
	}
	for batchID, n := range batchCounts {
		version.BatchCounts[batchID] = n
	}
	version.Version++
	version.LastUpdated = time.Now().UTC()
	version.DocumentCount = count
	version.LastOperation = operation
	if m.model != "" {
		version.EmbeddingModel = m.model
	}

	if err := SaveVersion(m.indexDir, version); err != nil {
		return nil, err
	}
	return version, nil
}

// addBatches processes and indexes batches concurrently on the worker
// pool. Per-document render failures are logged and skipped; batch-level
// failures fail the whole operation.
func (m *Manager) addBatches(ctx context.Context, handles []storage.BatchHandle) (map[string]int, error) {
	batchCounts := make(map[string]int, len(handles))
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)

	for _, h := range handles {
		wg.Add(1)
		submitErr := m.pool.Submit(func() {
			defer wg.Done()
			count, err := m.addBatch(ctx, h)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("batch %s/%s: %w", h.SourceType, h.BatchID, err))
				return
			}
			batchCounts[h.BatchID] = count
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, submitErr)
			mu.Unlock()
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return batchCounts, nil
}

func (m *Manager) addBatch(ctx context.Context, h storage.BatchHandle) (int, error) {
	results, err := m.processor.ProcessBatch(h)
	if err != nil {
		return 0, err
	}

	var chunks []core.Chunk
	for _, result := range results {
		if result.Err != nil {
			m.logger.Warn("skipping failed document",
				"batch_id", h.BatchID, "document_id", result.DocumentID, "error", result.Err)
			continue
		}
		chunks = append(chunks, result.Chunks...)
	}

	if len(chunks) == 0 {
		return 0, nil
	}
	ids, err := m.provider.Add(ctx, chunks)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
