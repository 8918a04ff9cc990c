// Package mock provides an in-memory index.Provider test double.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/poiesic/corpus/core"
)

// MockProvider is a test double for index.Provider. By default it stores
// chunks in memory with the same additive write semantics as the real
// provider; behavior can be overridden per method via function fields.
type MockProvider struct {
	// AddFunc is called by Add if set.
	AddFunc func(ctx context.Context, chunks []core.Chunk) ([]string, error)

	// QueryFunc is called by Query if set.
	QueryFunc func(ctx context.Context, text string, k int, filter map[string]string) ([]core.ScoredChunk, error)

	// BackupFunc is called by Backup if set.
	BackupFunc func(ctx context.Context, path string) error

	mu      sync.Mutex
	entries []core.Chunk

	backups []string
	closed  bool
}

// NewMockProvider creates a mock provider with default in-memory behavior.
// Returns the concrete type so tests can inject behavior and inspect state.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Add appends chunks to the in-memory store. Chunks with an ID already
// present are stored again, never deduplicated.
func (m *MockProvider) Add(ctx context.Context, chunks []core.Chunk) ([]string, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, chunks)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		m.entries = append(m.entries, chunk)
		ids = append(ids, chunk.ID)
	}
	return ids, nil
}

// Query returns stored chunks whose metadata matches the filter, in stable
// ID order with a constant score.
func (m *MockProvider) Query(ctx context.Context, text string, k int, filter map[string]string) ([]core.ScoredChunk, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, text, k, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var results []core.ScoredChunk
	for _, chunk := range m.entries {
		if !matchesFilter(chunk, filter) {
			continue
		}
		results = append(results, core.ScoredChunk{Chunk: chunk, Score: 1.0})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Chunk.ID < results[j].Chunk.ID })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count returns the number of stored entries, duplicates included.
func (m *MockProvider) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

// DeleteAll clears the in-memory store.
func (m *MockProvider) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

// Backup records the requested backup path.
func (m *MockProvider) Backup(ctx context.Context, path string) error {
	if m.BackupFunc != nil {
		return m.BackupFunc(ctx, path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backups = append(m.backups, path)
	return nil
}

// Close marks the provider closed.
func (m *MockProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Backups returns the backup paths requested so far.
func (m *MockProvider) Backups() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.backups...)
}

// Closed reports whether Close was called.
func (m *MockProvider) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Chunks returns a snapshot of the stored entries in insertion order.
func (m *MockProvider) Chunks() []core.Chunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Chunk(nil), m.entries...)
}

func matchesFilter(chunk core.Chunk, filter map[string]string) bool {
	for k, v := range filter {
		if chunk.Metadata[k] != v {
			return false
		}
	}
	return true
}
