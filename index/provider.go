package index

import (
	"context"

	"github.com/poiesic/corpus/core"
)

// Provider is the vector index backend. It owns embedding and storage of
// chunks; the Manager above it owns lifecycle and version bookkeeping.
// Implementations must be thread-safe for concurrent use.
type Provider interface {
	// Add embeds and stores chunks. Writes are strictly additive: a chunk
	// whose ID is already present is stored again rather than overwritten,
	// so adding the same chunks twice doubles their representation.
	// Returns the IDs of the stored chunks.
	Add(ctx context.Context, chunks []core.Chunk) ([]string, error)

	// Query embeds the query text and returns the k most similar chunks,
	// highest score first. A non-empty filter restricts results to chunks
	// whose metadata contains every filter entry.
	Query(ctx context.Context, text string, k int, filter map[string]string) ([]core.ScoredChunk, error)

	// Count returns the number of chunks currently stored.
	Count(ctx context.Context) (int, error)

	// DeleteAll removes every stored chunk.
	DeleteAll(ctx context.Context) error

	// Backup writes a restorable snapshot of the index to the given path.
	Backup(ctx context.Context, path string) error

	// Close releases resources held by the provider.
	Close() error
}
