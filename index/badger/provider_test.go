package badger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/corpus/ai/mock"
	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/index"
)

func newTestProvider(t *testing.T) index.Provider {
	t.Helper()
	provider, err := NewMemoryProvider(mock.NewMockEmbedder())
	require.NoError(t, err)
	t.Cleanup(func() { provider.Close() })
	return provider
}

func testChunks() []core.Chunk {
	return []core.Chunk{
		{
			ID:         "doc1:0:aaaa",
			DocumentID: "doc1",
			Index:      0,
			Content:    "the deploy pipeline finished without errors",
			Metadata:   map[string]string{"source_type": "chat", "batch_id": "b1"},
		},
		{
			ID:         "doc1:1:bbbb",
			DocumentID: "doc1",
			Index:      1,
			Content:    "rollback procedures are documented on the wiki",
			Metadata:   map[string]string{"source_type": "chat", "batch_id": "b1"},
		},
		{
			ID:         "doc2:0:cccc",
			DocumentID: "doc2",
			Index:      0,
			Content:    "quarterly revenue exceeded projections",
			Metadata:   map[string]string{"source_type": "wiki", "batch_id": "b2"},
		},
	}
}

func TestAddAndCount(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	ids, err := provider.Add(ctx, testChunks())
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	count, err := provider.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestAddNeverDeduplicates(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	chunks := testChunks()
	_, err := provider.Add(ctx, chunks)
	require.NoError(t, err)
	_, err = provider.Add(ctx, chunks)
	require.NoError(t, err)

	count, err := provider.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, count, "re-adding the same chunk IDs must store new entries")
}

func TestQueryRanksExactMatchFirst(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	chunks := testChunks()
	_, err := provider.Add(ctx, chunks)
	require.NoError(t, err)

	// The mock embedder is deterministic, so querying with a chunk's own
	// content yields an identical vector and a top score of ~1.
	results, err := provider.Query(ctx, chunks[1].Content, 3, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, chunks[1].ID, results[0].Chunk.ID)
	assert.InDelta(t, 1.0, float64(results[0].Score), 0.001)

	// Scores are descending.
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestQueryHonorsLimit(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.Add(ctx, testChunks())
	require.NoError(t, err)

	results, err := provider.Query(ctx, "anything", 2, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestQueryMetadataFilter(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.Add(ctx, testChunks())
	require.NoError(t, err)

	results, err := provider.Query(ctx, "revenue", 10, map[string]string{"source_type": "wiki"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc2:0:cccc", results[0].Chunk.ID)

	none, err := provider.Query(ctx, "revenue", 10, map[string]string{"source_type": "pdf"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteAll(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.Add(ctx, testChunks())
	require.NoError(t, err)

	require.NoError(t, provider.DeleteAll(ctx))

	count, err := provider.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestBackupWritesSnapshotFile(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.Add(ctx, testChunks())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.bak")
	require.NoError(t, provider.Backup(ctx, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestAddRetriesEmbeddingFailures(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	attempts := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 2 {
			return nil, errors.New("transient embedding error")
		}
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0, 0}
		}
		return vectors, nil
	}

	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	provider, err := NewProvider(backend, embedder, WithRetry(3, 0))
	require.NoError(t, err)
	t.Cleanup(func() { provider.Close() })

	ids, err := provider.Add(context.Background(), testChunks()[:1])
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	assert.Equal(t, 2, attempts)
}

func TestNewProviderValidation(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewProvider(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrBackendRequired)

	_, err = NewProvider(backend, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
