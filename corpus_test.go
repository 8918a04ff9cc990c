package corpus_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corpus "github.com/poiesic/corpus"
	aimock "github.com/poiesic/corpus/ai/mock"
	"github.com/poiesic/corpus/config"
	"github.com/poiesic/corpus/core"
)

func openTestCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.IndexDir = filepath.Join(t.TempDir(), "index")

	c, err := corpus.Open(cfg,
		corpus.WithEmbedder(aimock.NewMockEmbedder()),
		corpus.WithInMemoryIndex(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestOpenWiresAllComponents(t *testing.T) {
	c := openTestCorpus(t)

	assert.NotNil(t, c.Store())
	assert.NotNil(t, c.Manager())
	assert.NotNil(t, c.Orchestrator())
	assert.NotNil(t, c.Searcher())
}

func TestEndToEndIngestIndexSearch(t *testing.T) {
	c := openTestCorpus(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "runbook.md")
	content := "# Deployment Runbook\n\nRoll back by redeploying the previous tag."
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	record, err := c.Orchestrator().IngestFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, record.DocumentsIngested)

	_, err = c.Manager().Initialize(ctx)
	require.NoError(t, err)

	info, err := c.Manager().Info(ctx)
	require.NoError(t, err)
	require.NotNil(t, info.Version)
	assert.Equal(t, 1, info.Version.Version)
	assert.Positive(t, info.ProviderCount)
	assert.False(t, info.Discrepancy)

	results, err := c.Searcher().Search(ctx, "Deployment Runbook", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Chunk.Content, "Deployment Runbook")
	assert.Equal(t, core.SourceTypeMarkdown.String(), results[0].Chunk.Metadata["source_type"])
}

func TestAutoIndexAfterInitialize(t *testing.T) {
	c := openTestCorpus(t)
	ctx := context.Background()

	_, err := c.Manager().Initialize(ctx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("standup notes for the week"), 0o644))

	_, err = c.Orchestrator().IngestFile(ctx, path)
	require.NoError(t, err)

	info, err := c.Manager().Info(ctx)
	require.NoError(t, err)
	require.NotNil(t, info.Version)
	assert.Equal(t, 2, info.Version.Version)
	assert.Positive(t, info.ProviderCount)
}
