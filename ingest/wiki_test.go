package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/storage"
)

// testWikiConnector implements WikiConnector for testing.
type testWikiConnector struct {
	pages map[string]*core.WikiPage
	err   error
}

func (c *testWikiConnector) FetchSpace(ctx context.Context, spaceKey string) ([]*core.WikiPage, error) {
	if c.err != nil {
		return nil, c.err
	}
	var pages []*core.WikiPage
	for _, page := range c.pages {
		if page.SpaceKey == spaceKey {
			pages = append(pages, page)
		}
	}
	return pages, nil
}

func (c *testWikiConnector) FetchPage(ctx context.Context, pageID string) (*core.WikiPage, error) {
	if c.err != nil {
		return nil, c.err
	}
	page, ok := c.pages[pageID]
	if !ok {
		return nil, errors.New("page not found")
	}
	return page, nil
}

func samplePage(id, title string) *core.WikiPage {
	return &core.WikiPage{
		PageID:      id,
		Title:       title,
		SpaceKey:    "ENG",
		Path:        "Engineering / Backend",
		Author:      "carol",
		LastUpdated: "2026-08-29T12:00:00Z",
		Version:     4,
		URL:         "https://wiki.example.com/pages/" + id,
		Content:     "Deployment runbook for the backend services.",
	}
}

func TestIngestSpaceStoresAllPages(t *testing.T) {
	store := newTestStore(t)
	connector := &testWikiConnector{pages: map[string]*core.WikiPage{
		"p1": samplePage("p1", "Runbook"),
		"p2": samplePage("p2", "Architecture"),
	}}

	ingestor, err := NewWikiIngestor(store, connector)
	require.NoError(t, err)

	record, err := ingestor.IngestSpace(context.Background(), "ENG")
	require.NoError(t, err)

	assert.Equal(t, core.RunStatusCompleted, record.Status)
	assert.Equal(t, 2, record.DocumentsIngested)
	assert.Equal(t, core.SourceTypeWiki, record.SourceType)

	h := storage.BatchHandle{SourceType: core.SourceTypeWiki, BatchID: record.BatchID}
	manifest, err := store.LoadManifest(h)
	require.NoError(t, err)
	assert.Len(t, manifest.Documents, 2)
}

func TestIngestPageCarriesMetadata(t *testing.T) {
	store := newTestStore(t)
	connector := &testWikiConnector{pages: map[string]*core.WikiPage{
		"p1": samplePage("p1", "Runbook"),
	}}

	ingestor, err := NewWikiIngestor(store, connector)
	require.NoError(t, err)

	record, err := ingestor.IngestPage(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, 1, record.DocumentsIngested)

	h := storage.BatchHandle{SourceType: core.SourceTypeWiki, BatchID: record.BatchID}
	manifest, err := store.LoadManifest(h)
	require.NoError(t, err)
	require.Len(t, manifest.Documents, 1)

	_, meta, err := store.LoadDocument(h, manifest.Documents[0])
	require.NoError(t, err)
	assert.Equal(t, "p1", meta.SourceID)
	assert.Equal(t, "Runbook", meta.Title)
	assert.Equal(t, "carol", meta.Author)
	assert.Equal(t, "ENG", meta.Extra["space_key"])
	assert.Equal(t, "Engineering / Backend", meta.Extra["hierarchy_path"])
	assert.Equal(t, "4", meta.Extra["page_version"])
	require.NotNil(t, meta.SourceTimestamp)
}

func TestIngestPageConnectorFailure(t *testing.T) {
	store := newTestStore(t)
	connector := &testWikiConnector{err: errors.New("wiki unreachable")}

	ingestor, err := NewWikiIngestor(store, connector)
	require.NoError(t, err)

	record, err := ingestor.IngestPage(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, core.RunStatusFailed, record.Status)
}
