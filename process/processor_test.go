package process

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/storage"
	"github.com/poiesic/corpus/storage/fsstore"
)

func newTestStore(t *testing.T) storage.RawStore {
	t.Helper()
	store, dir, err := fsstore.NewTempStore()
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return store
}

func chatMetadata(threadID string) *core.DocumentMetadata {
	return &core.DocumentMetadata{
		SourceType: core.SourceTypeChat,
		SourceID:   threadID,
		SourceName: "#engineering",
		IngestedAt: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
		Extra:      map[string]string{"channel_id": "C042"},
	}
}

func storeThread(t *testing.T, store storage.RawStore, h storage.BatchHandle, threadID, text string) {
	t.Helper()
	thread := &core.ChatThread{
		ThreadID:     threadID,
		ChannelID:    "C042",
		ChannelName:  "engineering",
		MessageCount: 1,
		Messages: []core.ChatMessage{
			{UserID: "U1", UserName: "alice", Text: text, Timestamp: "2026-08-30T08:00:00Z"},
		},
	}
	_, err := store.StoreDocument(h, threadID, thread, chatMetadata(threadID))
	require.NoError(t, err)
}

func TestProcessBatchChunksDocuments(t *testing.T) {
	store := newTestStore(t)
	h, err := store.CreateBatch(core.SourceTypeChat, "standup")
	require.NoError(t, err)

	storeThread(t, store, h, "t1", "we shipped the release")
	storeThread(t, store, h, "t2", "rollback went fine")

	p, err := New(store)
	require.NoError(t, err)

	results, err := p.ProcessBatch(h)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, result := range results {
		require.NoError(t, result.Err)
		require.NotEmpty(t, result.Chunks)
		for _, chunk := range result.Chunks {
			assert.Equal(t, result.DocumentID, chunk.DocumentID)
			assert.NotEmpty(t, chunk.Content)
			assert.Contains(t, chunk.Content, "#engineering")
		}
	}
}

func TestProcessBatchCarriesProvenance(t *testing.T) {
	store := newTestStore(t)
	h, err := store.CreateBatch(core.SourceTypeChat, "")
	require.NoError(t, err)

	storeThread(t, store, h, "t1", "incident resolved")

	p, err := New(store)
	require.NoError(t, err)

	results, err := p.ProcessBatch(h)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotEmpty(t, results[0].Chunks)

	meta := results[0].Chunks[0].Metadata
	assert.Equal(t, "chat", meta["source_type"])
	assert.Equal(t, "t1", meta["source_id"])
	assert.Equal(t, "#engineering", meta["source_name"])
	assert.Equal(t, h.BatchID, meta["batch_id"])
	assert.Equal(t, "2026-08-30T09:00:00Z", meta["ingested_at"])
	// Origin-specific extras survive the flattening.
	assert.Equal(t, "C042", meta["channel_id"])
}

func TestProcessBatchIsolatesDocumentFailures(t *testing.T) {
	store := newTestStore(t)
	h, err := store.CreateBatch(core.SourceTypeChat, "")
	require.NoError(t, err)

	storeThread(t, store, h, "good", "all fine here")
	// Raw bytes that cannot decode as a chat thread.
	_, err = store.StoreDocument(h, "bad", []byte("{not json"), chatMetadata("bad"))
	require.NoError(t, err)
	storeThread(t, store, h, "also-good", "still fine")

	p, err := New(store)
	require.NoError(t, err)

	results, err := p.ProcessBatch(h)
	require.NoError(t, err)
	require.Len(t, results, 3)

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			assert.Equal(t, "bad", result.DocumentID)
			assert.ErrorIs(t, result.Err, ErrRenderFailed)
			assert.Empty(t, result.Chunks)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestProcessBatchSkipsBinaryEntries(t *testing.T) {
	store := newTestStore(t)
	h, err := store.CreateBatch(core.SourceTypePDF, "")
	require.NoError(t, err)

	meta := &core.DocumentMetadata{
		SourceType: core.SourceTypePDF,
		SourceID:   "report.pdf",
		IngestedAt: time.Now().UTC(),
	}
	_, err = store.StoreBinary(h, "report.pdf", []byte("%PDF-1.4 payload"), meta)
	require.NoError(t, err)

	extraction := &core.PDFDocument{
		Filename:   "report.pdf",
		TotalPages: 1,
		Pages:      []core.PDFPage{{Page: 1, Text: "quarterly results were strong"}},
	}
	_, err = store.StoreDocument(h, "report.pdf#text", extraction, meta)
	require.NoError(t, err)

	p, err := New(store)
	require.NoError(t, err)

	results, err := p.ProcessBatch(h)
	require.NoError(t, err)
	// Only the structured extraction is processed.
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Contains(t, results[0].Chunks[0].Content, "--- Page 1 ---")
}

func TestProcessBatchMissingBatch(t *testing.T) {
	store := newTestStore(t)
	p, err := New(store)
	require.NoError(t, err)

	_, err = p.ProcessBatch(storage.BatchHandle{SourceType: core.SourceTypeChat, BatchID: "nope"})
	assert.ErrorIs(t, err, storage.ErrBatchNotFound)
}

func TestProcessBatchDeterministicChunkIDs(t *testing.T) {
	store := newTestStore(t)
	h, err := store.CreateBatch(core.SourceTypeChat, "")
	require.NoError(t, err)
	storeThread(t, store, h, "t1", "same content every time")

	p, err := New(store)
	require.NoError(t, err)

	first, err := p.ProcessBatch(h)
	require.NoError(t, err)
	second, err := p.ProcessBatch(h)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		require.Len(t, second[i].Chunks, len(first[i].Chunks))
		for j := range first[i].Chunks {
			assert.Equal(t, first[i].Chunks[j].ID, second[i].Chunks[j].ID)
		}
	}
}

func TestRenderChatHeaderCarriesThreadContext(t *testing.T) {
	thread := &core.ChatThread{
		ThreadID:     "1700000000.000100",
		ChannelName:  "engineering",
		Participants: []string{"alice", "bob"},
		MessageCount: 1,
		Messages: []core.ChatMessage{
			{UserName: "alice", Text: "deploy is done", Timestamp: "2026-08-30T08:00:00Z"},
		},
	}
	data, err := json.Marshal(thread)
	require.NoError(t, err)

	text, err := RenderDocument(core.SourceTypeChat, data)
	require.NoError(t, err)

	assert.Contains(t, text, "# Chat conversation: #engineering")
	assert.Contains(t, text, "Thread ID: 1700000000.000100")
	assert.Contains(t, text, "Participants: alice, bob")
	assert.Contains(t, text, "[2026-08-30T08:00:00Z] alice: deploy is done")
}

func TestProcessBatchChunksOwnTheirMetadata(t *testing.T) {
	store := newTestStore(t)
	h, err := store.CreateBatch(core.SourceTypeChat, "")
	require.NoError(t, err)

	long := strings.Repeat("the deployment pipeline emitted another status line. ", 40)
	storeThread(t, store, h, "t1", long)

	p, err := New(store)
	require.NoError(t, err)

	results, err := p.ProcessBatch(h)
	require.NoError(t, err)
	chunks := results[0].Chunks
	require.Greater(t, len(chunks), 1)

	chunks[0].Metadata["source_id"] = "tampered"
	for _, chunk := range chunks[1:] {
		assert.Equal(t, "t1", chunk.Metadata["source_id"])
	}
}

func TestRenderDocumentUnknownSource(t *testing.T) {
	_, err := RenderDocument(core.SourceTypeUnknown, []byte("anything"))
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}
