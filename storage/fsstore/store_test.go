package fsstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/storage"
)

func newTestStore(t *testing.T) storage.RawStore {
	t.Helper()
	store, dir, err := NewTempStore()
	if err != nil {
		t.Fatalf("NewTempStore: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return store
}

func testMetadata(source core.SourceType, sourceID string) *core.DocumentMetadata {
	return &core.DocumentMetadata{
		SourceType: source,
		SourceID:   sourceID,
		SourceName: "test source",
		IngestedAt: time.Now().UTC(),
		Extra:      map[string]string{"space_key": "ENG", "region": "us-east"},
	}
}

func TestStoreDocumentAppendsManifest(t *testing.T) {
	store := newTestStore(t)

	h, err := store.CreateBatch(core.SourceTypeWiki, "eng-space")
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	ids := []string{"page-1", "page-2", "page-3"}
	for _, id := range ids {
		if _, err := store.StoreDocument(h, id, "content of "+id, testMetadata(core.SourceTypeWiki, id)); err != nil {
			t.Fatalf("StoreDocument(%s): %v", id, err)
		}
	}

	manifest, err := store.LoadManifest(h)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(manifest.Documents) != len(ids) {
		t.Fatalf("expected %d manifest entries, got %d", len(ids), len(manifest.Documents))
	}
	for i, entry := range manifest.Documents {
		if entry.ID != ids[i] {
			t.Errorf("entry %d: expected ID %q, got %q", i, ids[i], entry.ID)
		}
		if entry.Binary {
			t.Errorf("entry %d: document entry marked binary", i)
		}
	}
}

func TestLoadDocumentRoundTrip(t *testing.T) {
	store := newTestStore(t)

	h, err := store.CreateBatch(core.SourceTypeChat, "")
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	thread := &core.ChatThread{
		ThreadID:     "1234.5678",
		ChannelID:    "C042",
		ChannelName:  "engineering",
		MessageCount: 1,
		Messages: []core.ChatMessage{
			{UserID: "U1", UserName: "alice", Text: "deploy is done", Timestamp: "2026-08-30T10:00:00Z"},
		},
	}
	meta := testMetadata(core.SourceTypeChat, thread.ThreadID)

	if _, err := store.StoreDocument(h, thread.ThreadID, thread, meta); err != nil {
		t.Fatalf("StoreDocument: %v", err)
	}

	manifest, err := store.LoadManifest(h)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	content, gotMeta, err := store.LoadDocument(h, manifest.Documents[0])
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}

	var got core.ChatThread
	if err := json.Unmarshal(content, &got); err != nil {
		t.Fatalf("unmarshal stored content: %v", err)
	}
	if got.ThreadID != thread.ThreadID || got.Messages[0].Text != thread.Messages[0].Text {
		t.Errorf("stored thread does not match original: %+v", got)
	}

	if gotMeta.SourceID != meta.SourceID {
		t.Errorf("expected source ID %q, got %q", meta.SourceID, gotMeta.SourceID)
	}
	for k, v := range meta.Extra {
		if gotMeta.Extra[k] != v {
			t.Errorf("extra[%q]: expected %q, got %q", k, v, gotMeta.Extra[k])
		}
	}
}

func TestStoreBinaryDuplicatesBothKept(t *testing.T) {
	store := newTestStore(t)

	h, err := store.CreateBatch(core.SourceTypePDF, "")
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	data := []byte("%PDF-1.4 fake payload")
	meta := testMetadata(core.SourceTypePDF, "report.pdf")

	path1, err := store.StoreBinary(h, "report.pdf", data, meta)
	if err != nil {
		t.Fatalf("first StoreBinary: %v", err)
	}
	path2, err := store.StoreBinary(h, "report.pdf", data, meta)
	if err != nil {
		t.Fatalf("second StoreBinary: %v", err)
	}

	// Identical bytes share one content-addressed file, but each upload
	// event appears in the manifest.
	if path1 != path2 {
		t.Errorf("expected identical payloads to share a stored path: %q vs %q", path1, path2)
	}
	manifest, err := store.LoadManifest(h)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(manifest.Documents) != 2 {
		t.Fatalf("expected 2 manifest entries, got %d", len(manifest.Documents))
	}
	for i, entry := range manifest.Documents {
		if !entry.Binary {
			t.Errorf("entry %d: expected binary entry", i)
		}
	}

	_, gotMeta, err := store.LoadDocument(h, manifest.Documents[0])
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if gotMeta.Extra["content_hash"] != core.HashContent(data) {
		t.Errorf("expected content_hash %q, got %q", core.HashContent(data), gotMeta.Extra["content_hash"])
	}
	if gotMeta.Extra["original_filename"] != "report.pdf" {
		t.Errorf("expected original_filename report.pdf, got %q", gotMeta.Extra["original_filename"])
	}
}

func TestLoadManifestMissingBatch(t *testing.T) {
	store := newTestStore(t)

	h := storage.BatchHandle{SourceType: core.SourceTypeWiki, BatchID: "20260101_000000"}
	if _, err := store.LoadManifest(h); !errors.Is(err, storage.ErrBatchNotFound) {
		t.Errorf("expected ErrBatchNotFound, got %v", err)
	}
}

func TestCreateBatchUnknownSourceRejected(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.CreateBatch(core.SourceTypeUnknown, ""); !errors.Is(err, core.ErrInvalidSourceType) {
		t.Errorf("expected ErrInvalidSourceType, got %v", err)
	}
}

func TestNextBatchIDCollisionSuffix(t *testing.T) {
	dir, err := os.MkdirTemp("", "corpus-fsstore-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	raw, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	store := raw.(*Store)

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	first := store.nextBatchID(core.SourceTypeChat, "standup", now)
	if first != "20260830_120000_standup" {
		t.Fatalf("unexpected batch ID %q", first)
	}
	if err := os.MkdirAll(filepath.Join(dir, rawDirName, "chat", first), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	second := store.nextBatchID(core.SourceTypeChat, "standup", now)
	if second != "20260830_120000_standup_2" {
		t.Errorf("expected counter suffix on collision, got %q", second)
	}
}

func TestLogRunTerminalRecordImmutable(t *testing.T) {
	store := newTestStore(t)

	record := core.NewIngestionRecord("run-001", core.SourceTypeChat)
	record.DocumentsIngested = 5
	record.Finish()

	if err := store.LogRun(record); err != nil {
		t.Fatalf("LogRun: %v", err)
	}
	if err := store.LogRun(record); !errors.Is(err, storage.ErrRecordExists) {
		t.Errorf("expected ErrRecordExists on rewrite of terminal record, got %v", err)
	}
}

func TestHistoryFilterAndOrder(t *testing.T) {
	store := newTestStore(t)

	older := core.NewIngestionRecord("run-chat-old", core.SourceTypeChat)
	older.StartedAt = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	older.Finish()

	newer := core.NewIngestionRecord("run-chat-new", core.SourceTypeChat)
	newer.StartedAt = time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	newer.Finish()

	wiki := core.NewIngestionRecord("run-wiki", core.SourceTypeWiki)
	wiki.StartedAt = time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)
	wiki.Finish()

	for _, r := range []*core.IngestionRecord{older, newer, wiki} {
		if err := store.LogRun(r); err != nil {
			t.Fatalf("LogRun(%s): %v", r.IngestionID, err)
		}
	}

	all, err := store.History(core.SourceTypeUnknown)
	if err != nil {
		t.Fatalf("History(all): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].IngestionID != "run-chat-new" || all[2].IngestionID != "run-chat-old" {
		t.Errorf("expected newest-first ordering, got %s .. %s", all[0].IngestionID, all[2].IngestionID)
	}

	chat, err := store.History(core.SourceTypeChat)
	if err != nil {
		t.Fatalf("History(chat): %v", err)
	}
	if len(chat) != 2 {
		t.Fatalf("expected 2 chat records, got %d", len(chat))
	}
	for _, r := range chat {
		if r.SourceType != core.SourceTypeChat {
			t.Errorf("unexpected source type %s in filtered history", r.SourceType)
		}
	}
}

func TestListBatchesNewestFirst(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.CreateBatch(core.SourceTypeWiki, "first"); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := store.CreateBatch(core.SourceTypeWiki, "second"); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	manifests, err := store.ListBatches(core.SourceTypeWiki)
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if len(manifests) != 2 {
		t.Fatalf("expected 2 manifests, got %d", len(manifests))
	}
	if manifests[0].BatchName != "second" {
		t.Errorf("expected newest batch first, got %q", manifests[0].BatchName)
	}
}

func TestAllBatchesSpansPartitions(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.CreateBatch(core.SourceTypeChat, "a"); err != nil {
		t.Fatalf("CreateBatch(chat): %v", err)
	}
	if _, err := store.CreateBatch(core.SourceTypeWiki, "b"); err != nil {
		t.Fatalf("CreateBatch(wiki): %v", err)
	}

	handles, err := store.AllBatches()
	if err != nil {
		t.Fatalf("AllBatches: %v", err)
	}
	if len(handles) != 2 {
		t.Fatalf("expected 2 handles, got %d", len(handles))
	}
	seen := map[core.SourceType]bool{}
	for _, h := range handles {
		seen[h.SourceType] = true
	}
	if !seen[core.SourceTypeChat] || !seen[core.SourceTypeWiki] {
		t.Errorf("expected handles spanning chat and wiki partitions, got %+v", handles)
	}
}
