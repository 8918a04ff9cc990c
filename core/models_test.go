package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSourceTypeRoundTrip(t *testing.T) {
	for _, st := range KnownSourceTypes() {
		data, err := json.Marshal(st)
		if err != nil {
			t.Fatalf("Failed to marshal %v: %v", st, err)
		}

		var parsed SourceType
		if err := json.Unmarshal(data, &parsed); err != nil {
			t.Fatalf("Failed to unmarshal %s: %v", data, err)
		}

		if parsed != st {
			t.Fatalf("Expected %v, got %v", st, parsed)
		}
	}
}

func TestParseSourceTypeRejectsUnknownName(t *testing.T) {
	if _, err := ParseSourceType("carrier-pigeon"); err == nil {
		t.Fatal("Expected error for unrecognized source type name")
	}
}

func TestMetadataExtraRoundTrip(t *testing.T) {
	srcTS := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	meta := &DocumentMetadata{
		SourceType:      SourceTypeChat,
		SourceID:        "1710408413.000200",
		SourceName:      "#engineering",
		IngestedAt:      time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		SourceTimestamp: &srcTS,
		Author:          "amara",
		Title:           "deploy pipeline outage",
		URL:             "https://chat.example.com/archives/C024/p1710408413000200",
		Extra: map[string]string{
			"channel_id":    "C024",
			"participants":  "amara,jun,priya",
			"message_count": "14",
		},
	}

	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("Failed to marshal metadata: %v", err)
	}

	var restored DocumentMetadata
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal metadata: %v", err)
	}

	if restored.SourceID != meta.SourceID || restored.SourceName != meta.SourceName {
		t.Fatalf("Identity fields did not survive round trip: %+v", restored)
	}
	if !restored.IngestedAt.Equal(meta.IngestedAt) {
		t.Fatalf("IngestedAt changed: %v != %v", restored.IngestedAt, meta.IngestedAt)
	}
	if restored.SourceTimestamp == nil || !restored.SourceTimestamp.Equal(srcTS) {
		t.Fatalf("SourceTimestamp changed: %v", restored.SourceTimestamp)
	}
	if len(restored.Extra) != len(meta.Extra) {
		t.Fatalf("Extra map lost entries: %v", restored.Extra)
	}
	for k, v := range meta.Extra {
		if restored.Extra[k] != v {
			t.Fatalf("Extra[%q]: expected %q, got %q", k, v, restored.Extra[k])
		}
	}
}

func TestIngestionRecordFinish(t *testing.T) {
	record := NewIngestionRecord("run-1", SourceTypeWiki)
	if record.Status != RunStatusInProgress {
		t.Fatalf("Expected in_progress, got %s", record.Status)
	}

	record.DocumentsIngested = 5
	record.Finish()

	if record.Status != RunStatusCompleted {
		t.Fatalf("Expected completed, got %s", record.Status)
	}
	if record.CompletedAt == nil {
		t.Fatal("Expected CompletedAt to be set")
	}
}

func TestIngestionRecordFinishPartial(t *testing.T) {
	record := NewIngestionRecord("run-2", SourceTypeChat)
	record.DocumentsIngested = 3
	record.DocumentsFailed = 1
	record.Finish()

	if record.Status != RunStatusPartial {
		t.Fatalf("Expected partial, got %s", record.Status)
	}
}

func TestHashContentDeterministic(t *testing.T) {
	a := HashContent([]byte("quarterly budget report"))
	b := HashContent([]byte("quarterly budget report"))
	c := HashContent([]byte("quarterly budget reporT"))

	if a != b {
		t.Fatalf("Same content produced different hashes: %s != %s", a, b)
	}
	if a == c {
		t.Fatal("Different content produced the same hash")
	}
	if len(a) != 16 {
		t.Fatalf("Expected 16 hex chars, got %d", len(a))
	}
}

func TestChunkIDIncludesPosition(t *testing.T) {
	a := ChunkID("doc-1", 0, "same text")
	b := ChunkID("doc-1", 1, "same text")
	if a == b {
		t.Fatal("Chunks at different positions must have distinct IDs")
	}
}
