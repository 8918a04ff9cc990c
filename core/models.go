package core

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// SourceType identifies the origin of ingested content.
// It is a closed set: storage partitioning and rendering dispatch switch on
// it, and unknown values are rejected at the boundary.
type SourceType int

const (
	// SourceTypeUnknown is the zero value; only valid for aggregate runs
	// that span multiple origins.
	SourceTypeUnknown SourceType = iota
	// SourceTypeChat represents threaded chat conversations.
	SourceTypeChat
	// SourceTypeWiki represents wiki pages.
	SourceTypeWiki
	// SourceTypePDF represents uploaded PDF documents.
	SourceTypePDF
	// SourceTypeMarkdown represents uploaded markdown files.
	SourceTypeMarkdown
	// SourceTypeText represents uploaded plain text files.
	SourceTypeText
)

var sourceTypeNames = map[SourceType]string{
	SourceTypeUnknown:  "unknown",
	SourceTypeChat:     "chat",
	SourceTypeWiki:     "wiki",
	SourceTypePDF:      "pdf",
	SourceTypeMarkdown: "markdown",
	SourceTypeText:     "text",
}

// String returns the canonical lowercase name of the source type.
func (s SourceType) String() string {
	if name, ok := sourceTypeNames[s]; ok {
		return name
	}
	return "unknown"
}

// Partition returns the storage partition directory name for the source type.
func (s SourceType) Partition() string {
	return s.String()
}

// ParseSourceType converts a canonical name back to a SourceType.
func ParseSourceType(name string) (SourceType, error) {
	for st, n := range sourceTypeNames {
		if n == name {
			return st, nil
		}
	}
	return SourceTypeUnknown, fmt.Errorf("%w: %q", ErrInvalidSourceType, name)
}

// KnownSourceTypes lists every source type that owns a storage partition.
func KnownSourceTypes() []SourceType {
	return []SourceType{SourceTypeChat, SourceTypeWiki, SourceTypePDF, SourceTypeMarkdown, SourceTypeText}
}

// MarshalJSON serializes the source type as its canonical name.
func (s SourceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses the canonical name back into a SourceType.
func (s *SourceType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	st, err := ParseSourceType(name)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// DocumentMetadata describes one ingested unit before chunking.
// It is attached to every document throughout the pipeline and carried onto
// every chunk derived from it, so retrieval results can always be traced
// back to their origin.
//
// IngestedAt records when the pipeline captured the content; SourceTimestamp
// records when the content was created or modified at its origin. The two
// are distinct clocks and are never conflated.
type DocumentMetadata struct {
	SourceType SourceType `json:"source_type"`
	SourceID   string     `json:"source_id"`   // unique within its origin (thread id, page id)
	SourceName string     `json:"source_name"` // human-readable label ("#engineering", page title)

	IngestedAt      time.Time  `json:"ingested_at"`
	SourceTimestamp *time.Time `json:"source_timestamp,omitempty"`

	Author string `json:"author,omitempty"`
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`

	// Extra holds origin-specific attributes (space key, channel
	// participants). It round-trips losslessly through serialization.
	Extra map[string]string `json:"extra,omitempty"`
}

// RunStatus describes the outcome of an ingestion run.
type RunStatus string

const (
	// RunStatusInProgress marks a run that has started but not finished.
	RunStatusInProgress RunStatus = "in_progress"
	// RunStatusCompleted marks a run where every document was stored.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusFailed marks a run that could not proceed past setup.
	RunStatusFailed RunStatus = "failed"
	// RunStatusPartial marks a run where some documents failed but the run
	// itself finished.
	RunStatusPartial RunStatus = "partial"
)

// IngestionRecord is the audit record for one ingestion run: one invocation
// of an ingestor against one source selector. Every run, successful or not,
// produces exactly one persisted record, and records are never mutated after
// CompletedAt is set.
type IngestionRecord struct {
	IngestionID string     `json:"ingestion_id"`
	SourceType  SourceType `json:"source_type"`
	BatchID     string     `json:"batch_id,omitempty"` // batch created by this run, if any

	// BatchIDs lists the batches created by an aggregate run that spans
	// several source types, keyed by canonical source type name.
	BatchIDs map[string]string `json:"batch_ids,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	DocumentsIngested int   `json:"documents_ingested"`
	DocumentsFailed   int   `json:"documents_failed"`
	BytesProcessed    int64 `json:"bytes_processed"`

	Status       RunStatus `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`

	// SourceIdentifiers lists the selectors processed (channel names,
	// space keys, file names).
	SourceIdentifiers []string `json:"source_identifiers,omitempty"`
}

// NewIngestionRecord creates an in-progress record for a new run.
func NewIngestionRecord(ingestionID string, source SourceType) *IngestionRecord {
	return &IngestionRecord{
		IngestionID: ingestionID,
		SourceType:  source,
		StartedAt:   time.Now().UTC(),
		Status:      RunStatusInProgress,
	}
}

// Finish marks the run complete, deriving the terminal status from the
// failure counter: completed when nothing failed, partial otherwise.
func (r *IngestionRecord) Finish() {
	now := time.Now().UTC()
	r.CompletedAt = &now
	if r.DocumentsFailed > 0 {
		r.Status = RunStatusPartial
	} else {
		r.Status = RunStatusCompleted
	}
}

// FinishFailed marks the run as failed before it could proceed past setup.
func (r *IngestionRecord) FinishFailed(err error) {
	now := time.Now().UTC()
	r.CompletedAt = &now
	r.Status = RunStatusFailed
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// ManifestEntry is one member of a batch manifest. Entries are append-only:
// once written they are never modified.
type ManifestEntry struct {
	ID             string    `json:"id"`
	StoredFilename string    `json:"stored_filename"`
	StoredAt       time.Time `json:"stored_at"`
	Binary         bool      `json:"binary,omitempty"` // opaque payload, skipped by the processor
}

// BatchManifest describes one physical grouping of raw documents from a
// single ingestion run.
type BatchManifest struct {
	BatchID    string          `json:"batch_id"`
	SourceType SourceType      `json:"source_type"`
	BatchName  string          `json:"batch_name,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	Documents  []ManifestEntry `json:"documents"`
}

// Chunk is a bounded-length slice of a rendered document's text, carrying
// full provenance metadata. It is the atomic unit indexed for retrieval.
type Chunk struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	Index      int               `json:"index"` // position within the source document
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ScoredChunk is a chunk returned from a similarity query with its
// relevance score.
type ScoredChunk struct {
	Chunk Chunk
	Score float32
}

// IndexVersion is the authoritative description of the vector index's
// current content and lineage, independent of the index provider's own
// bookkeeping. Version increments on every successful mutating operation
// and resets to 1 on rebuild.
type IndexVersion struct {
	Version        int            `json:"version"`
	CreatedAt      time.Time      `json:"created_at"`
	LastUpdated    time.Time      `json:"last_updated"`
	EmbeddingModel string         `json:"embedding_model"`
	DocumentCount  int            `json:"document_count"`
	BatchCounts    map[string]int `json:"batch_counts,omitempty"` // chunks contributed per batch
	LastOperation  string         `json:"last_operation"`
	BackupPath     string         `json:"backup_path,omitempty"` // set by rebuild when a backup was taken
}

// HashContent returns a short deterministic hex digest of the given bytes,
// used for content-addressed filenames and duplicate flagging.
func HashContent(data []byte) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 16 hex chars
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ChunkID derives a deterministic chunk identifier from the parent document
// and the chunk's position and content. Re-processing the same raw data
// yields the same IDs.
func ChunkID(documentID string, index int, content string) string {
	return fmt.Sprintf("%s:%d:%s", documentID, index, HashContent([]byte(content)))
}
