package storage

import (
	"github.com/poiesic/corpus/core"
)

// BatchHandle identifies one batch inside the raw store. Handles are cheap
// value types; validity is checked on every operation, and a handle whose
// batch no longer exists yields ErrBatchNotFound.
type BatchHandle struct {
	SourceType core.SourceType
	BatchID    string
}

// RawStore is the durable, source-partitioned, append-only persistence layer
// for original content and its metadata, plus the audit log of ingestion
// runs. It is the system of record: everything downstream (chunks, the
// vector index) is derived and regenerable from it.
//
// The store is designed for single-writer use. Concurrent writers against
// different batches are safe because their paths are disjoint; concurrent
// writers against the same batch are not supported.
type RawStore interface {
	// CreateBatch allocates a new batch under the source's partition,
	// seeded with an empty manifest. Handles are never reused; a
	// same-second collision on the timestamped batch ID is disambiguated
	// with a counter suffix.
	CreateBatch(source core.SourceType, name string) (BatchHandle, error)

	// StoreDocument writes content and metadata side by side, then appends
	// an entry to the batch manifest. Content values of type []byte and
	// string are written verbatim; anything else is JSON-encoded.
	// Returns the stored content path.
	// Returns ErrBatchNotFound if the handle is stale or invalid.
	StoreDocument(h BatchHandle, documentID string, content any, meta *core.DocumentMetadata) (string, error)

	// StoreBinary writes an opaque payload. A content hash is computed and
	// embedded in the stored filename and metadata so byte-identical
	// uploads are flaggable as duplicates downstream, but storage always
	// proceeds: every upload event is preserved as history.
	StoreBinary(h BatchHandle, filename string, data []byte, meta *core.DocumentMetadata) (string, error)

	// LoadManifest reads the batch manifest.
	// Returns ErrBatchNotFound if the batch or its manifest is missing.
	LoadManifest(h BatchHandle) (*core.BatchManifest, error)

	// LoadDocument reads back the stored content and metadata for one
	// manifest entry.
	LoadDocument(h BatchHandle, entry core.ManifestEntry) ([]byte, *core.DocumentMetadata, error)

	// LogRun persists one IngestionRecord. Ingestors call this exactly
	// once per run, at a terminal status; a record is immutable once its
	// CompletedAt is set.
	LogRun(record *core.IngestionRecord) error

	// History returns ingestion records, newest first by StartedAt.
	// Passing core.SourceTypeUnknown returns records for every origin.
	History(source core.SourceType) ([]*core.IngestionRecord, error)

	// ListBatches returns the manifests for a source type, newest first.
	ListBatches(source core.SourceType) ([]*core.BatchManifest, error)

	// AllBatches returns handles for every batch across all partitions.
	AllBatches() ([]BatchHandle, error)
}
