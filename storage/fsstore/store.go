// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package fsstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/storage"
)

// Store implements storage.RawStore on the local filesystem. All persisted
// artifacts are indented JSON (or verbatim payload bytes) so the raw store
// doubles as a human-auditable archive.
type Store struct {
	root   string
	logger *slog.Logger

	// guards batch ID allocation; two same-second CreateBatch calls must
	// not claim the same directory
	mu sync.Mutex
}

var _ storage.RawStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets the logger used for non-fatal read anomalies.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		s.logger = logger
		return nil
	}
}

// New creates a filesystem raw store rooted at dataDir, creating the
// directory tree if needed.
func New(dataDir string, opts ...Option) (storage.RawStore, error) {
	s := &Store{
		root:   dataDir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Join(dataDir, rawDirName), 0755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(dataDir, logsDirName), 0755); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateBatch allocates a new batch directory under the source's partition
// and seeds it with an empty manifest.
func (s *Store) CreateBatch(source core.SourceType, name string) (storage.BatchHandle, error) {
	if err := core.ValidateSourceType(source); err != nil {
		return storage.BatchHandle{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchID := s.nextBatchID(source, name, time.Now().UTC())
	dir := s.batchDir(source, batchID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return storage.BatchHandle{}, err
	}

	manifest := &core.BatchManifest{
		BatchID:    batchID,
		SourceType: source,
		BatchName:  name,
		CreatedAt:  time.Now().UTC(),
		Documents:  []core.ManifestEntry{},
	}
	if err := s.writeManifest(dir, manifest); err != nil {
		return storage.BatchHandle{}, err
	}

	s.logger.Debug("created batch", "source", source.String(), "batch_id", batchID)
	return storage.BatchHandle{SourceType: source, BatchID: batchID}, nil
}

// nextBatchID builds a timestamped batch ID, appending a counter suffix when
// the candidate directory already exists. Caller must hold s.mu.
func (s *Store) nextBatchID(source core.SourceType, name string, now time.Time) string {
	base := now.Format("20060102_150405")
	if name != "" {
		base += "_" + sanitizeName(name)
	}

	candidate := base
	for n := 2; ; n++ {
		if _, err := os.Stat(s.batchDir(source, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", base, n)
	}
}

// StoreDocument writes content and its metadata sidecar, then appends a
// manifest entry. []byte and string content is written verbatim; any other
// value is JSON-encoded.
func (s *Store) StoreDocument(h storage.BatchHandle, documentID string, content any, meta *core.DocumentMetadata) (string, error) {
	dir := s.batchDir(h.SourceType, h.BatchID)
	manifest, err := s.readManifest(dir)
	if err != nil {
		return "", err
	}

	var payload []byte
	switch v := content.(type) {
	case []byte:
		payload = v
	case string:
		payload = []byte(v)
	default:
		payload, err = json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
		}
	}

	storedFilename := sanitizeName(documentID) + contentSuffix
	contentPath := filepath.Join(dir, storedFilename)
	if err := writeFileAtomic(contentPath, payload); err != nil {
		return "", err
	}

	if err := s.writeMetadata(dir, storedFilename, meta); err != nil {
		return "", err
	}

	manifest.Documents = append(manifest.Documents, core.ManifestEntry{
		ID:             documentID,
		StoredFilename: storedFilename,
		StoredAt:       time.Now().UTC(),
	})
	if err := s.writeManifest(dir, manifest); err != nil {
		return "", err
	}

	return contentPath, nil
}

// StoreBinary writes an opaque payload under a content-addressed filename.
// Byte-identical uploads map to the same stored file, but each upload still
// appends its own manifest entry: the audit trail records every event.
func (s *Store) StoreBinary(h storage.BatchHandle, filename string, data []byte, meta *core.DocumentMetadata) (string, error) {
	dir := s.batchDir(h.SourceType, h.BatchID)
	manifest, err := s.readManifest(dir)
	if err != nil {
		return "", err
	}

	hash := core.HashContent(data)
	stem, ext := splitExt(filename)
	storedFilename := sanitizeName(stem) + "_" + hash + ext

	path := filepath.Join(dir, storedFilename)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}

	stored := cloneMetadata(meta)
	if stored.Extra == nil {
		stored.Extra = make(map[string]string)
	}
	stored.Extra["content_hash"] = hash
	stored.Extra["original_filename"] = filename
	stored.Extra["size_bytes"] = fmt.Sprintf("%d", len(data))

	if err := s.writeMetadata(dir, storedFilename, stored); err != nil {
		return "", err
	}

	manifest.Documents = append(manifest.Documents, core.ManifestEntry{
		ID:             filename,
		StoredFilename: storedFilename,
		StoredAt:       time.Now().UTC(),
		Binary:         true,
	})
	if err := s.writeManifest(dir, manifest); err != nil {
		return "", err
	}

	return path, nil
}

// LoadManifest reads the batch manifest.
func (s *Store) LoadManifest(h storage.BatchHandle) (*core.BatchManifest, error) {
	return s.readManifest(s.batchDir(h.SourceType, h.BatchID))
}

// LoadDocument reads back the stored content and metadata for one manifest
// entry.
func (s *Store) LoadDocument(h storage.BatchHandle, entry core.ManifestEntry) ([]byte, *core.DocumentMetadata, error) {
	dir := s.batchDir(h.SourceType, h.BatchID)

	content, err := os.ReadFile(filepath.Join(dir, entry.StoredFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", storage.ErrDocumentNotFound, entry.StoredFilename)
		}
		return nil, nil, err
	}

	metaBytes, err := os.ReadFile(filepath.Join(dir, metadataFilename(entry.StoredFilename)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: metadata for %s", storage.ErrDocumentNotFound, entry.StoredFilename)
		}
		return nil, nil, err
	}
	meta, err := storage.UnmarshalMetadata(metaBytes)
	if err != nil {
		return nil, nil, err
	}

	return content, meta, nil
}

// LogRun persists one ingestion record. An already-persisted terminal
// record is immutable; attempting to replace it returns ErrRecordExists.
func (s *Store) LogRun(record *core.IngestionRecord) error {
	if err := core.ValidateRecord(record); err != nil {
		return err
	}

	path := filepath.Join(s.root, logsDirName, sanitizeName(record.IngestionID)+recordSuffix)
	if existing, err := os.ReadFile(path); err == nil {
		prev, unmarshalErr := storage.UnmarshalRecord(existing)
		if unmarshalErr == nil && prev.CompletedAt != nil {
			return fmt.Errorf("%w: %s", storage.ErrRecordExists, record.IngestionID)
		}
	}

	data, err := storage.MarshalRecord(record)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// History returns ingestion records, newest first by StartedAt. Passing
// core.SourceTypeUnknown returns records for every origin.
func (s *Store) History(source core.SourceType) ([]*core.IngestionRecord, error) {
	logsDir := filepath.Join(s.root, logsDirName)
	entries, err := os.ReadDir(logsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []*core.IngestionRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordSuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(logsDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		record, err := storage.UnmarshalRecord(data)
		if err != nil {
			// A corrupt record must not hide the rest of the audit trail.
			s.logger.Warn("skipping unreadable ingestion record", "file", entry.Name(), "error", err)
			continue
		}
		if source != core.SourceTypeUnknown && record.SourceType != source {
			continue
		}
		records = append(records, record)
	}

	slices.SortFunc(records, func(a, b *core.IngestionRecord) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	return records, nil
}

// ListBatches returns manifests for one source partition, newest first.
func (s *Store) ListBatches(source core.SourceType) ([]*core.BatchManifest, error) {
	if err := core.ValidateSourceType(source); err != nil {
		return nil, err
	}

	partition := filepath.Join(s.root, rawDirName, source.Partition())
	entries, err := os.ReadDir(partition)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var manifests []*core.BatchManifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := s.readManifest(filepath.Join(partition, entry.Name()))
		if err != nil {
			s.logger.Warn("skipping batch without readable manifest", "source", source.String(), "batch_id", entry.Name(), "error", err)
			continue
		}
		manifests = append(manifests, manifest)
	}

	slices.SortFunc(manifests, func(a, b *core.BatchManifest) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return manifests, nil
}

// AllBatches returns handles for every batch across all partitions.
func (s *Store) AllBatches() ([]storage.BatchHandle, error) {
	var handles []storage.BatchHandle
	for _, source := range core.KnownSourceTypes() {
		partition := filepath.Join(s.root, rawDirName, source.Partition())
		entries, err := os.ReadDir(partition)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			handles = append(handles, storage.BatchHandle{SourceType: source, BatchID: entry.Name()})
		}
	}
	return handles, nil
}

// Helper methods

func (s *Store) batchDir(source core.SourceType, batchID string) string {
	return filepath.Join(s.root, rawDirName, source.Partition(), batchID)
}

func (s *Store) readManifest(dir string) (*core.BatchManifest, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrBatchNotFound, dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", storage.ErrBatchNotFound, dir)
	}

	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrManifestNotFound, dir)
		}
		return nil, err
	}
	return storage.UnmarshalManifest(data)
}

func (s *Store) writeManifest(dir string, manifest *core.BatchManifest) error {
	data, err := storage.MarshalManifest(manifest)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(dir, manifestName), data)
}

func (s *Store) writeMetadata(dir, storedFilename string, meta *core.DocumentMetadata) error {
	data, err := storage.MarshalMetadata(meta)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(dir, metadataFilename(storedFilename)), data)
}

// writeFileAtomic writes data through a temp file and renames it into
// place, so readers never observe a partially written artifact.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func cloneMetadata(meta *core.DocumentMetadata) *core.DocumentMetadata {
	if meta == nil {
		return &core.DocumentMetadata{}
	}
	clone := *meta
	if meta.Extra != nil {
		clone.Extra = make(map[string]string, len(meta.Extra))
		for k, v := range meta.Extra {
			clone.Extra[k] = v
		}
	}
	return &clone
}
