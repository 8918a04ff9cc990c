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


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/storage"
)

// UploadIngestor captures manually uploaded files into the raw store.
// PDFs are always archived as binary; their text is additionally stored as
// a structured document when a PDFExtractor is configured.
type UploadIngestor struct {
	store     storage.RawStore
	extractor PDFExtractor // optional
	logger    *slog.Logger
}

// NewUploadIngestor creates an upload ingestor. The extractor may be nil;
// PDF uploads are then archived without text extraction.
func NewUploadIngestor(store storage.RawStore, extractor PDFExtractor, opts ...IngestorOption) (*UploadIngestor, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	cfg := newIngestorConfig(opts)
	return &UploadIngestor{
		store:     store,
		extractor: extractor,
		logger:    cfg.logger,
	}, nil
}

// sourceTypeForPath maps a file extension to its source type.
func sourceTypeForPath(path string) (core.SourceType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return core.SourceTypePDF, nil
	case ".md", ".markdown":
		return core.SourceTypeMarkdown, nil
	case ".txt":
		return core.SourceTypeText, nil
	default:
		return core.SourceTypeUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	}
}

// IngestFile stores a single uploaded file as its own batch.
func (u *UploadIngestor) IngestFile(ctx context.Context, path string) (*core.IngestionRecord, error) {
	source, err := sourceTypeForPath(path)
	if err != nil {
		return nil, err
	}

	record := core.NewIngestionRecord(uuid.NewString(), source)
	record.SourceIdentifiers = []string{filepath.Base(path)}

	h, err := u.store.CreateBatch(source, "")
	if err != nil {
		return u.failRun(record, err)
	}
	record.BatchID = h.BatchID

	u.ingestInto(ctx, record, h, path)
	record.Finish()
	if err := u.store.LogRun(record); err != nil {
		return record, err
	}
	return record, nil
}

// IngestBytes stores an in-memory payload as its own batch, as if a file
// with the given name had been uploaded.
func (u *UploadIngestor) IngestBytes(ctx context.Context, filename string, data []byte) (*core.IngestionRecord, error) {
	source, err := sourceTypeForPath(filename)
	if err != nil {
		return nil, err
	}

	record := core.NewIngestionRecord(uuid.NewString(), source)
	record.SourceIdentifiers = []string{filename}

	h, err := u.store.CreateBatch(source, "")
	if err != nil {
		return u.failRun(record, err)
	}
	record.BatchID = h.BatchID

	u.ingestData(ctx, record, h, filename, data)
	record.Finish()
	if err := u.store.LogRun(record); err != nil {
		return record, err
	}
	return record, nil
}

// IngestFiles stores a set of uploaded files, grouped into one batch per
// source type, under a single aggregate run record. Unsupported files count
// as failed documents.
func (u *UploadIngestor) IngestFiles(ctx context.Context, paths []string) (*core.IngestionRecord, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	// Aggregate runs span multiple origins, so the record carries the
	// unknown source type.
	record := core.NewIngestionRecord(uuid.NewString(), core.SourceTypeUnknown)

	batches := make(map[core.SourceType]storage.BatchHandle)
	for _, path := range paths {
		record.SourceIdentifiers = append(record.SourceIdentifiers, filepath.Base(path))

		source, err := sourceTypeForPath(path)
		if err != nil {
			record.DocumentsFailed++
			u.logger.Warn("skipping unsupported upload", "file", path, "error", err)
			continue
		}

		h, ok := batches[source]
		if !ok {
			h, err = u.store.CreateBatch(source, "upload")
			if err != nil {
				return u.failRun(record, err)
			}
			batches[source] = h
			if record.BatchIDs == nil {
				record.BatchIDs = make(map[string]string)
			}
			record.BatchIDs[source.String()] = h.BatchID
		}

		u.ingestInto(ctx, record, h, path)
	}

	record.Finish()
	if err := u.store.LogRun(record); err != nil {
		return record, err
	}

	u.logger.Info("upload ingestion finished",
		"files", len(paths),
		"ingested", record.DocumentsIngested,
		"failed", record.DocumentsFailed,
		"status", string(record.Status))
	return record, nil
}

// ingestInto stores one file into its batch, updating the run counters.
func (u *UploadIngestor) ingestInto(ctx context.Context, record *core.IngestionRecord, h storage.BatchHandle, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		record.DocumentsFailed++
		u.logger.Warn("unreadable upload", "file", path, "error", err)
		return
	}
	u.ingestData(ctx, record, h, filepath.Base(path), data)
}

// ingestData stores one payload into its batch, updating the run counters.
func (u *UploadIngestor) ingestData(ctx context.Context, record *core.IngestionRecord, h storage.BatchHandle, filename string, data []byte) {
	meta := &core.DocumentMetadata{
		SourceType: h.SourceType,
		SourceID:   filename,
		SourceName: filename,
		IngestedAt: time.Now().UTC(),
	}

	switch h.SourceType {
	case core.SourceTypePDF:
		if err := u.ingestPDF(ctx, h, filename, data, meta); err != nil {
			record.DocumentsFailed++
			u.logger.Warn("failed to store pdf", "file", filename, "error", err)
			return
		}
	default:
		content := string(data)
		doc := &core.TextDocument{
			Filename:  filename,
			Content:   content,
			LineCount: strings.Count(content, "\n") + 1,
			CharCount: len([]rune(content)),
		}
		if _, err := u.store.StoreDocument(h, filename, doc, meta); err != nil {
			record.DocumentsFailed++
			u.logger.Warn("failed to store upload", "file", filename, "error", err)
			return
		}
	}

	record.DocumentsIngested++
	record.BytesProcessed += int64(len(data))
}

// ingestPDF archives the original bytes, then stores the structured text
// extraction alongside when an extractor is available. Extraction failure
// does not fail the document: the binary archive is the durable part, and
// the text can be produced later by reindexing with an extractor.
func (u *UploadIngestor) ingestPDF(ctx context.Context, h storage.BatchHandle, filename string, data []byte, meta *core.DocumentMetadata) error {
	if _, err := u.store.StoreBinary(h, filename, data, meta); err != nil {
		return err
	}

	if u.extractor == nil {
		u.logger.Debug("no pdf extractor configured, archived binary only", "file", filename)
		return nil
	}

	doc, err := u.extractor.Extract(ctx, data)
	if err != nil {
		u.logger.Warn("pdf text extraction failed, archived binary only", "file", filename, "error", err)
		return nil
	}
	if doc.Filename == "" {
		doc.Filename = filename
	}

	_, err = u.store.StoreDocument(h, filename+"#text", doc, meta)
	return err
}

func (u *UploadIngestor) failRun(record *core.IngestionRecord, cause error) (*core.IngestionRecord, error) {
	record.FinishFailed(cause)
	if err := u.store.LogRun(record); err != nil {
		u.logger.Error("failed to persist failed run record", "ingestion_id", record.IngestionID, "error", err)
	}
	return record, cause
}
