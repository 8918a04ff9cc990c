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
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/index"
	"github.com/poiesic/corpus/storage"
)

// Orchestrator is the single entry point for ingestion workflows. All
// collaborators are injected; nothing is global. Connectors are optional
// and operations whose connector is absent fail with
// ErrConnectorNotConfigured.
type Orchestrator struct {
	store   storage.RawStore
	chat    *ChatIngestor
	wiki    *WikiIngestor
	uploads *UploadIngestor

	manager   *index.Manager // optional
	autoIndex bool
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithChatConnector wires a chat platform connector.
func WithChatConnector(connector ChatConnector) Option {
	return func(o *Orchestrator) error {
		chat, err := NewChatIngestor(o.store, connector, WithIngestorLogger(o.logger))
		if err != nil {
			return err
		}
		o.chat = chat
		return nil
	}
}

// WithWikiConnector wires a wiki connector.
func WithWikiConnector(connector WikiConnector) Option {
	return func(o *Orchestrator) error {
		wiki, err := NewWikiIngestor(o.store, connector, WithIngestorLogger(o.logger))
		if err != nil {
			return err
		}
		o.wiki = wiki
		return nil
	}
}

// WithPDFExtractor wires a PDF text extractor into the upload ingestor.
func WithPDFExtractor(extractor PDFExtractor) Option {
	return func(o *Orchestrator) error {
		uploads, err := NewUploadIngestor(o.store, extractor, WithIngestorLogger(o.logger))
		if err != nil {
			return err
		}
		o.uploads = uploads
		return nil
	}
}

// WithIndexManager wires an index manager and enables automatic index
// updates after successful ingestion runs.
func WithIndexManager(manager *index.Manager) Option {
	return func(o *Orchestrator) error {
		o.manager = manager
		o.autoIndex = manager != nil
		return nil
	}
}

// WithAutoIndex toggles automatic index updates. Has no effect without an
// index manager.
func WithAutoIndex(enabled bool) Option {
	return func(o *Orchestrator) error {
		o.autoIndex = enabled
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// New creates an orchestrator over the given raw store.
func New(store storage.RawStore, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	o := &Orchestrator{
		store:  store,
		logger: slog.Default(),
	}

	// Uploads need no connector and are always available.
	uploads, err := NewUploadIngestor(store, nil)
	if err != nil {
		return nil, err
	}
	o.uploads = uploads

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// IngestChatChannel captures a channel's threads since the given time.
func (o *Orchestrator) IngestChatChannel(ctx context.Context, channel string, since time.Time) (*core.IngestionRecord, error) {
	if o.chat == nil {
		return nil, ErrConnectorNotConfigured
	}
	record, err := o.chat.IngestChannel(ctx, channel, since)
	o.maybeIndex(ctx, record)
	return record, err
}

// IngestChatExport captures an offline export directory of thread JSON.
func (o *Orchestrator) IngestChatExport(ctx context.Context, dir string) (*core.IngestionRecord, error) {
	if o.chat == nil {
		return nil, ErrConnectorNotConfigured
	}
	record, err := o.chat.IngestExport(ctx, dir)
	o.maybeIndex(ctx, record)
	return record, err
}

// IngestWikiSpace captures every page of a wiki space.
func (o *Orchestrator) IngestWikiSpace(ctx context.Context, spaceKey string) (*core.IngestionRecord, error) {
	if o.wiki == nil {
		return nil, ErrConnectorNotConfigured
	}
	record, err := o.wiki.IngestSpace(ctx, spaceKey)
	o.maybeIndex(ctx, record)
	return record, err
}

// IngestWikiPage captures a single wiki page.
func (o *Orchestrator) IngestWikiPage(ctx context.Context, pageID string) (*core.IngestionRecord, error) {
	if o.wiki == nil {
		return nil, ErrConnectorNotConfigured
	}
	record, err := o.wiki.IngestPage(ctx, pageID)
	o.maybeIndex(ctx, record)
	return record, err
}

// IngestFile captures one uploaded file.
func (o *Orchestrator) IngestFile(ctx context.Context, path string) (*core.IngestionRecord, error) {
	record, err := o.uploads.IngestFile(ctx, path)
	o.maybeIndex(ctx, record)
	return record, err
}

// IngestBytes captures an in-memory payload under the given filename.
func (o *Orchestrator) IngestBytes(ctx context.Context, filename string, data []byte) (*core.IngestionRecord, error) {
	record, err := o.uploads.IngestBytes(ctx, filename, data)
	o.maybeIndex(ctx, record)
	return record, err
}

// IngestFiles captures a set of uploaded files under one aggregate run.
func (o *Orchestrator) IngestFiles(ctx context.Context, paths []string) (*core.IngestionRecord, error) {
	record, err := o.uploads.IngestFiles(ctx, paths)
	o.maybeIndex(ctx, record)
	return record, err
}

// History returns ingestion records, newest first. Unknown returns all.
func (o *Orchestrator) History(source core.SourceType) ([]*core.IngestionRecord, error) {
	return o.store.History(source)
}

// Batches returns batch manifests for a source type, newest first.
func (o *Orchestrator) Batches(source core.SourceType) ([]*core.BatchManifest, error) {
	return o.store.ListBatches(source)
}

// maybeIndex feeds a finished run's documents into the index. A run that
// stored nothing, a missing manager, or a not-yet-initialized index all
// skip quietly; indexing problems never fail the ingestion itself.
//
// Only batches created by this run are indexed. Updates are additive, so
// a store-wide refresh here would re-add batches already present.
func (o *Orchestrator) maybeIndex(ctx context.Context, record *core.IngestionRecord) {
	if o.manager == nil || !o.autoIndex || record == nil || record.DocumentsIngested == 0 {
		return
	}

	handles := runBatchHandles(record)
	if len(handles) == 0 {
		return
	}

	_, err := o.manager.Update(ctx, handles...)

	switch {
	case err == nil:
		o.logger.Debug("index updated after ingestion", "ingestion_id", record.IngestionID)
	case errors.Is(err, index.ErrIndexNotFound):
		o.logger.Debug("index not initialized, skipping auto-update", "ingestion_id", record.IngestionID)
	default:
		o.logger.Error("auto index update failed", "ingestion_id", record.IngestionID, "error", err)
	}
}

// runBatchHandles resolves the batches a finished run created: the single
// batch of a normal run, or the per-source batches of an aggregate run.
func runBatchHandles(record *core.IngestionRecord) []storage.BatchHandle {
	var handles []storage.BatchHandle
	if record.BatchID != "" {
		handles = append(handles, storage.BatchHandle{
			SourceType: record.SourceType,
			BatchID:    record.BatchID,
		})
	}
	for name, batchID := range record.BatchIDs {
		source, err := core.ParseSourceType(name)
		if err != nil {
			continue
		}
		handles = append(handles, storage.BatchHandle{SourceType: source, BatchID: batchID})
	}
	return handles
}
