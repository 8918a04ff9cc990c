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
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/storage"
)

// WikiIngestor captures wiki pages into the raw store.
type WikiIngestor struct {
	store     storage.RawStore
	connector WikiConnector
	logger    *slog.Logger
}

// NewWikiIngestor creates a wiki ingestor.
func NewWikiIngestor(store storage.RawStore, connector WikiConnector, opts ...IngestorOption) (*WikiIngestor, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if connector == nil {
		return nil, ErrConnectorRequired
	}

	cfg := newIngestorConfig(opts)
	return &WikiIngestor{
		store:     store,
		connector: connector,
		logger:    cfg.logger,
	}, nil
}

// IngestSpace fetches every page of a space and stores them as one batch.
func (w *WikiIngestor) IngestSpace(ctx context.Context, spaceKey string) (*core.IngestionRecord, error) {
	record := core.NewIngestionRecord(uuid.NewString(), core.SourceTypeWiki)
	record.SourceIdentifiers = []string{spaceKey}

	pages, err := w.connector.FetchSpace(ctx, spaceKey)
	if err != nil {
		return w.failRun(record, err)
	}

	return w.storePages(record, spaceKey, pages)
}

// IngestPage fetches a single page and stores it as a one-document batch.
func (w *WikiIngestor) IngestPage(ctx context.Context, pageID string) (*core.IngestionRecord, error) {
	record := core.NewIngestionRecord(uuid.NewString(), core.SourceTypeWiki)
	record.SourceIdentifiers = []string{pageID}

	page, err := w.connector.FetchPage(ctx, pageID)
	if err != nil {
		return w.failRun(record, err)
	}

	return w.storePages(record, page.SpaceKey, []*core.WikiPage{page})
}

func (w *WikiIngestor) storePages(record *core.IngestionRecord, name string, pages []*core.WikiPage) (*core.IngestionRecord, error) {
	h, err := w.store.CreateBatch(core.SourceTypeWiki, name)
	if err != nil {
		return w.failRun(record, err)
	}
	record.BatchID = h.BatchID

	for _, page := range pages {
		data, err := json.Marshal(page)
		if err != nil {
			record.DocumentsFailed++
			continue
		}
		if _, err := w.store.StoreDocument(h, page.PageID, data, wikiMetadata(page)); err != nil {
			record.DocumentsFailed++
			w.logger.Warn("failed to store page", "page_id", page.PageID, "error", err)
			continue
		}
		record.DocumentsIngested++
		record.BytesProcessed += int64(len(data))
	}

	record.Finish()
	if err := w.store.LogRun(record); err != nil {
		return record, err
	}

	w.logger.Info("wiki ingestion finished",
		"batch_id", record.BatchID,
		"ingested", record.DocumentsIngested,
		"failed", record.DocumentsFailed,
		"status", string(record.Status))
	return record, nil
}

func (w *WikiIngestor) failRun(record *core.IngestionRecord, cause error) (*core.IngestionRecord, error) {
	record.FinishFailed(cause)
	if err := w.store.LogRun(record); err != nil {
		w.logger.Error("failed to persist failed run record", "ingestion_id", record.IngestionID, "error", err)
	}
	return record, cause
}

func wikiMetadata(page *core.WikiPage) *core.DocumentMetadata {
	meta := &core.DocumentMetadata{
		SourceType: core.SourceTypeWiki,
		SourceID:   page.PageID,
		SourceName: page.Title,
		IngestedAt: time.Now().UTC(),
		Author:     page.Author,
		Title:      page.Title,
		URL:        page.URL,
		Extra: map[string]string{
			"space_key": page.SpaceKey,
		},
	}
	if page.Path != "" {
		meta.Extra["hierarchy_path"] = page.Path
	}
	if page.Version > 0 {
		meta.Extra["page_version"] = strconv.Itoa(page.Version)
	}
	if ts, err := time.Parse(time.RFC3339, page.LastUpdated); err == nil {
		meta.SourceTimestamp = &ts
	}
	return meta
}
