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
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/storage"
)

// ChatIngestor captures threaded conversations into the raw store. Every
// run produces exactly one ingestion record, terminal before the method
// returns, regardless of outcome.
type ChatIngestor struct {
	store     storage.RawStore
	connector ChatConnector
	logger    *slog.Logger
}

// NewChatIngestor creates a chat ingestor.
func NewChatIngestor(store storage.RawStore, connector ChatConnector, opts ...IngestorOption) (*ChatIngestor, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if connector == nil {
		return nil, ErrConnectorRequired
	}

	cfg := newIngestorConfig(opts)
	return &ChatIngestor{
		store:     store,
		connector: connector,
		logger:    cfg.logger,
	}, nil
}

// IngestChannel fetches a channel's threads since the given time and stores
// them as one batch. The returned record is already persisted; a non-nil
// error describes a failed or partial run, whose details are also on the
// record.
func (c *ChatIngestor) IngestChannel(ctx context.Context, channel string, since time.Time) (*core.IngestionRecord, error) {
	record := core.NewIngestionRecord(uuid.NewString(), core.SourceTypeChat)
	record.SourceIdentifiers = []string{channel}

	threads, err := c.connector.FetchThreads(ctx, channel, since)
	if err != nil {
		return c.failRun(record, err)
	}

	return c.storeThreads(record, channel, threads)
}

// IngestExport reads an offline export directory of thread JSON files and
// stores them as one batch. Files that fail to parse count as failed
// documents; the rest of the export still lands.
func (c *ChatIngestor) IngestExport(ctx context.Context, dir string) (*core.IngestionRecord, error) {
	record := core.NewIngestionRecord(uuid.NewString(), core.SourceTypeChat)
	record.SourceIdentifiers = []string{dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return c.failRun(record, err)
	}

	var threads []*core.ChatThread
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			record.DocumentsFailed++
			c.logger.Warn("unreadable export file", "file", entry.Name(), "error", err)
			continue
		}
		var thread core.ChatThread
		if err := json.Unmarshal(data, &thread); err != nil {
			record.DocumentsFailed++
			c.logger.Warn("unparseable export file", "file", entry.Name(), "error", err)
			continue
		}
		threads = append(threads, &thread)
	}

	return c.storeThreads(record, filepath.Base(dir), threads)
}

func (c *ChatIngestor) storeThreads(record *core.IngestionRecord, name string, threads []*core.ChatThread) (*core.IngestionRecord, error) {
	h, err := c.store.CreateBatch(core.SourceTypeChat, name)
	if err != nil {
		return c.failRun(record, err)
	}
	record.BatchID = h.BatchID

	for _, thread := range threads {
		data, err := json.Marshal(thread)
		if err != nil {
			record.DocumentsFailed++
			continue
		}
		if _, err := c.store.StoreDocument(h, thread.ThreadID, data, chatMetadata(thread)); err != nil {
			record.DocumentsFailed++
			c.logger.Warn("failed to store thread", "thread_id", thread.ThreadID, "error", err)
			continue
		}
		record.DocumentsIngested++
		record.BytesProcessed += int64(len(data))
	}

	record.Finish()
	if err := c.store.LogRun(record); err != nil {
		return record, err
	}

	c.logger.Info("chat ingestion finished",
		"batch_id", record.BatchID,
		"ingested", record.DocumentsIngested,
		"failed", record.DocumentsFailed,
		"status", string(record.Status))
	return record, nil
}

func (c *ChatIngestor) failRun(record *core.IngestionRecord, cause error) (*core.IngestionRecord, error) {
	record.FinishFailed(cause)
	if err := c.store.LogRun(record); err != nil {
		c.logger.Error("failed to persist failed run record", "ingestion_id", record.IngestionID, "error", err)
	}
	return record, cause
}

// chatMetadata derives document metadata from a thread. The source
// timestamp is the latest message's origin clock.
func chatMetadata(thread *core.ChatThread) *core.DocumentMetadata {
	meta := &core.DocumentMetadata{
		SourceType: core.SourceTypeChat,
		SourceID:   thread.ThreadID,
		SourceName: "#" + thread.ChannelName,
		IngestedAt: time.Now().UTC(),
		Extra: map[string]string{
			"channel_id":    thread.ChannelID,
			"message_count": strconv.Itoa(thread.MessageCount),
		},
	}
	if len(thread.Participants) > 0 {
		meta.Extra["participants"] = strings.Join(thread.Participants, ",")
	}
	if len(thread.Messages) > 0 {
		if ts, err := time.Parse(time.RFC3339, thread.Messages[len(thread.Messages)-1].Timestamp); err == nil {
			meta.SourceTimestamp = &ts
		}
	}
	return meta
}
