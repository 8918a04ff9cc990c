package ingest

import (
	"context"
	"time"

	"github.com/poiesic/corpus/core"
)

// ChatConnector fetches threaded conversations from a chat platform.
// Implementations own authentication and pagination; the ingestor only
// sees normalized threads.
type ChatConnector interface {
	// FetchThreads returns the threads of a channel with activity at or
	// after since. A zero since means no lower bound.
	FetchThreads(ctx context.Context, channel string, since time.Time) ([]*core.ChatThread, error)
}

// WikiConnector fetches pages from a wiki. Content is expected to be
// cleaned text with markup already stripped.
type WikiConnector interface {
	// FetchSpace returns every page of a wiki space.
	FetchSpace(ctx context.Context, spaceKey string) ([]*core.WikiPage, error)

	// FetchPage returns a single page by ID.
	FetchPage(ctx context.Context, pageID string) (*core.WikiPage, error)
}

// PDFExtractor extracts structured text from PDF bytes. The upload
// ingestor works without one: PDFs are then archived as binary only and
// become indexable once an extractor is configured and the source
// reindexed.
type PDFExtractor interface {
	Extract(ctx context.Context, data []byte) (*core.PDFDocument, error)
}
