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


package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/corpus/core"
	"github.com/poiesic/corpus/index"
)

// verbatimBoost is added to the similarity score of hits that contain
// every significant query word verbatim. Exact wording is a strong
// relevance signal that pure embedding similarity can underweight.
const verbatimBoost = 0.05

// Result is one search hit: a chunk, its relevance score, and a formatted
// attribution line tracing the hit back to its origin.
type Result struct {
	Chunk       core.Chunk
	Score       float32
	Attribution string
}

// Searcher answers natural language queries against the vector index.
type Searcher struct {
	provider index.Provider
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher over the given index provider.
func NewSearcher(provider index.Provider, opts ...Option) (*Searcher, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}

	s := &Searcher{
		provider: provider,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Search returns up to maxHits chunks relevant to the query, ranked by
// relevance.
func (s *Searcher) Search(ctx context.Context, query string, maxHits int) ([]*Result, error) {
	return s.SearchFiltered(ctx, query, nil, maxHits)
}

// SearchSource restricts results to chunks from one source type.
func (s *Searcher) SearchSource(ctx context.Context, query string, source core.SourceType, maxHits int) ([]*Result, error) {
	if err := core.ValidateSourceType(source); err != nil {
		return nil, err
	}
	return s.SearchFiltered(ctx, query, map[string]string{"source_type": source.String()}, maxHits)
}

// SearchFiltered restricts results to chunks whose metadata contains every
// filter entry.
func (s *Searcher) SearchFiltered(ctx context.Context, query string, filter map[string]string, maxHits int) ([]*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if maxHits < 1 {
		maxHits = 1
	}

	// Over-fetch so the verbatim boost can promote hits that would
	// otherwise fall just outside the cutoff.
	scored, err := s.provider.Query(ctx, query, maxHits*2, filter)
	if err != nil {
		s.logger.Error("index query failed", "query", query, "err", err)
		return nil, err
	}

	results := make([]*Result, 0, len(scored))
	for _, hit := range scored {
		score := hit.Score
		if containsAllQueryWords(hit.Chunk.Content, query) {
			score += verbatimBoost
		}
		results = append(results, &Result{
			Chunk:       hit.Chunk,
			Score:       score,
			Attribution: FormatAttribution(hit.Chunk),
		})
	}

	slices.SortFunc(results, func(a, b *Result) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}

	s.logger.Debug("search finished", "query", query, "hits", len(results))
	return results, nil
}

// FormatAttribution builds a one-line provenance citation from a chunk's
// metadata, e.g. "[wiki] Deployment Runbook - 2026-08-29T12:00:00Z".
func FormatAttribution(chunk core.Chunk) string {
	meta := chunk.Metadata

	var b strings.Builder
	if st := meta["source_type"]; st != "" {
		fmt.Fprintf(&b, "[%s] ", st)
	}

	switch {
	case meta["title"] != "":
		b.WriteString(meta["title"])
	case meta["source_name"] != "":
		b.WriteString(meta["source_name"])
	default:
		b.WriteString(chunk.DocumentID)
	}

	if ts := meta["source_timestamp"]; ts != "" {
		b.WriteString(" - " + ts)
	} else if ts := meta["ingested_at"]; ts != "" {
		b.WriteString(" - ingested " + ts)
	}

	if url := meta["url"]; url != "" {
		b.WriteString(" <" + url + ">")
	}
	return b.String()
}
