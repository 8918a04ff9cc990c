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


package process

import (
	"fmt"
	"strings"
)

const (
	// DefaultChunkSize is the default maximum chunk length in runes.
	DefaultChunkSize = 700
	// DefaultChunkOverlap is the default overlap between consecutive
	// chunks in runes.
	DefaultChunkOverlap = 100
)

// defaultSeparators in preference order: paragraph break, line break,
// sentence end, word boundary. A window with none of these is hard cut.
var defaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Splitter cuts rendered text into overlapping chunks using a sliding
// window, snapping each cut back to the highest-preference separator found
// inside the window. Splitting is deterministic: the same text always
// yields the same chunks.
//
// Lengths are measured in runes, not bytes, so multi-byte text is never
// cut mid-character.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter) error

// WithChunkSize sets the maximum chunk length in runes.
func WithChunkSize(size int) SplitterOption {
	return func(s *Splitter) error {
		if size < 1 {
			return fmt.Errorf("%w: chunk size %d", ErrInvalidChunking, size)
		}
		s.chunkSize = size
		return nil
	}
}

// WithChunkOverlap sets the overlap between consecutive chunks in runes.
func WithChunkOverlap(overlap int) SplitterOption {
	return func(s *Splitter) error {
		if overlap < 0 {
			return fmt.Errorf("%w: overlap %d", ErrInvalidChunking, overlap)
		}
		s.overlap = overlap
		return nil
	}
}

// NewSplitter creates a splitter with the given options.
// Defaults: chunk size 700, overlap 100.
func NewSplitter(opts ...SplitterOption) (*Splitter, error) {
	s := &Splitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: defaultSeparators,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.overlap >= s.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d >= chunk size %d", ErrInvalidChunking, s.overlap, s.chunkSize)
	}
	return s, nil
}

// Split cuts text into chunks of at most the configured size, with
// consecutive chunks sharing up to the configured overlap. Chunks are
// trimmed of surrounding whitespace; empty chunks are dropped.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= s.chunkSize {
		return appendChunk(nil, string(runes))
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			chunks = appendChunk(chunks, string(runes[start:]))
			break
		}

		cut := s.snapToSeparator(runes, start, end)
		chunks = appendChunk(chunks, string(runes[start:cut]))

		// Step the window forward; must always make progress even when
		// the cut landed inside the overlap region.
		next := cut - s.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// snapToSeparator finds the cut point for the window [start, end), trying
// each separator in preference order and taking the last occurrence inside
// the window. A cut is only usable if it leaves more than overlap runes of
// new content; otherwise the next separator is tried, and failing all, the
// window is hard cut at end.
func (s *Splitter) snapToSeparator(runes []rune, start, end int) int {
	minCut := start + s.overlap + 1
	for _, sep := range s.separators {
		sepRunes := []rune(sep)
		if idx := lastIndexRunes(runes, sepRunes, start, end); idx >= 0 {
			cut := idx + len(sepRunes)
			if cut >= minCut {
				return cut
			}
		}
	}
	return end
}

// lastIndexRunes returns the index of the last occurrence of sep starting
// within [from, to-len(sep)], or -1.
func lastIndexRunes(runes, sep []rune, from, to int) int {
	for i := to - len(sep); i >= from; i-- {
		match := true
		for j := range sep {
			if runes[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func appendChunk(chunks []string, chunk string) []string {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return chunks
	}
	return append(chunks, chunk)
}
