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


// Package search answers natural language queries against the vector index
// and formats provenance attributions for the results.
//
// A Searcher wraps an index.Provider. Queries are embedded and matched by
// the provider; the searcher then applies a small score boost to hits that
// contain every significant query word verbatim, re-ranks, and attaches an
// attribution line built from each chunk's metadata (source type, title,
// timestamp, url).
//
// Constructor Return Type Pattern:
//
// NewSearcher returns the concrete *Searcher type so callers get access to
// all search variants (Search, SearchSource, SearchFiltered) without an
// interface indirection.
package search
