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


// Package index manages the vector index lifecycle over a pluggable
// Provider backend.
//
// The Manager treats the vector index as disposable and the raw store as
// the system of record: initialize builds the index from raw batches,
// update and reindex add to it, and rebuild regenerates it entirely after
// taking a backup. A version record tracks index lineage (version number,
// embedding model, chunk counts per batch, last operation) and is advanced
// only after the corresponding provider operation succeeded.
//
// Implementation packages:
//
//   - index/badger: BadgerDB-backed provider with embedding and cosine
//     similarity search
//   - index/mock: function-field test double
package index
