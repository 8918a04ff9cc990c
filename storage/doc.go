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


// Package storage defines the raw data store abstraction for corpus.
//
// The raw store is the only component whose data is not regenerable from
// another component. Raw content must be preserved because:
//   - Re-indexing: embeddings may be regenerated with different models
//   - Processing changes: chunking and rendering strategies evolve
//   - Debugging: original content helps diagnose pipeline issues
//   - Compliance: audit trails require immutable source data
//   - Recovery: a corrupted vector index is rebuilt from raw data
//
// # Layout
//
// Implementations persist the following conceptual layout:
//
//	raw/<source_type>/<batch_id>/manifest.json
//	raw/<source_type>/<batch_id>/<document_id>.content
//	raw/<source_type>/<batch_id>/<document_id>.metadata
//	ingestion_logs/<ingestion_id>.record
//
// Batches and run records are append-only audit artifacts: manifests grow
// by appending member entries, run records are written once at a terminal
// status and never mutated afterwards.
//
// # Constructor Return Type Pattern
//
// Public constructors return the RawStore interface to keep consumers
// decoupled from the backing implementation:
//
//	store, err := fsstore.New(dataDir)  // returns storage.RawStore
package storage
