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


// Package ingest captures content from external sources into the raw
// store.
//
// Each source type has an ingestor (chat, wiki, uploads) that normalizes
// origin payloads into the core content schemas, writes them as a batch,
// and persists exactly one ingestion record per run at a terminal status.
// Partial failure is first-class: individual documents that cannot be
// stored are counted and the run finishes as partial rather than failed.
//
// The Orchestrator composes the ingestors behind one dependency-injected
// entry point and can optionally feed finished runs straight into the
// vector index.
package ingest
