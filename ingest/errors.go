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

import "errors"

var (
	// ErrStoreRequired indicates a nil raw store was passed to a
	// constructor.
	ErrStoreRequired = errors.New("raw store is required")

	// ErrConnectorRequired indicates a nil connector was passed to an
	// ingestor constructor.
	ErrConnectorRequired = errors.New("connector is required")

	// ErrConnectorNotConfigured indicates an orchestrator operation whose
	// backing connector was not wired in.
	ErrConnectorNotConfigured = errors.New("connector not configured")

	// ErrUnsupportedFile indicates an upload with an extension no ingestor
	// handles.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrNoFiles indicates an upload run invoked with nothing to ingest.
	ErrNoFiles = errors.New("no files to ingest")
)
