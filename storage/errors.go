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


package storage

import "errors"

var (
	// ErrBatchNotFound indicates that a batch handle is stale or invalid.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrManifestNotFound indicates a batch directory without a manifest.
	ErrManifestNotFound = errors.New("batch manifest not found")

	// ErrDocumentNotFound indicates a manifest entry whose stored files
	// are missing.
	ErrDocumentNotFound = errors.New("stored document not found")

	// ErrRecordExists indicates an attempt to overwrite a terminal
	// ingestion record.
	ErrRecordExists = errors.New("ingestion record already exists")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)
