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


package index

import "errors"

var (
	// ErrIndexExists is returned by Initialize when a version record
	// already exists. Initialization never overwrites an index implicitly.
	ErrIndexExists = errors.New("index already exists")

	// ErrIndexNotFound is returned by mutating operations that require an
	// initialized index.
	ErrIndexNotFound = errors.New("index not initialized")

	// ErrVersionNotFound indicates a missing version record.
	ErrVersionNotFound = errors.New("index version record not found")

	// ErrProviderRequired indicates a nil index provider was passed to New.
	ErrProviderRequired = errors.New("index provider is required")

	// ErrStoreRequired indicates a nil raw store was passed to New.
	ErrStoreRequired = errors.New("raw store is required")

	// ErrProcessorRequired indicates a nil processor was passed to New.
	ErrProcessorRequired = errors.New("document processor is required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
