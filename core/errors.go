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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidSourceType indicates a source type outside the closed set.
	ErrInvalidSourceType = errors.New("invalid source type")

	// ErrInvalidMetadata indicates a DocumentMetadata failed validation.
	ErrInvalidMetadata = errors.New("invalid document metadata")

	// ErrInvalidRecord indicates an IngestionRecord failed validation.
	ErrInvalidRecord = errors.New("invalid ingestion record")

	// ErrEmptySourceID indicates the SourceID field is empty.
	ErrEmptySourceID = errors.New("source id cannot be empty")

	// ErrEmptyIngestionID indicates the IngestionID field is empty.
	ErrEmptyIngestionID = errors.New("ingestion id cannot be empty")

	// ErrMissingIngestedAt indicates the IngestedAt timestamp is unset.
	ErrMissingIngestedAt = errors.New("ingested_at timestamp is required")

	// ErrInvalidStatus indicates an unrecognized run status value.
	ErrInvalidStatus = errors.New("invalid run status")
)
