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

import "fmt"

// ValidateMetadata validates a DocumentMetadata according to domain rules.
//
// Validation rules:
//   - SourceType must be a known origin (not Unknown)
//   - SourceID must not be empty
//   - IngestedAt must be set
//
// NOT validated:
//   - SourceTimestamp (optional; not every origin reports one)
//   - Author, Title, URL, Extra (origin-dependent)
func ValidateMetadata(meta *DocumentMetadata) error {
	if meta == nil {
		return fmt.Errorf("%w: metadata is nil", ErrInvalidMetadata)
	}

	if err := ValidateSourceType(meta.SourceType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	if meta.SourceID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, ErrEmptySourceID)
	}

	if meta.IngestedAt.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, ErrMissingIngestedAt)
	}

	return nil
}

// ValidateRecord validates an IngestionRecord according to domain rules.
//
// Validation rules:
//   - IngestionID must not be empty
//   - Status must be one of the recognized run statuses
//
// SourceType Unknown is permitted here: aggregate runs spanning mixed
// origins are recorded under the unknown partition.
func ValidateRecord(record *IngestionRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.IngestionID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyIngestionID)
	}

	switch record.Status {
	case RunStatusInProgress, RunStatusCompleted, RunStatusFailed, RunStatusPartial:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidRecord, ErrInvalidStatus, record.Status)
	}

	return nil
}

// ValidateSourceType validates that a SourceType names a known origin.
func ValidateSourceType(source SourceType) error {
	switch source {
	case SourceTypeChat, SourceTypeWiki, SourceTypePDF, SourceTypeMarkdown, SourceTypeText:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidSourceType, source)
	}
}
