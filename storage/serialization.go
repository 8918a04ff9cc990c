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

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/corpus/core"
)

// The raw store is an audit trail first: everything it persists is indented
// JSON so operators can inspect batches and run records directly. Every
// field, including the open metadata Extra map, must survive a round trip.

// MarshalMetadata serializes a DocumentMetadata to bytes.
func MarshalMetadata(meta *core.DocumentMetadata) ([]byte, error) {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalMetadata deserializes a DocumentMetadata from bytes.
func UnmarshalMetadata(data []byte) (*core.DocumentMetadata, error) {
	var meta core.DocumentMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &meta, nil
}

// MarshalRecord serializes an IngestionRecord to bytes.
func MarshalRecord(record *core.IngestionRecord) ([]byte, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalRecord deserializes an IngestionRecord from bytes.
func UnmarshalRecord(data []byte) (*core.IngestionRecord, error) {
	var record core.IngestionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalManifest serializes a BatchManifest to bytes.
func MarshalManifest(manifest *core.BatchManifest) ([]byte, error) {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalManifest deserializes a BatchManifest from bytes.
func UnmarshalManifest(data []byte) (*core.BatchManifest, error) {
	var manifest core.BatchManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &manifest, nil
}
