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

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/poiesic/corpus/core"
)

const versionFilename = "version.json"

// LoadVersion reads the index version record from the given index
// directory. Returns ErrVersionNotFound if no record exists, which is the
// signal that the index has never been initialized.
func LoadVersion(indexDir string) (*core.IndexVersion, error) {
	data, err := os.ReadFile(filepath.Join(indexDir, versionFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}

	var version core.IndexVersion
	if err := json.Unmarshal(data, &version); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVersionNotFound, err)
	}
	return &version, nil
}

// SaveVersion writes the version record through a temp file and rename, so
// a crash mid-write never leaves a corrupt record behind.
func SaveVersion(indexDir string, version *core.IndexVersion) error {
	if err := os.MkdirAll(indexDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(version, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(indexDir, versionFilename)
	tmp, err := os.CreateTemp(indexDir, ".version-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
