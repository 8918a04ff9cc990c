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


package fsstore

import (
	"os"

	"github.com/poiesic/corpus/storage"
)

// NewTempStore creates a raw store rooted at a fresh temporary directory
// for testing. Returns the store and its root path; the caller removes the
// directory when done.
func NewTempStore() (storage.RawStore, string, error) {
	dir, err := os.MkdirTemp("", "corpus-fsstore-*")
	if err != nil {
		return nil, "", err
	}

	store, err := New(dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, "", err
	}
	return store, dir, nil
}
