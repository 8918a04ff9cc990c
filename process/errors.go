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


package process

import "errors"

var (
	// ErrStoreRequired indicates a nil raw store was passed to New.
	ErrStoreRequired = errors.New("raw store is required")

	// ErrUnsupportedSource indicates content whose source type has no
	// renderer.
	ErrUnsupportedSource = errors.New("unsupported source type")

	// ErrRenderFailed indicates stored content that could not be decoded
	// into its expected schema.
	ErrRenderFailed = errors.New("document render failed")

	// ErrInvalidChunking indicates a chunk size / overlap configuration
	// that cannot make progress.
	ErrInvalidChunking = errors.New("invalid chunking configuration")
)
