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


// Package ai provides the embedding abstraction used by the vector index.
//
// The pipeline depends on the Embedder interface rather than any concrete
// client, so the embedding backend can be swapped without touching indexing
// or search logic.
//
// # Implementation Packages
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: deterministic test double, no external dependencies
//
// # Constructor Return Type Pattern
//
// The production constructor returns the INTERFACE type to enforce
// abstraction:
//
//	embedder, err := openai.NewEmbedder(config)  // returns ai.Embedder
//
// The test constructor returns the CONCRETE type so tests can inject
// behavior via function fields and assert on call counts:
//
//	mockEmbed := mock.NewMockEmbedder()  // returns *mock.MockEmbedder
//	mockEmbed.EmbedTextsFunc = ...       // needs concrete type
package ai
