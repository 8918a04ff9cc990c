// Package mock provides a deterministic ai.Embedder test double.
// The same text always produces the same vector, so similarity assertions
// in tests are stable without any external embedding service.
package mock
