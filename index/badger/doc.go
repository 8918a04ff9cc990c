// Package badger implements index.Provider on BadgerDB.
//
// Chunks are stored as JSON values with their normalized embedding vectors.
// Queries are exhaustive cosine scans over the chunk prefix, which is the
// right trade-off for corpus sizes this system targets; the provider can be
// swapped for an ANN-backed one behind the same interface if that changes.
package badger
