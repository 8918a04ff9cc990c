// Package fsstore is the filesystem implementation of storage.RawStore.
//
// Artifacts are plain files under the configured data directory, arranged
// by source partition and batch, so the raw archive can be inspected,
// backed up, and restored with ordinary filesystem tools.
package fsstore
