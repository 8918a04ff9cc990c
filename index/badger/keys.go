package badger

import "github.com/google/uuid"

// Key prefixes for different data types
const (
	chunkPrefix = "chunk"
)

// makeChunkEntryKey generates a unique storage key for one stored chunk
// entry. Keys are salted per insertion, so adding a chunk whose ID is
// already present stores a second entry instead of overwriting the first.
func makeChunkEntryKey(id string) []byte {
	return []byte(chunkPrefix + ":" + id + ":" + uuid.NewString())
}
