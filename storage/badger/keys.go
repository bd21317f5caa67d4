package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/fixit/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix  = "chkrec"
	chunkDocPrefix     = "chkdoc"
	documentPrefix     = "docrec"
	documentDatePrefix = "docrecd"
	documentIDSeq      = "docrecseq"
)

// makeChunkKey generates a key for a chunk record by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkDocKey generates a composite key for the per-document chunk index.
// Format: prefix:documentID:chunkID
func makeChunkDocKey(documentID, chunkID core.ID) []byte {
	prefix := chunkDocPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for documentID + 8 bytes for chunkID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkID))
	return buf
}

// makePartialChunkDocKey generates a partial key for scanning one document's chunks.
// Format: prefix:documentID
func makePartialChunkDocKey(documentID core.ID) []byte {
	prefix := chunkDocPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for documentID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentDateKey generates a composite key for the upload date index.
// Format: prefix:timestamp:id
func makeDocumentDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := documentDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDocumentDateKey generates a partial key for date ordered scans.
// Format: prefix:timestamp
func makePartialDocumentDateKey(timestamp time.Time) []byte {
	prefix := documentDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}
