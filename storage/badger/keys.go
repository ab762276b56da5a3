package badger

import (
	"fmt"

	"github.com/poiesic/enrichit/core"
)

// Key prefixes for different data types
const (
	statusRecordPrefix = "stsrec"
	statusKeyPrefix    = "stskey"
)

// makeStatusRecordKey generates a key for a status record by content ID.
func makeStatusRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", statusRecordPrefix, id))
}

// makeStatusKeyIndexKey generates the document key index entry.
// Format: prefix:documentKey
// Iterating this prefix yields records in document key order.
func makeStatusKeyIndexKey(documentKey string) []byte {
	prefix := statusKeyPrefix + ":"
	buf := make([]byte, len(prefix)+len(documentKey))
	offset := copy(buf, prefix)
	copy(buf[offset:], documentKey)
	return buf
}

// makePartialStatusKeyIndexKey generates the prefix for scanning the document key index.
func makePartialStatusKeyIndexKey() []byte {
	return []byte(statusKeyPrefix + ":")
}
