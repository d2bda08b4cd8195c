package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey derives the key for one pipeline stage: the stage prefix followed
// by a SHA-256 over the JSON encoding of the key components. The full-width
// digest keeps distinct collections and option sets from ever sharing an
// entry.
func hashKey(stage string, components ...any) string {
	raw, _ := json.Marshal(components)
	sum := sha256.Sum256(raw)
	return stage + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the hex SHA-256 of data, 64 characters. This is the content
// hash used to fingerprint person collections and layout results.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
