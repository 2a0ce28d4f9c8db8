// Package cache stores rendered analysis reports keyed by input content.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Event names reported to an EventFunc
const (
	EventHit  = "hit"
	EventMiss = "miss"
	EventSet  = "set"
)

// EventFunc observes cache activity per layer (memory, disk)
type EventFunc func(layer, event string)

// Key derives a namespaced cache key from the given parts.
// Parts are length-prefixed so ("ab","c") and ("a","bc") differ.
func Key(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	return "revstat:v1:" + hex.EncodeToString(h.Sum(nil))
}
