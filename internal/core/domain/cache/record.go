package cache

import (
	"encoding/json"
	"time"
)

// DefaultTTL is applied whenever a write does not carry an explicit
// time-to-live.
const DefaultTTL = time.Hour

// Record is the unit of storage shared by both cache tiers. The same shape is
// held in the memory index and serialized as JSON to the per-key record file,
// so the field names below are an external contract for anything reading the
// cache directory directly.
type Record struct {
	// Key is the original, unnormalized request key.
	Key string `json:"key"`
	// Value is an arbitrary JSON-representable payload, kept in its encoded
	// form so reads never re-serialize.
	Value json.RawMessage `json:"value"`
	// CreatedAt is the epoch-millisecond timestamp of the last write.
	CreatedAt int64 `json:"createdAt"`
	// ExpiresAt is the absolute epoch-millisecond timestamp after which the
	// record is dead.
	ExpiresAt int64 `json:"expiresAt"`
}

// Live reports whether the record is still valid at the given
// epoch-millisecond instant. Liveness is re-evaluated on every read; it is
// never cached.
func (r *Record) Live(nowMillis int64) bool {
	return nowMillis < r.ExpiresAt
}

// ExpiryAt computes the absolute expiry timestamp for a write happening at
// nowMillis. A non-positive ttl falls back to DefaultTTL. Pure; callers supply
// "now" explicitly so expiry behavior is deterministic under test.
func ExpiryAt(nowMillis int64, ttl time.Duration) int64 {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return nowMillis + ttl.Milliseconds()
}

// Stats are process-lifetime counters plus a point-in-time view of both tiers.
// They are not persisted and reset only on an explicit flush-all.
type Stats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Sets        int64   `json:"sets"`
	MemoryItems int     `json:"memoryItems"`
	FileItems   int     `json:"fileItems"`
	HitRate     float64 `json:"hitRate"`
}
