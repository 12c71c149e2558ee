package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avatarctic/diskcache/internal/core/domain/cache"
)

// CacheEngine is the public contract of the two-tier cache. It mirrors the
// call surface a networked key-value cache client would offer, backed by a
// bounded memory index over durable per-key files.
// Implementations should degrade gracefully: lookups on failure report absent,
// never an error, so callers can always fall back to their primary source.
type CacheEngine interface {
	// Set stores value under key with the given TTL (non-positive means the
	// engine default). The write always reaches durable storage; the memory
	// tier is populated only while under capacity.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Get returns the encoded value for key. ok=false on absence, expiry, or
	// any storage failure.
	Get(ctx context.Context, key string) (json.RawMessage, bool)
	// Delete removes key from both tiers. Absence is not an error; Delete is
	// idempotent and never fails.
	Delete(ctx context.Context, key string)
	// Exists reports whether key currently resolves to a live record. It is
	// a Get without the value, and counts toward hit/miss statistics.
	Exists(ctx context.Context, key string) bool
	// Expire re-stamps an existing key with a fresh TTL, refreshing its
	// creation time as well. Returns false if the key is absent or expired.
	Expire(ctx context.Context, key string, ttl time.Duration) bool
	// MGet resolves each key independently; the result is positionally
	// aligned with keys and holds nil for absent entries.
	MGet(ctx context.Context, keys []string) []json.RawMessage
	// MSet stores positional (key, value, key, value, ...) pairs under one
	// TTL. A trailing unmatched key is ignored. Returns the first per-pair
	// failure, nil when every pair persisted.
	MSet(ctx context.Context, pairs []any, ttl time.Duration) error
	// FlushAll empties both tiers and resets statistics to zero.
	FlushAll(ctx context.Context) error
	// Stats returns the current counters and tier sizes.
	Stats(ctx context.Context) cache.Stats
	// SweepExpired purges expired records from both tiers and unparsable
	// files from storage, returning the number of persisted records removed.
	SweepExpired(ctx context.Context) int
}

// StoredRecord is one entry of a full storage enumeration. Exactly one of
// Record and Err is set; files that fail to parse are reported, not skipped.
type StoredRecord struct {
	Filename string
	Size     int64
	Record   *cache.Record
	Err      error
}

// RecordStore persists one JSON record per key and owns the on-disk layout.
type RecordStore interface {
	// EnsureDirectory creates the backing directory; safe to call repeatedly.
	EnsureDirectory() error
	// ReadRecord loads the record for key. ok=false when the file is absent
	// or unparsable; corruption is treated as absence on the read path.
	ReadRecord(ctx context.Context, key string) (*cache.Record, bool)
	// WriteRecord atomically replaces the file for the record's key. A failed
	// write is reported and never corrupts other records.
	WriteRecord(ctx context.Context, rec *cache.Record) error
	// DeleteRecord removes the file for key if present; absence and I/O
	// failures are no-ops.
	DeleteRecord(ctx context.Context, key string)
	// RemoveFile deletes a file previously reported by ListAll by name,
	// used to clear records whose key can no longer be recovered.
	RemoveFile(ctx context.Context, filename string)
	// ListAll enumerates every record file, parsed or not.
	ListAll(ctx context.Context) ([]StoredRecord, error)
	// Count returns the number of record files currently on disk.
	Count(ctx context.Context) int
	// Clear deletes every record file in the directory.
	Clear(ctx context.Context) error
}

// MemoryIndex is the bounded in-memory tier: a raw-key map of the same record
// shape the store persists. Admission stops at capacity; resident entries are
// never evicted to make room.
type MemoryIndex interface {
	Get(key string) (*cache.Record, bool)
	// Put inserts or overwrites. Returns false when the index is at capacity
	// and key is not already resident (the write is skipped, not queued).
	Put(key string, rec *cache.Record) bool
	Remove(key string)
	Len() int
	Clear()
	// Keys snapshots the currently resident keys for sweep iteration.
	Keys() []string
}

// Clock supplies "now" so expiry decisions stay deterministic under test.
type Clock interface {
	Now() time.Time
}
