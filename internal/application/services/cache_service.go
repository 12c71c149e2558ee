package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/avatarctic/diskcache/internal/core/domain/cache"
	"github.com/avatarctic/diskcache/internal/core/ports"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// CacheService composes the memory index, the persisted record store, and the
// expiry rules into the public cache contract. It owns the index and is the
// only writer to the store's directory; the sweeper only calls back in through
// SweepExpired.
type CacheService struct {
	index ports.MemoryIndex
	store ports.RecordStore
	clock ports.Clock

	defaultTTL time.Duration
	logger     *logrus.Logger

	// sf coalesces concurrent disk reads for the same missing key so a
	// thundering herd on one key costs one file read.
	sf singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// CacheServiceConfig groups the tunables of the engine.
type CacheServiceConfig struct {
	DefaultTTL time.Duration
}

// NewCacheService wires an engine over the given tiers. The store directory
// is created up front so the first write does not race directory creation.
func NewCacheService(index ports.MemoryIndex, store ports.RecordStore, clock ports.Clock, cfg *CacheServiceConfig, logger *logrus.Logger) *CacheService {
	// Apply defaults
	ttl := cache.DefaultTTL
	if cfg != nil && cfg.DefaultTTL > 0 {
		ttl = cfg.DefaultTTL
	}
	if err := store.EnsureDirectory(); err != nil && logger != nil {
		logger.WithError(err).Warn("cache: storage directory unavailable at startup")
	}
	return &CacheService{index: index, store: store, clock: clock, defaultTTL: ttl, logger: logger}
}

func (s *CacheService) nowMillis() int64 {
	return s.clock.Now().UnixMilli()
}

func (s *CacheService) ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return s.defaultTTL
	}
	return ttl
}

func (s *CacheService) hit() {
	s.hits.Add(1)
	cacheHitsTotal.Inc()
}

func (s *CacheService) miss() {
	s.misses.Add(1)
	cacheMissesTotal.Inc()
}

// Set encodes value, stamps it with now+ttl, and writes through: the memory
// index takes the record while under capacity, the store always does. Only a
// persistence failure is reported.
func (s *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for key %q: %w", key, err)
	}
	now := s.nowMillis()
	rec := &cache.Record{
		Key:       key,
		Value:     raw,
		CreatedAt: now,
		ExpiresAt: cache.ExpiryAt(now, s.ttlOrDefault(ttl)),
	}
	s.sets.Add(1)
	cacheSetsTotal.Inc()
	s.index.Put(key, rec)
	if err := s.store.WriteRecord(ctx, rec); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"key": key}).WithError(err).Error("cache: persist failed")
		}
		return err
	}
	return nil
}

// Get serves from the memory index when the resident record is live, evicting
// it and falling through to disk otherwise. A live disk record repopulates
// the index (capacity permitting); an expired one is deleted on discovery.
// A key swept away between the two tier checks is a miss, never a failure.
func (s *CacheService) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	if rec, ok := s.index.Get(key); ok {
		if rec.Live(s.nowMillis()) {
			s.hit()
			return rec.Value, true
		}
		s.index.Remove(key)
	}

	v, _, _ := s.sf.Do(key, func() (any, error) {
		rec, ok := s.store.ReadRecord(ctx, key)
		if !ok {
			return (*cache.Record)(nil), nil
		}
		return rec, nil
	})
	rec, _ := v.(*cache.Record)
	if rec == nil {
		s.miss()
		return nil, false
	}
	if !rec.Live(s.nowMillis()) {
		// Lazy expiry: discovery on read removes the dead record.
		s.store.DeleteRecord(ctx, key)
		s.miss()
		return nil, false
	}
	s.index.Put(key, rec)
	s.hit()
	return rec.Value, true
}

// Delete removes key from both tiers. Idempotent; deleting an absent key is
// success.
func (s *CacheService) Delete(ctx context.Context, key string) {
	s.index.Remove(key)
	s.store.DeleteRecord(ctx, key)
}

// Exists reports liveness via Get, so it contributes a hit or a miss exactly
// like a value read.
func (s *CacheService) Exists(ctx context.Context, key string) bool {
	_, ok := s.Get(ctx, key)
	return ok
}

// Expire refreshes an existing key with a new TTL by re-reading and
// re-writing it, which also refreshes its creation time. Absent or expired
// keys report false.
func (s *CacheService) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	val, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	return s.Set(ctx, key, val, ttl) == nil
}

// MGet resolves each key independently; one key's failure never affects the
// others. The result aligns positionally with keys, nil marking absence.
func (s *CacheService) MGet(ctx context.Context, keys []string) []json.RawMessage {
	out := make([]json.RawMessage, len(keys))
	for i, key := range keys {
		if val, ok := s.Get(ctx, key); ok {
			out[i] = val
		}
	}
	return out
}

// MSet writes flat (key, value, ...) pairs under one TTL. A trailing
// unmatched key is ignored. Every pair is attempted; the first failure is
// returned so callers get an all-or-nothing signal with a reason.
func (s *CacheService) MSet(ctx context.Context, pairs []any, ttl time.Duration) error {
	var firstErr error
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			key = fmt.Sprint(pairs[i])
		}
		if err := s.Set(ctx, key, pairs[i+1], ttl); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FlushAll empties both tiers and zeroes the lifetime counters.
func (s *CacheService) FlushAll(ctx context.Context) error {
	s.index.Clear()
	err := s.store.Clear(ctx)
	s.hits.Store(0)
	s.misses.Store(0)
	s.sets.Store(0)
	if s.logger != nil {
		s.logger.Info("cache: flushed all records")
	}
	return err
}

// Stats reports the lifetime counters and current tier sizes. The hit rate is
// 0 before any lookup has happened.
func (s *CacheService) Stats(ctx context.Context) cache.Stats {
	h := s.hits.Load()
	m := s.misses.Load()
	st := cache.Stats{
		Hits:        h,
		Misses:      m,
		Sets:        s.sets.Load(),
		MemoryItems: s.index.Len(),
		FileItems:   s.store.Count(ctx),
	}
	if h+m > 0 {
		st.HitRate = float64(h) / float64(h+m)
	}
	return st
}

// SweepExpired purges expired entries from the memory index, then walks the
// full storage listing and deletes every expired or unparsable record file.
// Clearing corrupt files here is what keeps one bad write from shadowing its
// key forever. Returns the number of files removed.
func (s *CacheService) SweepExpired(ctx context.Context) int {
	now := s.nowMillis()

	memRemoved := 0
	for _, key := range s.index.Keys() {
		if rec, ok := s.index.Get(key); ok && !rec.Live(now) {
			s.index.Remove(key)
			memRemoved++
		}
	}

	removed := 0
	var reclaimed int64
	listing, err := s.store.ListAll(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Error("cache: sweep could not list storage")
		}
	}
	for _, ent := range listing {
		switch {
		case ent.Err != nil:
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{"file": ent.Filename}).WithError(ent.Err).Warn("cache: removing unreadable record")
			}
		case ent.Record.Live(now):
			continue
		default:
			s.index.Remove(ent.Record.Key)
		}
		s.store.RemoveFile(ctx, ent.Filename)
		removed++
		reclaimed += ent.Size
	}

	cacheSweepsTotal.Inc()
	cacheSweepRemovedTotal.Add(float64(removed))
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"files_removed":  removed,
			"memory_removed": memRemoved,
			"reclaimed":      humanize.Bytes(uint64(reclaimed)),
		}).Info("cache: sweep complete")
	}
	return removed
}

var _ ports.CacheEngine = (*CacheService)(nil)
