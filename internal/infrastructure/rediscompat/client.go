// Package rediscompat reshapes the cache engine into the call surface
// existing code expects from a networked-cache client, so call sites can swap
// the remote client for the local durable cache without rewrites. It is a
// stateless translation layer: every method forwards to the engine, plus the
// one documented side effect of sweeping on Quit/Disconnect.
package rediscompat

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/avatarctic/diskcache/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// TTL return codes matching the networked-cache convention.
const (
	// TTLKeyMissing is returned by TTL for an absent key.
	TTLKeyMissing int64 = -2
	// TTLNoExpiry is returned by TTL for a present key; the façade does not
	// report remaining seconds.
	TTLNoExpiry int64 = -1
)

// Client adapts ports.CacheEngine to networked-client call shapes.
type Client struct {
	engine ports.CacheEngine
	logger *logrus.Logger
}

// NewClient creates the façade over engine.
func NewClient(engine ports.CacheEngine, logger *logrus.Logger) *Client {
	return &Client{engine: engine, logger: logger}
}

// Set stores key=value. The only recognized option is the positional
// "EX", seconds pair; unrecognized trailing arguments are ignored, matching
// the permissive client convention.
func (c *Client) Set(ctx context.Context, key string, value any, args ...any) bool {
	var ttl time.Duration
	if len(args) >= 2 {
		if flag, ok := args[0].(string); ok && strings.EqualFold(flag, "EX") {
			if secs, ok := toSeconds(args[1]); ok {
				ttl = time.Duration(secs) * time.Second
			}
		}
	}
	return c.engine.Set(ctx, key, value, ttl) == nil
}

// SetEx stores key=value with an expiry of the given whole seconds.
func (c *Client) SetEx(ctx context.Context, key string, seconds int64, value any) bool {
	return c.engine.Set(ctx, key, value, time.Duration(seconds)*time.Second) == nil
}

// Get returns the encoded value, ok=false when absent or expired.
func (c *Client) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	return c.engine.Get(ctx, key)
}

// Del removes the key. Always succeeds; deleting an absent key is not an
// error.
func (c *Client) Del(ctx context.Context, key string) bool {
	c.engine.Delete(ctx, key)
	return true
}

// Exists reports whether key holds a live record.
func (c *Client) Exists(ctx context.Context, key string) bool {
	return c.engine.Exists(ctx, key)
}

// Expire re-stamps key with a fresh TTL in whole seconds; false when absent.
func (c *Client) Expire(ctx context.Context, key string, seconds int64) bool {
	return c.engine.Expire(ctx, key, time.Duration(seconds)*time.Second)
}

// MGet resolves keys positionally; absent entries are nil.
func (c *Client) MGet(ctx context.Context, keys ...string) []json.RawMessage {
	return c.engine.MGet(ctx, keys)
}

// MSet stores flat (key, value, ...) pairs; true iff every pair persisted.
func (c *Client) MSet(ctx context.Context, pairs ...any) bool {
	return c.engine.MSet(ctx, pairs, 0) == nil
}

// FlushAll clears both tiers and resets statistics.
func (c *Client) FlushAll(ctx context.Context) bool {
	return c.engine.FlushAll(ctx) == nil
}

// TTL reports only existence: TTLKeyMissing for absent keys, TTLNoExpiry
// otherwise. Remaining seconds are not reported.
func (c *Client) TTL(ctx context.Context, key string) int64 {
	if c.engine.Exists(ctx, key) {
		return TTLNoExpiry
	}
	return TTLKeyMissing
}

// Keys is a conservative stub: pattern listing is not implemented and the
// result is always empty.
func (c *Client) Keys(ctx context.Context, pattern string) []string {
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"pattern": pattern}).Debug("rediscompat: KEYS is a stub, returning empty listing")
	}
	return []string{}
}

// Connect is a lifecycle no-op kept for call-site compatibility.
func (c *Client) Connect(_ context.Context) error { return nil }

// Disconnect runs a final sweep and returns.
func (c *Client) Disconnect(ctx context.Context) error {
	c.engine.SweepExpired(ctx)
	return nil
}

// Quit runs a final sweep and returns.
func (c *Client) Quit(ctx context.Context) error {
	return c.Disconnect(ctx)
}

func toSeconds(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case string:
		secs, err := strconv.ParseInt(n, 10, 64)
		return secs, err == nil
	default:
		return 0, false
	}
}
