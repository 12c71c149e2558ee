package rediscompat_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/avatarctic/diskcache/internal/application/services"
	"github.com/avatarctic/diskcache/internal/infrastructure/filestore"
	"github.com/avatarctic/diskcache/internal/infrastructure/memindex"
	"github.com/avatarctic/diskcache/internal/infrastructure/rediscompat"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClient(t *testing.T) (*rediscompat.Client, *testClock, *services.CacheService) {
	t.Helper()
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	engine := services.NewCacheService(memindex.New(100), filestore.New(t.TempDir(), nil), clock, nil, nil)
	return rediscompat.NewClient(engine, nil), clock, engine
}

func asString(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func TestSet_PlainAndWithEXFlag(t *testing.T) {
	c, clock, _ := newClient(t)
	ctx := context.Background()

	require.True(t, c.Set(ctx, "plain", "v"))
	require.True(t, c.Set(ctx, "short", "v", "EX", 5))
	require.True(t, c.Set(ctx, "short-str", "v", "ex", "5")) // flag and seconds as strings

	clock.Advance(6 * time.Second)
	_, ok := c.Get(ctx, "short")
	require.False(t, ok)
	_, ok = c.Get(ctx, "short-str")
	require.False(t, ok)

	// The plain set took the engine default TTL and is still live.
	raw, ok := c.Get(ctx, "plain")
	require.True(t, ok)
	require.Equal(t, "v", asString(t, raw))
}

func TestSetEx(t *testing.T) {
	c, clock, _ := newClient(t)
	ctx := context.Background()

	require.True(t, c.SetEx(ctx, "k", 10, "v"))
	raw, ok := c.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "v", asString(t, raw))

	clock.Advance(11 * time.Second)
	_, ok = c.Get(ctx, "k")
	require.False(t, ok)
}

func TestDel_AlwaysSucceeds(t *testing.T) {
	c, _, _ := newClient(t)
	ctx := context.Background()

	require.True(t, c.Del(ctx, "never-set"))
	require.True(t, c.Set(ctx, "k", "v"))
	require.True(t, c.Del(ctx, "k"))
	require.False(t, c.Exists(ctx, "k"))
}

func TestExpireAndTTLStubs(t *testing.T) {
	c, _, _ := newClient(t)
	ctx := context.Background()

	require.Equal(t, rediscompat.TTLKeyMissing, c.TTL(ctx, "absent"))

	require.True(t, c.Set(ctx, "k", "v"))
	require.Equal(t, rediscompat.TTLNoExpiry, c.TTL(ctx, "k"))

	require.True(t, c.Expire(ctx, "k", 60))
	require.False(t, c.Expire(ctx, "absent", 60))
}

func TestMSetMGet(t *testing.T) {
	c, _, _ := newClient(t)
	ctx := context.Background()

	require.True(t, c.MSet(ctx, "a", 1, "b", 2))
	got := c.MGet(ctx, "a", "b", "c")
	require.Len(t, got, 3)
	require.JSONEq(t, `1`, string(got[0]))
	require.JSONEq(t, `2`, string(got[1]))
	require.Nil(t, got[2])
}

func TestKeysStubIsEmpty(t *testing.T) {
	c, _, _ := newClient(t)
	ctx := context.Background()

	require.True(t, c.Set(ctx, "k", "v"))
	require.Empty(t, c.Keys(ctx, "*"))
}

func TestFlushAll(t *testing.T) {
	c, _, engine := newClient(t)
	ctx := context.Background()

	require.True(t, c.Set(ctx, "k", "v"))
	require.True(t, c.FlushAll(ctx))
	require.False(t, c.Exists(ctx, "k"))
	require.Zero(t, engine.Stats(ctx).Sets)
}

func TestQuitSweeps(t *testing.T) {
	c, clock, engine := newClient(t)
	ctx := context.Background()

	require.True(t, c.SetEx(ctx, "dying", 1, "v"))
	clock.Advance(2 * time.Second)

	require.NoError(t, c.Connect(ctx))
	require.NoError(t, c.Quit(ctx))
	require.Zero(t, engine.Stats(ctx).FileItems)

	require.NoError(t, c.Disconnect(ctx))
}
