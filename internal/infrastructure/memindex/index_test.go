package memindex_test

import (
	"fmt"
	"testing"

	"github.com/avatarctic/diskcache/internal/core/domain/cache"
	"github.com/avatarctic/diskcache/internal/infrastructure/memindex"
	"github.com/stretchr/testify/require"
)

func rec(key string) *cache.Record {
	return &cache.Record{Key: key, ExpiresAt: 1}
}

func TestPutGetRemove(t *testing.T) {
	idx := memindex.New(10)

	require.True(t, idx.Put("a", rec("a")))
	got, ok := idx.Get("a")
	require.True(t, ok)
	require.Equal(t, "a", got.Key)

	idx.Remove("a")
	_, ok = idx.Get("a")
	require.False(t, ok)

	// Removing an absent key is a no-op.
	idx.Remove("a")
}

func TestAdmissionCutoff(t *testing.T) {
	idx := memindex.New(3)
	for i := 0; i < 3; i++ {
		require.True(t, idx.Put(fmt.Sprintf("k%d", i), rec("x")))
	}

	// At capacity: new keys refused, no resident entry evicted.
	require.False(t, idx.Put("overflow", rec("overflow")))
	require.Equal(t, 3, idx.Len())
	_, ok := idx.Get("overflow")
	require.False(t, ok)
	_, ok = idx.Get("k0")
	require.True(t, ok)

	// A resident key is still writable at capacity.
	require.True(t, idx.Put("k1", rec("fresh")))
	got, _ := idx.Get("k1")
	require.Equal(t, "fresh", got.Key)

	// Freed capacity admits again.
	idx.Remove("k2")
	require.True(t, idx.Put("overflow", rec("overflow")))
}

func TestClearAndKeys(t *testing.T) {
	idx := memindex.New(0) // falls back to the default bound
	require.True(t, idx.Put("a", rec("a")))
	require.True(t, idx.Put("b", rec("b")))

	keys := idx.Keys()
	require.ElementsMatch(t, []string{"a", "b"}, keys)

	idx.Clear()
	require.Equal(t, 0, idx.Len())
	require.Empty(t, idx.Keys())
}
