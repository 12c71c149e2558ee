package filestore_test

import (
	"testing"

	"github.com/avatarctic/diskcache/internal/infrastructure/filestore"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"plain":             "plain",
		"user:42:profile":   "user_42_profile",
		"a/b\\c d":          "a_b_c_d",
		"MiXeD123":          "MiXeD123",
		"":                  "",
		"héllo":             "h__llo", // multi-byte runes are replaced per byte
		"dots.and-dashes_x": "dots_and_dashes_x",
	}
	for in, want := range cases {
		require.Equal(t, want, filestore.NormalizeKey(in), "key %q", in)
	}
}

func TestNormalizeKey_CollisionIsKnown(t *testing.T) {
	// Documented limitation: distinct keys can share an identifier.
	require.Equal(t, filestore.NormalizeKey("a:b"), filestore.NormalizeKey("a_b"))
}
