package filestore

import "strings"

// NormalizeKey maps an arbitrary cache key to a filesystem-safe identifier by
// replacing every character outside [A-Za-z0-9] with '_'. Total and
// deterministic, but not injective: distinct keys such as "a:b" and "a_b"
// normalize to the same identifier and will share a record file. That
// collision is a documented limitation of the on-disk layout, not something
// the store detects or resolves.
func NormalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
