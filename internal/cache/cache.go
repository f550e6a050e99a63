// Package cache memoizes derived ledger views.
//
// Ledgers are append-only, so a session's length identifies one exact state.
// Entries keyed by VersionKey never go stale and only need size-based eviction.
package cache

import "strconv"

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Size() int
}

// VersionKey identifies a ledger state: the session plus its transaction count.
func VersionKey(session string, length int) string {
	return session + ":" + strconv.Itoa(length)
}
