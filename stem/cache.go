package stem

import (
	"github.com/ethereum/go-ethereum/common/lru"

	"github.com/verkle-labs/trie/crypto"
)

// Cache is the capability trait behind both the address→commitment and
// index→stem caches: a bounded LRU and a no-op implementation share
// this contract so the batched derivation code in Hasher works
// identically with either (§9 design note).
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Add(key K, value V)
}

// noopCache never stores anything; it is the default when a capacity
// of 0 is configured; every lookup misses.
type noopCache[K comparable, V any] struct{}

func (noopCache[K, V]) Get(K) (v V, ok bool) { return v, false }
func (noopCache[K, V]) Add(K, V)             {}

// lruCache wraps go-ethereum's generic, basic LRU (common/lru) — a
// dependency already pulled in transitively for common.Hash/rlp, so no
// new cache library is introduced for this.
type lruCache[K comparable, V any] struct {
	inner *lru.BasicLRU[K, V]
}

func newLRUCache[K comparable, V any](capacity int) Cache[K, V] {
	if capacity <= 0 {
		return noopCache[K, V]{}
	}
	c := lru.NewBasicLRU[K, V](capacity)
	return &lruCache[K, V]{inner: &c}
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	return c.inner.Get(key)
}

func (c *lruCache[K, V]) Add(key K, value V) {
	c.inner.Add(key, value)
}

// addressKey and indexKey are the concrete comparable key types used by
// the two caches: a fixed-size byte array (address, zero-padded) and a
// raw field element (already a fixed-size comparable array).
type addressKey [32]byte
type indexKey = crypto.Fr
