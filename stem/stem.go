// Package stem computes the 31-byte stem that identifies a Verkle Stem
// node's leaves, given an (address, tree-index) pair. It sits in front
// of the crypto package's Pedersen hash with two caches (§4.2).
package stem

import (
	"github.com/verkle-labs/trie/crypto"
)

// stemMarker is 2 + 256*64, the fixed first element of the 5-scalar
// vector hashed to derive a stem (§4.2).
const stemMarker = 2 + 256*64

// Size is the length, in bytes, of a stem.
const Size = 31

// Config selects the caching strategy for a Hasher (§6.4).
type Config struct {
	// StemCacheCapacity, if > 0, turns on a bounded LRU cache of
	// index→stem. 0 (the default) uses a no-op cache.
	StemCacheCapacity int

	// AddressCommitmentCacheCapacity, if > 0, turns on a bounded LRU
	// cache of address→address-commitment. 0 (the default) uses a
	// no-op cache.
	AddressCommitmentCacheCapacity int

	// Preloaded seeds the stem cache. Keys are 64 bytes: the
	// zero-left-padded 32-byte address followed by the 32-byte big-endian
	// index; values are 31-byte stems. Entries of any other size are
	// skipped, and with StemCacheCapacity 0 (the no-op cache) none is kept.
	Preloaded map[string][]byte
}

type stemCacheKey struct {
	addr  addressKey
	index indexKey
}

// Hasher computes stems from (address, index) pairs. It is safe for
// concurrent read-only use once constructed if its caches are, since
// the function it memoises is pure (§4.2, §5).
type Hasher struct {
	crypto *crypto.Config

	addressCache Cache[addressKey, crypto.Point]
	stemCache    Cache[stemCacheKey, [Size]byte]
}

// NewHasher builds a Hasher backed by the given crypto configuration.
func NewHasher(c *crypto.Config, cfg Config) *Hasher {
	h := &Hasher{
		crypto:       c,
		addressCache: newLRUCache[addressKey, crypto.Point](cfg.AddressCommitmentCacheCapacity),
		stemCache:    newLRUCache[stemCacheKey, [Size]byte](cfg.StemCacheCapacity),
	}
	for k, v := range cfg.Preloaded {
		if len(k) != 32+32 || len(v) != Size {
			continue
		}
		var addr addressKey
		copy(addr[:], k[:32])
		var idx crypto.Fr
		crypto.FromBytes(&idx, []byte(k[32:]))
		var stemBytes [Size]byte
		copy(stemBytes[:], v)
		h.stemCache.Add(stemCacheKey{addr: addr, index: idx}, stemBytes)
	}
	return h
}

func toAddressKey(address []byte) addressKey {
	var k addressKey
	copy(k[32-len(address):], address)
	return k
}

// addressVector builds the first three elements of the 5-scalar vector
// that identifies an address: the marker and the two 16-byte halves of
// the zero-left-padded address.
func addressVector(address []byte) [3]crypto.Fr {
	var padded [32]byte
	copy(padded[32-len(address):], address)

	var vec [3]crypto.Fr
	vec[0].SetUint64(stemMarker)
	setHalf(&vec[1], padded[:16])
	setHalf(&vec[2], padded[16:])
	return vec
}

// indexHalves computes the two 16-byte halves of the byte-reversed
// (little-endian) index scalar (§4.2).
func indexHalves(index crypto.Fr) (lo, hi crypto.Fr) {
	be := index.Bytes() // canonical big-endian 32-byte form
	var le [32]byte
	for i := range be {
		le[i] = be[31-i]
	}
	setHalf(&lo, le[:16])
	setHalf(&hi, le[16:])
	return lo, hi
}

// setHalf packs a 16-byte half into a scalar, zero-extending it the
// same way both the address and the index halves are packed.
func setHalf(dst *crypto.Fr, half []byte) {
	var padded [32]byte
	copy(padded[16:], half)
	dst.SetBytes(padded[:])
}

func (h *Hasher) addressCommitment(address []byte) crypto.Point {
	key := toAddressKey(address)
	if c, ok := h.addressCache.Get(key); ok {
		return c
	}
	vec := addressVector(address)
	var zero crypto.Fr
	full := []crypto.Fr{vec[0], vec[1], vec[2], zero, zero}
	c := h.crypto.Commit(full)
	h.addressCache.Add(key, c)
	return c
}

// ComputeStem returns the 31-byte stem for (address, index).
func (h *Hasher) ComputeStem(address []byte, index crypto.Fr) [Size]byte {
	addrKey := toAddressKey(address)
	cacheKey := stemCacheKey{addr: addrKey, index: index}
	if s, ok := h.stemCache.Get(cacheKey); ok {
		return s
	}

	addrComm := h.addressCommitment(address)
	lo, hi := indexHalves(index)

	var zero crypto.Fr
	updated, err := h.crypto.UpdateSparse(addrComm, []byte{3, 4}, []crypto.Fr{zero, zero}, []crypto.Fr{lo, hi})
	if err != nil {
		// Indices/scalars are always length-2 by construction;
		// this can only happen if the crypto backend itself fails.
		panic(err)
	}

	scalar := crypto.GroupToField(&updated)
	var out [Size]byte
	b := scalar.Bytes()
	copy(out[:], b[:Size])

	h.stemCache.Add(cacheKey, out)
	return out
}

// ManyStems computes stems for a batch of indices sharing one address,
// amortising the group-to-field map across the whole set in one call
// (§4.2).
func (h *Hasher) ManyStems(address []byte, indices []crypto.Fr) map[crypto.Fr][Size]byte {
	result := make(map[crypto.Fr][Size]byte, len(indices))

	addrKey := toAddressKey(address)
	var missing []crypto.Fr
	var missingCommitments []crypto.Point
	for _, idx := range indices {
		if _, ok := result[idx]; ok {
			continue
		}
		if s, ok := h.stemCache.Get(stemCacheKey{addr: addrKey, index: idx}); ok {
			result[idx] = s
			continue
		}
		missing = append(missing, idx)
	}
	if len(missing) == 0 {
		return result
	}

	addrComm := h.addressCommitment(address)
	var zero crypto.Fr
	for _, idx := range missing {
		lo, hi := indexHalves(idx)
		updated, err := h.crypto.UpdateSparse(addrComm, []byte{3, 4}, []crypto.Fr{zero, zero}, []crypto.Fr{lo, hi})
		if err != nil {
			panic(err)
		}
		missingCommitments = append(missingCommitments, updated)
	}

	ptrs := make([]*crypto.Point, len(missingCommitments))
	for i := range missingCommitments {
		ptrs[i] = &missingCommitments[i]
	}
	scalars := crypto.GroupToFieldMany(ptrs)

	for i, idx := range missing {
		var out [Size]byte
		b := scalars[i].Bytes()
		copy(out[:], b[:Size])
		result[idx] = out
		h.stemCache.Add(stemCacheKey{addr: addrKey, index: idx}, out)
	}
	return result
}
