package stem

import (
	"testing"

	"github.com/verkle-labs/trie/crypto"
)

func newTestHasher(t *testing.T, cfg Config) *Hasher {
	t.Helper()
	c, err := crypto.NewConfig()
	if err != nil {
		t.Fatalf("crypto.NewConfig: %s", err)
	}
	return NewHasher(c, cfg)
}

var testAddress = []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x00, 0x11, 0x22, 0x33}

func TestComputeStemDeterministic(t *testing.T) {
	h := newTestHasher(t, Config{})
	var idx crypto.Fr
	idx.SetUint64(7)

	s1 := h.ComputeStem(testAddress, idx)
	s2 := h.ComputeStem(testAddress, idx)
	if s1 != s2 {
		t.Fatalf("ComputeStem is not deterministic: %x != %x", s1, s2)
	}
}

func TestComputeStemVariesWithIndex(t *testing.T) {
	h := newTestHasher(t, Config{})
	var idx0, idx1 crypto.Fr
	idx1.SetUint64(1)

	s0 := h.ComputeStem(testAddress, idx0)
	s1 := h.ComputeStem(testAddress, idx1)
	if s0 == s1 {
		t.Fatalf("ComputeStem produced the same stem for different indices")
	}
}

func TestComputeStemVariesWithAddress(t *testing.T) {
	h := newTestHasher(t, Config{})
	var zero crypto.Fr

	s0 := h.ComputeStem(testAddress, zero)
	other := append([]byte{}, testAddress...)
	other[0] ^= 0xff
	s1 := h.ComputeStem(other, zero)
	if s0 == s1 {
		t.Fatalf("ComputeStem produced the same stem for different addresses")
	}
}

func TestManyStemsMatchesComputeStem(t *testing.T) {
	h := newTestHasher(t, Config{})

	var indices []crypto.Fr
	for i := uint64(0); i < 5; i++ {
		var idx crypto.Fr
		idx.SetUint64(i)
		indices = append(indices, idx)
	}

	many := h.ManyStems(testAddress, indices)
	for _, idx := range indices {
		want := h.ComputeStem(testAddress, idx)
		got, ok := many[idx]
		if !ok {
			t.Fatalf("ManyStems missing index %v", idx)
		}
		if got != want {
			t.Fatalf("ManyStems[%v] = %x, want %x (ComputeStem)", idx, got, want)
		}
	}
}

func TestStemCacheHit(t *testing.T) {
	h := newTestHasher(t, Config{StemCacheCapacity: 16})
	var idx crypto.Fr
	idx.SetUint64(3)

	s1 := h.ComputeStem(testAddress, idx)

	key := stemCacheKey{addr: toAddressKey(testAddress), index: idx}
	cached, ok := h.stemCache.Get(key)
	if !ok {
		t.Fatalf("expected the stem to be cached after ComputeStem")
	}
	if cached != s1 {
		t.Fatalf("cached stem %x does not match computed stem %x", cached, s1)
	}
}

func TestNoopCacheNeverHits(t *testing.T) {
	var c Cache[int, int] = noopCache[int, int]{}
	c.Add(1, 2)
	if _, ok := c.Get(1); ok {
		t.Fatalf("noopCache.Get unexpectedly hit")
	}
}

func TestPreloadedStemsSeedTheCache(t *testing.T) {
	var idx crypto.Fr
	idx.SetUint64(9)
	idxBytes := idx.Bytes()

	addrKey := toAddressKey(testAddress)
	var seedKey [64]byte
	copy(seedKey[:32], addrKey[:])
	copy(seedKey[32:], idxBytes[:])

	var seedValue [Size]byte
	for i := range seedValue {
		seedValue[i] = byte(i)
	}

	h := newTestHasher(t, Config{
		StemCacheCapacity: 16,
		Preloaded:         map[string][]byte{string(seedKey[:]): seedValue[:]},
	})

	got := h.ComputeStem(testAddress, idx)
	if got != seedValue {
		t.Fatalf("ComputeStem returned %x, want the preloaded value %x", got, seedValue)
	}
}
