package verkle

import (
	"bytes"
	"testing"
)

// buildHashedRoot puts a handful of keys sharing an Internal prefix into
// a fresh SimpleTrie and returns its root, fully hashed, ready to
// encode.
func buildHashedRoot(t *testing.T) (*Config, *internalNode) {
	t.Helper()
	cfg := newTestConfig(t)
	trie := NewSimpleTrie(cfg, nil)

	for _, k := range []struct {
		prefix byte
		tail   byte
		value  byte
	}{
		{0x01, 0x00, 0xaa},
		{0x01, 0x01, 0xbb},
		{0x02, 0x00, 0xcc},
	} {
		key := key(k.prefix)
		key[KeySize-1] = k.tail
		if _, err := trie.Put(key, []byte{k.value, k.value}); err != nil {
			t.Fatalf("Put: %s", err)
		}
	}
	if _, err := trie.GetRootHash(); err != nil {
		t.Fatalf("GetRootHash: %s", err)
	}

	root, ok := trie.root.(*internalNode)
	if !ok {
		t.Fatalf("root is a %T, want *internalNode", trie.root)
	}
	return cfg, root
}

func TestEncodeDecodeInternalRoundTrip(t *testing.T) {
	_, root := buildHashedRoot(t)

	encoded, err := encodeNode(root, true)
	if err != nil {
		t.Fatalf("encodeNode: %s", err)
	}
	if encoded[0] != tagInternalRoot {
		t.Fatalf("tag byte = %d, want tagInternalRoot", encoded[0])
	}

	factory := NewNodeFactory(&memStore{data: make(map[string][]byte)})
	decoded, err := decodeInternal(Location{}, encoded, factory)
	if err != nil {
		t.Fatalf("decodeInternal: %s", err)
	}

	wantHash, ok := root.getHash()
	if !ok {
		t.Fatalf("root has no hash after GetRootHash")
	}
	gotHash, ok := decoded.getHash()
	if !ok {
		t.Fatalf("decoded root has no hash")
	}
	if !wantHash.Equal(&gotHash) {
		t.Fatalf("decoded root hash = %x, want %x", gotHash.Bytes(), wantHash.Bytes())
	}

	wantCommitment, _ := root.getCommitment()
	gotCommitment, _ := decoded.getCommitment()
	if !wantCommitment.Equal(&gotCommitment) {
		t.Fatalf("decoded root commitment does not match")
	}

	for i, c := range root.children {
		_, wantNull := c.(*nullBranchNode)
		_, gotNull := decoded.children[i].(*nullBranchNode)
		if wantNull != gotNull {
			t.Fatalf("child %d presence mismatch: want null=%v, got null=%v", i, wantNull, gotNull)
		}
		if wantNull {
			continue
		}
		wantChildHash, _ := c.getHash()
		gotChildHash, _ := decoded.children[i].getHash()
		if !wantChildHash.Equal(&gotChildHash) {
			t.Fatalf("child %d hash mismatch after decode", i)
		}
	}
}

func TestEncodeDecodeNonRootInternalUsesNonRootTag(t *testing.T) {
	_, root := buildHashedRoot(t)
	encoded, err := encodeNode(root, false)
	if err != nil {
		t.Fatalf("encodeNode: %s", err)
	}
	if encoded[0] != tagInternalNonRoot {
		t.Fatalf("tag byte = %d, want tagInternalNonRoot", encoded[0])
	}
}

func TestEncodeDecodeStemRoundTrip(t *testing.T) {
	_, root := buildHashedRoot(t)

	var stem *stemNode
	var stemLoc byte
	for i, c := range root.children {
		if s, ok := c.(*stemNode); ok {
			stem = s
			stemLoc = byte(i)
			break
		}
	}
	if stem == nil {
		t.Fatalf("no stem child found under the built root")
	}

	encoded, err := encodeNode(stem, false)
	if err != nil {
		t.Fatalf("encodeNode: %s", err)
	}
	if encoded[0] != tagStem {
		t.Fatalf("tag byte = %d, want tagStem", encoded[0])
	}

	loc := Location{stemLoc}
	decoded, err := decodeStem(loc, stem.stem, encoded[1:])
	if err != nil {
		t.Fatalf("decodeStem: %s", err)
	}

	wantHash, _ := stem.getHash()
	gotHash, _ := decoded.getHash()
	if !wantHash.Equal(&gotHash) {
		t.Fatalf("decoded stem hash = %x, want %x", gotHash.Bytes(), wantHash.Bytes())
	}
	if decoded.stem != stem.stem {
		t.Fatalf("decoded stem extension mismatch")
	}

	for i, c := range stem.children {
		wantValue, wantPresent := c.getValue()
		gotValue, gotPresent := decoded.children[i].getValue()
		if wantPresent != gotPresent {
			t.Fatalf("leaf %d presence mismatch: want %v, got %v", i, wantPresent, gotPresent)
		}
		if !wantPresent {
			continue
		}
		wantTrimmed := trimTrailingZeros(wantValue)
		gotTrimmed := trimTrailingZeros(gotValue)
		if !bytes.Equal(wantTrimmed, gotTrimmed) {
			t.Fatalf("leaf %d value mismatch: want %x, got %x", i, wantTrimmed, gotTrimmed)
		}
	}
}

func TestTrimTrailingZerosRoundTripsThroughUntrimTo(t *testing.T) {
	original := make([]byte, 32)
	for i := 0; i < 10; i++ {
		original[i] = byte(i + 1)
	}
	trimmed := trimTrailingZeros(original)
	if len(trimmed) != 10 {
		t.Fatalf("trimTrailingZeros left %d bytes, want 10", len(trimmed))
	}
	restored := untrimTo(trimmed, 32)
	if !bytes.Equal(restored, original) {
		t.Fatalf("untrimTo(trimTrailingZeros(x), 32) != x")
	}
}

func TestSetBitAndHasBitAgree(t *testing.T) {
	var bitmap [32]byte
	for _, i := range []int{0, 7, 8, 64, 255} {
		setBit(bitmap[:], i)
	}
	for i := 0; i < NodeWidth; i++ {
		want := i == 0 || i == 7 || i == 8 || i == 64 || i == 255
		if hasBit(bitmap[:], i) != want {
			t.Fatalf("hasBit(%d) = %v, want %v", i, !want, want)
		}
	}
}
