package verkle

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/verkle-labs/trie/crypto"
)

// Tag bytes distinguishing an Internal's two encodings (§6.1).
const (
	tagInternalRoot    = 0x00
	tagInternalNonRoot = 0x01
	tagStem            = 0x02
)

// trimTrailingZeros drops trailing zero bytes from a fixed-size
// encoding; EMPTY_COMMITMENT (the zero point, serialised) is the
// universal default this makes lossless to omit (§6.1).
func trimTrailingZeros(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}

func untrimTo(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	out := make([]byte, size)
	copy(out, b)
	return out
}

// encodeNode renders a node's persisted layout (§6.1). Internal carries
// its commitment, a child bitmap and the present children's hashes; Stem
// carries its commitments, sub-hashes and every child's encoding; Leaf is
// its raw value, trimmed; Null* encode to nothing.
func encodeNode(n Node, isRoot bool) ([]byte, error) {
	switch t := n.(type) {
	case *internalNode:
		return encodeInternal(t, isRoot)
	case *stemNode:
		return encodeStem(t)
	case *leafNode:
		return trimTrailingZeros(t.value), nil
	default:
		return nil, nil
	}
}

// internalRLP frames an Internal's variable-length trimmed commitment
// alongside its fixed-size bitmap and child-hash list; the RLP list
// header gives the decoder the field boundaries the raw concatenation
// in §6.1's prose leaves implicit (see DESIGN.md).
type internalRLP struct {
	RootHash   []byte // empty unless this is the root
	Commitment []byte
	Bitmap     []byte
	Children   []byte
}

func encodeInternal(n *internalNode, isRoot bool) ([]byte, error) {
	commitment, _ := n.getCommitment()
	cb := commitment.Bytes()

	var bitmap [32]byte
	var childBytes []byte
	for i, c := range n.children {
		if _, isNull := c.(*nullBranchNode); isNull {
			continue
		}
		setBit(bitmap[:], i)
		h, _ := c.getHash()
		hb := h.Bytes()
		childBytes = append(childBytes, hb[:]...)
	}

	payload := internalRLP{
		Commitment: trimTrailingZeros(cb[:]),
		Bitmap:     bitmap[:],
		Children:   childBytes,
	}
	tag := byte(tagInternalNonRoot)
	if isRoot {
		tag = tagInternalRoot
		h, _ := n.getHash()
		hb := h.Bytes()
		payload.RootHash = hb[:]
	}

	encoded, err := rlp.EncodeToBytes(&payload)
	if err != nil {
		return nil, err
	}
	return append([]byte{tag}, encoded...), nil
}

// stemRLP is the RLP-style list layout for a Stem (§6.1): location
// size, three commitments, two hashes, then each child's own encoding.
type stemRLP struct {
	LocationSize    uint8
	Commitment      []byte
	LeftCommitment  []byte
	RightCommitment []byte
	LeftHash        []byte
	RightHash       []byte
	Children        [][]byte
}

func encodeStem(n *stemNode) ([]byte, error) {
	commitment, _ := n.getCommitment()
	cb := commitment.Bytes()

	var leftB, rightB [64]byte
	if n.leftCommitment != nil {
		leftB = n.leftCommitment.Bytes()
	}
	if n.rightCommitment != nil {
		rightB = n.rightCommitment.Bytes()
	}
	var leftH, rightH [32]byte
	if n.leftHash != nil {
		leftH = n.leftHash.Bytes()
	}
	if n.rightHash != nil {
		rightH = n.rightHash.Bytes()
	}

	children := make([][]byte, NodeWidth)
	for i, c := range n.children {
		enc, err := encodeNode(c, false)
		if err != nil {
			return nil, err
		}
		children[i] = enc
	}

	payload := stemRLP{
		LocationSize:    uint8(len(n.location)),
		Commitment:      trimTrailingZeros(cb[:]),
		LeftCommitment:  trimTrailingZeros(leftB[:]),
		RightCommitment: trimTrailingZeros(rightB[:]),
		LeftHash:        trimTrailingZeros(leftH[:]),
		RightHash:       trimTrailingZeros(rightH[:]),
		Children:        children,
	}
	encoded, err := rlp.EncodeToBytes(&payload)
	if err != nil {
		return nil, err
	}
	return append([]byte{tagStem}, encoded...), nil
}

// decodeStem reverses encodeStem, restoring the commitments, the hash
// (group-to-field of the commitment) and leaf children as Leaf/NullLeaf
// variants at this Stem's location. The
// extension path beyond location is supplied by the caller (recovered
// from context, e.g. the key that triggered the load), since the
// persisted layout does not repeat it.
func decodeStem(location Location, extension [StemSize]byte, raw []byte) (*stemNode, error) {
	var payload stemRLP
	if err := rlp.DecodeBytes(raw, &payload); err != nil {
		return nil, err
	}

	n := &stemNode{
		location:  location,
		stem:      extension,
		persisted: true,
	}

	var commitment Point
	commitment.SetBytes(untrimTo(payload.Commitment, SerializedPointUncompressedSize))
	n.commitment = &commitment
	h := crypto.GroupToField(&commitment)
	n.hash = &h

	if len(payload.LeftCommitment) > 0 {
		var lc Point
		lc.SetBytes(untrimTo(payload.LeftCommitment, SerializedPointUncompressedSize))
		n.leftCommitment = &lc
	}
	if len(payload.RightCommitment) > 0 {
		var rc Point
		rc.SetBytes(untrimTo(payload.RightCommitment, SerializedPointUncompressedSize))
		n.rightCommitment = &rc
	}
	if len(payload.LeftHash) > 0 {
		var lh Fr
		lh.SetBytes(untrimTo(payload.LeftHash, 32))
		n.leftHash = &lh
	}
	if len(payload.RightHash) > 0 {
		var rh Fr
		rh.SetBytes(untrimTo(payload.RightHash, 32))
		n.rightHash = &rh
	}

	for i, enc := range payload.Children {
		if len(enc) == 0 {
			n.children[i] = &nullLeafNode{}
			continue
		}
		key := append(append(Location{}, extension[:]...), byte(i))
		value := untrimTo(enc, 32)
		leaf := newLeafNode(key, value)
		leaf.dirty = false
		leaf.persisted = true
		n.children[i] = leaf
	}
	return n, nil
}

// decodeInternal reverses encodeInternal, wrapping every present child
// reference as a Stored placeholder at location‖i (§4.8).
func decodeInternal(location Location, raw []byte, factory NodeFactory) (*internalNode, error) {
	if len(raw) < 1 {
		return nil, &InvariantViolation{Reason: "empty internal node encoding"}
	}
	isRoot := raw[0] == tagInternalRoot

	var payload internalRLP
	if err := rlp.DecodeBytes(raw[1:], &payload); err != nil {
		return nil, err
	}

	n := &internalNode{location: location, persisted: true}

	var commitment Point
	commitment.SetBytes(untrimTo(payload.Commitment, SerializedPointUncompressedSize))
	n.commitment = &commitment

	if isRoot {
		var h Fr
		h.SetBytes(untrimTo(payload.RootHash, 32))
		n.hash = &h
	} else {
		h := crypto.GroupToField(&commitment)
		n.hash = &h
	}

	for i := range n.children {
		n.children[i] = nullBranch
	}
	rank := 0
	for i := 0; i < NodeWidth; i++ {
		if !hasBit(payload.Bitmap, i) {
			continue
		}
		off := rank * 32
		rank++
		if off+32 > len(payload.Children) {
			return nil, &InvariantViolation{Reason: "internal node child hash list too short"}
		}
		var h Fr
		h.SetBytes(payload.Children[off : off+32])
		childLoc := append(append(Location{}, location...), byte(i))
		n.children[i] = newStoredNode(childLoc, &h, factory)
	}

	return n, nil
}

func setBit(bitmap []byte, i int) {
	bitmap[i/8] |= 1 << (i % 8)
}

func hasBit(bitmap []byte, i int) bool {
	return bitmap[i/8]&(1<<(i%8)) != 0
}
