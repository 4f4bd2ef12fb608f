package verkle

// leafPresentFlag marks a 16-byte value half as present when packed
// into its scalar (§4.4): byte 16 of the scalar, right after the 16
// value bytes, set to 1.
const leafPresentFlag = 1

// splitLeafValue packs a (up to) 32-byte leaf value into the two
// scalars used in a Stem's left/right sub-commitment vector: low holds
// the first 16 bytes plus the presence flag, high holds the last 16
// bytes. A leaf slot with no value (NullLeaf) contributes an all-zero
// pair instead (§4.4).
func splitLeafValue(v []byte, present bool) (low, high Fr) {
	if !present {
		return low, high
	}

	var lowBytes, highBytes [32]byte
	n := len(v)
	if n > 32 {
		n = 32
	}
	if n > 16 {
		copy(lowBytes[:16], v[:16])
		copy(highBytes[:16], v[16:n])
	} else {
		copy(lowBytes[:16], v[:n])
	}
	lowBytes[16] = leafPresentFlag

	low.SetBytesLE(lowBytes[:])
	high.SetBytesLE(highBytes[:])
	return low, high
}
