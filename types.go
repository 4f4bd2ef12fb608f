// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

package verkle

import "github.com/verkle-labs/trie/crypto"

// Fr and Point are re-exported from the crypto package so that callers
// of this package never need to import the curve library directly.
type (
	Fr    = crypto.Fr
	Point = crypto.Point
)

const (
	// NodeWidth is the branching factor of Internal and Stem nodes.
	NodeWidth = crypto.NodeWidth

	// StemSize is the length, in bytes, of a stem: the key minus its
	// trailing one-byte leaf index.
	StemSize = 31

	// KeySize is the length, in bytes, of a full trie key.
	KeySize = 32

	// SerializedPointUncompressedSize is the byte length of a Point's
	// uncompressed encoding, re-exported for the persistence layer
	// (encoding.go).
	SerializedPointUncompressedSize = crypto.SerializedPointUncompressedSize
)

// Location addresses a node in the tree: the empty slice for the root,
// or the path of child indices taken to reach it (one byte per level).
type Location []byte

func (l Location) equal(other Location) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}
