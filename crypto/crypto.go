// Package crypto wraps the Bandersnatch/IPA curve library behind the
// small set of operations the trie engine needs: vector commitment,
// sparse incremental update, and the group-to-field map (single and
// batched). Every other package in this module talks to the curve only
// through this package.
package crypto

import (
	"github.com/crate-crypto/go-ipa/bandersnatch/fr"
	"github.com/crate-crypto/go-ipa/banderwagon"
)

type (
	Fr    = fr.Element
	Point = banderwagon.Element
)

const (
	SerializedPointUncompressedSize = 64

	// NodeWidth is the branching factor of every Internal and Stem
	// node: 256 children, indexed by one byte of the key.
	NodeWidth = 256
)

// FromBytes decodes a big-endian scalar (the trie's canonical order for
// things like index values before they are reversed per §4.2).
func FromBytes(fr *Fr, data []byte) {
	var aligned [32]byte
	copy(aligned[32-len(data):], data)
	fr.SetBytes(aligned[:])
}

// Equal reports whether two commitments are the curve-equal point, not
// merely byte-identical representations.
func Equal(a, b *Point) bool {
	return a.Equal(b)
}

// Identity returns the curve's neutral element, properly initialized
// rather than relying on a Point's bare zero value.
func Identity() Point {
	var p Point
	p.SetIdentity()
	return p
}
