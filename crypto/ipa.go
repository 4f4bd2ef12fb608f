package crypto

import (
	"github.com/crate-crypto/go-ipa/banderwagon"
	"github.com/crate-crypto/go-ipa/ipa"
)

// Config holds the Pedersen/IPA setup (the structured reference string)
// used for every commitment operation. It is created once and may be
// shared across tries — it holds no mutable per-trie state.
type Config struct {
	conf *ipa.IPAConfig
}

// NewConfig builds (or, if go-ipa ships a precomputed table, loads) the
// Lagrange-basis SRS used for all vector commitments in this module.
func NewConfig() (*Config, error) {
	conf, err := ipa.NewIPASettings()
	if err != nil {
		return nil, wrap("new-ipa-settings", err)
	}
	return &Config{conf: conf}, nil
}

func (c *Config) srs() []Point {
	return c.conf.SRSPrecompPoints.SRS
}

// Commit computes a vector commitment to scalars, zero-padded to
// NodeWidth if shorter.
func (c *Config) Commit(scalars []Fr) Point {
	if len(scalars) == NodeWidth {
		return c.conf.Commit(scalars)
	}
	padded := make([]Fr, NodeWidth)
	copy(padded, scalars)
	return c.conf.Commit(padded)
}

// CommitAsCompressed commits to scalars and returns the compressed
// 32-byte form directly. The trie engine does not call it: it computes
// the root hash as Compress of Commit, which is the same value (§4.4).
func (c *Config) CommitAsCompressed(scalars []Fr) Fr {
	commitment := c.Commit(scalars)
	return Compress(&commitment)
}

// UpdateSparse applies the sparse delta
//
//	newCommitment = prev + Σ G_{indices[k]} · (newScalars[k] − oldScalars[k])
//
// touching only the supplied indices, instead of recomputing the full
// 256-wide commitment.
func (c *Config) UpdateSparse(prev Point, indices []byte, oldScalars, newScalars []Fr) (Point, error) {
	if len(indices) != len(oldScalars) || len(indices) != len(newScalars) {
		return Point{}, wrap("update-sparse", errMismatchedLengths)
	}
	srs := c.srs()
	result := prev
	for k, idx := range indices {
		var delta Fr
		delta.Sub(&newScalars[k], &oldScalars[k])
		if delta.IsZero() {
			continue
		}
		var diff Point
		diff.ScalarMul(&srs[idx], &delta)
		result.Add(&result, &diff)
	}
	return result, nil
}

// Compress serialises a commitment to its compressed 32-byte scalar
// form. Used only for the root hash (§3.3 invariant 6).
func Compress(p *Point) Fr {
	b := p.Bytes()
	var f Fr
	f.SetBytes(b[:])
	return f
}

// GroupToField maps a commitment to its scalar representative; every
// non-root node's hash is this value.
func GroupToField(p *Point) Fr {
	var f Fr
	p.MapToScalarField(&f)
	return f
}

// GroupToFieldMany is the vectorised form of GroupToField, amortising
// the Montgomery batch inversion the underlying library performs across
// the whole input slice. It returns one scalar per input point, in
// order.
func GroupToFieldMany(ps []*Point) []Fr {
	res := make([]Fr, len(ps))
	ptrs := make([]*Fr, len(ps))
	for i := range res {
		ptrs[i] = &res[i]
	}
	banderwagon.MultiMapToScalarField(ptrs, ps)
	return res
}

// PedersenHash is the reference (non-incremental) stem hash: commit to
// the scalar vector and reduce the resulting commitment to a field
// element. The stem hasher does not call it: it sparse-updates a
// commitment to the address part of the vector instead.
func (c *Config) PedersenHash(vector []Fr) Fr {
	commitment := c.Commit(vector)
	return GroupToField(&commitment)
}
