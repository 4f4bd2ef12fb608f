package verkle

import "github.com/verkle-labs/trie/crypto"

// cryptoOps adapts the crypto package's Config to the small set of
// operations the node/visitor/batch code calls, using this package's Fr
// and Point aliases (§4.1, §6.3).
type cryptoOps struct {
	cfg *crypto.Config
}

func (c *cryptoOps) commit(scalars []Fr) Point {
	return c.cfg.Commit(scalars)
}

func (c *cryptoOps) commitAsCompressed(scalars []Fr) Fr {
	return c.cfg.CommitAsCompressed(scalars)
}

func (c *cryptoOps) updateSparse(prev Point, indices []byte, oldScalars, newScalars []Fr) (Point, error) {
	updated, err := c.cfg.UpdateSparse(prev, indices, oldScalars, newScalars)
	if err != nil {
		return Point{}, &CryptoError{Underlying: err}
	}
	return updated, nil
}

func (c *cryptoOps) compress(p Point) Fr {
	return crypto.Compress(&p)
}

func (c *cryptoOps) groupToField(p Point) Fr {
	return crypto.GroupToField(&p)
}

// identity returns the curve's neutral element, used as the placeholder
// commitment for a node whose hash is pinned to the zero scalar rather
// than computed (the empty-trie root convention).
func (c *cryptoOps) identity() Point {
	return crypto.Identity()
}

func (c *cryptoOps) groupToFieldMany(ps []Point) []Fr {
	ptrs := make([]*Point, len(ps))
	for i := range ps {
		ptrs[i] = &ps[i]
	}
	return crypto.GroupToFieldMany(ptrs)
}
