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

// Node is the capability contract every variant of the tree satisfies:
// Internal, Stem, Leaf, NullBranch, NullLeaf, and the lazily-loaded
// Stored placeholder. Structural mutation happens through accept, which
// dispatches to the variant-specific visit method of v.
type Node interface {
	loc() Location
	isDirty() bool
	isPersisted() bool
	getHash() (Fr, bool)
	getCommitment() (Point, bool)
	getChildren() []Node
	getValue() ([]byte, bool)
	markDirty()
	markClean()
	markPersisted()
	replaceLocation(loc Location) Node
	accept(v visitor, path Location) (Node, error)
}

// internalNode is a 256-child container indexed by one byte of the key,
// addressed by a 0..30-byte location (§3.2).
type internalNode struct {
	location Location
	children [NodeWidth]Node

	hash       *Fr
	commitment *Point
	previous   *Fr // hash prior to the last mutation cycle; nil before the first commit

	dirty     bool
	persisted bool
}

// newInternalNode builds an Internal with 256 NullBranch children (§3.3
// invariant 2).
func newInternalNode(location Location) *internalNode {
	n := &internalNode{location: location, dirty: true}
	for i := range n.children {
		n.children[i] = nullBranch
	}
	return n
}

func (n *internalNode) loc() Location         { return n.location }
func (n *internalNode) isDirty() bool         { return n.dirty }
func (n *internalNode) isPersisted() bool     { return n.persisted }
func (n *internalNode) getValue() ([]byte, bool) { return nil, false }

func (n *internalNode) getHash() (Fr, bool) {
	if n.dirty || n.hash == nil {
		var zero Fr
		return zero, false
	}
	return *n.hash, true
}

func (n *internalNode) getCommitment() (Point, bool) {
	if n.dirty || n.commitment == nil {
		var zero Point
		return zero, false
	}
	return *n.commitment, true
}

func (n *internalNode) getChildren() []Node {
	return n.children[:]
}

func (n *internalNode) markDirty() {
	n.dirty = true
	n.persisted = false
}

func (n *internalNode) markClean() { n.dirty = false }
func (n *internalNode) markPersisted() {
	if !n.dirty {
		n.persisted = true
	}
}

// replaceLocation returns a shallow copy of n at a new location; the
// children are shared with n and keep their own locations.
func (n *internalNode) replaceLocation(loc Location) Node {
	clone := *n
	clone.location = loc
	return &clone
}

func (n *internalNode) accept(v visitor, path Location) (Node, error) {
	return v.visitInternal(n, path)
}

// replaceHash installs a freshly computed (hash, commitment) pair,
// as produced by the non-batched hash pass or a batch flush (§4.6).
func (n *internalNode) replaceHash(hash Fr, commitment Point) {
	h, c := hash, commitment
	n.hash = &h
	n.commitment = &c
	n.dirty = false
}

// snapshotPrevious records the hash as of the end of the current
// mutation cycle, for use as the "old" side of the next sparse update
// (§3.3 invariant 7).
func (n *internalNode) snapshotPrevious() {
	if n.hash == nil {
		return
	}
	h := *n.hash
	n.previous = &h
}

// previousHash returns the hash to treat as "old" in a sparse delta: the
// snapshot from the last commit, or zero if this child never had one
// (freshly created).
func (n *internalNode) previousHash() Fr {
	if n.previous == nil {
		var zero Fr
		return zero
	}
	return *n.previous
}

// stemNode is a 256-child container indexed by the 32nd byte of a key,
// addressed by a 31-byte stem (§3.2).
type stemNode struct {
	location Location // path consumed so far; shorter than len(stem) until flattened onto it
	stem     [StemSize]byte
	children [NodeWidth]Node // leaves, indexed by key[31]

	leftCommitment, rightCommitment *Point
	leftHash, rightHash             *Fr
	commitment                      *Point
	hash                            *Fr
	previous                        *Fr

	dirty     bool
	persisted bool
}

// newStemNode builds a Stem with 256 NullLeaf children (§3.3 invariant
// 2).
func newStemNode(location Location, stem [StemSize]byte) *stemNode {
	n := &stemNode{location: location, stem: stem, dirty: true}
	for i := range n.children {
		n.children[i] = &nullLeafNode{}
	}
	return n
}

func (n *stemNode) loc() Location            { return n.location }
func (n *stemNode) isDirty() bool            { return n.dirty }
func (n *stemNode) isPersisted() bool        { return n.persisted }
func (n *stemNode) getValue() ([]byte, bool) { return nil, false }

func (n *stemNode) getHash() (Fr, bool) {
	if n.dirty || n.hash == nil {
		var zero Fr
		return zero, false
	}
	return *n.hash, true
}

func (n *stemNode) getCommitment() (Point, bool) {
	if n.dirty || n.commitment == nil {
		var zero Point
		return zero, false
	}
	return *n.commitment, true
}

func (n *stemNode) getChildren() []Node { return n.children[:] }

func (n *stemNode) markDirty() {
	n.dirty = true
	n.persisted = false
}
func (n *stemNode) markClean() { n.dirty = false }
func (n *stemNode) markPersisted() {
	if !n.dirty {
		n.persisted = true
	}
}

// replaceLocation shortens or extends the Stem's own location. The
// children are leaves located by their full key, which does not depend
// on the Stem's location, so they are not rebuilt.
func (n *stemNode) replaceLocation(loc Location) Node {
	clone := *n
	clone.location = loc
	return &clone
}

func (n *stemNode) accept(v visitor, path Location) (Node, error) {
	return v.visitStem(n, path)
}

func (n *stemNode) replaceHash(hash Fr, commitment Point, leftHash, rightHash Fr, leftCommitment, rightCommitment Point) {
	h, c := hash, commitment
	lh, rh := leftHash, rightHash
	lc, rc := leftCommitment, rightCommitment
	n.hash = &h
	n.commitment = &c
	n.leftHash = &lh
	n.rightHash = &rh
	n.leftCommitment = &lc
	n.rightCommitment = &rc
	n.dirty = false
}

func (n *stemNode) snapshotPrevious() {
	if n.hash == nil {
		return
	}
	h := *n.hash
	n.previous = &h
}

func (n *stemNode) previousHash() Fr {
	if n.previous == nil {
		var zero Fr
		return zero
	}
	return *n.previous
}

// leafNode holds a 32-byte value at a specific full key (§3.2).
type leafNode struct {
	location Location // always the full 32-byte key
	value    []byte
	previous []byte // set when overwriting a persisted value

	dirty     bool
	persisted bool
}

func newLeafNode(key Location, value []byte) *leafNode {
	return &leafNode{location: key, value: value, dirty: true}
}

func (n *leafNode) loc() Location     { return n.location }
func (n *leafNode) isDirty() bool     { return n.dirty }
func (n *leafNode) isPersisted() bool { return n.persisted }

func (n *leafNode) getValue() ([]byte, bool) { return n.value, true }

func (n *leafNode) getHash() (Fr, bool) {
	var zero Fr
	return zero, false
}

func (n *leafNode) getCommitment() (Point, bool) {
	var zero Point
	return zero, false
}

func (n *leafNode) getChildren() []Node { return nil }

func (n *leafNode) markDirty() {
	n.dirty = true
	n.persisted = false
}
func (n *leafNode) markClean() { n.dirty = false }
func (n *leafNode) markPersisted() {
	if !n.dirty {
		n.persisted = true
	}
}

func (n *leafNode) replaceLocation(loc Location) Node {
	clone := *n
	clone.location = loc
	return &clone
}

func (n *leafNode) accept(v visitor, path Location) (Node, error) {
	return v.visitLeaf(n, path)
}

// nullBranchNode is the absence of a branch child: a stateless
// singleton (§3.2).
type nullBranchNode struct{}

var nullBranch = &nullBranchNode{}

func (*nullBranchNode) loc() Location                  { return nil }
func (*nullBranchNode) isDirty() bool                  { return false }
func (*nullBranchNode) isPersisted() bool              { return true }
func (*nullBranchNode) getValue() ([]byte, bool)       { return nil, false }
func (*nullBranchNode) getChildren() []Node            { return nil }
func (*nullBranchNode) markDirty()                     {}
func (*nullBranchNode) markClean()                     {}
func (*nullBranchNode) markPersisted()                 {}
func (*nullBranchNode) replaceLocation(Location) Node  { return nullBranch }

func (*nullBranchNode) getHash() (Fr, bool) {
	var zero Fr
	return zero, true // NullBranch.hash = 0, always present (§4.6 Phase A')
}

func (*nullBranchNode) getCommitment() (Point, bool) {
	var zero Point
	return zero, false
}

func (n *nullBranchNode) accept(v visitor, path Location) (Node, error) {
	return v.visitNullBranch(path)
}

// nullLeafNode is the absence of a leaf under a stem, optionally
// carrying the previously-removed value so the next write has a proper
// delta (§3.2, §3.4).
type nullLeafNode struct {
	previous []byte
}

func (n *nullLeafNode) loc() Location            { return nil }
func (n *nullLeafNode) isDirty() bool            { return false }
func (n *nullLeafNode) isPersisted() bool        { return true }
func (n *nullLeafNode) getValue() ([]byte, bool) { return nil, false }
func (n *nullLeafNode) getChildren() []Node      { return nil }
func (n *nullLeafNode) markDirty()               {}
func (n *nullLeafNode) markClean()               {}
func (n *nullLeafNode) markPersisted()           {}

func (n *nullLeafNode) replaceLocation(Location) Node { return n }

func (n *nullLeafNode) getHash() (Fr, bool) {
	var zero Fr
	return zero, false
}

func (n *nullLeafNode) getCommitment() (Point, bool) {
	var zero Point
	return zero, false
}

func (n *nullLeafNode) accept(v visitor, path Location) (Node, error) {
	return v.visitNullLeaf(n, path)
}

// storedNode is the lazy-loaded placeholder: a location, an optional
// cached hash, and a factory handle. The first visit through accept
// materialises the real variant via the factory and delegates to it
// (§3.2, §3.4, §4.8).
type storedNode struct {
	location Location
	hash     *Fr
	factory  NodeFactory
}

func newStoredNode(location Location, hash *Fr, factory NodeFactory) *storedNode {
	return &storedNode{location: location, hash: hash, factory: factory}
}

func (n *storedNode) loc() Location     { return n.location }
func (n *storedNode) isDirty() bool     { return false }
func (n *storedNode) isPersisted() bool { return true }

func (n *storedNode) getValue() ([]byte, bool) { return nil, false }

func (n *storedNode) getHash() (Fr, bool) {
	if n.hash == nil {
		var zero Fr
		return zero, false
	}
	return *n.hash, true
}

func (n *storedNode) getCommitment() (Point, bool) {
	var zero Point
	return zero, false
}

func (n *storedNode) getChildren() []Node { return nil }

func (n *storedNode) markDirty()     {}
func (n *storedNode) markClean()     {}
func (n *storedNode) markPersisted() {}

func (n *storedNode) replaceLocation(loc Location) Node {
	clone := *n
	clone.location = loc
	return &clone
}

// resolve materialises the concrete node this placeholder stands for.
func (n *storedNode) resolve() (Node, error) {
	resolved, err := n.factory.retrieve(n.location, n.hash)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		return nil, &MissingNodeError{Location: n.location}
	}
	return resolved, nil
}

func (n *storedNode) accept(v visitor, path Location) (Node, error) {
	resolved, err := n.resolve()
	if err != nil {
		return nil, err
	}
	return resolved.accept(v, path)
}
