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

// Trie is the contract both facades implement: get/put/remove over
// 32-byte keys and byte-string values, a root hash, and a commit pass
// (§4.7).
type Trie interface {
	Get(key [KeySize]byte) ([]byte, error)
	Put(key [KeySize]byte, value []byte) ([]byte, error)
	Remove(key [KeySize]byte) ([]byte, error)
	GetRootHash() (Fr, error)
	Commit(updater NodeUpdater) error
}

func validateKey(key [KeySize]byte) error {
	if len(key) != KeySize {
		return &InvalidKeyError{Got: len(key)}
	}
	return nil
}

// SimpleTrie hashes eagerly: every GetRootHash/Commit call re-runs the
// non-batched hashing pass over whatever is currently dirty (§4.7).
type SimpleTrie struct {
	root    Node
	crypto  *cryptoOps
	factory NodeFactory
}

// NewSimpleTrie builds an empty SimpleTrie, or one rooted at an
// existing persisted location when factory is non-nil and root is
// supplied.
func NewSimpleTrie(cfg *Config, root Node) *SimpleTrie {
	if root == nil {
		root = newInternalNode(Location{})
	}
	return &SimpleTrie{root: root, crypto: cfg.ops(), factory: cfg.factory}
}

// NewSimpleTrieFromStorage reloads a trie rooted at the empty location
// through factory, lazily: the returned root is a Stored placeholder
// until first accessed.
func NewSimpleTrieFromStorage(cfg *Config, factory NodeFactory) *SimpleTrie {
	root := newStoredNode(Location{}, nil, factory)
	return &SimpleTrie{root: root, crypto: cfg.ops(), factory: factory}
}

func (t *SimpleTrie) Get(key [KeySize]byte) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	g := &getVisitor{key: key[:], factory: t.factory}
	if _, err := t.root.accept(g, Location{}); err != nil {
		return nil, err
	}
	if !g.found {
		return nil, nil
	}
	return g.value, nil
}

func (t *SimpleTrie) Put(key [KeySize]byte, value []byte) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	p := &putVisitor{key: key[:], value: value, factory: t.factory}
	newRoot, err := t.root.accept(p, Location{})
	if err != nil {
		return nil, err
	}
	t.root = newRoot
	if !p.hadPrev {
		return nil, nil
	}
	return p.previous, nil
}

func (t *SimpleTrie) Remove(key [KeySize]byte) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	r := &removeVisitor{key: key[:]}
	newRoot, err := t.root.accept(r, Location{})
	if err != nil {
		return nil, err
	}
	t.root = newRoot
	if !r.removed {
		return nil, nil
	}
	return r.previous, nil
}

func (t *SimpleTrie) GetRootHash() (Fr, error) {
	newRoot, err := hashTree(t.root, true, t.crypto)
	if err != nil {
		var zero Fr
		return zero, err
	}
	t.root = newRoot
	h, ok := newRoot.getHash()
	if !ok {
		var zero Fr
		return zero, nil // empty trie: root is NullBranch/Stored-empty
	}
	return h, nil
}

func (t *SimpleTrie) Commit(updater NodeUpdater) error {
	if _, err := t.GetRootHash(); err != nil {
		return err
	}
	return commitTree(t.root, Location{}, updater)
}

// BatchedTrie defers hashing to the batch processor: puts/removes
// enrol touched nodes, and GetRootHash/Commit trigger the level-
// synchronous flush of §4.6.
type BatchedTrie struct {
	root    Node
	crypto  *cryptoOps
	factory NodeFactory
	batch   *batchProcessor
}

// NewBatchedTrie builds an empty BatchedTrie backed by cfg's batch
// size.
func NewBatchedTrie(cfg *Config, root Node) *BatchedTrie {
	if root == nil {
		root = newInternalNode(Location{})
	}
	ops := cfg.ops()
	return &BatchedTrie{
		root:    root,
		crypto:  ops,
		factory: cfg.factory,
		batch:   newBatchProcessor(ops, cfg.maxBatchSize),
	}
}

// NewBatchedTrieFromStorage reloads a trie rooted at the empty location
// through factory, lazily.
func NewBatchedTrieFromStorage(cfg *Config, factory NodeFactory) *BatchedTrie {
	root := newStoredNode(Location{}, nil, factory)
	ops := cfg.ops()
	return &BatchedTrie{
		root:    root,
		crypto:  ops,
		factory: factory,
		batch:   newBatchProcessor(ops, cfg.maxBatchSize),
	}
}

func (t *BatchedTrie) Get(key [KeySize]byte) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	g := &getVisitor{key: key[:], factory: t.factory}
	if _, err := t.root.accept(g, Location{}); err != nil {
		return nil, err
	}
	if !g.found {
		return nil, nil
	}
	return g.value, nil
}

func (t *BatchedTrie) Put(key [KeySize]byte, value []byte) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	p := &putVisitor{key: key[:], value: value, batch: t.batch, factory: t.factory}
	newRoot, err := t.root.accept(p, Location{})
	if err != nil {
		return nil, err
	}
	t.root = newRoot
	t.batch.enroll(Location{}, t.root)
	if !p.hadPrev {
		return nil, nil
	}
	return p.previous, nil
}

func (t *BatchedTrie) Remove(key [KeySize]byte) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	r := &removeVisitor{key: key[:], batch: t.batch}
	newRoot, err := t.root.accept(r, Location{})
	if err != nil {
		return nil, err
	}
	t.root = newRoot
	t.batch.enroll(Location{}, t.root)
	if !r.removed {
		return nil, nil
	}
	return r.previous, nil
}

func (t *BatchedTrie) GetRootHash() (Fr, error) {
	newRoot, err := t.batch.computeRoot(t.root)
	if err != nil {
		var zero Fr
		return zero, err
	}
	t.root = newRoot
	h, ok := newRoot.getHash()
	if !ok {
		var zero Fr
		return zero, nil
	}
	return h, nil
}

func (t *BatchedTrie) Commit(updater NodeUpdater) error {
	if _, err := t.GetRootHash(); err != nil {
		return err
	}
	return commitTree(t.root, Location{}, updater)
}
