package verkle

import "sort"

// defaultMaxFlushBatch bounds the peak size of a single flush, mirroring
// Config.maxBatchSize (§4.6).
const defaultMaxFlushBatch = DefaultMaxBatchSize

// batchEntry is one node enrolled since the last root computation.
type batchEntry struct {
	location Location
	node     Node
}

// batchProcessor accumulates dirty nodes between root computations and
// flushes them level-synchronously, deepest first, rolling up
// commitment updates instead of recomputing whole subtrees (§4.6).
type batchProcessor struct {
	entries      map[string]batchEntry
	crypto       *cryptoOps
	maxFlushSize int
}

func newBatchProcessor(crypto *cryptoOps, maxFlushSize int) *batchProcessor {
	if maxFlushSize <= 0 {
		maxFlushSize = defaultMaxFlushBatch
	}
	return &batchProcessor{
		entries:      make(map[string]batchEntry),
		crypto:       crypto,
		maxFlushSize: maxFlushSize,
	}
}

func (b *batchProcessor) enroll(loc Location, n Node) {
	key := string(loc)
	b.entries[key] = batchEntry{location: append(Location{}, loc...), node: n}
}

func (b *batchProcessor) evict(loc Location) {
	delete(b.entries, string(loc))
}

// computeRoot runs the level-synchronous flush algorithm over every
// enrolled entry and returns the new root, with every touched node
// clean and snapshotted (§4.6, §3.3 invariant 7).
func (b *batchProcessor) computeRoot(root Node) (Node, error) {
	if len(b.entries) == 0 {
		return root, nil
	}

	entries := make([]batchEntry, 0, len(b.entries))
	for _, e := range b.entries {
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].location) > len(entries[j].location)
	})

	currentDepth := -1
	var level []batchEntry

	flush := func() error {
		if len(level) == 0 {
			return nil
		}
		if err := b.flushLevel(level); err != nil {
			return err
		}
		level = level[:0]
		return nil
	}

	for _, e := range entries {
		if len(e.location) == 0 {
			if err := flush(); err != nil {
				return nil, err
			}
			newRoot, err := b.computeRootCommitment(root)
			if err != nil {
				return nil, err
			}
			b.snapshotAll()
			b.entries = make(map[string]batchEntry)
			return newRoot, nil
		}

		if len(e.location) != currentDepth || len(level) > b.maxFlushSize {
			if err := flush(); err != nil {
				return nil, err
			}
			currentDepth = len(e.location)
		}

		if e.node.isDirty() {
			level = append(level, e)
		} else if _, ok := e.node.getHash(); !ok {
			level = append(level, e)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	// No explicit root entry was enrolled (e.g. only leaves changed under
	// an already-known root reference): recompute it anyway, since some
	// descendant changed.
	newRoot, err := b.computeRootCommitment(root)
	if err != nil {
		return nil, err
	}
	b.snapshotAll()
	b.entries = make(map[string]batchEntry)
	return newRoot, nil
}

// flushLevel implements one flush of §4.6 step 4: phases A/A' gather
// sub-commitments and full commitments via sparse updates, a single
// groupToFieldMany amortises the hash of all of them, then Stems build
// their final 4-element commitment in phase B with a second vectorised
// hash call.
func (b *batchProcessor) flushLevel(level []batchEntry) error {
	type stemWork struct {
		node                    *stemNode
		leftCommitment          Point
		rightCommitment         Point
	}
	type internalWork struct {
		node       *internalNode
		commitment Point
	}

	var stems []stemWork
	var internals []internalWork

	for _, e := range level {
		switch n := e.node.(type) {
		case *stemNode:
			left, right, err := b.stemSubCommitments(n)
			if err != nil {
				return err
			}
			stems = append(stems, stemWork{node: n, leftCommitment: left, rightCommitment: right})
		case *internalNode:
			commitment, err := b.internalCommitment(n)
			if err != nil {
				return err
			}
			internals = append(internals, internalWork{node: n, commitment: commitment})
		}
	}

	// Phase A/A': one batched group-to-field call across every Stem's
	// left/right sub-commitment and every Internal's commitment.
	firstPass := make([]Point, 0, 2*len(stems)+len(internals))
	for _, s := range stems {
		firstPass = append(firstPass, s.leftCommitment, s.rightCommitment)
	}
	for _, in := range internals {
		firstPass = append(firstPass, in.commitment)
	}
	firstHashes := b.crypto.groupToFieldMany(firstPass)

	idx := 0
	leftHashes := make([]Fr, len(stems))
	rightHashes := make([]Fr, len(stems))
	for i := range stems {
		leftHashes[i] = firstHashes[idx]
		idx++
		rightHashes[i] = firstHashes[idx]
		idx++
	}
	internalHashes := make([]Fr, len(internals))
	for i := range internals {
		internalHashes[i] = firstHashes[idx]
		idx++
	}

	for i, in := range internals {
		in.node.replaceHash(internalHashes[i], in.commitment)
	}

	if len(stems) == 0 {
		return nil
	}

	// Phase B: build each Stem's 4-element vector and commit; one more
	// batched group-to-field call for the final hashes.
	stemCommitments := make([]Point, len(stems))
	for i, s := range stems {
		var vec [4]Fr
		vec[0].SetUint64(1)
		var stemBytes [32]byte
		copy(stemBytes[:StemSize], s.node.stem[:])
		vec[1].SetBytesLE(stemBytes[:])
		vec[2] = leftHashes[i]
		vec[3] = rightHashes[i]
		stemCommitments[i] = b.crypto.commit(vec[:])
	}
	stemHashes := b.crypto.groupToFieldMany(stemCommitments)

	for i, s := range stems {
		s.node.replaceHash(stemHashes[i], stemCommitments[i], leftHashes[i], rightHashes[i], s.leftCommitment, s.rightCommitment)
	}
	return nil
}

// stemSubCommitments computes the updated left/right sub-commitments
// for a Stem by sparse-updating against its previous values, skipping
// children whose value did not change (§4.6 step 4.i).
func (b *batchProcessor) stemSubCommitments(n *stemNode) (Point, Point, error) {
	var leftIdx, rightIdx []byte
	var leftOld, leftNew, rightOld, rightNew []Fr

	for i := 0; i < NodeWidth; i++ {
		child := n.children[i]
		if _, isStored := child.(*storedNode); isStored {
			continue
		}
		newVal, present := child.getValue()
		newLow, newHigh := splitLeafValue(newVal, present)

		oldLow, oldHigh := previousLeafScalars(child)
		if oldLow == newLow && oldHigh == newHigh {
			continue
		}

		half := 2 * (i % (NodeWidth / 2))
		if i < NodeWidth/2 {
			leftIdx = append(leftIdx, byte(half), byte(half+1))
			leftOld = append(leftOld, oldLow, oldHigh)
			leftNew = append(leftNew, newLow, newHigh)
		} else {
			rightIdx = append(rightIdx, byte(half), byte(half+1))
			rightOld = append(rightOld, oldLow, oldHigh)
			rightNew = append(rightNew, newLow, newHigh)
		}
	}

	left := n.leftCommitment
	right := n.rightCommitment
	var leftC, rightC Point
	var err error
	if left == nil {
		leftC = b.crypto.commit(fullLeftVector(n))
	} else if len(leftIdx) == 0 {
		leftC = *left
	} else {
		leftC, err = b.crypto.updateSparse(*left, leftIdx, leftOld, leftNew)
		if err != nil {
			return Point{}, Point{}, err
		}
	}
	if right == nil {
		rightC = b.crypto.commit(fullRightVector(n))
	} else if len(rightIdx) == 0 {
		rightC = *right
	} else {
		rightC, err = b.crypto.updateSparse(*right, rightIdx, rightOld, rightNew)
		if err != nil {
			return Point{}, Point{}, err
		}
	}
	return leftC, rightC, nil
}

func fullLeftVector(n *stemNode) []Fr {
	var vec [NodeWidth]Fr
	for i := 0; i < NodeWidth/2; i++ {
		v, present := n.children[i].getValue()
		vec[2*i], vec[2*i+1] = splitLeafValue(v, present)
	}
	return vec[:]
}

func fullRightVector(n *stemNode) []Fr {
	var vec [NodeWidth]Fr
	for i := NodeWidth / 2; i < NodeWidth; i++ {
		v, present := n.children[i].getValue()
		j := i - NodeWidth/2
		vec[2*j], vec[2*j+1] = splitLeafValue(v, present)
	}
	return vec[:]
}

// previousLeafScalars recovers the scalars a leaf slot contributed as
// of the last commit, from its previous-value snapshot (§3.3 invariant
// 7, §3.4).
func previousLeafScalars(child Node) (Fr, Fr) {
	switch c := child.(type) {
	case *leafNode:
		if c.previous == nil && c.persisted {
			return splitLeafValue(c.value, true)
		}
		if c.previous != nil {
			return splitLeafValue(c.previous, true)
		}
		var zero Fr
		return zero, zero
	case *nullLeafNode:
		if c.previous != nil {
			return splitLeafValue(c.previous, true)
		}
		var zero Fr
		return zero, zero
	default:
		var zero Fr
		return zero, zero
	}
}

// internalCommitment computes the updated commitment for an Internal by
// sparse-updating against each child's previous hash (§4.6 step 4.ii).
func (b *batchProcessor) internalCommitment(n *internalNode) (Point, error) {
	if n.commitment == nil {
		var vec [NodeWidth]Fr
		for i, c := range n.children {
			h, _ := c.getHash()
			vec[i] = h
		}
		return b.crypto.commit(vec[:]), nil
	}

	var idx []byte
	var oldScalars, newScalars []Fr
	for i, c := range n.children {
		newHash, _ := c.getHash()
		oldHash := previousChildHash(c)
		if oldHash == newHash {
			continue
		}
		idx = append(idx, byte(i))
		oldScalars = append(oldScalars, oldHash)
		newScalars = append(newScalars, newHash)
	}
	if len(idx) == 0 {
		return *n.commitment, nil
	}
	return b.crypto.updateSparse(*n.commitment, idx, oldScalars, newScalars)
}

// previousChildHash recovers the hash a child contributed as of the
// last commit.
func previousChildHash(child Node) Fr {
	switch c := child.(type) {
	case *internalNode:
		return c.previousHash()
	case *stemNode:
		return c.previousHash()
	default:
		var zero Fr
		return zero
	}
}

// computeRootCommitment computes the root Internal's commitment from
// scratch (its children hashes are already current after the last
// flush) and compresses it for the root hash (§4.4, §4.6 step 3.b).
func (b *batchProcessor) computeRootCommitment(root Node) (Node, error) {
	rootInternal, ok := root.(*internalNode)
	if !ok {
		// Single-stem or empty trie: fall back to the non-batched pass,
		// which handles every other variant directly.
		return hashTree(root, true, b.crypto)
	}

	if isEmptyInternal(rootInternal) {
		var zero Fr
		rootInternal.replaceHash(zero, b.crypto.identity())
		return rootInternal, nil
	}

	var vec [NodeWidth]Fr
	for i, c := range rootInternal.children {
		h, ok := c.getHash()
		if !ok {
			resolved, err := hashTree(c, false, b.crypto)
			if err != nil {
				return nil, err
			}
			rootInternal.children[i] = resolved
			h, _ = resolved.getHash()
		}
		vec[i] = h
	}
	commitment := b.crypto.commit(vec[:])
	hash := b.crypto.compress(commitment)
	rootInternal.replaceHash(hash, commitment)
	return rootInternal, nil
}

// snapshotAll marks every remaining enrolled node clean, persisted, and
// snapshots its previous-state (§3.3 invariant 7). Leaves snapshot their
// value; Stems/Internals snapshot their hash.
func (b *batchProcessor) snapshotAll() {
	for _, e := range b.entries {
		switch n := e.node.(type) {
		case *internalNode:
			n.markClean()
			n.snapshotPrevious()
			n.markPersisted()
		case *stemNode:
			n.markClean()
			n.snapshotPrevious()
			n.markPersisted()
		case *leafNode:
			n.previous = n.value
			n.markClean()
			n.markPersisted()
		}
	}
}
