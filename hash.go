package verkle

// hashTree is the non-batched fallback hashing pass (§4.5.4): a
// straightforward post-order recomputation of every dirty node's
// commitment and hash, without the batched engine's sparse-update
// shortcuts. SimpleTrie uses this on every getRootHash/commit.
func hashTree(n Node, root bool, crypto *cryptoOps) (Node, error) {
	switch t := n.(type) {
	case *internalNode:
		if !t.dirty {
			return t, nil
		}
		if root && isEmptyInternal(t) {
			var zero Fr
			t.replaceHash(zero, crypto.identity())
			return t, nil
		}
		var childHashes [NodeWidth]Fr
		for i := range t.children {
			child, err := hashTree(t.children[i], false, crypto)
			if err != nil {
				return nil, err
			}
			t.children[i] = child
			h, _ := child.getHash()
			childHashes[i] = h
		}
		commitment := crypto.commit(childHashes[:])
		var hash Fr
		if root {
			hash = crypto.compress(commitment)
		} else {
			hash = crypto.groupToField(commitment)
		}
		t.replaceHash(hash, commitment)
		return t, nil

	case *stemNode:
		if !t.dirty {
			return t, nil
		}
		var left, right [NodeWidth]Fr
		for i := 0; i < NodeWidth/2; i++ {
			v, present := t.children[i].getValue()
			low, high := splitLeafValue(v, present)
			left[2*i], left[2*i+1] = low, high
		}
		for i := NodeWidth / 2; i < NodeWidth; i++ {
			v, present := t.children[i].getValue()
			low, high := splitLeafValue(v, present)
			j := i - NodeWidth/2
			right[2*j], right[2*j+1] = low, high
		}
		leftCommitment := crypto.commit(left[:])
		rightCommitment := crypto.commit(right[:])
		leftHash := crypto.groupToField(leftCommitment)
		rightHash := crypto.groupToField(rightCommitment)

		var vec [NodeWidth]Fr
		vec[0].SetUint64(1)
		vec[1].SetBytesLE(append(append([]byte{}, t.stem[:]...), make([]byte, 32-StemSize)...))
		vec[2] = leftHash
		vec[3] = rightHash
		commitment := crypto.commit(vec[:4])
		hash := crypto.groupToField(commitment)

		t.replaceHash(hash, commitment, leftHash, rightHash, leftCommitment, rightCommitment)
		return t, nil

	case *storedNode:
		// A Stored child already carries its hash; a Stored root (a trie
		// reloaded from storage) is resolved so its persisted hash is used.
		if !root {
			return t, nil
		}
		resolved, err := t.resolve()
		if err != nil {
			return nil, err
		}
		return hashTree(resolved, true, crypto)

	default:
		return n, nil
	}
}

// isEmptyInternal reports whether every child of n is a NullBranch, the
// case in which the root's hash is defined as the zero scalar rather
// than computed from an all-zero commitment (the reference clients'
// "Empty.Hash() == zeroHash" convention).
func isEmptyInternal(n *internalNode) bool {
	for _, c := range n.children {
		if _, isNull := c.(*nullBranchNode); !isNull {
			return false
		}
	}
	return true
}
