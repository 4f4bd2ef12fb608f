package verkle

// NodeLoader fetches the encoded bytes for a persisted location, if
// any (§6.2).
type NodeLoader interface {
	Load(location Location) ([]byte, bool, error)
}

// NodeUpdater persists a node's encoding. Fire-and-forget: no
// transactionality is assumed (§4.8, §6.2).
type NodeUpdater interface {
	Store(location Location, hash Fr, encoded []byte) error
}

// NodeFactory decodes a stored node's bytes into its concrete variant,
// recursively wrapping each child reference as a Stored node (§4.8).
type NodeFactory interface {
	retrieve(location Location, hash *Fr) (Node, error)
}

// loaderFactory is the NodeFactory backed by a NodeLoader: it decodes
// the tag byte to pick Internal vs. Stem, and leaves children as Stored
// placeholders (Internal) or concrete Leaf/NullLeaf (Stem, whose
// children are the 256 direct leaves).
type loaderFactory struct {
	loader NodeLoader
}

// NewNodeFactory builds the default NodeFactory over a NodeLoader.
func NewNodeFactory(loader NodeLoader) NodeFactory {
	return &loaderFactory{loader: loader}
}

func (f *loaderFactory) retrieve(location Location, hash *Fr) (Node, error) {
	raw, ok, err := f.loader.Load(location)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if len(raw) == 0 {
		return nullBranch, nil
	}

	switch raw[0] {
	case tagInternalRoot, tagInternalNonRoot:
		return decodeInternal(location, raw, f)
	case tagStem:
		// The extension path is not recoverable from the Stem's own
		// encoding; a caller navigating from the root already knows it
		// from the key it is resolving, and reattaches it below.
		var extension [StemSize]byte
		copy(extension[:], location)
		return decodeStem(location, extension, raw[1:])
	default:
		return nil, &InvariantViolation{Reason: "unrecognised node encoding tag"}
	}
}

// updaterSink adapts a NodeUpdater into the batch/commit pass's output:
// every dirty-or-unpersisted node, post-order, emits (location, hash,
// encoded) then is marked persisted (§4.5.5).
type updaterSink struct {
	updater NodeUpdater
}

func (s *updaterSink) commitNode(loc Location, n Node, isRoot bool) error {
	if n.isPersisted() && !n.isDirty() {
		return nil
	}
	encoded, err := encodeNode(n, isRoot)
	if err != nil {
		return err
	}
	h, _ := n.getHash()
	if err := s.updater.Store(loc, h, encoded); err != nil {
		return err
	}
	n.markClean()
	n.markPersisted()
	return nil
}

// commitTree walks the tree post-order, persisting every dirty or
// not-yet-persisted node (§4.5.5). The hash pass (§4.5.4 or §4.6) must
// already have run.
func commitTree(root Node, loc Location, updater NodeUpdater) error {
	sink := &updaterSink{updater: updater}
	return commitWalk(root, loc, true, sink)
}

func commitWalk(n Node, loc Location, isRoot bool, sink *updaterSink) error {
	switch t := n.(type) {
	case *internalNode:
		for i, c := range t.children {
			if err := commitWalk(c, append(append(Location{}, loc...), byte(i)), false, sink); err != nil {
				return err
			}
		}
		return sink.commitNode(loc, t, isRoot)
	case *stemNode:
		// Leaf children are embedded inline in the Stem's own encoding
		// (§6.1); they are not separately addressable storage entries.
		return sink.commitNode(loc, t, isRoot)
	default:
		return nil
	}
}
