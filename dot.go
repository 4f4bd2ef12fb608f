package verkle

import "fmt"

// toDot renders n and its subtree as Graphviz DOT source, for manual
// inspection. Not part of the Node contract the trie engine itself
// uses.
func toDot(n Node, parent, path string) string {
	switch t := n.(type) {
	case *internalNode:
		me := fmt.Sprintf("internal%s", path)
		h, _ := t.getHash()
		ret := fmt.Sprintf("%s [label=\"I: %x\"]\n", me, h.Bytes())
		if parent != "" {
			ret += fmt.Sprintf("%s -> %s\n", parent, me)
		}
		for i, c := range t.children {
			if _, isNull := c.(*nullBranchNode); isNull {
				continue
			}
			ret += toDot(c, me, fmt.Sprintf("%s%02x", path, i))
		}
		return ret
	case *stemNode:
		me := fmt.Sprintf("stem%s", path)
		h, _ := t.getHash()
		ret := fmt.Sprintf("%s [label=\"S: %x\nstem: %x\"]\n", me, h.Bytes(), t.stem)
		if parent != "" {
			ret += fmt.Sprintf("%s -> %s\n", parent, me)
		}
		for i, c := range t.children {
			leaf, ok := c.(*leafNode)
			if !ok {
				continue
			}
			leafLabel := fmt.Sprintf("leaf%s%02x", path, i)
			ret += fmt.Sprintf("%s [label=\"%x\"]\n%s -> %s\n", leafLabel, leaf.value, me, leafLabel)
		}
		return ret
	default:
		return ""
	}
}
