package trie

import "github.com/sigilaris/sigil/prim"

// Entry is a single (key, value) pair surfaced by StreamFrom.
type Entry struct {
	Key   []byte
	Value []byte
}

// StreamFrom returns every entry whose key starts with prefix, in
// nibble-lexicographic key order. The result is materialized eagerly: the
// trie has no notion of a paused cursor, so each call produces a finite,
// non-restartable snapshot rather than a resumable iterator.
func StreamFrom(state State, store NodeStore, prefix []byte) ([]Entry, error) {
	if state.CurrentRoot == nil {
		return nil, nil
	}
	var out []Entry
	err := streamNode(*state.CurrentRoot, prim.NibblesFromBytes(prefix), prim.Nibbles{}, state.Diff, store, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// streamNode descends from h looking for the subtree rooted at the point
// where search is fully consumed, then walks that subtree in full. path
// accumulates the nibbles consumed so far, not including node.Prefix.
func streamNode(h Hash, search prim.Nibbles, path prim.Nibbles, diff *Diff, store NodeStore, out *[]Entry) error {
	node, err := fetchOverlay(h, diff, store)
	if err != nil {
		return err
	}

	cp := node.Prefix.CommonPrefixLen(search)
	switch {
	case cp == search.Len():
		// The search prefix is fully satisfied by or within this node's
		// own prefix: every entry in this subtree qualifies.
		return walkSubtree(node, path, diff, store, out)
	case cp == node.Prefix.Len():
		// node.Prefix is consumed but more of search remains: descend.
		nb := search.At(cp)
		if !node.hasChild(nb) || node.Kind == KindLeaf {
			return nil
		}
		child := node.Children[nb]
		nextPath := path.Append(node.Prefix).Append(prim.NibblesFromSlice([]byte{nb}))
		return streamNode(child, search.Slice(cp+1, search.Len()), nextPath, diff, store, out)
	default:
		// Prefixes diverge before either is consumed: no match here.
		return nil
	}
}

// walkSubtree emits every entry under node (whose incoming path, not
// including node.Prefix, is path) in ascending nibble order.
func walkSubtree(node Node, path prim.Nibbles, diff *Diff, store NodeStore, out *[]Entry) error {
	full := path.Append(node.Prefix)
	if node.Kind == KindLeaf || node.Kind == KindBranchWithData {
		*out = append(*out, Entry{Key: nibblesToBytes(full), Value: node.Value})
	}
	for nb := byte(0); nb < 16; nb++ {
		if !node.hasChild(nb) {
			continue
		}
		child, err := fetchOverlay(node.Children[nb], diff, store)
		if err != nil {
			return err
		}
		childPath := full.Append(prim.NibblesFromSlice([]byte{nb}))
		if err := walkSubtree(child, childPath, diff, store, out); err != nil {
			return err
		}
	}
	return nil
}

// nibblesToBytes repacks a full (even-length) nibble stream back into
// bytes; every key StreamFrom reconstructs originated from
// prim.NibblesFromBytes, so the length is always even.
func nibblesToBytes(n prim.Nibbles) []byte {
	raw := n.Raw()
	out := make([]byte, len(raw)/2)
	for i := range out {
		out[i] = raw[2*i]<<4 | raw[2*i+1]
	}
	return out
}
