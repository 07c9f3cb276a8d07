package trie

import "github.com/sigilaris/sigil/prim"

// Get looks key up in state against store, returning the value and true if
// present. A missing key is reported as (nil, false, nil); only trie
// corruption (a hash reachable by the structure but absent from both the
// diff and store) produces a non-nil error.
func Get(state State, store NodeStore, key []byte) ([]byte, bool, error) {
	if state.CurrentRoot == nil {
		return nil, false, nil
	}
	return getNode(*state.CurrentRoot, prim.NibblesFromBytes(key), state.Diff, store)
}

func getNode(h Hash, remaining prim.Nibbles, diff *Diff, store NodeStore) ([]byte, bool, error) {
	node, err := fetchOverlay(h, diff, store)
	if err != nil {
		return nil, false, err
	}

	cp := node.Prefix.CommonPrefixLen(remaining)
	if cp != node.Prefix.Len() {
		return nil, false, nil
	}
	if cp == remaining.Len() {
		switch node.Kind {
		case KindLeaf, KindBranchWithData:
			return node.Value, true, nil
		default:
			return nil, false, nil
		}
	}
	if node.Kind == KindLeaf {
		return nil, false, nil
	}
	nb := remaining.At(cp)
	if !node.hasChild(nb) {
		return nil, false, nil
	}
	child := node.Children[nb]
	return getNode(child, remaining.Slice(cp+1, remaining.Len()), diff, store)
}

// Put inserts or overwrites key's value and returns the resulting state.
// The original state is left untouched; on error it is returned unchanged.
func Put(state State, store NodeStore, key, value []byte) (State, error) {
	diff := state.Diff.Clone()
	remaining := prim.NibblesFromBytes(key)

	h, err := putNode(state.CurrentRoot, remaining, value, diff, store)
	if err != nil {
		return state, err
	}
	return State{CurrentRoot: &h, BaseRoot: state.BaseRoot, Diff: diff}, nil
}

// putNode implements the four-case insertion algorithm: hashOpt == nil
// means "insert fresh into an empty subtree"; otherwise the existing node
// at *hashOpt is split or updated depending on how its prefix relates to
// the still-unconsumed portion of the key.
func putNode(hashOpt *Hash, remaining prim.Nibbles, value []byte, diff *Diff, store NodeStore) (Hash, error) {
	if hashOpt == nil {
		leaf := Node{Kind: KindLeaf, Prefix: remaining, Value: value}
		h := HashNode(leaf)
		diff.Add(h, leaf)
		return h, nil
	}

	node, err := fetchOverlay(*hashOpt, diff, store)
	if err != nil {
		return Hash{}, err
	}

	cp := node.Prefix.CommonPrefixLen(remaining)

	switch {
	case cp == node.Prefix.Len() && cp == remaining.Len():
		// Case (ii): exact match — replace the value here, converting a
		// bare Branch into a BranchWithData if it had none.
		var newNode Node
		switch node.Kind {
		case KindLeaf:
			newNode = Node{Kind: KindLeaf, Prefix: node.Prefix, Value: value}
		default:
			newNode = Node{Kind: KindBranchWithData, Prefix: node.Prefix, Children: node.Children, Present: node.Present, Value: value}
		}
		diff.Remove(*hashOpt, node)
		h := HashNode(newNode)
		diff.Add(h, newNode)
		return h, nil

	case cp == node.Prefix.Len() && cp < remaining.Len():
		// node.Prefix is a proper prefix of remaining: descend.
		if node.Kind == KindLeaf {
			// The leaf's full path ends exactly at this edge with no
			// further branching beneath it; pushing a longer key past
			// it means this position becomes a BranchWithData carrying
			// the leaf's old value, with the new key as its one child.
			nb := remaining.At(cp)
			childPrefix := remaining.Slice(cp+1, remaining.Len())
			childLeaf := Node{Kind: KindLeaf, Prefix: childPrefix, Value: value}
			childHash := HashNode(childLeaf)
			diff.Add(childHash, childLeaf)

			diff.Remove(*hashOpt, node)
			newNode := Node{Kind: KindBranchWithData, Prefix: node.Prefix, Value: node.Value}
			newNode.setChild(nb, childHash)
			h := HashNode(newNode)
			diff.Add(h, newNode)
			return h, nil
		}

		nb := remaining.At(cp)
		after := remaining.Slice(cp+1, remaining.Len())
		var childPtr *Hash
		if node.hasChild(nb) {
			ch := node.Children[nb]
			childPtr = &ch
		}
		newChildHash, err := putNode(childPtr, after, value, diff, store)
		if err != nil {
			return Hash{}, err
		}

		diff.Remove(*hashOpt, node)
		newNode := node
		newNode.setChild(nb, newChildHash)
		h := HashNode(newNode)
		diff.Add(h, newNode)
		return h, nil

	case cp == remaining.Len() && cp < node.Prefix.Len():
		// Case (iii): remaining is a proper prefix of node.Prefix — push
		// the existing node down under a new BranchWithData holding the
		// new value at this shorter position.
		nb := node.Prefix.At(cp)
		childPrefix := node.Prefix.Slice(cp+1, node.Prefix.Len())
		childNode := node.withPrefix(childPrefix)
		childHash := HashNode(childNode)
		diff.Remove(*hashOpt, node)
		diff.Add(childHash, childNode)

		newNode := Node{Kind: KindBranchWithData, Prefix: remaining, Value: value}
		newNode.setChild(nb, childHash)
		h := HashNode(newNode)
		diff.Add(h, newNode)
		return h, nil

	default:
		// Case (iv): the paths diverge at nibble cp — create a fresh
		// Branch with no value of its own, holding both as children.
		commonPrefix := remaining.Slice(0, cp)

		aNb := remaining.At(cp)
		aPrefix := remaining.Slice(cp+1, remaining.Len())
		aLeaf := Node{Kind: KindLeaf, Prefix: aPrefix, Value: value}
		aHash := HashNode(aLeaf)
		diff.Add(aHash, aLeaf)

		bNb := node.Prefix.At(cp)
		bPrefix := node.Prefix.Slice(cp+1, node.Prefix.Len())
		bNode := node.withPrefix(bPrefix)
		bHash := HashNode(bNode)
		diff.Remove(*hashOpt, node)
		diff.Add(bHash, bNode)

		newNode := Node{Kind: KindBranch, Prefix: commonPrefix}
		newNode.setChild(aNb, aHash)
		newNode.setChild(bNb, bHash)
		h := HashNode(newNode)
		diff.Add(h, newNode)
		return h, nil
	}
}

// Remove deletes key's value and returns the resulting state. If key is
// absent, the original state is returned completely unchanged (no diff
// entries are touched), matching the "absence leaves the state as-is"
// requirement.
func Remove(state State, store NodeStore, key []byte) (State, error) {
	if state.CurrentRoot == nil {
		return state, nil
	}
	remaining := prim.NibblesFromBytes(key)

	_, found, err := getNode(*state.CurrentRoot, remaining, state.Diff, store)
	if err != nil {
		return state, err
	}
	if !found {
		return state, nil
	}

	diff := state.Diff.Clone()
	newRoot, err := removeNode(*state.CurrentRoot, remaining, diff, store)
	if err != nil {
		return state, err
	}
	return State{CurrentRoot: newRoot, BaseRoot: state.BaseRoot, Diff: diff}, nil
}

// removeNode assumes remaining is known to resolve to a value somewhere
// under h (callers check this with getNode first) and performs the
// corresponding deletion and collapse.
func removeNode(h Hash, remaining prim.Nibbles, diff *Diff, store NodeStore) (*Hash, error) {
	node, err := fetchOverlay(h, diff, store)
	if err != nil {
		return nil, err
	}

	cp := node.Prefix.CommonPrefixLen(remaining)

	if cp == remaining.Len() {
		diff.Remove(h, node)
		switch node.Kind {
		case KindLeaf:
			return nil, nil
		case KindBranchWithData:
			branch := Node{Kind: KindBranch, Prefix: node.Prefix, Children: node.Children, Present: node.Present}
			return finalizeBranch(branch, diff, store)
		default:
			return nil, newTrieError("trie: remove found no value at matched prefix")
		}
	}

	nb := remaining.At(cp)
	childHash := node.Children[nb]
	newChild, err := removeNode(childHash, remaining.Slice(cp+1, remaining.Len()), diff, store)
	if err != nil {
		return nil, err
	}

	diff.Remove(h, node)
	newNode := node
	if newChild == nil {
		newNode.clearChild(nb)
	} else {
		newNode.setChild(nb, *newChild)
	}

	switch newNode.Kind {
	case KindBranchWithData:
		return finalizeBranchWithData(newNode, diff, store)
	default:
		return finalizeBranch(newNode, diff, store)
	}
}

// finalizeBranch re-establishes the invariant that a value-less Branch
// always has at least two children: zero children means the node itself
// vanishes, exactly one means it collapses into that child with a merged
// prefix, and two or more is committed as-is.
func finalizeBranch(node Node, diff *Diff, store NodeStore) (*Hash, error) {
	switch node.childCount() {
	case 0:
		return nil, nil
	case 1:
		nb, childHash := node.soleChild()
		child, err := fetchOverlay(childHash, diff, store)
		if err != nil {
			return nil, err
		}
		diff.Remove(childHash, child)
		merged := child.withPrefix(node.Prefix.Append(prim.NibblesFromSlice([]byte{nb})).Append(child.Prefix))
		h := HashNode(merged)
		diff.Add(h, merged)
		return &h, nil
	default:
		h := HashNode(node)
		diff.Add(h, node)
		return &h, nil
	}
}

// finalizeBranchWithData re-establishes canonical form for a branch that
// still carries a value: zero children collapses it to a plain Leaf (the
// representation a value with no further extension would have had if
// built that way from the start), any other count is committed as-is —
// a BranchWithData legitimately has exactly one child when the value sits
// on a strict prefix of some longer key.
func finalizeBranchWithData(node Node, diff *Diff, store NodeStore) (*Hash, error) {
	if node.childCount() == 0 {
		leaf := Node{Kind: KindLeaf, Prefix: node.Prefix, Value: node.Value}
		h := HashNode(leaf)
		diff.Add(h, leaf)
		return &h, nil
	}
	h := HashNode(node)
	diff.Add(h, node)
	return &h, nil
}
