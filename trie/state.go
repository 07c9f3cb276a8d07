package trie

// State is a trie's full mutable position: the root it started from
// (BaseRoot), the root it currently has after some sequence of
// Put/Remove calls (CurrentRoot), and the pending node diff accumulated
// along the way. Either root is nil for the empty trie. State values are
// immutable — every operation returns a new State rather than mutating
// the receiver, so a caller can always fall back to an earlier state by
// simply keeping the old value around.
type State struct {
	CurrentRoot *Hash
	BaseRoot    *Hash
	Diff        *Diff
}

// NewState returns the state of an empty trie with no pending diff.
func NewState() State {
	return State{Diff: NewDiff()}
}

// Rebase combines this state's diff with other's, provided both share the
// same BaseRoot — e.g. two speculative branches of work built on the same
// committed root. On mismatch it fails with ErrDifferentBase rather than
// guessing at a merge.
func (s State) Rebase(other State) (State, error) {
	if !sameRoot(s.BaseRoot, other.BaseRoot) {
		return State{}, ErrDifferentBase
	}
	return State{
		CurrentRoot: s.CurrentRoot,
		BaseRoot:    other.CurrentRoot,
		Diff:        s.Diff.Merge(other.Diff),
	}, nil
}

// Commit returns a new State that treats CurrentRoot as the base for
// further work, useful once a caller has persisted the diff into a
// NodeStore and no longer needs to track it as pending.
func (s State) Commit() State {
	return State{CurrentRoot: s.CurrentRoot, BaseRoot: s.CurrentRoot, Diff: NewDiff()}
}

func sameRoot(a, b *Hash) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
