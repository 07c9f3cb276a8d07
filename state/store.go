package state

import "github.com/sigilaris/sigil/trie"

// StoreState is the full state threaded through a StoreF computation: the
// trie position, the NodeStore backing it, and the access log accumulated
// so far.
type StoreState struct {
	Trie  trie.State
	Store trie.NodeStore
	Log   *AccessLog
}

// NewStoreState starts a computation against trieState/store with an
// empty access log.
func NewStoreState(trieState trie.State, store trie.NodeStore) StoreState {
	return StoreState{Trie: trieState, Store: store, Log: NewAccessLog()}
}

// StoreF is the store monad: a stateful, fallible computation over
// StoreState. Go has no higher-kinded effect parameter, so the host effect
// F from spec §4.5/§9 is fixed to this synchronous function type; a
// parallel host instead runs independent StoreF computations against
// independent StoreStates and merges the resulting diffs/access logs
// itself via trie.State.Rebase and AccessLog.ConflictsWith.
type StoreF[A any] func(StoreState) (StoreState, A, error)

// Pure lifts a plain value into StoreF without touching state.
func Pure[A any](a A) StoreF[A] {
	return func(s StoreState) (StoreState, A, error) { return s, a, nil }
}

// Raise fails immediately without touching state.
func Raise[A any](err error) StoreF[A] {
	return func(s StoreState) (StoreState, A, error) {
		var zero A
		return s, zero, err
	}
}

// Bind sequences m then f, short-circuiting on m's failure. Map is built
// from it; Sequence threads state itself.
func Bind[A, B any](m StoreF[A], f func(A) StoreF[B]) StoreF[B] {
	return func(s StoreState) (StoreState, B, error) {
		s2, a, err := m(s)
		if err != nil {
			var zero B
			return s2, zero, err
		}
		return f(a)(s2)
	}
}

// Map transforms a StoreF's result without touching state.
func Map[A, B any](m StoreF[A], f func(A) B) StoreF[B] {
	return Bind(m, func(a A) StoreF[B] { return Pure(f(a)) })
}

// Run executes m against an initial state.
func Run[A any](m StoreF[A], s StoreState) (StoreState, A, error) { return m(s) }

// Sequence runs a slice of StoreF[A] in order, collecting their results;
// it fails on the first element that fails, returning the state that
// element returned and running none of the later elements.
func Sequence[A any](ms []StoreF[A]) StoreF[[]A] {
	return func(s StoreState) (StoreState, []A, error) {
		out := make([]A, 0, len(ms))
		cur := s
		for _, m := range ms {
			var a A
			var err error
			cur, a, err = m(cur)
			if err != nil {
				return cur, nil, err
			}
			out = append(out, a)
		}
		return cur, out, nil
	}
}
