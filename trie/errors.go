package trie

import "fmt"

// TrieError reports trie corruption: a node hash that should be reachable
// (per the structure being traversed) is missing from both the pending
// diff and the backing NodeStore. This is distinct from an ordinary
// "key absent" result, which Get/Remove report without an error.
type TrieError struct {
	Msg string
}

func (e *TrieError) Error() string { return e.Msg }

func newTrieError(format string, args ...any) *TrieError {
	return &TrieError{Msg: fmt.Sprintf(format, args...)}
}

// ErrDifferentBase is returned by Rebase when the two states being combined
// do not share a base root.
var ErrDifferentBase = newTrieError("different base")
