package state

import "fmt"

// StateError reports a table-layer invariant violation: a non-prefix-free
// mount, or a decode failure reading back a value this package itself
// wrote (which would indicate a codec mismatch between mount time and
// read time).
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

func newStateError(format string, args ...any) *StateError {
	return &StateError{Msg: fmt.Sprintf(format, args...)}
}
