package accounts

import "fmt"

// AccountsError reports a module-specific authorization or structural
// failure that isn't itself a cryptographic failure: an unknown account,
// a nonce mismatch, an unauthorized signer, a non-empty group refusing to
// disband. Key-lookup/expiry failures use crypto.CryptoError instead,
// matching the taxonomy named for the signature verification pipeline.
type AccountsError struct {
	Msg string
}

func (e *AccountsError) Error() string { return e.Msg }

func newAccountsError(format string, args ...any) *AccountsError {
	return &AccountsError{Msg: fmt.Sprintf(format, args...)}
}
