// Package crypto implements the external cryptographic surface: Keccak-256
// hashing, phantom-typed hash values, and secp256k1 sign/recover with low-S
// normalization. It wraps the same curve library the teacher depends on
// (github.com/btcsuite/btcd/btcec/v2) rather than the teacher's own
// crypto/secp256k1 cgo binding, since that binding is not part of the
// retrieved pack's go.mod surface.
package crypto

import (
	"fmt"

	"golang.org/x/crypto/sha3"
)

// CryptoError covers the failure modes of Sign/Recover/PublicKey
// construction: malformed input lengths, a point not on the curve, a
// signature that does not recover, and similar.
type CryptoError struct {
	Msg string
}

func (e *CryptoError) Error() string { return e.Msg }

func newCryptoError(format string, args ...any) *CryptoError {
	return &CryptoError{Msg: fmt.Sprintf(format, args...)}
}

// Keccak256 computes the 32-byte Keccak-256 digest of data.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

// Keccak256Array is Keccak256 returned as a fixed-size array, the form used
// internally wherever a digest is stored rather than passed through.
func Keccak256Array(data ...[]byte) [32]byte {
	var out [32]byte
	copy(out[:], Keccak256(data...))
	return out
}
