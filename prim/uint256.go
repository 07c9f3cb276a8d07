// Package prim implements the fixed-width and length-prefixed numeric and
// string primitives of the data model: UInt256, BigNat, BigInt, Utf8,
// Utf8Key and Nibbles. Each type implements codec.Codec, and the three
// order-preserving ones (UInt256, BigNat, Utf8Key) additionally implement
// codec.OrderedCodec.
package prim

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/sigilaris/sigil/codec"
)

// UInt256 is a fixed 32-byte big-endian unsigned value, 0 <= n < 2^256.
// It wraps github.com/holiman/uint256.Int, the teacher's own dependency for
// this exact purpose.
type UInt256 struct {
	inner uint256.Int
}

// UInt256FailureKind enumerates the ways constructing a UInt256 can fail.
type UInt256FailureKind int

const (
	TooLong UInt256FailureKind = iota
	Overflow
	Negative
	InvalidHex
)

// UInt256Failure is the single ADT covering all UInt256 construction
// failures (spec §4.2).
type UInt256Failure struct {
	Kind UInt256FailureKind
	Got  int
	Max  int
	Msg  string
}

func (e *UInt256Failure) Error() string {
	switch e.Kind {
	case TooLong:
		return "uint256: too long: got " + itoa(e.Got) + " bytes, max " + itoa(e.Max)
	case Overflow:
		return "uint256: overflow: value exceeds 2^256-1"
	case Negative:
		return "uint256: negative value"
	case InvalidHex:
		return "uint256: invalid hex: " + e.Msg
	default:
		return "uint256: invalid"
	}
}

func itoa(n int) string {
	return big.NewInt(int64(n)).String()
}

// ZeroUInt256 is the additive identity.
var ZeroUInt256 = UInt256{}

// UInt256FromBytesBE accepts 0..32 bytes, left-padding with zeros. Longer
// inputs fail with TooLong.
func UInt256FromBytesBE(b []byte) (UInt256, error) {
	if len(b) > 32 {
		return UInt256{}, &UInt256Failure{Kind: TooLong, Got: len(b), Max: 32}
	}
	var u uint256.Int
	u.SetBytes(b)
	return UInt256{inner: u}, nil
}

// UInt256FromUnsigned converts an arbitrary-precision integer, failing if it
// is negative or exceeds 256 bits.
func UInt256FromUnsigned(n *big.Int) (UInt256, error) {
	if n.Sign() < 0 {
		return UInt256{}, &UInt256Failure{Kind: Negative}
	}
	u, overflow := uint256.FromBig(n)
	if overflow {
		return UInt256{}, &UInt256Failure{Kind: Overflow}
	}
	return UInt256{inner: *u}, nil
}

// UInt256FromHex accepts an optional "0x" prefix, surrounding whitespace,
// and "_" digit separators.
func UInt256FromHex(s string) (UInt256, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "0x")
	clean = strings.TrimPrefix(clean, "0X")
	clean = strings.ReplaceAll(clean, "_", "")
	if len(clean)%2 == 1 {
		clean = "0" + clean
	}
	b, err := hex.DecodeString(clean)
	if err != nil {
		return UInt256{}, &UInt256Failure{Kind: InvalidHex, Msg: err.Error()}
	}
	return UInt256FromBytesBE(b)
}

// MustUInt256FromHex panics on invalid input; reserved for constant
// construction (programmer error otherwise), matching spec §7's carve-out
// for "unsafe" constructors.
func MustUInt256FromHex(s string) UInt256 {
	v, err := UInt256FromHex(s)
	if err != nil {
		panic(err)
	}
	return v
}

// UInt256FromUint64 is a convenience constructor for small constants.
func UInt256FromUint64(n uint64) UInt256 {
	return UInt256{inner: *uint256.NewInt(n)}
}

// Bytes returns the canonical 32-byte big-endian representation.
func (u UInt256) Bytes() [32]byte { return u.inner.Bytes32() }

// ToUnsigned converts back to an arbitrary-precision integer.
func (u UInt256) ToUnsigned() *big.Int { return u.inner.ToBig() }

// Equal compares the 32-byte representation.
func (u UInt256) Equal(o UInt256) bool { return u.inner.Eq(&o.inner) }

// Cmp orders two values numerically.
func (u UInt256) Cmp(o UInt256) int { return u.inner.Cmp(&o.inner) }

// Hex renders the value as lowercase hex without a 0x prefix, the JSON
// surface form named in spec §6.
func (u UInt256) Hex() string {
	b := u.Bytes()
	return hex.EncodeToString(b[:])
}

func (u UInt256) String() string { return u.ToUnsigned().String() }

type uint256Codec struct{}

func (uint256Codec) EncodeBytes(v UInt256) []byte {
	b := v.Bytes()
	return b[:]
}

func (uint256Codec) DecodeBytes(buf []byte) (UInt256, []byte, error) {
	arr, rest, err := codec.TakeBytes(buf, 32)
	if err != nil {
		return UInt256{}, nil, err
	}
	var u uint256.Int
	u.SetBytes(arr)
	return UInt256{inner: u}, rest, nil
}

func (uint256Codec) Compare(a, b UInt256) int { return a.Cmp(b) }

// UInt256Codec is the fixed 32-byte big-endian OrderedCodec for UInt256.
var UInt256Codec codec.OrderedCodec[UInt256] = uint256Codec{}

// JSON: lowercase hex without 0x, per spec §6.
func (u UInt256) ToJSON() codec.JSONValue { return codec.JString(u.Hex()) }

func UInt256FromJSON(v codec.JSONValue) (UInt256, error) {
	if v.Kind != codec.JSONString {
		return UInt256{}, codec.NewDecodeError("uint256: expected JSON string, got %v", v.Kind)
	}
	u, err := UInt256FromHex(v.Str)
	if err != nil {
		return UInt256{}, &codec.DecodeError{Msg: err.Error()}
	}
	return u, nil
}
