// Package codec defines the deterministic byte and JSON encoding contract
// shared by every type in Sigil: encoding is total, decoding is fallible
// and returns the unconsumed remainder so composite codecs can be built by
// concatenation, mirroring how the teacher's wire codec layers fixed- and
// variable-width fields.
package codec

import "fmt"

// DecodeError reports a byte or JSON decoding failure: malformed structure,
// unexpected end of input, or a validation check refusing a decoded value.
type DecodeError struct {
	Msg string
}

func (e *DecodeError) Error() string { return e.Msg }

// NewDecodeError builds a DecodeError with a formatted message.
func NewDecodeError(format string, args ...any) *DecodeError {
	return &DecodeError{Msg: fmt.Sprintf(format, args...)}
}

// ErrUnexpectedEOF is returned by decoders when the input is shorter than
// the structure they expect.
var ErrUnexpectedEOF = &DecodeError{Msg: "unexpected end of input"}

// Encoder produces the canonical byte encoding of a value. Encoding never
// fails.
type Encoder[T any] interface {
	EncodeBytes(v T) []byte
}

// Decoder consumes a canonical byte encoding, returning the decoded value
// and the unconsumed remainder of buf.
type Decoder[T any] interface {
	DecodeBytes(buf []byte) (v T, rest []byte, err error)
}

// Codec is the combined total-encode / fallible-decode contract required of
// every type in the data model (spec §4.1).
type Codec[T any] interface {
	Encoder[T]
	Decoder[T]
}

// OrderedCodec additionally guarantees the ordering law:
//
//	sign(Compare(x, y)) == sign(lexcmp(EncodeBytes(x), EncodeBytes(y)))
//
// Implementations: ByteVector (identity), Utf8Key, UInt256, BigNat.
type OrderedCodec[T any] interface {
	Codec[T]
	Compare(a, b T) int
}

// EncoderFunc/DecoderFunc let small codecs be built from plain functions
// instead of single-method structs, the way the teacher's rlp package opts
// individual types into custom Encode/Decode hooks.
type EncoderFunc[T any] func(T) []byte

func (f EncoderFunc[T]) EncodeBytes(v T) []byte { return f(v) }

type DecoderFunc[T any] func([]byte) (T, []byte, error)

func (f DecoderFunc[T]) DecodeBytes(buf []byte) (T, []byte, error) { return f(buf) }

// funcCodec adapts a pair of functions to the Codec interface.
type funcCodec[T any] struct {
	enc func(T) []byte
	dec func([]byte) (T, []byte, error)
}

func (c funcCodec[T]) EncodeBytes(v T) []byte                      { return c.enc(v) }
func (c funcCodec[T]) DecodeBytes(b []byte) (T, []byte, error)     { return c.dec(b) }

// NewCodec builds a Codec from an encode and a decode function.
func NewCodec[T any](enc func(T) []byte, dec func([]byte) (T, []byte, error)) Codec[T] {
	return funcCodec[T]{enc: enc, dec: dec}
}

// LexCompare compares two byte slices using Go's built-in lexicographic
// ordering on []byte, matching the "bytes cmp" side of the OrderedCodec law.
func LexCompare(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
