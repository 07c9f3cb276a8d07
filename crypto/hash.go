package crypto

import (
	"encoding/hex"

	"github.com/sigilaris/sigil/codec"
)

// Hash is a 32-byte Keccak-256 digest branded with the Go type T it was
// computed over, so a transaction hash and a block hash cannot be mixed up
// by the type checker even though both are [32]byte underneath. T is never
// instantiated with a value — it exists purely as a compile-time tag.
type Hash[T any] [32]byte

// HashOf computes keccak256(encode(t)) for any type with a codec.Encoder.
func HashOf[T any](enc codec.Encoder[T], t T) Hash[T] {
	return Hash[T](Keccak256Array(enc.EncodeBytes(t)))
}

func (h Hash[T]) Bytes() [32]byte { return h }

func (h Hash[T]) Hex() string { return hex.EncodeToString(h[:]) }

func (h Hash[T]) String() string { return h.Hex() }

func (h Hash[T]) Equal(o Hash[T]) bool { return h == o }

type hashCodec[T any] struct{}

func (hashCodec[T]) EncodeBytes(v Hash[T]) []byte { return v[:] }

func (hashCodec[T]) DecodeBytes(buf []byte) (Hash[T], []byte, error) {
	taken, rest, err := codec.TakeBytes(buf, 32)
	if err != nil {
		return Hash[T]{}, nil, err
	}
	var h Hash[T]
	copy(h[:], taken)
	return h, rest, nil
}

func (hashCodec[T]) Compare(a, b Hash[T]) int { return codec.LexCompare(a[:], b[:]) }

// HashCodec builds the OrderedCodec for a specific hash brand T.
func HashCodec[T any]() codec.OrderedCodec[Hash[T]] { return hashCodec[T]{} }

func (h Hash[T]) ToJSON() codec.JSONValue { return codec.JString(h.Hex()) }

func HashFromJSON[T any](v codec.JSONValue) (Hash[T], error) {
	if v.Kind != codec.JSONString {
		return Hash[T]{}, codec.NewDecodeError("hash: expected JSON string, got %v", v.Kind)
	}
	b, err := hex.DecodeString(v.Str)
	if err != nil {
		return Hash[T]{}, codec.NewDecodeError("hash: invalid hex: %s", err.Error())
	}
	if len(b) != 32 {
		return Hash[T]{}, codec.NewDecodeError("hash: expected 32 bytes, got %d", len(b))
	}
	var h Hash[T]
	copy(h[:], b)
	return h, nil
}
