package prim

import (
	"math/big"

	"github.com/sigilaris/sigil/codec"
)

// BigInt is a signed arbitrary-precision integer. Its encoding is
// sign-aware and variable-length; per spec §4.1 it is explicitly NOT
// required to satisfy the OrderedCodec law (only BigNat and UInt256 are).
type BigInt struct {
	val big.Int
}

const (
	bigIntTagZero byte = iota
	bigIntTagPositive
	bigIntTagNegative
)

func BigIntFromInt64(n int64) BigInt {
	var b BigInt
	b.val.SetInt64(n)
	return b
}

func BigIntFromBig(n *big.Int) BigInt {
	var b BigInt
	b.val.Set(n)
	return b
}

func (b BigInt) Big() *big.Int { return new(big.Int).Set(&b.val) }
func (b BigInt) Sign() int     { return b.val.Sign() }
func (b BigInt) Cmp(o BigInt) int { return b.val.Cmp(&o.val) }
func (b BigInt) String() string   { return b.val.String() }

func (b BigInt) Add(o BigInt) BigInt { var r BigInt; r.val.Add(&b.val, &o.val); return r }
func (b BigInt) Sub(o BigInt) BigInt { var r BigInt; r.val.Sub(&b.val, &o.val); return r }
func (b BigInt) Mul(o BigInt) BigInt { var r BigInt; r.val.Mul(&b.val, &o.val); return r }

type bigIntCodec struct{}

// EncodeBytes prefixes a sign tag (zero/positive/negative) before the
// magnitude, so zero has exactly one encoding regardless of how it was
// constructed (no "negative zero" variant survives).
func (bigIntCodec) EncodeBytes(v BigInt) []byte {
	switch v.val.Sign() {
	case 0:
		return []byte{bigIntTagZero}
	case 1:
		mag := v.val.Bytes()
		out := []byte{bigIntTagPositive}
		out = append(out, codec.PutLen(len(mag))...)
		return append(out, mag...)
	default:
		mag := new(big.Int).Abs(&v.val).Bytes()
		out := []byte{bigIntTagNegative}
		out = append(out, codec.PutLen(len(mag))...)
		return append(out, mag...)
	}
}

func (bigIntCodec) DecodeBytes(buf []byte) (BigInt, []byte, error) {
	if len(buf) == 0 {
		return BigInt{}, nil, codec.ErrUnexpectedEOF
	}
	tag := buf[0]
	rest := buf[1:]
	switch tag {
	case bigIntTagZero:
		return BigInt{}, rest, nil
	case bigIntTagPositive, bigIntTagNegative:
		n, r, err := codec.TakeLen(rest)
		if err != nil {
			return BigInt{}, nil, err
		}
		mag, r, err := codec.TakeBytes(r, n)
		if err != nil {
			return BigInt{}, nil, err
		}
		if len(mag) == 0 || mag[0] == 0 {
			return BigInt{}, nil, codec.NewDecodeError("bigint: non-canonical or zero-tagged-nonzero magnitude")
		}
		var v BigInt
		v.val.SetBytes(mag)
		if tag == bigIntTagNegative {
			v.val.Neg(&v.val)
		}
		return v, r, nil
	default:
		return BigInt{}, nil, codec.NewDecodeError("bigint: invalid sign tag 0x%02x", tag)
	}
}

// BigIntCodec is the canonical signed variable-length codec for BigInt.
var BigIntCodec codec.Codec[BigInt] = bigIntCodec{}
