package prim

import (
	"errors"
	"math/big"

	"github.com/sigilaris/sigil/codec"
)

// BigNat is a non-negative arbitrary-precision integer, n >= 0.
type BigNat struct {
	mag big.Int
}

// ErrBigNatUnderflow is returned by Sub when the subtrahend exceeds the
// minuend.
var ErrBigNatUnderflow = errors.New("bignat: subtraction underflow")

// ErrBigNatDivByZero is returned by DivMod when dividing by zero.
var ErrBigNatDivByZero = errors.New("bignat: division by zero")

// ZeroBigNat is the additive identity.
var ZeroBigNat = BigNat{}

// BigNatFromUint64 builds a BigNat from a machine-width unsigned integer.
func BigNatFromUint64(n uint64) BigNat {
	var b BigNat
	b.mag.SetUint64(n)
	return b
}

// BigNatFromBigInt converts a math/big.Int, failing if it is negative.
func BigNatFromBigInt(n *big.Int) (BigNat, error) {
	if n.Sign() < 0 {
		return BigNat{}, errors.New("bignat: negative value")
	}
	var b BigNat
	b.mag.Set(n)
	return b, nil
}

func (n BigNat) Big() *big.Int { return new(big.Int).Set(&n.mag) }

func (n BigNat) IsZero() bool { return n.mag.Sign() == 0 }

func (n BigNat) Cmp(o BigNat) int { return n.mag.Cmp(&o.mag) }

func (n BigNat) Add(o BigNat) BigNat {
	var r BigNat
	r.mag.Add(&n.mag, &o.mag)
	return r
}

func (n BigNat) Mul(o BigNat) BigNat {
	var r BigNat
	r.mag.Mul(&n.mag, &o.mag)
	return r
}

// Sub is fallible: a - b fails when b > a.
func (n BigNat) Sub(o BigNat) (BigNat, error) {
	if n.mag.Cmp(&o.mag) < 0 {
		return BigNat{}, ErrBigNatUnderflow
	}
	var r BigNat
	r.mag.Sub(&n.mag, &o.mag)
	return r, nil
}

// DivMod performs integer division, failing on division by zero.
func (n BigNat) DivMod(o BigNat) (q, r BigNat, err error) {
	if o.IsZero() {
		return BigNat{}, BigNat{}, ErrBigNatDivByZero
	}
	var qq, rr big.Int
	qq.DivMod(&n.mag, &o.mag, &rr)
	return BigNat{mag: qq}, BigNat{mag: rr}, nil
}

func (n BigNat) String() string { return n.mag.String() }

// Magnitude returns the canonical big-endian magnitude bytes: empty for
// zero, otherwise no leading zero byte (math/big.Int.Bytes already
// guarantees this).
func (n BigNat) Magnitude() []byte { return n.mag.Bytes() }

type bigNatCodec struct{}

// EncodeBytes uses an order-preserving length prefix (codec.PutOrderedLen)
// rather than a plain varint, because BigNat is required to satisfy the
// OrderedCodec law (spec §4.1) and a canonical big-endian magnitude only
// sorts correctly against a length prefix that itself sorts with the
// magnitude's byte length.
func (bigNatCodec) EncodeBytes(v BigNat) []byte {
	mag := v.Magnitude()
	return append(codec.PutOrderedLen(uint64(len(mag))), mag...)
}

func (bigNatCodec) DecodeBytes(buf []byte) (BigNat, []byte, error) {
	n, rest, err := codec.TakeOrderedLen(buf)
	if err != nil {
		return BigNat{}, nil, err
	}
	if n > uint64(^uint(0)>>1) {
		return BigNat{}, nil, codec.NewDecodeError("bignat: length %d overflows int", n)
	}
	mag, rest, err := codec.TakeBytes(rest, int(n))
	if err != nil {
		return BigNat{}, nil, err
	}
	if len(mag) > 0 && mag[0] == 0 {
		return BigNat{}, nil, codec.NewDecodeError("bignat: non-canonical encoding (leading zero byte)")
	}
	var b BigNat
	b.mag.SetBytes(mag)
	return b, rest, nil
}

func (bigNatCodec) Compare(a, b BigNat) int { return a.Cmp(b) }

// BigNatCodec is the canonical, self-delimiting, order-preserving codec for
// BigNat named throughout spec §4/§6.
var BigNatCodec codec.OrderedCodec[BigNat] = bigNatCodec{}

// ToJSON renders BigNat as a decimal string by default (Open Question
// resolution, see DESIGN.md): the decoder accepts both string and number
// forms for interop.
func (n BigNat) ToJSON() codec.JSONValue { return codec.JString(n.String()) }

func BigNatFromJSON(v codec.JSONValue) (BigNat, error) {
	var s string
	switch v.Kind {
	case codec.JSONString:
		s = v.Str
	case codec.JSONNumber:
		s = string(v.Num)
	default:
		return BigNat{}, codec.NewDecodeError("bignat: expected JSON string or number, got %v", v.Kind)
	}
	var z big.Int
	if _, ok := z.SetString(s, 10); !ok {
		return BigNat{}, codec.NewDecodeError("bignat: invalid decimal %q", s)
	}
	return BigNatFromBigInt(&z)
}
