package prim

import (
	"unicode/utf8"

	"github.com/sigilaris/sigil/codec"
)

// Utf8 is a length-prefixed UTF-8 string: BigNat(byte_length) ++ utf8_bytes.
// It is not order-preserving (length-prefix order is not string order) —
// use Utf8Key for ordered keys.
type Utf8 string

type utf8Codec struct{}

func (utf8Codec) EncodeBytes(v Utf8) []byte {
	b := []byte(v)
	return append(BigNatCodec.EncodeBytes(BigNatFromUint64(uint64(len(b)))), b...)
}

func (utf8Codec) DecodeBytes(buf []byte) (Utf8, []byte, error) {
	n, rest, err := BigNatCodec.DecodeBytes(buf)
	if err != nil {
		return "", nil, err
	}
	l := n.Big()
	if !l.IsUint64() || l.Uint64() > uint64(^uint(0)>>1) {
		return "", nil, codec.NewDecodeError("utf8: length %s overflows int", l.String())
	}
	raw, rest, err := codec.TakeBytes(rest, int(l.Uint64()))
	if err != nil {
		return "", nil, err
	}
	if !utf8.Valid(raw) {
		return "", nil, codec.NewDecodeError("utf8: invalid UTF-8 byte sequence")
	}
	return Utf8(raw), rest, nil
}

// Utf8Codec is the length-prefixed byte codec for Utf8. The length prefix
// is the BigNatCodec encoding of the byte length; Utf8 itself makes no
// ordering guarantee.
var Utf8Codec codec.Codec[Utf8] = utf8Codec{}

func (v Utf8) ToJSON() codec.JSONValue { return codec.JString(string(v)) }

func Utf8FromJSON(v codec.JSONValue) (Utf8, error) {
	if v.Kind != codec.JSONString {
		return "", codec.NewDecodeError("utf8: expected JSON string, got %v", v.Kind)
	}
	return Utf8(v.Str), nil
}

// Utf8Key is a UTF-8 string with an order-preserving byte encoding: escaped
// UTF-8 (0x00 -> 0x00 0xFF) terminated by an unescaped 0x00. This guarantees
// sign(strcmp(x,y)) == sign(bytes(x) cmp bytes(y)).
type Utf8Key string

type utf8KeyCodec struct{}

func (utf8KeyCodec) EncodeBytes(v Utf8Key) []byte {
	return codec.EscapeTerminate([]byte(v))
}

func (utf8KeyCodec) DecodeBytes(buf []byte) (Utf8Key, []byte, error) {
	raw, rest, err := codec.UnescapeTerminate(buf)
	if err != nil {
		return "", nil, err
	}
	if !utf8.Valid(raw) {
		return "", nil, codec.NewDecodeError("utf8key: invalid UTF-8 byte sequence")
	}
	return Utf8Key(raw), rest, nil
}

func (utf8KeyCodec) Compare(a, b Utf8Key) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Utf8KeyCodec is the OrderedCodec for Utf8Key required by spec §4.1.
var Utf8KeyCodec codec.OrderedCodec[Utf8Key] = utf8KeyCodec{}

func (v Utf8Key) ToJSON() codec.JSONValue { return codec.JString(string(v)) }

func Utf8KeyFromJSON(v codec.JSONValue) (Utf8Key, error) {
	if v.Kind != codec.JSONString {
		return "", codec.NewDecodeError("utf8key: expected JSON string, got %v", v.Kind)
	}
	return Utf8Key(v.Str), nil
}
