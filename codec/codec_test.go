package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 32, ^uint64(0)}
	for _, n := range cases {
		buf := PutUvarint(n)
		got, rest, err := Uvarint(buf)
		require.NoError(t, err)
		require.Empty(t, rest)
		require.Equal(t, n, got)
	}
}

func TestOptionRoundTrip(t *testing.T) {
	c := BytesCodec
	none := EncodeOption[[]byte](c, nil)
	require.Equal(t, []byte{0x00}, none)

	v := []byte{1, 2, 3}
	enc := EncodeOption[[]byte](c, &v)
	got, rest, err := DecodeOption[[]byte](c, enc)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, v, *got)

	gotNone, rest, err := DecodeOption[[]byte](c, none)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Nil(t, gotNone)
}

func TestListRoundTrip(t *testing.T) {
	items := [][]byte{{1}, {2, 2}, {3, 3, 3}}
	enc := EncodeList[[]byte](BytesCodec, items)
	got, rest, err := DecodeList[[]byte](BytesCodec, enc)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, items, got)
}

func TestListElementFailureIdentifiesIndex(t *testing.T) {
	// A truncated buffer after one valid element should fail decoding the
	// second element, not silently succeed.
	enc := EncodeList[[]byte](BytesCodec, [][]byte{{1, 2}, {3, 4}})
	truncated := enc[:len(enc)-1]
	_, _, err := DecodeList[[]byte](BytesCodec, truncated)
	require.Error(t, err)
	require.Contains(t, err.Error(), "list element 1")
}

func TestSetDeterministicOrder(t *testing.T) {
	a := EncodeSet[[]byte](BytesCodec, [][]byte{{3}, {1}, {2}})
	b := EncodeSet[[]byte](BytesCodec, [][]byte{{2}, {3}, {1}})
	require.Equal(t, a, b)
}

func TestJSONRoundTrip(t *testing.T) {
	obj := JObject(
		Field("a", JInt(1)),
		Field("b", JString("hi")),
		Field("c", JArray([]JSONValue{JBool(true), JNull()})),
	)
	raw, err := obj.MarshalJSON()
	require.NoError(t, err)
	parsed, err := ParseJSON(raw)
	require.NoError(t, err)
	require.Equal(t, obj, parsed)
}

func TestWrapUnwrapSum(t *testing.T) {
	wrapped := WrapSum("Leaf", JObject(Field("value", JString("x"))))
	variant, payload, err := UnwrapSum(wrapped)
	require.NoError(t, err)
	require.Equal(t, "Leaf", variant)
	got, _ := payload.Get("value")
	require.Equal(t, "x", got.Str)
}

func TestLexCompareMatchesGoOrdering(t *testing.T) {
	require.True(t, LexCompare([]byte("a"), []byte("b")) < 0)
	require.True(t, LexCompare([]byte("ab"), []byte("a")) > 0)
	require.Equal(t, 0, LexCompare([]byte("x"), []byte("x")))
}
