package codec

import "sort"

// EncodeOption encodes an *T as 0x00 (nil) or 0x01 ++ encode(*v).
func EncodeOption[T any](c Encoder[T], v *T) []byte {
	if v == nil {
		return []byte{0x00}
	}
	return append([]byte{0x01}, c.EncodeBytes(*v)...)
}

// DecodeOption decodes a value written by EncodeOption.
func DecodeOption[T any](c Decoder[T], buf []byte) (*T, []byte, error) {
	if len(buf) == 0 {
		return nil, nil, ErrUnexpectedEOF
	}
	switch buf[0] {
	case 0x00:
		return nil, buf[1:], nil
	case 0x01:
		v, rest, err := c.DecodeBytes(buf[1:])
		if err != nil {
			return nil, nil, err
		}
		return &v, rest, nil
	default:
		return nil, nil, NewDecodeError("option: invalid discriminant 0x%02x", buf[0])
	}
}

// EncodeList encodes a slice as PutLen(len) ++ concat(encode(items)).
func EncodeList[T any](c Encoder[T], items []T) []byte {
	out := PutLen(len(items))
	for _, it := range items {
		out = append(out, c.EncodeBytes(it)...)
	}
	return out
}

// DecodeList decodes a slice written by EncodeList. On an element failure
// the error message identifies the offending index, matching spec §4.1's
// "collection decoders fail fast with the offending element's failure
// message".
func DecodeList[T any](c Decoder[T], buf []byte) ([]T, []byte, error) {
	n, rest, err := TakeLen(buf)
	if err != nil {
		return nil, nil, err
	}
	items := make([]T, 0, n)
	for i := 0; i < n; i++ {
		var v T
		v, rest, err = c.DecodeBytes(rest)
		if err != nil {
			return nil, nil, NewDecodeError("list element %d: %s", i, err.Error())
		}
		items = append(items, v)
	}
	return items, rest, nil
}

// EncodeSet sorts items by their encoded byte representation and encodes
// them as a list, guaranteeing a deterministic encoding regardless of
// iteration order.
func EncodeSet[T any](c Encoder[T], items []T) []byte {
	encoded := make([][]byte, len(items))
	for i, it := range items {
		encoded[i] = c.EncodeBytes(it)
	}
	sort.Slice(encoded, func(i, j int) bool { return LexCompare(encoded[i], encoded[j]) < 0 })
	out := PutLen(len(encoded))
	for _, e := range encoded {
		out = append(out, e...)
	}
	return out
}

// DecodeSet decodes a value written by EncodeSet.
func DecodeSet[T any](c Decoder[T], buf []byte) ([]T, []byte, error) {
	return DecodeList[T](c, buf)
}

// MapEntry is one key/value pair of a deterministically-ordered map encoding.
type MapEntry[K, V any] struct {
	Key K
	Val V
}

// EncodeMap sorts entries by the encoded byte representation of the
// concatenation of key and value, then encodes them as a list.
func EncodeMap[K, V any](kc Encoder[K], vc Encoder[V], entries []MapEntry[K, V]) []byte {
	type kv struct{ k, v, enc []byte }
	rows := make([]kv, len(entries))
	for i, e := range entries {
		k := kc.EncodeBytes(e.Key)
		v := vc.EncodeBytes(e.Val)
		rows[i] = kv{k: k, v: v, enc: append(append([]byte{}, k...), v...)}
	}
	sort.Slice(rows, func(i, j int) bool { return LexCompare(rows[i].enc, rows[j].enc) < 0 })
	out := PutLen(len(rows))
	for _, r := range rows {
		out = append(out, r.k...)
		out = append(out, r.v...)
	}
	return out
}

// DecodeMap decodes a value written by EncodeMap.
func DecodeMap[K, V any](kc Decoder[K], vc Decoder[V], buf []byte) ([]MapEntry[K, V], []byte, error) {
	n, rest, err := TakeLen(buf)
	if err != nil {
		return nil, nil, err
	}
	entries := make([]MapEntry[K, V], 0, n)
	for i := 0; i < n; i++ {
		var k K
		var v V
		k, rest, err = kc.DecodeBytes(rest)
		if err != nil {
			return nil, nil, NewDecodeError("map entry %d key: %s", i, err.Error())
		}
		v, rest, err = vc.DecodeBytes(rest)
		if err != nil {
			return nil, nil, NewDecodeError("map entry %d value: %s", i, err.Error())
		}
		entries = append(entries, MapEntry[K, V]{Key: k, Val: v})
	}
	return entries, rest, nil
}

// EncodeSum prepends a one-byte discriminator (0-indexed declaration order)
// to the selected variant's payload, the derivation rule for sum types.
func EncodeSum(discriminant byte, payload []byte) []byte {
	return append([]byte{discriminant}, payload...)
}

// DecodeSumTag reads the discriminant byte and returns it with the
// remainder for the caller to dispatch on.
func DecodeSumTag(buf []byte) (tag byte, rest []byte, err error) {
	if len(buf) == 0 {
		return 0, nil, ErrUnexpectedEOF
	}
	return buf[0], buf[1:], nil
}
