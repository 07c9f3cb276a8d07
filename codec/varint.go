package codec

import "encoding/binary"

// PutUvarint encodes n as a self-delimiting base-128 varint (encoding/binary's
// Uvarint scheme). This is the "len" half of the Nibbles, byte-string and
// collection encodings (BigNat uses PutOrderedLen instead): it lets a
// decoder learn exactly how many trailing bytes or elements to consume
// without a fixed-width header.
func PutUvarint(n uint64) []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	k := binary.PutUvarint(buf, n)
	return buf[:k]
}

// Uvarint decodes a varint written by PutUvarint, returning the value and
// the unconsumed remainder of buf.
func Uvarint(buf []byte) (uint64, []byte, error) {
	n, k := binary.Uvarint(buf)
	if k == 0 {
		return 0, nil, ErrUnexpectedEOF
	}
	if k < 0 {
		return 0, nil, NewDecodeError("varint overflows uint64")
	}
	return n, buf[k:], nil
}

// PutLen is PutUvarint specialized to a slice length, the common case of
// prefixing a byte run or element count.
func PutLen(n int) []byte {
	if n < 0 {
		panic("codec: negative length")
	}
	return PutUvarint(uint64(n))
}

// TakeLen decodes a length prefix and returns it as an int, failing if it
// would overflow int. It does not check that n bytes remain in rest; the
// caller's TakeBytes does that.
func TakeLen(buf []byte) (int, []byte, error) {
	n, rest, err := Uvarint(buf)
	if err != nil {
		return 0, nil, err
	}
	if n > uint64(^uint(0)>>1) {
		return 0, nil, NewDecodeError("length %d overflows int", n)
	}
	return int(n), rest, nil
}

// TakeBytes consumes exactly n bytes from buf, failing if fewer remain.
func TakeBytes(buf []byte, n int) (taken, rest []byte, err error) {
	if n < 0 || len(buf) < n {
		return nil, nil, ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, buf[n:], nil
}

// PutOrderedLen encodes a length so that, unlike PutUvarint, lexicographic
// comparison of the encoded prefixes matches numeric comparison of the
// lengths. This is what lets a length-prefixed numeric magnitude (BigNat)
// satisfy the OrderedCodec law: 0..247 encode as a single byte; larger
// lengths use an escape byte in 0xF8..0xFF naming how many big-endian
// length bytes follow, with escape values increasing monotonically in the
// byte-width they introduce so that a category boundary never compares
// out of order with the categories around it.
func PutOrderedLen(n uint64) []byte {
	if n <= 247 {
		return []byte{byte(n)}
	}
	w := 1
	for n>>(8*w) > 0 {
		w++
	}
	buf := make([]byte, 1+w)
	buf[0] = byte(0xF7 + w)
	for i := 0; i < w; i++ {
		buf[1+w-1-i] = byte(n >> (8 * i))
	}
	return buf
}

// TakeOrderedLen decodes a length prefix written by PutOrderedLen.
func TakeOrderedLen(buf []byte) (uint64, []byte, error) {
	if len(buf) == 0 {
		return 0, nil, ErrUnexpectedEOF
	}
	b0 := buf[0]
	if b0 <= 0xF7 {
		return uint64(b0), buf[1:], nil
	}
	w := int(b0) - 0xF7
	if len(buf) < 1+w {
		return 0, nil, ErrUnexpectedEOF
	}
	var n uint64
	for i := 0; i < w; i++ {
		n = n<<8 | uint64(buf[1+i])
	}
	return n, buf[1+w:], nil
}
