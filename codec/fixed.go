package codec

import "encoding/binary"

// EncodeByte/DecodeByte, EncodeLong/DecodeLong and EncodeInstant/DecodeInstant
// are the fixed-width primitives named in spec §4.1: "Byte, Long, Instant (as
// epoch-ms Long) use their obvious big-endian layout."

func EncodeByte(b byte) []byte { return []byte{b} }

func DecodeByte(buf []byte) (byte, []byte, error) {
	if len(buf) < 1 {
		return 0, nil, ErrUnexpectedEOF
	}
	return buf[0], buf[1:], nil
}

func EncodeLong(v int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return b[:]
}

func DecodeLong(buf []byte) (int64, []byte, error) {
	if len(buf) < 8 {
		return 0, nil, ErrUnexpectedEOF
	}
	return int64(binary.BigEndian.Uint64(buf[:8])), buf[8:], nil
}

// Instant is an epoch-millisecond timestamp, encoded identically to Long.
type Instant int64

func EncodeInstant(t Instant) []byte { return EncodeLong(int64(t)) }

func DecodeInstant(buf []byte) (Instant, []byte, error) {
	v, rest, err := DecodeLong(buf)
	return Instant(v), rest, err
}

// ByteCodec, LongCodec and InstantCodec give the fixed-width primitives a Codec[T]
// instance so they compose with the generic collection helpers.
var ByteCodec Codec[byte] = NewCodec(EncodeByte, DecodeByte)
var LongCodec Codec[int64] = NewCodec(EncodeLong, DecodeLong)
var InstantCodec Codec[Instant] = NewCodec(EncodeInstant, DecodeInstant)

// BytesCodec is a plain length-prefixed codec over raw byte strings, the
// form used wherever a byte string is embedded in a larger structure
// without needing to preserve lexicographic order (e.g. a node's value
// payload). It does NOT satisfy the OrderedCodec law in general: a
// length-prefixed scheme only preserves order when a longer encoding always
// denotes a larger value, which holds for canonical numeric magnitudes
// (see BigNat) but not for arbitrary byte strings. Use OrderedBytesCodec
// when order preservation is required.
type bytesCodec struct{}

func (bytesCodec) EncodeBytes(v []byte) []byte {
	out := PutLen(len(v))
	return append(out, v...)
}

func (bytesCodec) DecodeBytes(buf []byte) ([]byte, []byte, error) {
	n, rest, err := TakeLen(buf)
	if err != nil {
		return nil, nil, err
	}
	return TakeBytes(rest, n)
}

var BytesCodec Codec[[]byte] = bytesCodec{}

// OrderedBytesCodec is the "ByteVector (identity)" OrderedCodec named in
// spec §4.1: it escapes every 0x00 byte to 0x00 0xFF and terminates with an
// unescaped 0x00, the same scheme Utf8Key uses. Unlike a length-prefixed
// encoding, this self-delimiting terminator scheme preserves lexicographic
// order for arbitrary byte content, including prefix relationships.
type orderedBytesCodec struct{}

func (orderedBytesCodec) EncodeBytes(v []byte) []byte { return EscapeTerminate(v) }

func (orderedBytesCodec) DecodeBytes(buf []byte) ([]byte, []byte, error) {
	return UnescapeTerminate(buf)
}

func (orderedBytesCodec) Compare(a, b []byte) int { return LexCompare(a, b) }

var OrderedBytesCodec OrderedCodec[[]byte] = orderedBytesCodec{}

// EscapeTerminate escapes 0x00 bytes as 0x00 0xFF and appends an unescaped
// 0x00 terminator.
func EscapeTerminate(b []byte) []byte {
	out := make([]byte, 0, len(b)+1)
	for _, c := range b {
		if c == 0x00 {
			out = append(out, 0x00, 0xFF)
		} else {
			out = append(out, c)
		}
	}
	out = append(out, 0x00)
	return out
}

// UnescapeTerminate reverses EscapeTerminate, returning the unescaped value
// and the remainder of buf following the terminator.
func UnescapeTerminate(buf []byte) (value, rest []byte, err error) {
	var out []byte
	i := 0
	for {
		if i >= len(buf) {
			return nil, nil, ErrUnexpectedEOF
		}
		b := buf[i]
		if b == 0x00 {
			if i+1 < len(buf) && buf[i+1] == 0xFF {
				out = append(out, 0x00)
				i += 2
				continue
			}
			return out, buf[i+1:], nil
		}
		out = append(out, b)
		i++
	}
}
