package accounts

import (
	"github.com/sigilaris/sigil/codec"
	"github.com/sigilaris/sigil/crypto"
)

// MutateEnvelope carries the context every mutation transaction is signed
// together with: which network it targets, when it was created (checked
// against a registered key's expiry), and an optional free-text memo.
type MutateEnvelope struct {
	NetworkId uint64
	CreatedAt int64
	Memo      *string
}

var stringCodec codec.Codec[string] = codec.NewCodec(
	func(v string) []byte { return codec.BytesCodec.EncodeBytes([]byte(v)) },
	func(buf []byte) (string, []byte, error) {
		raw, rest, err := codec.BytesCodec.DecodeBytes(buf)
		if err != nil {
			return "", nil, err
		}
		return string(raw), rest, nil
	},
)

func encodeEnvelope(e MutateEnvelope) []byte {
	out := uint64Codec.EncodeBytes(e.NetworkId)
	out = append(out, codec.LongCodec.EncodeBytes(e.CreatedAt)...)
	out = append(out, codec.EncodeOption[string](stringCodec, e.Memo)...)
	return out
}

// Signed pairs a signature with the value it covers. The digest signed is
// always keccak256(encode(value) ++ encode(envelope)) for whatever
// concrete transaction type embeds this envelope — step 1 of the
// signature verification pipeline.
type Signed[T any] struct {
	Sig   crypto.Signature
	Value T
}
