package crypto

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	ecdsa_ "github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/sigilaris/sigil/codec"
	"github.com/sigilaris/sigil/prim"
)

func hexEncode(b []byte) string          { return hex.EncodeToString(b) }
func hexDecode(s string) ([]byte, error) { return hex.DecodeString(s) }

// PublicKey is a point on secp256k1 in its canonical 64-byte x||y
// big-endian form. Equality and hashing are always over this form,
// regardless of whether the value came from raw coordinates or was
// recovered from a signature — there is no separate "curve point" variant
// to keep in sync, since btcec.PublicKey itself is immutable once parsed.
type PublicKey struct {
	xy [64]byte
}

// PublicKeyFromXY builds a PublicKey from its 64-byte x||y encoding,
// validating that the point lies on the curve.
func PublicKeyFromXY(xy []byte) (PublicKey, error) {
	if len(xy) != 64 {
		return PublicKey{}, newCryptoError("publickey: expected 64 bytes, got %d", len(xy))
	}
	uncompressed := make([]byte, 65)
	uncompressed[0] = 0x04
	copy(uncompressed[1:], xy)
	if _, err := btcec.ParsePubKey(uncompressed); err != nil {
		return PublicKey{}, newCryptoError("publickey: not on curve: %s", err.Error())
	}
	var pk PublicKey
	copy(pk.xy[:], xy)
	return pk, nil
}

func publicKeyFromBtcec(p *btcec.PublicKey) PublicKey {
	var pk PublicKey
	// SerializeUncompressed is 0x04 || x || y; drop the leading tag byte.
	copy(pk.xy[:], p.SerializeUncompressed()[1:])
	return pk
}

// Bytes returns a defensive copy of the canonical 64-byte x||y form.
func (p PublicKey) Bytes() [64]byte { return p.xy }

func (p PublicKey) Equal(o PublicKey) bool { return p.xy == o.xy }

// KeyId20 is the last 20 bytes of keccak256(x||y), a compact public-key
// identifier used throughout the account modules.
type KeyId20 [20]byte

func (p PublicKey) KeyId20() KeyId20 {
	digest := Keccak256(p.xy[:])
	var id KeyId20
	copy(id[:], digest[12:])
	return id
}

func (id KeyId20) Hex() string { return hexEncode(id[:]) }

func (id KeyId20) Equal(o KeyId20) bool { return id == o }

type keyId20Codec struct{}

func (keyId20Codec) EncodeBytes(v KeyId20) []byte { return v[:] }

func (keyId20Codec) DecodeBytes(buf []byte) (KeyId20, []byte, error) {
	taken, rest, err := codec.TakeBytes(buf, 20)
	if err != nil {
		return KeyId20{}, nil, err
	}
	var id KeyId20
	copy(id[:], taken)
	return id, rest, nil
}

func (keyId20Codec) Compare(a, b KeyId20) int { return codec.LexCompare(a[:], b[:]) }

var KeyId20Codec codec.OrderedCodec[KeyId20] = keyId20Codec{}

func (id KeyId20) ToJSON() codec.JSONValue { return codec.JString(id.Hex()) }

func KeyId20FromJSON(v codec.JSONValue) (KeyId20, error) {
	if v.Kind != codec.JSONString {
		return KeyId20{}, codec.NewDecodeError("keyid20: expected JSON string, got %v", v.Kind)
	}
	b, err := hexDecode(v.Str)
	if err != nil {
		return KeyId20{}, codec.NewDecodeError("keyid20: invalid hex: %s", err.Error())
	}
	if len(b) != 20 {
		return KeyId20{}, codec.NewDecodeError("keyid20: expected 20 bytes, got %d", len(b))
	}
	var id KeyId20
	copy(id[:], b)
	return id, nil
}

// Signature is (v, r, s): v encodes the recovery identifier as 27 or 28,
// r and s are UInt256. A signature produced by Sign always has s in the
// lower half of the curve order (low-S); Recover accepts both forms.
type Signature struct {
	V byte
	R prim.UInt256
	S prim.UInt256
}

type signatureCodec struct{}

// EncodeBytes lays out v(1) || r(32) || s(32), the wire form named in
// spec §6.
func (signatureCodec) EncodeBytes(v Signature) []byte {
	out := make([]byte, 0, 65)
	out = append(out, v.V)
	rb := v.R.Bytes()
	sb := v.S.Bytes()
	out = append(out, rb[:]...)
	out = append(out, sb[:]...)
	return out
}

func (signatureCodec) DecodeBytes(buf []byte) (Signature, []byte, error) {
	vByte, rest, err := codec.TakeBytes(buf, 1)
	if err != nil {
		return Signature{}, nil, err
	}
	rBytes, rest, err := codec.TakeBytes(rest, 32)
	if err != nil {
		return Signature{}, nil, err
	}
	sBytes, rest, err := codec.TakeBytes(rest, 32)
	if err != nil {
		return Signature{}, nil, err
	}
	r, err := prim.UInt256FromBytesBE(rBytes)
	if err != nil {
		return Signature{}, nil, err
	}
	s, err := prim.UInt256FromBytesBE(sBytes)
	if err != nil {
		return Signature{}, nil, err
	}
	return Signature{V: vByte[0], R: r, S: s}, rest, nil
}

var SignatureCodec codec.Codec[Signature] = signatureCodec{}

// Sign produces a low-S signature with recovery identifier over digest
// using privkey. The underlying library (btcsuite/btcd/btcec/v2/ecdsa)
// always emits canonical low-S signatures; this is asserted defensively
// rather than trusted blindly, per the spec's own invariant.
func Sign(privkey prim.UInt256, digest [32]byte) (Signature, error) {
	kb := privkey.Bytes()
	priv, pub := btcec.PrivKeyFromBytes(kb[:])
	defer priv.Zero()

	compact := ecdsa_.SignCompact(priv, digest[:], false)
	if len(compact) != 65 {
		return Signature{}, newCryptoError("sign: unexpected signature length %d", len(compact))
	}
	v := compact[0]
	r, err := prim.UInt256FromBytesBE(compact[1:33])
	if err != nil {
		return Signature{}, newCryptoError("sign: invalid r: %s", err.Error())
	}
	s, err := prim.UInt256FromBytesBE(compact[33:65])
	if err != nil {
		return Signature{}, newCryptoError("sign: invalid s: %s", err.Error())
	}
	if !isLowS(s) {
		// SignCompact is documented to always emit canonical low-S
		// signatures; this should be unreachable. Flipping s to n-s here
		// without also flipping the y-parity bit of v would silently
		// produce a signature that fails to recover, so surface the
		// violated assumption instead of trying to fix it up.
		return Signature{}, newCryptoError("sign: underlying signer produced a non-canonical high-S signature")
	}
	_ = pub // the recovered key is reconstructed explicitly via Recover, not cached here.
	return Signature{V: v, R: r, S: s}, nil
}

// Recover recovers the public key that produced sig over digest. Both
// low-S and high-S forms are accepted.
func Recover(sig Signature, digest [32]byte) (PublicKey, error) {
	compact := make([]byte, 65)
	compact[0] = sig.V
	rb := sig.R.Bytes()
	sb := sig.S.Bytes()
	copy(compact[1:33], rb[:])
	copy(compact[33:65], sb[:])

	pub, _, err := ecdsa_.RecoverCompact(compact, digest[:])
	if err != nil {
		return PublicKey{}, newCryptoError("recover: %s", err.Error())
	}
	return publicKeyFromBtcec(pub), nil
}

// secp256k1NHalf is n/2, the threshold for the low-S convention (BIP-0062),
// n = 0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141.
var secp256k1NHalf = prim.MustUInt256FromHex(
	"7fffffffffffffffffffffffffffffff5d576e7357a4501ddfe92f46681b20a0")

var secp256k1N = prim.MustUInt256FromHex(
	"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")

func isLowS(s prim.UInt256) bool { return s.Cmp(secp256k1NHalf) <= 0 }

func normalizeLowS(s prim.UInt256) (prim.UInt256, error) {
	n := secp256k1N.ToUnsigned()
	sv := s.ToUnsigned()
	sv.Sub(n, sv)
	return prim.UInt256FromUnsigned(sv)
}
