package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sigilaris/sigil/prim"
)

func TestKeccak256EmptyVector(t *testing.T) {
	got := Keccak256([]byte{})
	want, err := hex.DecodeString("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestKeccak256QuickBrownFoxVector(t *testing.T) {
	got := Keccak256([]byte("The quick brown fox jumps over the lazy dog"))
	want, err := hex.DecodeString("4d741b6f1eb29cb2a9b9911c82f56fa8d73b04959d3d9d222895df6c0b28aa15")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestSignRecoverRoundTrip(t *testing.T) {
	priv, err := prim.UInt256FromHex("10e93a6c964aa6bc089f84e4fe3fb37583f3e1162891a689dd99bb629520f3df")
	require.NoError(t, err)

	wantPub, err := hex.DecodeString("e72699136b12ffd11549616ff047cd5ec93665cd6f13b859030a3c99d14842abc27a7442bc05143db53c41407a7059c85def28f6749b86b3123c48be3085e459")
	require.NoError(t, err)
	wantPubKey, err := PublicKeyFromXY(wantPub)
	require.NoError(t, err)

	digest := Keccak256Array([]byte("some-data"))
	sig, err := Sign(priv, digest)
	require.NoError(t, err)
	require.Contains(t, []byte{27, 28}, sig.V)
	require.True(t, isLowS(sig.S), "Sign must emit a low-S signature")

	recovered, err := Recover(sig, digest)
	require.NoError(t, err)
	require.True(t, wantPubKey.Equal(recovered))
}

func TestRecoverAcceptsHighS(t *testing.T) {
	priv, err := prim.UInt256FromHex("10e93a6c964aa6bc089f84e4fe3fb37583f3e1162891a689dd99bb629520f3df")
	require.NoError(t, err)
	digest := Keccak256Array([]byte("some-data"))

	sig, err := Sign(priv, digest)
	require.NoError(t, err)

	highS, err := normalizeLowS(sig.S)
	require.NoError(t, err)
	require.False(t, isLowS(highS))

	flippedV := sig.V
	if flippedV == 27 {
		flippedV = 28
	} else {
		flippedV = 27
	}
	highSig := Signature{V: flippedV, R: sig.R, S: highS}

	recovered, err := Recover(highSig, digest)
	require.NoError(t, err)

	lowRecovered, err := Recover(sig, digest)
	require.NoError(t, err)
	require.True(t, lowRecovered.Equal(recovered))
}

func TestPublicKeyEqualityRegardlessOfConstruction(t *testing.T) {
	priv, err := prim.UInt256FromHex("10e93a6c964aa6bc089f84e4fe3fb37583f3e1162891a689dd99bb629520f3df")
	require.NoError(t, err)
	wantPub, err := hex.DecodeString("e72699136b12ffd11549616ff047cd5ec93665cd6f13b859030a3c99d14842abc27a7442bc05143db53c41407a7059c85def28f6749b86b3123c48be3085e459")
	require.NoError(t, err)
	fromCoords, err := PublicKeyFromXY(wantPub)
	require.NoError(t, err)

	digest := Keccak256Array([]byte("some-data"))
	sig, err := Sign(priv, digest)
	require.NoError(t, err)
	fromRecover, err := Recover(sig, digest)
	require.NoError(t, err)

	require.True(t, fromCoords.Equal(fromRecover))
	require.Equal(t, fromCoords.KeyId20(), fromRecover.KeyId20())
}

func TestKeyId20IsLast20BytesOfKeccak(t *testing.T) {
	pubBytes, err := hex.DecodeString("e72699136b12ffd11549616ff047cd5ec93665cd6f13b859030a3c99d14842abc27a7442bc05143db53c41407a7059c85def28f6749b86b3123c48be3085e459")
	require.NoError(t, err)
	pub, err := PublicKeyFromXY(pubBytes)
	require.NoError(t, err)

	digest := Keccak256(pubBytes)
	require.Equal(t, digest[12:], pub.KeyId20().sliceBytes())
}

func (id KeyId20) sliceBytes() []byte { return id[:] }

func TestHashBrandsDistinctTypes(t *testing.T) {
	type txMarker struct{}
	type blockMarker struct{}

	h1 := Hash[txMarker](Keccak256Array([]byte("payload")))
	h2 := Hash[blockMarker](Keccak256Array([]byte("payload")))
	// Same bytes, different static type: this compiles only because Go
	// generics make Hash[txMarker] and Hash[blockMarker] distinct types.
	require.Equal(t, h1.Bytes(), h2.Bytes())
}

func TestSignatureCodecRoundTrip(t *testing.T) {
	priv, err := prim.UInt256FromHex("10e93a6c964aa6bc089f84e4fe3fb37583f3e1162891a689dd99bb629520f3df")
	require.NoError(t, err)
	digest := Keccak256Array([]byte("some-data"))
	sig, err := Sign(priv, digest)
	require.NoError(t, err)

	enc := SignatureCodec.EncodeBytes(sig)
	require.Len(t, enc, 65)
	got, rest, err := SignatureCodec.DecodeBytes(enc)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, sig.V, got.V)
	require.True(t, sig.R.Equal(got.R))
	require.True(t, sig.S.Equal(got.S))
}
