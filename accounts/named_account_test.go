package accounts_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sigilaris/sigil/accounts"
	"github.com/sigilaris/sigil/crypto"
	"github.com/sigilaris/sigil/module"
	"github.com/sigilaris/sigil/prim"
	"github.com/sigilaris/sigil/state"
	"github.com/sigilaris/sigil/trie"
)

func mustUInt256(t *testing.T, seed int64) prim.UInt256 {
	t.Helper()
	v, err := prim.UInt256FromUnsigned(big.NewInt(seed))
	require.NoError(t, err)
	return v
}

var keyIdProbeDigest = crypto.Keccak256Array([]byte("keyid-probe"))

func keyIdOf(t *testing.T, priv prim.UInt256) crypto.KeyId20 {
	t.Helper()
	sig, err := crypto.Sign(priv, keyIdProbeDigest)
	require.NoError(t, err)
	pub, err := crypto.Recover(sig, keyIdProbeDigest)
	require.NoError(t, err)
	return pub.KeyId20()
}

func sign(t *testing.T, priv prim.UInt256, digest [32]byte) crypto.Signature {
	t.Helper()
	sig, err := crypto.Sign(priv, digest)
	require.NoError(t, err)
	return sig
}

func freshAccountsStoreState() state.StoreState {
	return state.NewStoreState(trie.NewState(), trie.NewMemStore(1<<20))
}

func mountNamedAccounts(t *testing.T) *module.Module {
	t.Helper()
	m, err := module.Mount(accounts.NamedAccountBlueprint(), state.Path{"accounts"}, module.NewTablesProvider(module.Schema{}))
	require.NoError(t, err)
	return m
}

func TestCreateAccountRegistersOwnerKey(t *testing.T) {
	m := mountNamedAccounts(t)
	ownerKeyId := keyIdOf(t, mustUInt256(t, 1))

	s := freshAccountsStoreState()
	_, res, err := state.Run(m.Apply(accounts.CreateAccountTx{AccountName: "alice", Owner: ownerKeyId}), s)
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	require.Equal(t, "AccountCreated", res.Events[0].Name)
}

func TestRegisterKeyThenUseItToSetGuardian(t *testing.T) {
	m := mountNamedAccounts(t)
	ownerPriv := mustUInt256(t, 1)
	ownerKeyId := keyIdOf(t, ownerPriv)
	newPriv := mustUInt256(t, 2)
	newKeyId := keyIdOf(t, newPriv)
	guardianKeyId := keyIdOf(t, mustUInt256(t, 3))

	s := freshAccountsStoreState()
	s, _, err := state.Run(m.Apply(accounts.CreateAccountTx{AccountName: "alice", Owner: ownerKeyId}), s)
	require.NoError(t, err)

	envelope := accounts.MutateEnvelope{NetworkId: 1, CreatedAt: 1000}
	regTx := accounts.RegisterKeyTx{AccountName: "alice", NewKey: newKeyId, Nonce: 0}
	req := accounts.RegisterKeyRequest{Envelope: envelope, Signed: accounts.Signed[accounts.RegisterKeyTx]{
		Sig: sign(t, ownerPriv, regTx.SigningDigest(envelope)), Value: regTx,
	}}
	s, res, err := state.Run(m.Apply(req), s)
	require.NoError(t, err)
	require.Equal(t, "KeyRegistered", res.Events[0].Name)

	guardTx := accounts.SetGuardianTx{AccountName: "alice", Guardian: &guardianKeyId, Nonce: 1}
	guardReq := accounts.SetGuardianRequest{Envelope: envelope, Signed: accounts.Signed[accounts.SetGuardianTx]{
		Sig: sign(t, newPriv, guardTx.SigningDigest(envelope)), Value: guardTx,
	}}
	_, res2, err := state.Run(m.Apply(guardReq), s)
	require.NoError(t, err)
	require.Equal(t, "GuardianSet", res2.Events[0].Name)
}

func TestMutationFailsOnNonceMismatch(t *testing.T) {
	m := mountNamedAccounts(t)
	ownerPriv := mustUInt256(t, 1)
	ownerKeyId := keyIdOf(t, ownerPriv)

	s := freshAccountsStoreState()
	s, _, err := state.Run(m.Apply(accounts.CreateAccountTx{AccountName: "alice", Owner: ownerKeyId}), s)
	require.NoError(t, err)

	envelope := accounts.MutateEnvelope{NetworkId: 1, CreatedAt: 1000}
	regTx := accounts.RegisterKeyTx{AccountName: "alice", NewKey: keyIdOf(t, mustUInt256(t, 2)), Nonce: 7}
	req := accounts.RegisterKeyRequest{Envelope: envelope, Signed: accounts.Signed[accounts.RegisterKeyTx]{
		Sig: sign(t, ownerPriv, regTx.SigningDigest(envelope)), Value: regTx,
	}}
	_, _, err = state.Run(m.Apply(req), s)
	require.Error(t, err)
}

func TestMutationFailsForUnregisteredSigner(t *testing.T) {
	m := mountNamedAccounts(t)
	ownerKeyId := keyIdOf(t, mustUInt256(t, 1))
	strangerPriv := mustUInt256(t, 99)

	s := freshAccountsStoreState()
	s, _, err := state.Run(m.Apply(accounts.CreateAccountTx{AccountName: "alice", Owner: ownerKeyId}), s)
	require.NoError(t, err)

	envelope := accounts.MutateEnvelope{NetworkId: 1, CreatedAt: 1000}
	regTx := accounts.RegisterKeyTx{AccountName: "alice", NewKey: keyIdOf(t, mustUInt256(t, 2)), Nonce: 0}
	req := accounts.RegisterKeyRequest{Envelope: envelope, Signed: accounts.Signed[accounts.RegisterKeyTx]{
		Sig: sign(t, strangerPriv, regTx.SigningDigest(envelope)), Value: regTx,
	}}
	_, _, err = state.Run(m.Apply(req), s)
	require.Error(t, err)
}

func TestExpiredKeyIsRejected(t *testing.T) {
	m := mountNamedAccounts(t)
	ownerPriv := mustUInt256(t, 1)
	ownerKeyId := keyIdOf(t, ownerPriv)
	tempPriv := mustUInt256(t, 2)
	tempKeyId := keyIdOf(t, tempPriv)

	s := freshAccountsStoreState()
	s, _, err := state.Run(m.Apply(accounts.CreateAccountTx{AccountName: "alice", Owner: ownerKeyId}), s)
	require.NoError(t, err)

	envelope := accounts.MutateEnvelope{NetworkId: 1, CreatedAt: 1000}
	expiresAt := int64(1500)
	regTx := accounts.RegisterKeyTx{AccountName: "alice", NewKey: tempKeyId, Nonce: 0, ExpiresAt: &expiresAt}
	req := accounts.RegisterKeyRequest{Envelope: envelope, Signed: accounts.Signed[accounts.RegisterKeyTx]{
		Sig: sign(t, ownerPriv, regTx.SigningDigest(envelope)), Value: regTx,
	}}
	s, _, err = state.Run(m.Apply(req), s)
	require.NoError(t, err)

	lateEnvelope := accounts.MutateEnvelope{NetworkId: 1, CreatedAt: 2000}
	guardianId := keyIdOf(t, mustUInt256(t, 3))
	guardTx := accounts.SetGuardianTx{AccountName: "alice", Guardian: &guardianId, Nonce: 1}
	guardReq := accounts.SetGuardianRequest{Envelope: lateEnvelope, Signed: accounts.Signed[accounts.SetGuardianTx]{
		Sig: sign(t, tempPriv, guardTx.SigningDigest(lateEnvelope)), Value: guardTx,
	}}
	_, _, err = state.Run(m.Apply(guardReq), s)
	require.Error(t, err)
}
