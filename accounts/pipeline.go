package accounts

import (
	"github.com/sigilaris/sigil/crypto"
	"github.com/sigilaris/sigil/prim"
	"github.com/sigilaris/sigil/state"
)

// digestFor is step 1 of the signature verification pipeline: hash the
// transaction's own encoded fields together with its signing envelope.
func digestFor(valueBytes []byte, envelope MutateEnvelope) [32]byte {
	return crypto.Keccak256Array(valueBytes, encodeEnvelope(envelope))
}

// recoverSigner is step 2: recover the signer's public key from the
// signature over digest and derive its keyId20.
func recoverSigner(sig crypto.Signature, digest [32]byte) (crypto.KeyId20, error) {
	pub, err := crypto.Recover(sig, digest)
	if err != nil {
		return crypto.KeyId20{}, &crypto.CryptoError{Msg: "recover: " + err.Error()}
	}
	return pub.KeyId20(), nil
}

// checkKeyRegistration is steps 3-4: the signer's key must be registered
// against accountName and, if it carries an expiry, not yet expired as of
// createdAt.
func checkKeyRegistration(
	nameKey state.Table[NameKeyKey, KeyRegistration],
	accountName prim.Utf8Key,
	keyId crypto.KeyId20,
	createdAt int64,
) state.StoreF[struct{}] {
	return state.Bind(
		nameKey.Get(nameKey.Brand(NameKeyKey{AccountName: accountName, KeyId: keyId})),
		func(reg *KeyRegistration) state.StoreF[struct{}] {
			if reg == nil {
				return state.Raise[struct{}](&crypto.CryptoError{Msg: "unregistered key"})
			}
			if reg.ExpiresAt != nil && *reg.ExpiresAt < createdAt {
				return state.Raise[struct{}](&crypto.CryptoError{Msg: "expired key"})
			}
			return state.Pure(struct{}{})
		},
	)
}

// verifyNamedAccountMutation runs the full pipeline (steps 1-6 minus the
// mutation itself) for a transaction on a named account, returning the
// account as it stood immediately before the mutation once every check
// has passed.
func verifyNamedAccountMutation(
	nameKey state.Table[NameKeyKey, KeyRegistration],
	accountTbl state.Table[prim.Utf8Key, Account],
	accountName prim.Utf8Key,
	envelope MutateEnvelope,
	nonce uint64,
	sig crypto.Signature,
	valueBytes []byte,
) state.StoreF[Account] {
	digest := digestFor(valueBytes, envelope)
	keyId, err := recoverSigner(sig, digest)
	if err != nil {
		return state.Raise[Account](err)
	}
	return state.Bind(checkKeyRegistration(nameKey, accountName, keyId, envelope.CreatedAt), func(struct{}) state.StoreF[Account] {
		return state.Bind(accountTbl.Get(accountTbl.Brand(accountName)), func(acct *Account) state.StoreF[Account] {
			if acct == nil {
				return state.Raise[Account](newAccountsError("account %q does not exist", accountName))
			}
			if !(acct.Owner.Equal(keyId) || (acct.Guardian != nil && acct.Guardian.Equal(keyId))) {
				return state.Raise[Account](newAccountsError("signer is not the account owner or guardian"))
			}
			if acct.Nonce != nonce {
				return state.Raise[Account](newAccountsError("nonce mismatch: account is at %d, transaction carries %d", acct.Nonce, nonce))
			}
			return state.Pure(*acct)
		})
	})
}

// verifyGroupMutation is the group-management analogue: the same
// pipeline shape, but authorization compares the recovered signer
// directly against the group's own coordinator keyId20 (a group has no
// nameKey registration of its own — its coordinator field is the
// authorization anchor) and the nonce checked is the group's groupNonce.
func verifyGroupMutation(
	groupTbl state.Table[prim.Utf8Key, Group],
	groupName prim.Utf8Key,
	envelope MutateEnvelope,
	groupNonce uint64,
	sig crypto.Signature,
	valueBytes []byte,
) state.StoreF[Group] {
	digest := digestFor(valueBytes, envelope)
	keyId, err := recoverSigner(sig, digest)
	if err != nil {
		return state.Raise[Group](err)
	}
	return state.Bind(groupTbl.Get(groupTbl.Brand(groupName)), func(grp *Group) state.StoreF[Group] {
		if grp == nil {
			return state.Raise[Group](newAccountsError("group %q does not exist", groupName))
		}
		if !grp.Coordinator.Equal(keyId) {
			return state.Raise[Group](newAccountsError("signer is not the group coordinator"))
		}
		if grp.GroupNonce != groupNonce {
			return state.Raise[Group](newAccountsError("nonce mismatch: group is at %d, transaction carries %d", grp.GroupNonce, groupNonce))
		}
		return state.Pure(*grp)
	})
}
