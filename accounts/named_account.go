package accounts

import (
	"github.com/sigilaris/sigil/codec"
	"github.com/sigilaris/sigil/crypto"
	"github.com/sigilaris/sigil/module"
	"github.com/sigilaris/sigil/prim"
	"github.com/sigilaris/sigil/state"
)

const (
	nameKeyTableName = "nameKey"
	accountTableName = "account"
)

// RegisterKeyTx registers NewKey (optionally expiring) against
// AccountName, authorized by the account's owner or guardian.
type RegisterKeyTx struct {
	AccountName prim.Utf8Key
	NewKey      crypto.KeyId20
	ExpiresAt   *int64
	Nonce       uint64
}

var registerKeyTxCodec codec.Codec[RegisterKeyTx] = codec.NewCodec(
	func(v RegisterKeyTx) []byte {
		out := prim.Utf8KeyCodec.EncodeBytes(v.AccountName)
		out = append(out, crypto.KeyId20Codec.EncodeBytes(v.NewKey)...)
		out = append(out, codec.EncodeOption[int64](codec.LongCodec, v.ExpiresAt)...)
		out = append(out, uint64Codec.EncodeBytes(v.Nonce)...)
		return out
	},
	func(buf []byte) (RegisterKeyTx, []byte, error) {
		name, rest, err := prim.Utf8KeyCodec.DecodeBytes(buf)
		if err != nil {
			return RegisterKeyTx{}, nil, err
		}
		key, rest, err := crypto.KeyId20Codec.DecodeBytes(rest)
		if err != nil {
			return RegisterKeyTx{}, nil, err
		}
		exp, rest, err := codec.DecodeOption[int64](codec.LongCodec, rest)
		if err != nil {
			return RegisterKeyTx{}, nil, err
		}
		nonce, rest, err := uint64Codec.DecodeBytes(rest)
		if err != nil {
			return RegisterKeyTx{}, nil, err
		}
		return RegisterKeyTx{AccountName: name, NewKey: key, ExpiresAt: exp, Nonce: nonce}, rest, nil
	},
)

// SigningDigest is the digest a client signs to authorize v under
// envelope — step 1 of the verification pipeline, exposed so a real
// signer never has to duplicate the hashing scheme.
func (v RegisterKeyTx) SigningDigest(envelope MutateEnvelope) [32]byte {
	return digestFor(registerKeyTxCodec.EncodeBytes(v), envelope)
}

// RegisterKeyRequest is the envelope-wrapped, signed form submitted as a
// reducer transaction.
type RegisterKeyRequest struct {
	Envelope MutateEnvelope
	Signed   Signed[RegisterKeyTx]
}

// RevokeKeyTx removes a previously-registered key from AccountName.
type RevokeKeyTx struct {
	AccountName prim.Utf8Key
	Key         crypto.KeyId20
	Nonce       uint64
}

var revokeKeyTxCodec codec.Codec[RevokeKeyTx] = codec.NewCodec(
	func(v RevokeKeyTx) []byte {
		out := prim.Utf8KeyCodec.EncodeBytes(v.AccountName)
		out = append(out, crypto.KeyId20Codec.EncodeBytes(v.Key)...)
		return append(out, uint64Codec.EncodeBytes(v.Nonce)...)
	},
	func(buf []byte) (RevokeKeyTx, []byte, error) {
		name, rest, err := prim.Utf8KeyCodec.DecodeBytes(buf)
		if err != nil {
			return RevokeKeyTx{}, nil, err
		}
		key, rest, err := crypto.KeyId20Codec.DecodeBytes(rest)
		if err != nil {
			return RevokeKeyTx{}, nil, err
		}
		nonce, rest, err := uint64Codec.DecodeBytes(rest)
		if err != nil {
			return RevokeKeyTx{}, nil, err
		}
		return RevokeKeyTx{AccountName: name, Key: key, Nonce: nonce}, rest, nil
	},
)

// SigningDigest is the digest a client signs to authorize v under envelope.
func (v RevokeKeyTx) SigningDigest(envelope MutateEnvelope) [32]byte {
	return digestFor(revokeKeyTxCodec.EncodeBytes(v), envelope)
}

// RevokeKeyRequest is the envelope-wrapped, signed form of RevokeKeyTx.
type RevokeKeyRequest struct {
	Envelope MutateEnvelope
	Signed   Signed[RevokeKeyTx]
}

// SetGuardianTx sets or clears (nil Guardian) AccountName's guardian.
type SetGuardianTx struct {
	AccountName prim.Utf8Key
	Guardian    *crypto.KeyId20
	Nonce       uint64
}

var setGuardianTxCodec codec.Codec[SetGuardianTx] = codec.NewCodec(
	func(v SetGuardianTx) []byte {
		out := prim.Utf8KeyCodec.EncodeBytes(v.AccountName)
		out = append(out, codec.EncodeOption[crypto.KeyId20](crypto.KeyId20Codec, v.Guardian)...)
		return append(out, uint64Codec.EncodeBytes(v.Nonce)...)
	},
	func(buf []byte) (SetGuardianTx, []byte, error) {
		name, rest, err := prim.Utf8KeyCodec.DecodeBytes(buf)
		if err != nil {
			return SetGuardianTx{}, nil, err
		}
		guardian, rest, err := codec.DecodeOption[crypto.KeyId20](crypto.KeyId20Codec, rest)
		if err != nil {
			return SetGuardianTx{}, nil, err
		}
		nonce, rest, err := uint64Codec.DecodeBytes(rest)
		if err != nil {
			return SetGuardianTx{}, nil, err
		}
		return SetGuardianTx{AccountName: name, Guardian: guardian, Nonce: nonce}, rest, nil
	},
)

// SigningDigest is the digest a client signs to authorize v under envelope.
func (v SetGuardianTx) SigningDigest(envelope MutateEnvelope) [32]byte {
	return digestFor(setGuardianTxCodec.EncodeBytes(v), envelope)
}

// SetGuardianRequest is the envelope-wrapped, signed form of SetGuardianTx.
type SetGuardianRequest struct {
	Envelope MutateEnvelope
	Signed   Signed[SetGuardianTx]
}

// CreateAccountTx seeds a brand-new named account with its initial owner.
// This is not part of the signed mutation pipeline (there is no prior
// owner to authorize it) — a host is expected to gate account creation at
// a higher layer (e.g. a genesis allocation or a separate faucet
// transaction); it is included here so the blueprint is self-contained
// for tests.
type CreateAccountTx struct {
	AccountName prim.Utf8Key
	Owner       crypto.KeyId20
}

// NamedAccountBlueprint owns the nameKey and account tables and applies
// RegisterKeyRequest, RevokeKeyRequest, SetGuardianRequest, and
// CreateAccountTx transactions against them.
func NamedAccountBlueprint() module.Blueprint {
	return module.Blueprint{
		Owns: []module.TableSpec{
			{
				Name: nameKeyTableName,
				Mount: func(prefix []byte) any {
					return state.MountTable(prefix, state.Entry[NameKeyKey, KeyRegistration]{
						Name: nameKeyTableName, KeyCodec: nameKeyKeyCodec, ValCodec: keyRegistrationCodec,
					})
				},
			},
			{
				Name: accountTableName,
				Mount: func(prefix []byte) any {
					return state.MountTable(prefix, state.Entry[prim.Utf8Key, Account]{
						Name: accountTableName, KeyCodec: prim.Utf8KeyCodec, ValCodec: accountCodec,
					})
				},
			},
		},
		Reducer: namedAccountReducer,
	}
}

func namedAccountTables(p module.TablesProvider) (state.Table[NameKeyKey, KeyRegistration], state.Table[prim.Utf8Key, Account], error) {
	nameKey, err := module.Lookup[state.Table[NameKeyKey, KeyRegistration]](p, nameKeyTableName)
	if err != nil {
		return state.Table[NameKeyKey, KeyRegistration]{}, state.Table[prim.Utf8Key, Account]{}, err
	}
	account, err := module.Lookup[state.Table[prim.Utf8Key, Account]](p, accountTableName)
	if err != nil {
		return state.Table[NameKeyKey, KeyRegistration]{}, state.Table[prim.Utf8Key, Account]{}, err
	}
	return nameKey, account, nil
}

func namedAccountReducer(ctx module.ReducerContext) state.StoreF[module.TxResult] {
	nameKey, account, err := namedAccountTables(ctx.Owned)
	if err != nil {
		return state.Raise[module.TxResult](err)
	}

	switch tx := ctx.Tx.(type) {
	case CreateAccountTx:
		return state.Bind(account.Get(account.Brand(tx.AccountName)), func(existing *Account) state.StoreF[module.TxResult] {
			if existing != nil {
				return state.Raise[module.TxResult](newAccountsError("account %q already exists", tx.AccountName))
			}
			// The owner's key has to be registered in nameKey right away —
			// otherwise no signed mutation could ever pass step 3 of the
			// pipeline, since nothing would be registered yet to recover a
			// signer against.
			ownerKey := NameKeyKey{AccountName: tx.AccountName, KeyId: tx.Owner}
			return state.Bind(account.Put(account.Brand(tx.AccountName), Account{Owner: tx.Owner}), func(struct{}) state.StoreF[module.TxResult] {
				return state.Map(nameKey.Put(nameKey.Brand(ownerKey), KeyRegistration{}), func(struct{}) module.TxResult {
					return module.TxResult{Events: []module.Event{{Name: "AccountCreated", Data: tx.AccountName}}}
				})
			})
		})

	case RegisterKeyRequest:
		value := tx.Signed.Value
		valueBytes := registerKeyTxCodec.EncodeBytes(value)
		return state.Bind(
			verifyNamedAccountMutation(nameKey, account, value.AccountName, tx.Envelope, value.Nonce, tx.Signed.Sig, valueBytes),
			func(acct Account) state.StoreF[module.TxResult] {
				acct.Nonce++
				reg := KeyRegistration{ExpiresAt: value.ExpiresAt}
				return state.Bind(account.Put(account.Brand(value.AccountName), acct), func(struct{}) state.StoreF[module.TxResult] {
					key := NameKeyKey{AccountName: value.AccountName, KeyId: value.NewKey}
					return state.Map(nameKey.Put(nameKey.Brand(key), reg), func(struct{}) module.TxResult {
						return module.TxResult{Events: []module.Event{{Name: "KeyRegistered", Data: key}}}
					})
				})
			},
		)

	case RevokeKeyRequest:
		value := tx.Signed.Value
		valueBytes := revokeKeyTxCodec.EncodeBytes(value)
		return state.Bind(
			verifyNamedAccountMutation(nameKey, account, value.AccountName, tx.Envelope, value.Nonce, tx.Signed.Sig, valueBytes),
			func(acct Account) state.StoreF[module.TxResult] {
				acct.Nonce++
				key := NameKeyKey{AccountName: value.AccountName, KeyId: value.Key}
				return state.Bind(account.Put(account.Brand(value.AccountName), acct), func(struct{}) state.StoreF[module.TxResult] {
					return state.Map(nameKey.Remove(nameKey.Brand(key)), func(struct{}) module.TxResult {
						return module.TxResult{Events: []module.Event{{Name: "KeyRevoked", Data: key}}}
					})
				})
			},
		)

	case SetGuardianRequest:
		value := tx.Signed.Value
		valueBytes := setGuardianTxCodec.EncodeBytes(value)
		return state.Bind(
			verifyNamedAccountMutation(nameKey, account, value.AccountName, tx.Envelope, value.Nonce, tx.Signed.Sig, valueBytes),
			func(acct Account) state.StoreF[module.TxResult] {
				acct.Nonce++
				acct.Guardian = value.Guardian
				return state.Map(account.Put(account.Brand(value.AccountName), acct), func(struct{}) module.TxResult {
					return module.TxResult{Events: []module.Event{{Name: "GuardianSet", Data: value.AccountName}}}
				})
			},
		)

	default:
		return state.Raise[module.TxResult](newAccountsError("accounts: unrecognized transaction type %T", ctx.Tx))
	}
}
