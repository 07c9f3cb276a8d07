// Package accounts is a worked example module built on crypto/trie/state/
// module: named accounts with owner/guardian-gated key management, and
// coordinator-gated groups, both driving the signature verification
// pipeline end to end.
package accounts

import (
	"github.com/sigilaris/sigil/codec"
	"github.com/sigilaris/sigil/crypto"
	"github.com/sigilaris/sigil/prim"
)

// uint64Codec is the plain unsigned varint codec for the counters this
// package stores (nonces, member counts) — order-preservation isn't
// needed for these, they are never table keys.
var uint64Codec codec.Codec[uint64] = codec.NewCodec(
	func(v uint64) []byte { return codec.PutUvarint(v) },
	func(buf []byte) (uint64, []byte, error) { return codec.Uvarint(buf) },
)

// KeyRegistration is the value stored under (accountName, keyId20) in the
// nameKey table: a key is simply registered, or registered with an
// expiry.
type KeyRegistration struct {
	ExpiresAt *int64
}

var keyRegistrationCodec codec.Codec[KeyRegistration] = codec.NewCodec(
	func(v KeyRegistration) []byte { return codec.EncodeOption[int64](codec.LongCodec, v.ExpiresAt) },
	func(buf []byte) (KeyRegistration, []byte, error) {
		exp, rest, err := codec.DecodeOption[int64](codec.LongCodec, buf)
		if err != nil {
			return KeyRegistration{}, nil, err
		}
		return KeyRegistration{ExpiresAt: exp}, rest, nil
	},
)

// Account is the value stored under accountName in the account table.
type Account struct {
	Owner    crypto.KeyId20
	Guardian *crypto.KeyId20
	Nonce    uint64
}

var accountCodec codec.Codec[Account] = codec.NewCodec(
	func(v Account) []byte {
		out := crypto.KeyId20Codec.EncodeBytes(v.Owner)
		out = append(out, codec.EncodeOption[crypto.KeyId20](crypto.KeyId20Codec, v.Guardian)...)
		out = append(out, uint64Codec.EncodeBytes(v.Nonce)...)
		return out
	},
	func(buf []byte) (Account, []byte, error) {
		owner, rest, err := crypto.KeyId20Codec.DecodeBytes(buf)
		if err != nil {
			return Account{}, nil, err
		}
		guardian, rest, err := codec.DecodeOption[crypto.KeyId20](crypto.KeyId20Codec, rest)
		if err != nil {
			return Account{}, nil, err
		}
		nonce, rest, err := uint64Codec.DecodeBytes(rest)
		if err != nil {
			return Account{}, nil, err
		}
		return Account{Owner: owner, Guardian: guardian, Nonce: nonce}, rest, nil
	},
)

// NameKeyKey is the (accountName, keyId20) composite key of the nameKey
// table. It is never streamed over, so a plain (non-ordered) Codec is
// enough.
type NameKeyKey struct {
	AccountName prim.Utf8Key
	KeyId       crypto.KeyId20
}

var nameKeyKeyCodec codec.Codec[NameKeyKey] = codec.NewCodec(
	func(v NameKeyKey) []byte {
		out := prim.Utf8KeyCodec.EncodeBytes(v.AccountName)
		return append(out, crypto.KeyId20Codec.EncodeBytes(v.KeyId)...)
	},
	func(buf []byte) (NameKeyKey, []byte, error) {
		name, rest, err := prim.Utf8KeyCodec.DecodeBytes(buf)
		if err != nil {
			return NameKeyKey{}, nil, err
		}
		keyId, rest, err := crypto.KeyId20Codec.DecodeBytes(rest)
		if err != nil {
			return NameKeyKey{}, nil, err
		}
		return NameKeyKey{AccountName: name, KeyId: keyId}, rest, nil
	},
)

// Group is the value stored under groupName in the group table.
type Group struct {
	Coordinator crypto.KeyId20
	MemberCount uint64
	GroupNonce  uint64
}

var groupCodec codec.Codec[Group] = codec.NewCodec(
	func(v Group) []byte {
		out := crypto.KeyId20Codec.EncodeBytes(v.Coordinator)
		out = append(out, uint64Codec.EncodeBytes(v.MemberCount)...)
		out = append(out, uint64Codec.EncodeBytes(v.GroupNonce)...)
		return out
	},
	func(buf []byte) (Group, []byte, error) {
		coord, rest, err := crypto.KeyId20Codec.DecodeBytes(buf)
		if err != nil {
			return Group{}, nil, err
		}
		count, rest, err := uint64Codec.DecodeBytes(rest)
		if err != nil {
			return Group{}, nil, err
		}
		nonce, rest, err := uint64Codec.DecodeBytes(rest)
		if err != nil {
			return Group{}, nil, err
		}
		return Group{Coordinator: coord, MemberCount: count, GroupNonce: nonce}, rest, nil
	},
)

// GroupMemberKey is the (groupName, memberKeyId) composite key of the
// groupMember membership set. Its OrderedCodec concatenates two
// self-delimiting ordered encodings (Utf8Key's escape-terminate scheme,
// then a fixed-width 20-byte id), so lexicographic order on the
// concatenation matches (groupName, memberKeyId) order — the same
// composition argument state.tablePrefix relies on for its own prefix
// freedom.
type GroupMemberKey struct {
	GroupName prim.Utf8Key
	MemberId  crypto.KeyId20
}

type groupMemberKeyCodec struct{}

func (groupMemberKeyCodec) EncodeBytes(v GroupMemberKey) []byte {
	out := prim.Utf8KeyCodec.EncodeBytes(v.GroupName)
	return append(out, crypto.KeyId20Codec.EncodeBytes(v.MemberId)...)
}

func (groupMemberKeyCodec) DecodeBytes(buf []byte) (GroupMemberKey, []byte, error) {
	name, rest, err := prim.Utf8KeyCodec.DecodeBytes(buf)
	if err != nil {
		return GroupMemberKey{}, nil, err
	}
	memberId, rest, err := crypto.KeyId20Codec.DecodeBytes(rest)
	if err != nil {
		return GroupMemberKey{}, nil, err
	}
	return GroupMemberKey{GroupName: name, MemberId: memberId}, rest, nil
}

func (groupMemberKeyCodec) Compare(a, b GroupMemberKey) int {
	return codec.LexCompare(GroupMemberKeyCodec.EncodeBytes(a), GroupMemberKeyCodec.EncodeBytes(b))
}

// GroupMemberKeyCodec is the OrderedCodec for GroupMemberKey.
var GroupMemberKeyCodec codec.OrderedCodec[GroupMemberKey] = groupMemberKeyCodec{}

// membership is the unit value stored at every present groupMember key;
// only presence/absence carries information.
type membership struct{}

var membershipCodec codec.Codec[membership] = codec.NewCodec(
	func(membership) []byte { return nil },
	func(buf []byte) (membership, []byte, error) { return membership{}, buf, nil },
)
