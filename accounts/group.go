package accounts

import (
	"github.com/sigilaris/sigil/codec"
	"github.com/sigilaris/sigil/crypto"
	"github.com/sigilaris/sigil/module"
	"github.com/sigilaris/sigil/prim"
	"github.com/sigilaris/sigil/state"
)

const (
	groupTableName       = "group"
	groupMemberTableName = "groupMember"
)

// CreateGroupTx seeds a new group with its coordinator. As with
// CreateAccountTx, this is outside the signed mutation pipeline — there is
// no prior coordinator to authorize it.
type CreateGroupTx struct {
	GroupName   prim.Utf8Key
	Coordinator crypto.KeyId20
}

// AddMembersTx adds Members to GroupName. Already-present members are
// left alone (idempotent), but the transaction still consumes one nonce
// unit even if every member was already present.
type AddMembersTx struct {
	GroupName  prim.Utf8Key
	Members    []crypto.KeyId20
	GroupNonce uint64
}

var addMembersTxCodec codec.Codec[AddMembersTx] = codec.NewCodec(
	func(v AddMembersTx) []byte {
		out := prim.Utf8KeyCodec.EncodeBytes(v.GroupName)
		out = append(out, codec.EncodeList[crypto.KeyId20](crypto.KeyId20Codec, v.Members)...)
		return append(out, uint64Codec.EncodeBytes(v.GroupNonce)...)
	},
	func(buf []byte) (AddMembersTx, []byte, error) {
		name, rest, err := prim.Utf8KeyCodec.DecodeBytes(buf)
		if err != nil {
			return AddMembersTx{}, nil, err
		}
		members, rest, err := codec.DecodeList[crypto.KeyId20](crypto.KeyId20Codec, rest)
		if err != nil {
			return AddMembersTx{}, nil, err
		}
		nonce, rest, err := uint64Codec.DecodeBytes(rest)
		if err != nil {
			return AddMembersTx{}, nil, err
		}
		return AddMembersTx{GroupName: name, Members: members, GroupNonce: nonce}, rest, nil
	},
)

// SigningDigest is the digest a client signs to authorize v under envelope.
func (v AddMembersTx) SigningDigest(envelope MutateEnvelope) [32]byte {
	return digestFor(addMembersTxCodec.EncodeBytes(v), envelope)
}

// AddMembersRequest is the envelope-wrapped, signed form of AddMembersTx.
type AddMembersRequest struct {
	Envelope MutateEnvelope
	Signed   Signed[AddMembersTx]
}

// RemoveMembersTx removes Members from GroupName, idempotently.
type RemoveMembersTx struct {
	GroupName  prim.Utf8Key
	Members    []crypto.KeyId20
	GroupNonce uint64
}

var removeMembersTxCodec codec.Codec[RemoveMembersTx] = codec.NewCodec(
	func(v RemoveMembersTx) []byte {
		out := prim.Utf8KeyCodec.EncodeBytes(v.GroupName)
		out = append(out, codec.EncodeList[crypto.KeyId20](crypto.KeyId20Codec, v.Members)...)
		return append(out, uint64Codec.EncodeBytes(v.GroupNonce)...)
	},
	func(buf []byte) (RemoveMembersTx, []byte, error) {
		name, rest, err := prim.Utf8KeyCodec.DecodeBytes(buf)
		if err != nil {
			return RemoveMembersTx{}, nil, err
		}
		members, rest, err := codec.DecodeList[crypto.KeyId20](crypto.KeyId20Codec, rest)
		if err != nil {
			return RemoveMembersTx{}, nil, err
		}
		nonce, rest, err := uint64Codec.DecodeBytes(rest)
		if err != nil {
			return RemoveMembersTx{}, nil, err
		}
		return RemoveMembersTx{GroupName: name, Members: members, GroupNonce: nonce}, rest, nil
	},
)

// SigningDigest is the digest a client signs to authorize v under envelope.
func (v RemoveMembersTx) SigningDigest(envelope MutateEnvelope) [32]byte {
	return digestFor(removeMembersTxCodec.EncodeBytes(v), envelope)
}

// RemoveMembersRequest is the envelope-wrapped, signed form of
// RemoveMembersTx.
type RemoveMembersRequest struct {
	Envelope MutateEnvelope
	Signed   Signed[RemoveMembersTx]
}

// DisbandGroupTx removes GroupName entirely. Only valid when the group's
// membership set is already empty.
type DisbandGroupTx struct {
	GroupName  prim.Utf8Key
	GroupNonce uint64
}

var disbandGroupTxCodec codec.Codec[DisbandGroupTx] = codec.NewCodec(
	func(v DisbandGroupTx) []byte {
		out := prim.Utf8KeyCodec.EncodeBytes(v.GroupName)
		return append(out, uint64Codec.EncodeBytes(v.GroupNonce)...)
	},
	func(buf []byte) (DisbandGroupTx, []byte, error) {
		name, rest, err := prim.Utf8KeyCodec.DecodeBytes(buf)
		if err != nil {
			return DisbandGroupTx{}, nil, err
		}
		nonce, rest, err := uint64Codec.DecodeBytes(rest)
		if err != nil {
			return DisbandGroupTx{}, nil, err
		}
		return DisbandGroupTx{GroupName: name, GroupNonce: nonce}, rest, nil
	},
)

// SigningDigest is the digest a client signs to authorize v under envelope.
func (v DisbandGroupTx) SigningDigest(envelope MutateEnvelope) [32]byte {
	return digestFor(disbandGroupTxCodec.EncodeBytes(v), envelope)
}

// DisbandGroupRequest is the envelope-wrapped, signed form of
// DisbandGroupTx.
type DisbandGroupRequest struct {
	Envelope MutateEnvelope
	Signed   Signed[DisbandGroupTx]
}

// GroupBlueprint owns the group and groupMember tables and applies
// CreateGroupTx, AddMembersRequest, RemoveMembersRequest, and
// DisbandGroupRequest transactions against them.
func GroupBlueprint() module.Blueprint {
	return module.Blueprint{
		Owns: []module.TableSpec{
			{
				Name: groupTableName,
				Mount: func(prefix []byte) any {
					return state.MountTable(prefix, state.Entry[prim.Utf8Key, Group]{
						Name: groupTableName, KeyCodec: prim.Utf8KeyCodec, ValCodec: groupCodec,
					})
				},
			},
			{
				Name: groupMemberTableName,
				Mount: func(prefix []byte) any {
					return state.MountOrderedTable(prefix, state.OrderedEntry[GroupMemberKey, membership]{
						Name: groupMemberTableName, KeyCodec: GroupMemberKeyCodec, ValCodec: membershipCodec,
					})
				},
			},
		},
		Reducer: groupReducer,
	}
}

func groupTables(p module.TablesProvider) (state.Table[prim.Utf8Key, Group], state.OrderedTable[GroupMemberKey, membership], error) {
	group, err := module.Lookup[state.Table[prim.Utf8Key, Group]](p, groupTableName)
	if err != nil {
		return state.Table[prim.Utf8Key, Group]{}, state.OrderedTable[GroupMemberKey, membership]{}, err
	}
	members, err := module.Lookup[state.OrderedTable[GroupMemberKey, membership]](p, groupMemberTableName)
	if err != nil {
		return state.Table[prim.Utf8Key, Group]{}, state.OrderedTable[GroupMemberKey, membership]{}, err
	}
	return group, members, nil
}

// addMembers adds each member not already present, returning how many
// were actually newly added.
func addMembers(tbl state.OrderedTable[GroupMemberKey, membership], groupName prim.Utf8Key, members []crypto.KeyId20) state.StoreF[int] {
	ops := make([]state.StoreF[bool], len(members))
	for i, m := range members {
		key := GroupMemberKey{GroupName: groupName, MemberId: m}
		ops[i] = state.Bind(tbl.Get(tbl.Brand(key)), func(existing *membership) state.StoreF[bool] {
			if existing != nil {
				return state.Pure(false)
			}
			return state.Map(tbl.Put(tbl.Brand(key), membership{}), func(struct{}) bool { return true })
		})
	}
	return state.Map(state.Sequence(ops), countTrue)
}

// removeMembers removes each member that is present, returning how many
// were actually removed.
func removeMembers(tbl state.OrderedTable[GroupMemberKey, membership], groupName prim.Utf8Key, members []crypto.KeyId20) state.StoreF[int] {
	ops := make([]state.StoreF[bool], len(members))
	for i, m := range members {
		key := GroupMemberKey{GroupName: groupName, MemberId: m}
		ops[i] = state.Bind(tbl.Get(tbl.Brand(key)), func(existing *membership) state.StoreF[bool] {
			if existing == nil {
				return state.Pure(false)
			}
			return state.Map(tbl.Remove(tbl.Brand(key)), func(struct{}) bool { return true })
		})
	}
	return state.Map(state.Sequence(ops), countTrue)
}

func countTrue(results []bool) int {
	n := 0
	for _, r := range results {
		if r {
			n++
		}
	}
	return n
}

func groupReducer(ctx module.ReducerContext) state.StoreF[module.TxResult] {
	groupTbl, memberTbl, err := groupTables(ctx.Owned)
	if err != nil {
		return state.Raise[module.TxResult](err)
	}

	switch tx := ctx.Tx.(type) {
	case CreateGroupTx:
		return state.Bind(groupTbl.Get(groupTbl.Brand(tx.GroupName)), func(existing *Group) state.StoreF[module.TxResult] {
			if existing != nil {
				return state.Raise[module.TxResult](newAccountsError("group %q already exists", tx.GroupName))
			}
			grp := Group{Coordinator: tx.Coordinator}
			return state.Map(groupTbl.Put(groupTbl.Brand(tx.GroupName), grp), func(struct{}) module.TxResult {
				return module.TxResult{Events: []module.Event{{Name: "GroupCreated", Data: tx.GroupName}}}
			})
		})

	case AddMembersRequest:
		value := tx.Signed.Value
		valueBytes := addMembersTxCodec.EncodeBytes(value)
		return state.Bind(
			verifyGroupMutation(groupTbl, value.GroupName, tx.Envelope, value.GroupNonce, tx.Signed.Sig, valueBytes),
			func(grp Group) state.StoreF[module.TxResult] {
				return state.Bind(addMembers(memberTbl, value.GroupName, value.Members), func(added int) state.StoreF[module.TxResult] {
					grp.GroupNonce++
					grp.MemberCount += uint64(added)
					return state.Map(groupTbl.Put(groupTbl.Brand(value.GroupName), grp), func(struct{}) module.TxResult {
						return module.TxResult{Events: []module.Event{{Name: "MembersAdded", Data: added}}}
					})
				})
			},
		)

	case RemoveMembersRequest:
		value := tx.Signed.Value
		valueBytes := removeMembersTxCodec.EncodeBytes(value)
		return state.Bind(
			verifyGroupMutation(groupTbl, value.GroupName, tx.Envelope, value.GroupNonce, tx.Signed.Sig, valueBytes),
			func(grp Group) state.StoreF[module.TxResult] {
				return state.Bind(removeMembers(memberTbl, value.GroupName, value.Members), func(removed int) state.StoreF[module.TxResult] {
					grp.GroupNonce++
					grp.MemberCount -= uint64(removed)
					return state.Map(groupTbl.Put(groupTbl.Brand(value.GroupName), grp), func(struct{}) module.TxResult {
						return module.TxResult{Events: []module.Event{{Name: "MembersRemoved", Data: removed}}}
					})
				})
			},
		)

	case DisbandGroupRequest:
		value := tx.Signed.Value
		valueBytes := disbandGroupTxCodec.EncodeBytes(value)
		return state.Bind(
			verifyGroupMutation(groupTbl, value.GroupName, tx.Envelope, value.GroupNonce, tx.Signed.Sig, valueBytes),
			func(grp Group) state.StoreF[module.TxResult] {
				if grp.MemberCount > 0 {
					return state.Raise[module.TxResult](newAccountsError("group %q still has %d members", value.GroupName, grp.MemberCount))
				}
				return state.Map(groupTbl.Remove(groupTbl.Brand(value.GroupName)), func(struct{}) module.TxResult {
					return module.TxResult{Events: []module.Event{{Name: "GroupDisbanded", Data: value.GroupName}}}
				})
			},
		)

	default:
		return state.Raise[module.TxResult](newAccountsError("accounts: unrecognized transaction type %T", ctx.Tx))
	}
}
