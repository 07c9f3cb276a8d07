package module_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sigilaris/sigil/codec"
	"github.com/sigilaris/sigil/module"
	"github.com/sigilaris/sigil/prim"
	"github.com/sigilaris/sigil/state"
	"github.com/sigilaris/sigil/trie"
)

func uint64Codec() codec.Codec[uint64] {
	enc := func(v uint64) []byte {
		out := make([]byte, 8)
		for i := 0; i < 8; i++ {
			out[7-i] = byte(v >> (8 * i))
		}
		return codec.BytesCodec.EncodeBytes(out)
	}
	dec := func(b []byte) (uint64, []byte, error) {
		raw, rest, err := codec.BytesCodec.DecodeBytes(b)
		if err != nil {
			return 0, nil, err
		}
		var v uint64
		for _, c := range raw {
			v = v<<8 | uint64(c)
		}
		return v, rest, nil
	}
	return codec.NewCodec(enc, dec)
}

func balancesSpec() module.TableSpec {
	entry := state.Entry[prim.Utf8Key, uint64]{Name: "balances", KeyCodec: prim.Utf8KeyCodec, ValCodec: uint64Codec()}
	return module.TableSpec{
		Name: entry.Name,
		Mount: func(prefix []byte) any {
			return state.MountTable(prefix, entry)
		},
	}
}

type deposit struct {
	account prim.Utf8Key
	amount  uint64
}

func bankBlueprint() module.Blueprint {
	return module.Blueprint{
		Owns: []module.TableSpec{balancesSpec()},
		Reducer: func(ctx module.ReducerContext) state.StoreF[module.TxResult] {
			tbl, err := module.Lookup[state.Table[prim.Utf8Key, uint64]](ctx.Owned, "balances")
			if err != nil {
				return state.Raise[module.TxResult](err)
			}
			dep, ok := ctx.Tx.(deposit)
			if !ok {
				return state.Raise[module.TxResult](fmt.Errorf("bank: unexpected tx type %T", ctx.Tx))
			}
			return state.Bind(tbl.Get(tbl.Brand(dep.account)), func(cur *uint64) state.StoreF[module.TxResult] {
				var balance uint64
				if cur != nil {
					balance = *cur
				}
				balance += dep.amount
				return state.Map(tbl.Put(tbl.Brand(dep.account), balance), func(struct{}) module.TxResult {
					return module.TxResult{Data: balance}
				})
			})
		},
	}
}

func freshStoreState() state.StoreState {
	return state.NewStoreState(trie.NewState(), trie.NewMemStore(1<<20))
}

func TestMountBindsTablesAndValidatesPrefixFreedom(t *testing.T) {
	m, err := module.Mount(bankBlueprint(), state.Path{"bank"}, module.NewTablesProvider(module.Schema{}))
	require.NoError(t, err)
	require.NotEmpty(t, m.ModuleId.String())

	s := freshStoreState()
	_, res, err := state.Run(m.Apply(deposit{account: "alice", amount: 100}), s)
	require.NoError(t, err)
	require.Equal(t, uint64(100), res.Data)
}

func TestMountRejectsDuplicateOwnedName(t *testing.T) {
	bp := module.Blueprint{Owns: []module.TableSpec{balancesSpec(), balancesSpec()}}
	_, err := module.Mount(bp, state.Path{"bank"}, module.NewTablesProvider(module.Schema{}))
	require.Error(t, err)
}

func TestMountFailsWhenNeedIsUnavailable(t *testing.T) {
	bp := module.Blueprint{Needs: []string{"balances"}}
	_, err := module.Mount(bp, state.Path{"other"}, module.NewTablesProvider(module.Schema{}))
	require.Error(t, err)
}

func TestMountResolvesNeedsFromAnotherModulesProvider(t *testing.T) {
	bank, err := module.Mount(bankBlueprint(), state.Path{"bank"}, module.NewTablesProvider(module.Schema{}))
	require.NoError(t, err)

	reader := module.Blueprint{
		Needs: []string{"balances"},
		Reducer: func(ctx module.ReducerContext) state.StoreF[module.TxResult] {
			tbl, err := module.Lookup[state.Table[prim.Utf8Key, uint64]](ctx.Needs, "balances")
			if err != nil {
				return state.Raise[module.TxResult](err)
			}
			account := ctx.Tx.(prim.Utf8Key)
			return state.Map(tbl.Get(tbl.Brand(account)), func(v *uint64) module.TxResult {
				if v == nil {
					return module.TxResult{Data: uint64(0)}
				}
				return module.TxResult{Data: *v}
			})
		},
	}
	reporter, err := module.Mount(reader, state.Path{"reporter"}, bank.Provider())
	require.NoError(t, err)

	s := freshStoreState()
	s, _, err = state.Run(bank.Apply(deposit{account: "alice", amount: 42}), s)
	require.NoError(t, err)

	_, res, err := state.Run(reporter.Apply(prim.Utf8Key("alice")), s)
	require.NoError(t, err)
	require.Equal(t, uint64(42), res.Data)
}

func TestComposeRoutesByModuleId(t *testing.T) {
	bank, err := module.Mount(bankBlueprint(), state.Path{"bank"}, module.NewTablesProvider(module.Schema{}))
	require.NoError(t, err)
	composed := module.Compose(bank)

	s := freshStoreState()
	_, res, err := state.Run(composed.Apply(module.RoutedTx{ModuleId: bank.ModuleId, Tx: deposit{account: "bob", amount: 5}}), s)
	require.NoError(t, err)
	require.Equal(t, uint64(5), res.Data)
}

func TestComposeUnknownModuleIdFails(t *testing.T) {
	bank, err := module.Mount(bankBlueprint(), state.Path{"bank"}, module.NewTablesProvider(module.Schema{}))
	require.NoError(t, err)
	composed := module.Compose(bank)

	s := freshStoreState()
	_, _, err = state.Run(composed.Apply(module.RoutedTx{Tx: deposit{account: "bob", amount: 5}}), s)
	require.Error(t, err)
}

func TestExtendFallsBackToSecondReducerOnFirstsFailure(t *testing.T) {
	primary := module.Blueprint{
		Reducer: func(ctx module.ReducerContext) state.StoreF[module.TxResult] {
			return state.Raise[module.TxResult](fmt.Errorf("primary always declines"))
		},
	}
	secondary := bankBlueprint()

	m1, err := module.Mount(primary, state.Path{"bank"}, module.NewTablesProvider(module.Schema{}))
	require.NoError(t, err)
	m2, err := module.Mount(secondary, state.Path{"bank"}, module.NewTablesProvider(module.Schema{}))
	require.NoError(t, err)

	extended, err := module.Extend(m1, m2)
	require.NoError(t, err)

	s := freshStoreState()
	_, res, err := state.Run(extended.Apply(deposit{account: "carol", amount: 7}), s)
	require.NoError(t, err)
	require.Equal(t, uint64(7), res.Data)
}
