package state_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sigilaris/sigil/codec"
	"github.com/sigilaris/sigil/prim"
	"github.com/sigilaris/sigil/state"
	"github.com/sigilaris/sigil/trie"
)

func freshStoreState() state.StoreState {
	return state.NewStoreState(trie.NewState(), trie.NewMemStore(1<<20))
}

func balancesEntry() state.Entry[prim.Utf8Key, uint64] {
	enc := func(v uint64) []byte { return codec.BytesCodec.EncodeBytes(uint64Bytes(v)) }
	dec := func(b []byte) (uint64, []byte, error) {
		raw, rest, err := codec.BytesCodec.DecodeBytes(b)
		if err != nil {
			return 0, nil, err
		}
		return bytesUint64(raw), rest, nil
	}
	return state.Entry[prim.Utf8Key, uint64]{
		Name:     "balances",
		KeyCodec: prim.Utf8KeyCodec,
		ValCodec: codec.NewCodec(enc, dec),
	}
}

func balancesOrderedEntry() state.OrderedEntry[prim.Utf8Key, uint64] {
	plain := balancesEntry()
	return state.OrderedEntry[prim.Utf8Key, uint64]{
		Name:     plain.Name,
		KeyCodec: prim.Utf8KeyCodec,
		ValCodec: plain.ValCodec,
	}
}

func uint64Bytes(v uint64) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[7-i] = byte(v >> (8 * i))
	}
	return out
}

func bytesUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func TestTablePutGetRoundTrip(t *testing.T) {
	s := freshStoreState()
	tbl := state.MountTable(state.TablePrefix(state.Path{"bank"}, "balances"), balancesEntry())

	s2, _, err := state.Run(tbl.Put(tbl.Brand("alice"), 100), s)
	require.NoError(t, err)

	_, got, err := state.Run(tbl.Get(tbl.Brand("alice")), s2)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, uint64(100), *got)
}

func TestTableGetMissingReturnsNilNoError(t *testing.T) {
	s := freshStoreState()
	tbl := state.MountTable(state.TablePrefix(state.Path{"bank"}, "balances"), balancesEntry())

	_, got, err := state.Run(tbl.Get(tbl.Brand("nobody")), s)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestTableRemoveThenGetMisses(t *testing.T) {
	s := freshStoreState()
	tbl := state.MountTable(state.TablePrefix(state.Path{"bank"}, "balances"), balancesEntry())

	s2, _, err := state.Run(tbl.Put(tbl.Brand("alice"), 100), s)
	require.NoError(t, err)
	s3, _, err := state.Run(tbl.Remove(tbl.Brand("alice")), s2)
	require.NoError(t, err)
	_, got, err := state.Run(tbl.Get(tbl.Brand("alice")), s3)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestOrderedTableStreamFromOrdersByKey(t *testing.T) {
	s := freshStoreState()
	tbl := state.MountOrderedTable(state.TablePrefix(state.Path{"bank"}, "balances"), balancesOrderedEntry())

	names := []string{"bob", "amy", "carl", "amy2"}
	cur := s
	for i, n := range names {
		var err error
		cur, _, err = state.Run(tbl.Put(tbl.Brand(prim.Utf8Key(n)), uint64(i)), cur)
		require.NoError(t, err)
	}

	_, pairs, err := state.Run(tbl.StreamFrom(nil), cur)
	require.NoError(t, err)
	require.Len(t, pairs, 4)
	got := make([]string, len(pairs))
	for i, p := range pairs {
		got[i] = string(p.Key)
	}
	require.Equal(t, []string{"amy", "amy2", "bob", "carl"}, got)
}

func TestValidatePrefixFreeAcceptsDistinctSiblingPaths(t *testing.T) {
	pairs := []struct {
		Path state.Path
		Name string
	}{
		{Path: state.Path{"app", "accounts"}, Name: "balances"},
		{Path: state.Path{"app", "accountants"}, Name: "balances"},
	}
	require.NoError(t, state.ValidatePrefixFree(pairs))
}

func TestValidatePrefixFreeRejectsDuplicate(t *testing.T) {
	pairs := []struct {
		Path state.Path
		Name string
	}{
		{Path: state.Path{"app"}, Name: "balances"},
		{Path: state.Path{"app"}, Name: "balances"},
	}
	require.Error(t, state.ValidatePrefixFree(pairs))
}

func TestAccessLogDisjointWritesDoNotConflict(t *testing.T) {
	a := state.NewAccessLog()
	b := state.NewAccessLog()
	a.RecordWrite("p", "x")
	b.RecordWrite("p", "y")
	require.False(t, a.ConflictsWith(b))
}

func TestAccessLogWriteWriteConflicts(t *testing.T) {
	a := state.NewAccessLog()
	b := state.NewAccessLog()
	a.RecordWrite("p", "x")
	b.RecordWrite("p", "x")
	require.True(t, a.ConflictsWith(b))
}

func TestAccessLogReadWriteConflicts(t *testing.T) {
	a := state.NewAccessLog()
	b := state.NewAccessLog()
	a.RecordRead("p", "x")
	b.RecordWrite("p", "x")
	require.True(t, a.ConflictsWith(b))
}

func TestAccessLogReadReadDoesNotConflict(t *testing.T) {
	a := state.NewAccessLog()
	b := state.NewAccessLog()
	a.RecordRead("p", "x")
	b.RecordRead("p", "x")
	require.False(t, a.ConflictsWith(b))
}

func TestAccessLogEmptyNeverConflicts(t *testing.T) {
	a := state.NewAccessLog()
	b := state.NewAccessLog()
	require.False(t, a.ConflictsWith(b))
}
