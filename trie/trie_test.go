package trie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	store := NewMemStore(1 << 20)
	state := NewState()

	state, err := Put(state, store, []byte("alpha"), []byte("one"))
	require.NoError(t, err)
	state, err = Put(state, store, []byte("alphabet"), []byte("two"))
	require.NoError(t, err)
	state, err = Put(state, store, []byte("beta"), []byte("three"))
	require.NoError(t, err)

	v, ok, err := Get(state, store, []byte("alpha"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("one"), v)

	v, ok, err = Get(state, store, []byte("alphabet"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("two"), v)

	v, ok, err = Get(state, store, []byte("beta"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("three"), v)

	_, ok, err = Get(state, store, []byte("gamma"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPutThenRemoveThenGetMisses(t *testing.T) {
	store := NewMemStore(1 << 20)
	state := NewState()

	state, err := Put(state, store, []byte("k1"), []byte("v1"))
	require.NoError(t, err)
	state, err = Put(state, store, []byte("k2"), []byte("v2"))
	require.NoError(t, err)

	state, err = Remove(state, store, []byte("k1"))
	require.NoError(t, err)

	_, ok, err := Get(state, store, []byte("k1"))
	require.NoError(t, err)
	require.False(t, ok)

	v, ok, err := Get(state, store, []byte("k2"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v2"), v)
}

func TestRemoveLastKeyEmptiesTrie(t *testing.T) {
	store := NewMemStore(1 << 20)
	state := NewState()

	state, err := Put(state, store, []byte("only"), []byte("value"))
	require.NoError(t, err)
	state, err = Remove(state, store, []byte("only"))
	require.NoError(t, err)

	require.Nil(t, state.CurrentRoot)
	_, ok, err := Get(state, store, []byte("only"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRemoveAbsentKeyLeavesStateUnchanged(t *testing.T) {
	store := NewMemStore(1 << 20)
	state := NewState()
	state, err := Put(state, store, []byte("present"), []byte("value"))
	require.NoError(t, err)

	before := *state.CurrentRoot
	after, err := Remove(state, store, []byte("absent"))
	require.NoError(t, err)
	require.Equal(t, before, *after.CurrentRoot)
}

func TestRootIsOrderIndependentForDisjointKeys(t *testing.T) {
	store1 := NewMemStore(1 << 20)
	s1 := NewState()
	s1, err := Put(s1, store1, []byte("aaa"), []byte("1"))
	require.NoError(t, err)
	s1, err = Put(s1, store1, []byte("bbb"), []byte("2"))
	require.NoError(t, err)
	s1, err = Put(s1, store1, []byte("ccc"), []byte("3"))
	require.NoError(t, err)

	store2 := NewMemStore(1 << 20)
	s2 := NewState()
	s2, err = Put(s2, store2, []byte("ccc"), []byte("3"))
	require.NoError(t, err)
	s2, err = Put(s2, store2, []byte("aaa"), []byte("1"))
	require.NoError(t, err)
	s2, err = Put(s2, store2, []byte("bbb"), []byte("2"))
	require.NoError(t, err)

	require.Equal(t, *s1.CurrentRoot, *s2.CurrentRoot)
}

func TestRootConvergesAfterInsertThenRemove(t *testing.T) {
	store := NewMemStore(1 << 20)
	base := NewState()
	base, err := Put(base, store, []byte("stable"), []byte("x"))
	require.NoError(t, err)
	baseRoot := *base.CurrentRoot

	withExtra, err := Put(base, store, []byte("transient"), []byte("y"))
	require.NoError(t, err)
	withExtra, err = Remove(withExtra, store, []byte("transient"))
	require.NoError(t, err)

	require.Equal(t, baseRoot, *withExtra.CurrentRoot)
}

func TestOverwriteValueAtSamePrefix(t *testing.T) {
	store := NewMemStore(1 << 20)
	state := NewState()
	state, err := Put(state, store, []byte("key"), []byte("old"))
	require.NoError(t, err)
	state, err = Put(state, store, []byte("key"), []byte("new"))
	require.NoError(t, err)

	v, ok, err := Get(state, store, []byte("key"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("new"), v)
}

func TestStreamFromReturnsAllMatchingKeysInOrder(t *testing.T) {
	store := NewMemStore(1 << 20)
	state := NewState()
	pairs := map[string]string{
		"cat":      "1",
		"car":      "2",
		"card":     "3",
		"dog":      "4",
		"caterpie": "5",
	}
	for k, v := range pairs {
		var err error
		state, err = Put(state, store, []byte(k), []byte(v))
		require.NoError(t, err)
	}

	entries, err := StreamFrom(state, store, []byte("ca"))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	var keys []string
	for _, e := range entries {
		keys = append(keys, string(e.Key))
	}
	require.Equal(t, []string{"car", "card", "cat", "caterpie"}, keys)

	all, err := StreamFrom(state, store, nil)
	require.NoError(t, err)
	require.Len(t, all, len(pairs))
}

func TestStreamFromEmptyTrie(t *testing.T) {
	store := NewMemStore(1 << 20)
	state := NewState()
	entries, err := StreamFrom(state, store, []byte("x"))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDiffAbelianMonoidCancellation(t *testing.T) {
	diff := NewDiff()
	n := Node{Kind: KindLeaf, Value: []byte("v")}
	h := HashNode(n)

	diff.Add(h, n)
	_, ok := diff.Get(h)
	require.True(t, ok)

	diff.Remove(h, n)
	_, ok = diff.Get(h)
	require.False(t, ok, "add then remove of the same node must cancel to no visible entry")

	diff.Remove(h, n)
	diff.Add(h, n)
	_, ok = diff.Get(h)
	require.False(t, ok, "remove then add must also cancel")
}

func TestStateRebaseRequiresMatchingBase(t *testing.T) {
	store := NewMemStore(1 << 20)
	base := NewState()
	base, err := Put(base, store, []byte("shared"), []byte("v"))
	require.NoError(t, err)
	store.PutDiff(base.Diff)
	committed := base.Commit()

	branchA, err := Put(committed, store, []byte("a"), []byte("1"))
	require.NoError(t, err)
	branchB, err := Put(committed, store, []byte("b"), []byte("2"))
	require.NoError(t, err)

	merged, err := branchA.Rebase(branchB)
	require.NoError(t, err)
	v, ok, err := Get(merged, store, []byte("a"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)
	v, ok, err = Get(merged, store, []byte("shared"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)

	unrelated := NewState()
	_, err = branchA.Rebase(unrelated)
	require.ErrorIs(t, err, ErrDifferentBase)
}

func TestCachingNodeStoreDelegatesAndCaches(t *testing.T) {
	backing := NewMemStore(1 << 20)
	state := NewState()
	state, err := Put(state, backing, []byte("x"), []byte("y"))
	require.NoError(t, err)
	backing.PutDiff(state.Diff)

	cached, err := NewCachingNodeStore(backing, 16)
	require.NoError(t, err)

	v, ok, err := Get(State{CurrentRoot: state.CurrentRoot, Diff: NewDiff()}, cached, []byte("x"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("y"), v)
	require.Equal(t, 1, cached.cache.Len())
}
