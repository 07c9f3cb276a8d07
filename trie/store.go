package trie

import (
	"github.com/VictoriaMetrics/fastcache"

	"github.com/sigilaris/sigil/internal/xlog"
)

// NodeStore is the externally-supplied, content-addressed node lookup
// capability the trie operations traverse against. It is read-only from
// the trie's point of view: all writes flow through a Diff instead.
type NodeStore interface {
	Fetch(h Hash) (Node, bool, error)
}

// fetchOverlay looks a node up first in the pending diff (which shadows
// the backing store for any hash it has a positive-count entry for), then
// falls back to store. A hash that resolves to neither is trie corruption,
// not key absence, because every caller of fetchOverlay already knows the
// hash is supposed to be reachable.
func fetchOverlay(h Hash, diff *Diff, store NodeStore) (Node, error) {
	if n, ok := diff.Get(h); ok {
		return n, nil
	}
	n, ok, err := store.Fetch(h)
	if err != nil {
		return Node{}, err
	}
	if !ok {
		xlog.Error("trie node unreachable", "hash", h.Hex())
		return Node{}, newTrieError("trie: node %s unreachable", h.Hex())
	}
	return n, nil
}

// MemStore is a NodeStore backed by fastcache: nodes are stored as their
// canonical encoding, keyed by hash, and decoded again on Fetch. fastcache
// is an eviction cache rather than a map — a node committed via Put can in
// principle be evicted under memory pressure before it is ever read back,
// which is acceptable for a trie's content-addressed nodes (a cache miss
// here is reported through Fetch's ok=false, and a required-but-missing
// node surfaces as the usual trie corruption error, never silent data
// loss of a live root).
type MemStore struct {
	cache *fastcache.Cache
}

// NewMemStore returns a MemStore with the given approximate cache size in
// bytes.
func NewMemStore(maxBytes int) *MemStore {
	return &MemStore{cache: fastcache.New(maxBytes)}
}

func (s *MemStore) Fetch(h Hash) (Node, bool, error) {
	raw, ok := s.cache.HasGet(nil, h[:])
	if !ok {
		return Node{}, false, nil
	}
	n, rest, err := DecodeNode(raw)
	if err != nil {
		return Node{}, false, err
	}
	if len(rest) != 0 {
		xlog.Error("memstore: trailing bytes decoding node", "hash", h.Hex())
		return Node{}, false, newTrieError("memstore: trailing bytes decoding node %s", h.Hex())
	}
	return n, true, nil
}

// Put commits a node into the store directly, bypassing the diff
// machinery — used to seed a store with nodes produced by a prior
// operation's diff once that diff has been accepted as durable.
func (s *MemStore) Put(h Hash, n Node) { s.cache.Set(h[:], EncodeNode(n)) }

// PutDiff commits every positive-count entry of a diff into the store.
func (s *MemStore) PutDiff(d *Diff) {
	d.ForEach(func(h Hash, n Node, _ int) { s.Put(h, n) })
}
