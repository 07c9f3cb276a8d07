package trie

import lru "github.com/hashicorp/golang-lru/v2"

// CachingNodeStore decorates another NodeStore with an LRU layer of
// decoded nodes, avoiding repeated decode costs for hot paths (an account
// table's root-to-leaf chain under heavy read traffic, say) without taking
// on fastcache's byte-budget accounting when a node count budget is the
// more natural fit.
type CachingNodeStore struct {
	backing NodeStore
	cache   *lru.Cache[Hash, Node]
}

// NewCachingNodeStore wraps backing with an LRU of at most size decoded
// nodes.
func NewCachingNodeStore(backing NodeStore, size int) (*CachingNodeStore, error) {
	c, err := lru.New[Hash, Node](size)
	if err != nil {
		return nil, err
	}
	return &CachingNodeStore{backing: backing, cache: c}, nil
}

func (s *CachingNodeStore) Fetch(h Hash) (Node, bool, error) {
	if n, ok := s.cache.Get(h); ok {
		return n, true, nil
	}
	n, ok, err := s.backing.Fetch(h)
	if err != nil || !ok {
		return n, ok, err
	}
	s.cache.Add(h, n)
	return n, true, nil
}
