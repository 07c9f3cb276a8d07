package state

import (
	"github.com/sigilaris/sigil/codec"
	"github.com/sigilaris/sigil/trie"
)

// Entry describes one table a blueprint owns or needs: its name and the
// codecs for its key and value types. Mount turns an Entry into a Table
// bound to a concrete byte prefix.
type Entry[K, V any] struct {
	Name     string
	KeyCodec codec.Codec[K]
	ValCodec codec.Codec[V]
}

// OrderedEntry is an Entry whose key additionally supports streamFrom,
// requiring an OrderedCodec rather than a plain Codec.
type OrderedEntry[K, V any] struct {
	Name     string
	KeyCodec codec.OrderedCodec[K]
	ValCodec codec.Codec[V]
}

// BrandedKey pairs a key with the prefix of the table that branded it.
// Get/Put/Remove address the key under their own table's prefix and do not
// compare it with the recorded one, and keys of two tables with the same K
// have the same Go type, so a key branded by one table is accepted by
// another.
type BrandedKey[K any] struct {
	prefix []byte
	key    K
}

// Table is a mounted Entry: a concrete byte prefix plus the codecs needed
// to read and write through it.
type Table[K, V any] struct {
	prefix   []byte
	name     string
	keyCodec codec.Codec[K]
	valCodec codec.Codec[V]
}

// MountTable binds e to prefix, the table prefix module.Mount computed for
// it via tablePrefix(path, e.Name).
func MountTable[K, V any](prefix []byte, e Entry[K, V]) Table[K, V] {
	return Table[K, V]{prefix: prefix, name: e.Name, keyCodec: e.KeyCodec, valCodec: e.ValCodec}
}

func (t Table[K, V]) Name() string { return t.name }

// Brand produces the BrandedKey that Get/Put/Remove take.
func (t Table[K, V]) Brand(k K) BrandedKey[K] { return BrandedKey[K]{prefix: t.prefix, key: k} }

func (t Table[K, V]) fullKey(k K) []byte {
	out := make([]byte, 0, len(t.prefix)+16)
	out = append(out, t.prefix...)
	out = append(out, t.keyCodec.EncodeBytes(k)...)
	return out
}

// Get decodes the value stored at bk, if any, recording a read.
func (t Table[K, V]) Get(bk BrandedKey[K]) StoreF[*V] {
	return func(s StoreState) (StoreState, *V, error) {
		fullKey := t.fullKey(bk.key)
		s.Log.RecordRead(string(t.prefix), string(t.keyCodec.EncodeBytes(bk.key)))

		raw, ok, err := trie.Get(s.Trie, s.Store, fullKey)
		if err != nil {
			return s, nil, err
		}
		if !ok {
			return s, nil, nil
		}
		v, rest, err := t.valCodec.DecodeBytes(raw)
		if err != nil {
			return s, nil, newStateError("table %q: decoding value: %s", t.name, err.Error())
		}
		if len(rest) != 0 {
			return s, nil, newStateError("table %q: trailing bytes decoding value", t.name)
		}
		return s, &v, nil
	}
}

// Put writes v at bk, recording a write.
func (t Table[K, V]) Put(bk BrandedKey[K], v V) StoreF[struct{}] {
	return func(s StoreState) (StoreState, struct{}, error) {
		fullKey := t.fullKey(bk.key)
		s.Log.RecordWrite(string(t.prefix), string(t.keyCodec.EncodeBytes(bk.key)))

		newTrie, err := trie.Put(s.Trie, s.Store, fullKey, t.valCodec.EncodeBytes(v))
		if err != nil {
			return s, struct{}{}, err
		}
		s.Trie = newTrie
		return s, struct{}{}, nil
	}
}

// Remove deletes the entry at bk, recording a write.
func (t Table[K, V]) Remove(bk BrandedKey[K]) StoreF[struct{}] {
	return func(s StoreState) (StoreState, struct{}, error) {
		fullKey := t.fullKey(bk.key)
		s.Log.RecordWrite(string(t.prefix), string(t.keyCodec.EncodeBytes(bk.key)))

		newTrie, err := trie.Remove(s.Trie, s.Store, fullKey)
		if err != nil {
			return s, struct{}{}, err
		}
		s.Trie = newTrie
		return s, struct{}{}, nil
	}
}

// Pair is one (key, value) result of OrderedTable.StreamFrom.
type Pair[K, V any] struct {
	Key   K
	Value V
}

// OrderedTable is a mounted OrderedEntry, additionally exposing
// StreamFrom — only possible because its key codec satisfies the
// OrderedCodec law, which is what makes key byte order and key value
// order coincide.
type OrderedTable[K, V any] struct {
	prefix   []byte
	name     string
	keyCodec codec.OrderedCodec[K]
	valCodec codec.Codec[V]
}

// MountOrderedTable binds e to prefix.
func MountOrderedTable[K, V any](prefix []byte, e OrderedEntry[K, V]) OrderedTable[K, V] {
	return OrderedTable[K, V]{prefix: prefix, name: e.Name, keyCodec: e.KeyCodec, valCodec: e.ValCodec}
}

func (t OrderedTable[K, V]) Name() string { return t.name }

func (t OrderedTable[K, V]) Brand(k K) BrandedKey[K] { return BrandedKey[K]{prefix: t.prefix, key: k} }

func (t OrderedTable[K, V]) asTable() Table[K, V] {
	return Table[K, V]{prefix: t.prefix, name: t.name, keyCodec: t.keyCodec, valCodec: t.valCodec}
}

func (t OrderedTable[K, V]) Get(bk BrandedKey[K]) StoreF[*V] { return t.asTable().Get(bk) }

func (t OrderedTable[K, V]) Put(bk BrandedKey[K], v V) StoreF[struct{}] { return t.asTable().Put(bk, v) }

func (t OrderedTable[K, V]) Remove(bk BrandedKey[K]) StoreF[struct{}] { return t.asTable().Remove(bk) }

// StreamFrom returns every (key, value) pair whose key starts with
// keyPrefix, in key order. Per spec §4.5 this records a single scan read
// at the table prefix rather than one read per key touched.
func (t OrderedTable[K, V]) StreamFrom(keyPrefix []byte) StoreF[[]Pair[K, V]] {
	return func(s StoreState) (StoreState, []Pair[K, V], error) {
		s.Log.RecordRead(string(t.prefix), string(keyPrefix))

		full := append(append([]byte{}, t.prefix...), keyPrefix...)
		entries, err := trie.StreamFrom(s.Trie, s.Store, full)
		if err != nil {
			return s, nil, err
		}
		out := make([]Pair[K, V], 0, len(entries))
		for _, e := range entries {
			keyBytes := e.Key[len(t.prefix):]
			k, krest, err := t.keyCodec.DecodeBytes(keyBytes)
			if err != nil || len(krest) != 0 {
				return s, nil, newStateError("table %q: decoding streamed key: %v", t.name, err)
			}
			v, vrest, err := t.valCodec.DecodeBytes(e.Value)
			if err != nil || len(vrest) != 0 {
				return s, nil, newStateError("table %q: decoding streamed value: %v", t.name, err)
			}
			out = append(out, Pair[K, V]{Key: k, Value: v})
		}
		return s, out, nil
	}
}
