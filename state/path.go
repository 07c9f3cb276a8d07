// Package state implements the table layer modules are built on: a
// store monad threading trie access and an access log through a sequence
// of table operations, plus the prefix-encoding scheme that keeps every
// mounted table's keyspace disjoint from every other's.
package state

import (
	"github.com/sigilaris/sigil/prim"
)

// Path is a sequence of named segments identifying where a blueprint is
// mounted, e.g. []string{"accounts", "v1"}.
type Path []string

// encodeSegment is BigNat(len(utf8(s))) ++ utf8(s) ++ 0x00: the length
// header rules out a segment being mistaken for a shorter one sharing its
// byte prefix, and the trailing 0x00 rules out two segments differing only
// in a split point mid-content.
func encodeSegment(s string) []byte {
	b := []byte(s)
	out := prim.BigNatCodec.EncodeBytes(prim.BigNatFromUint64(uint64(len(b))))
	out = append(out, b...)
	out = append(out, 0x00)
	return out
}

// encodePath is BigNat(n) ++ the concatenation of each segment's encoding.
func encodePath(p Path) []byte {
	out := prim.BigNatCodec.EncodeBytes(prim.BigNatFromUint64(uint64(len(p))))
	for _, s := range p {
		out = append(out, encodeSegment(s)...)
	}
	return out
}

// tablePrefix is the byte prefix every key of the table named name, mounted
// at path, is stored under.
func tablePrefix(path Path, name string) []byte {
	return append(encodePath(path), encodeSegment(name)...)
}

// TablePrefix is the exported form of tablePrefix, for callers (module.Mount
// and tests) that need to compute a table's prefix directly rather than
// going through ValidatePrefixFree.
func TablePrefix(path Path, name string) []byte {
	return tablePrefix(path, name)
}

// ValidatePrefixFree checks that no table prefix among the supplied
// (path, name) pairs is a byte-prefix of another — the runtime
// enforcement point for the prefix-freedom theorem (spec §4.6). Only the
// pairs passed in are compared; module.Mount passes the tables of the one
// blueprint it is mounting.
func ValidatePrefixFree(pairs []struct {
	Path Path
	Name string
}) error {
	prefixes := make([][]byte, len(pairs))
	for i, p := range pairs {
		prefixes[i] = tablePrefix(p.Path, p.Name)
	}
	for i := range prefixes {
		for j := range prefixes {
			if i == j {
				continue
			}
			if bytesHasPrefix(prefixes[j], prefixes[i]) {
				return newStateError(
					"state: table prefix for %q at %v is not prefix-free against %q at %v",
					pairs[i].Name, pairs[i].Path, pairs[j].Name, pairs[j].Path)
			}
		}
	}
	return nil
}

func bytesHasPrefix(b, prefix []byte) bool {
	if len(prefix) > len(b) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}
