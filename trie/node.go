// Package trie implements the content-addressed radix-16 patricia trie:
// every node is keyed by the Keccak-256 hash of its canonical encoding, and
// modifications are persistent — they return a new root plus a
// reference-counted diff rather than mutating existing nodes.
package trie

import (
	"github.com/sigilaris/sigil/codec"
	"github.com/sigilaris/sigil/crypto"
	"github.com/sigilaris/sigil/prim"
)

// Kind tags the three node variants.
type Kind int

const (
	KindLeaf Kind = iota
	KindBranch
	KindBranchWithData
)

const (
	tagLeaf           byte = 0x01
	tagBranch         byte = 0x02
	tagBranchWithData byte = 0x03
)

// nodeMarker is the phantom type branding trie node hashes, so a node hash
// and, say, a transaction hash are distinct Go types even though both are
// [32]byte underneath.
type nodeMarker struct{}

// Hash identifies a Node by the Keccak-256 digest of its canonical
// encoding.
type Hash = crypto.Hash[nodeMarker]

// Node is the tagged union of the three trie node variants. The prefix is
// the shared nibble run along the edge leading into this node; Children is
// indexed by nibble value and Present is a 16-bit bitmap of which slots
// hold a child, matching the wire's existence_bits field exactly.
type Node struct {
	Kind     Kind
	Prefix   prim.Nibbles
	Children [16]Hash
	Present  uint16
	Value    []byte
}

func (n Node) hasChild(nb byte) bool { return n.Present&(1<<uint(nb)) != 0 }

func (n *Node) setChild(nb byte, h Hash) {
	n.Children[nb] = h
	n.Present |= 1 << uint(nb)
}

func (n *Node) clearChild(nb byte) {
	n.Children[nb] = Hash{}
	n.Present &^= 1 << uint(nb)
}

func (n Node) childCount() int {
	c := 0
	for i := 0; i < 16; i++ {
		if n.Present&(1<<uint(i)) != 0 {
			c++
		}
	}
	return c
}

// soleChild returns the single present child's nibble index and hash. It
// must only be called when childCount() == 1.
func (n Node) soleChild() (byte, Hash) {
	for i := 0; i < 16; i++ {
		if n.Present&(1<<uint(i)) != 0 {
			return byte(i), n.Children[i]
		}
	}
	panic("trie: soleChild called on a node with no children")
}

func (n Node) withPrefix(p prim.Nibbles) Node {
	cp := n
	cp.Prefix = p
	return cp
}

// HashNode computes a node's content-addressed identity.
func HashNode(n Node) Hash {
	return crypto.Hash[nodeMarker](crypto.Keccak256Array(EncodeNode(n)))
}

// EncodeNode renders a node to its canonical wire form:
//
//	Leaf:           tag(0x01) || encode(prefix) || BigNat(len(value)) || value
//	Branch:         tag(0x02) || encode(prefix) || existence_bits(2) || present_child_hashes(32 each)
//	BranchWithData: tag(0x03) || encode(prefix) || existence_bits(2) || present_child_hashes || BigNat(len(value)) || value
func EncodeNode(n Node) []byte {
	var out []byte
	switch n.Kind {
	case KindLeaf:
		out = append(out, tagLeaf)
		out = append(out, prim.NibblesCodec.EncodeBytes(n.Prefix)...)
		out = append(out, encodeValueBytes(n.Value)...)
	case KindBranch:
		out = append(out, tagBranch)
		out = append(out, prim.NibblesCodec.EncodeBytes(n.Prefix)...)
		out = append(out, encodeExistenceBits(n.Present)...)
		out = append(out, encodeChildren(n)...)
	case KindBranchWithData:
		out = append(out, tagBranchWithData)
		out = append(out, prim.NibblesCodec.EncodeBytes(n.Prefix)...)
		out = append(out, encodeExistenceBits(n.Present)...)
		out = append(out, encodeChildren(n)...)
		out = append(out, encodeValueBytes(n.Value)...)
	}
	return out
}

func encodeExistenceBits(present uint16) []byte {
	return []byte{byte(present >> 8), byte(present)}
}

func decodeExistenceBits(buf []byte) (uint16, []byte, error) {
	taken, rest, err := codec.TakeBytes(buf, 2)
	if err != nil {
		return 0, nil, err
	}
	return uint16(taken[0])<<8 | uint16(taken[1]), rest, nil
}

func encodeChildren(n Node) []byte {
	out := make([]byte, 0, n.childCount()*32)
	for i := 0; i < 16; i++ {
		if n.Present&(1<<uint(i)) != 0 {
			out = append(out, n.Children[i][:]...)
		}
	}
	return out
}

func decodeChildren(present uint16, buf []byte) ([16]Hash, []byte, error) {
	var children [16]Hash
	rest := buf
	for i := 0; i < 16; i++ {
		if present&(1<<uint(i)) == 0 {
			continue
		}
		var taken []byte
		var err error
		taken, rest, err = codec.TakeBytes(rest, 32)
		if err != nil {
			return children, nil, err
		}
		copy(children[i][:], taken)
	}
	return children, rest, nil
}

// encodeValueBytes is BigNat(len(value)) ++ value, per spec §6.
func encodeValueBytes(v []byte) []byte {
	lenNat := prim.BigNatFromUint64(uint64(len(v)))
	out := prim.BigNatCodec.EncodeBytes(lenNat)
	return append(out, v...)
}

func decodeValueBytes(buf []byte) ([]byte, []byte, error) {
	lenNat, rest, err := prim.BigNatCodec.DecodeBytes(buf)
	if err != nil {
		return nil, nil, err
	}
	n := lenNat.Big()
	if !n.IsUint64() || n.Uint64() > uint64(^uint(0)>>1) {
		return nil, nil, codec.NewDecodeError("trie: value length overflows int")
	}
	return codec.TakeBytes(rest, int(n.Uint64()))
}

// DecodeNode parses a node written by EncodeNode.
func DecodeNode(buf []byte) (Node, []byte, error) {
	tagB, rest, err := codec.TakeBytes(buf, 1)
	if err != nil {
		return Node{}, nil, err
	}
	prefix, rest, err := prim.NibblesCodec.DecodeBytes(rest)
	if err != nil {
		return Node{}, nil, err
	}
	switch tagB[0] {
	case tagLeaf:
		value, rest, err := decodeValueBytes(rest)
		if err != nil {
			return Node{}, nil, err
		}
		return Node{Kind: KindLeaf, Prefix: prefix, Value: value}, rest, nil
	case tagBranch, tagBranchWithData:
		present, rest, err := decodeExistenceBits(rest)
		if err != nil {
			return Node{}, nil, err
		}
		children, rest, err := decodeChildren(present, rest)
		if err != nil {
			return Node{}, nil, err
		}
		if tagB[0] == tagBranch {
			return Node{Kind: KindBranch, Prefix: prefix, Children: children, Present: present}, rest, nil
		}
		value, rest, err := decodeValueBytes(rest)
		if err != nil {
			return Node{}, nil, err
		}
		return Node{Kind: KindBranchWithData, Prefix: prefix, Children: children, Present: present, Value: value}, rest, nil
	default:
		return Node{}, nil, codec.NewDecodeError("trie: invalid node tag 0x%02x", tagB[0])
	}
}

// NodeCodec is the Codec[Node] instance built from EncodeNode/DecodeNode.
var NodeCodec codec.Codec[Node] = codec.NewCodec(EncodeNode, DecodeNode)
