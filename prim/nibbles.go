package prim

import "github.com/sigilaris/sigil/codec"

// Nibbles is an ordered sequence of 4-bit values aligned on nibble
// boundaries — the key alphabet of the radix-16 trie. Internally each
// nibble occupies one byte slot (0..15) for cheap head/tail slicing; only
// the wire encoding packs two nibbles per byte.
type Nibbles struct {
	nibs []byte
}

// NibblesFromBytes expands a byte string into its full nibble stream, high
// nibble of each byte first.
func NibblesFromBytes(b []byte) Nibbles {
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		out = append(out, c>>4, c&0x0F)
	}
	return Nibbles{nibs: out}
}

// NibblesFromSlice copies a slice of nibble values (each must be 0..15).
func NibblesFromSlice(n []byte) Nibbles {
	cp := make([]byte, len(n))
	copy(cp, n)
	return Nibbles{nibs: cp}
}

func (n Nibbles) Len() int     { return len(n.nibs) }
func (n Nibbles) IsEmpty() bool { return len(n.nibs) == 0 }
func (n Nibbles) At(i int) byte { return n.nibs[i] }

// Raw exposes the underlying nibble values, for callers (e.g. the trie)
// that need to build a new Nibbles by direct slice manipulation.
func (n Nibbles) Raw() []byte { return n.nibs }

// Head returns the first nibble and whether one exists.
func (n Nibbles) Head() (byte, bool) {
	if len(n.nibs) == 0 {
		return 0, false
	}
	return n.nibs[0], true
}

// Tail returns all but the first nibble.
func (n Nibbles) Tail() Nibbles {
	if len(n.nibs) == 0 {
		return n
	}
	return Nibbles{nibs: n.nibs[1:]}
}

// Slice returns the nibble range [i, j).
func (n Nibbles) Slice(i, j int) Nibbles { return Nibbles{nibs: n.nibs[i:j]} }

// StripPrefix removes prefix from the front of n, reporting false if n does
// not start with prefix.
func (n Nibbles) StripPrefix(prefix Nibbles) (Nibbles, bool) {
	if len(prefix.nibs) > len(n.nibs) {
		return Nibbles{}, false
	}
	for i, p := range prefix.nibs {
		if n.nibs[i] != p {
			return Nibbles{}, false
		}
	}
	return Nibbles{nibs: n.nibs[len(prefix.nibs):]}, true
}

// CommonPrefixLen returns the length of the longest shared prefix.
func (n Nibbles) CommonPrefixLen(o Nibbles) int {
	m := len(n.nibs)
	if len(o.nibs) < m {
		m = len(o.nibs)
	}
	i := 0
	for i < m && n.nibs[i] == o.nibs[i] {
		i++
	}
	return i
}

// Append concatenates two nibble streams.
func (n Nibbles) Append(o Nibbles) Nibbles {
	out := make([]byte, 0, len(n.nibs)+len(o.nibs))
	out = append(out, n.nibs...)
	out = append(out, o.nibs...)
	return Nibbles{nibs: out}
}

// Prepend returns a new Nibbles with nib placed before n.
func (n Nibbles) Prepend(nib byte) Nibbles {
	out := make([]byte, 0, len(n.nibs)+1)
	out = append(out, nib)
	out = append(out, n.nibs...)
	return Nibbles{nibs: out}
}

func (n Nibbles) Equal(o Nibbles) bool {
	if len(n.nibs) != len(o.nibs) {
		return false
	}
	for i := range n.nibs {
		if n.nibs[i] != o.nibs[i] {
			return false
		}
	}
	return true
}

// Compare gives the lexicographic order over the unpacked nibble stream.
func (n Nibbles) Compare(o Nibbles) int {
	m := len(n.nibs)
	if len(o.nibs) < m {
		m = len(o.nibs)
	}
	for i := 0; i < m; i++ {
		if n.nibs[i] != o.nibs[i] {
			if n.nibs[i] < o.nibs[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(n.nibs) < len(o.nibs):
		return -1
	case len(n.nibs) > len(o.nibs):
		return 1
	default:
		return 0
	}
}

type nibblesCodec struct{}

// EncodeBytes packs two nibbles per byte, left-aligned; an odd final nibble
// is padded with a zero low nibble, matching spec §6's wire layout.
func (nibblesCodec) EncodeBytes(v Nibbles) []byte {
	packed := make([]byte, (len(v.nibs)+1)/2)
	for i, nb := range v.nibs {
		if i%2 == 0 {
			packed[i/2] = nb << 4
		} else {
			packed[i/2] |= nb
		}
	}
	return append(codec.PutLen(len(v.nibs)), packed...)
}

func (nibblesCodec) DecodeBytes(buf []byte) (Nibbles, []byte, error) {
	count, rest, err := codec.TakeLen(buf)
	if err != nil {
		return Nibbles{}, nil, err
	}
	nbytes := (count + 1) / 2
	packed, rest, err := codec.TakeBytes(rest, nbytes)
	if err != nil {
		return Nibbles{}, nil, err
	}
	nibs := make([]byte, count)
	for i := 0; i < count; i++ {
		b := packed[i/2]
		if i%2 == 0 {
			nibs[i] = b >> 4
		} else {
			nibs[i] = b & 0x0F
		}
	}
	return Nibbles{nibs: nibs}, rest, nil
}

// NibblesCodec is the packed-nibble byte codec named in spec §6.
var NibblesCodec codec.Codec[Nibbles] = nibblesCodec{}
