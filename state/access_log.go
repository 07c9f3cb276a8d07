package state

import mapset "github.com/deckarep/golang-set/v2"

// AccessLog records, per table prefix, which key byte-strings a
// computation read or wrote. Keys are recorded as strings (a Go byte
// slice is not itself hashable) purely so they can live in a
// mapset.Set — the recorded bytes are otherwise opaque.
//
// Recording happens before the underlying trie operation returns, so a
// failed read still counts as touching that key — the conservative policy
// spec §4.5 calls for so conflict detection never under-reports.
type AccessLog struct {
	Reads  map[string]mapset.Set[string]
	Writes map[string]mapset.Set[string]
}

// NewAccessLog returns an empty log.
func NewAccessLog() *AccessLog {
	return &AccessLog{Reads: map[string]mapset.Set[string]{}, Writes: map[string]mapset.Set[string]{}}
}

func ensure(m map[string]mapset.Set[string], prefix string) mapset.Set[string] {
	s, ok := m[prefix]
	if !ok {
		s = mapset.NewThreadUnsafeSet[string]()
		m[prefix] = s
	}
	return s
}

// RecordRead marks key (already encoded) as read under the table prefix.
func (l *AccessLog) RecordRead(prefix, key string) { ensure(l.Reads, prefix).Add(key) }

// RecordWrite marks key (already encoded) as written under the table prefix.
func (l *AccessLog) RecordWrite(prefix, key string) { ensure(l.Writes, prefix).Add(key) }

// Clone returns a deep-enough copy so mutating the clone never affects the
// original.
func (l *AccessLog) Clone() *AccessLog {
	cp := NewAccessLog()
	for prefix, s := range l.Reads {
		cp.Reads[prefix] = s.Clone()
	}
	for prefix, s := range l.Writes {
		cp.Writes[prefix] = s.Clone()
	}
	return cp
}

// ConflictsWith reports whether l and o, recorded by two transactions run
// against the same base state, touch a common (prefix, key) with at least
// one of them writing it.
func (l *AccessLog) ConflictsWith(o *AccessLog) bool {
	prefixes := mapset.NewThreadUnsafeSet[string]()
	for p := range l.Reads {
		prefixes.Add(p)
	}
	for p := range l.Writes {
		prefixes.Add(p)
	}
	for p := range o.Reads {
		prefixes.Add(p)
	}
	for p := range o.Writes {
		prefixes.Add(p)
	}

	for _, prefix := range prefixes.ToSlice() {
		lTouched := touched(l, prefix)
		oTouched := touched(o, prefix)
		common := lTouched.Intersect(oTouched)
		if common.Cardinality() == 0 {
			continue
		}
		lWrites, lOK := l.Writes[prefix]
		oWrites, oOK := o.Writes[prefix]
		for _, key := range common.ToSlice() {
			if (lOK && lWrites.Contains(key)) || (oOK && oWrites.Contains(key)) {
				return true
			}
		}
	}
	return false
}

func touched(l *AccessLog, prefix string) mapset.Set[string] {
	out := mapset.NewThreadUnsafeSet[string]()
	if s, ok := l.Reads[prefix]; ok {
		out = out.Union(s)
	}
	if s, ok := l.Writes[prefix]; ok {
		out = out.Union(s)
	}
	return out
}
