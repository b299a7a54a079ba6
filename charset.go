package pegtree

import (
	"slices"
	"strings"
	"unicode"
)

// CharSet is a set of characters stored as sorted, non overlapping
// and non adjacent ranges.  Sentinels are never members, except for
// EOI which is tracked on its own so follower sets can say "the end
// of the input is fine here".
type CharSet struct {
	ranges []charRange
	eoi    bool
}

type charRange struct{ lo, hi rune }

func newCharSetForRange(lo, hi rune) CharSet {
	var cs CharSet
	cs.addRange(lo, hi)
	return cs
}

func (cs *CharSet) addRange(lo, hi rune) {
	if lo == EOI && hi == EOI {
		cs.eoi = true
		return
	}
	cs.ranges = append(cs.ranges, charRange{lo, hi})
	cs.normalize()
}

func (cs *CharSet) normalize() {
	slices.SortFunc(cs.ranges, func(a, b charRange) int { return int(a.lo - b.lo) })
	out := cs.ranges[:0]
	for _, r := range cs.ranges {
		if n := len(out); n > 0 && r.lo <= out[n-1].hi+1 {
			out[n-1].hi = max(out[n-1].hi, r.hi)
			continue
		}
		out = append(out, r)
	}
	cs.ranges = out
}

// Has reports whether r belongs to the set.
func (cs CharSet) Has(r rune) bool {
	if r == EOI {
		return cs.eoi
	}
	if IsMarker(r) {
		return false
	}
	_, found := slices.BinarySearchFunc(cs.ranges, r, func(cr charRange, r rune) int {
		switch {
		case cr.hi < r:
			return -1
		case cr.lo > r:
			return 1
		default:
			return 0
		}
	})
	return found
}

// HasEOI reports whether the end of the input belongs to the set.
func (cs CharSet) HasEOI() bool { return cs.eoi }

func (cs CharSet) IsEmpty() bool { return len(cs.ranges) == 0 && !cs.eoi }

// Union returns a new set with the members of both sets.
func (cs CharSet) Union(o CharSet) CharSet {
	out := CharSet{eoi: cs.eoi || o.eoi}
	out.ranges = make([]charRange, 0, len(cs.ranges)+len(o.ranges))
	out.ranges = append(out.ranges, cs.ranges...)
	out.ranges = append(out.ranges, o.ranges...)
	out.normalize()
	return out
}

func (cs CharSet) Equal(o CharSet) bool {
	return cs.eoi == o.eoi && slices.Equal(cs.ranges, o.ranges)
}

func (cs CharSet) String() string {
	var s strings.Builder
	s.WriteString("[")
	for _, r := range cs.ranges {
		writeRange(&s, r.lo, r.hi)
	}
	if cs.eoi {
		if len(cs.ranges) > 0 {
			s.WriteString(" ")
		}
		s.WriteString("EOI")
	}
	s.WriteString("]")
	return s.String()
}

func writeRange(s *strings.Builder, start, end rune) {
	switch {
	case start == 0 && end >= unicode.MaxRune:
		s.WriteString("ANY")
	case start == end:
		s.WriteString(escapeLiteral(string(start)))
	case end == start+1:
		s.WriteString(escapeLiteral(string(start)))
		s.WriteString(escapeLiteral(string(end)))
	default:
		s.WriteString(escapeLiteral(string(start)))
		s.WriteString("..")
		s.WriteString(escapeLiteral(string(end)))
	}
}
