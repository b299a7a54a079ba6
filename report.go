package pegtree

import (
	"slices"
	"strings"
)

// candidates returns the characters that would have let one of the
// failed single character matchers succeed, in the order they were
// tried.  ANY and the end of the input are no use as insertions.
func (h *recoveringHandler) candidates() []rune {
	var out []rune
	for _, ctx := range h.failed {
		m, ok := singleChar(ctx.matcher)
		if !ok || m.isAny() || m.low == EOI || IsMarker(m.low) {
			continue
		}
		if !slices.Contains(out, m.low) {
			out = append(out, m.low)
		}
	}
	return out
}

// expectations names what the failed matchers wanted.  For each of
// them the outermost labelled matcher that started right at the
// error position speaks for it, so a failing rule reads as
// "expected Number" rather than as the digits it is made of.
func (h *recoveringHandler) expectations() ([]string, [][]string) {
	var labels []string
	var paths [][]string
	seen := make(map[string]bool)
	for _, ctx := range h.failed {
		label := h.expectedLabel(ctx)
		if !slices.Contains(labels, label) {
			labels = append(labels, label)
		}
		path := ctx.path()
		if key := strings.Join(path, "/"); !seen[key] {
			seen[key] = true
			paths = append(paths, path)
		}
	}
	return labels, paths
}

func (h *recoveringHandler) expectedLabel(ctx *MatchContext) string {
	var chain []*MatchContext
	for c := ctx; c != nil; c = c.parent {
		chain = append(chain, c)
	}
	for i := len(chain) - 1; i > 0; i-- {
		c := chain[i]
		if c.matcher.HasCustomLabel() && h.effectiveStart(c) == h.reportAt {
			return c.matcher.Label()
		}
	}
	return ctx.matcher.Label()
}

func (h *recoveringHandler) effectiveStart(c *MatchContext) int {
	if h.markers {
		return h.skipMarkers(c.startIndex)
	}
	return c.startIndex
}

// newParseError describes the error at buffer index at from what the
// reporting handler h collected there.  The error starts and ends at
// the same original index, callers widen it as needed.
func newParseError(kind ErrorKind, buffer InputBuffer, h *recoveringHandler, at int) ParseError {
	expected, paths := h.expectations()
	start := buffer.OriginalIndex(at)
	source := sourceOf(buffer)
	return ParseError{
		Kind:     kind,
		Start:    start,
		End:      start,
		Expected: expected,
		Found:    describeChar(buffer.CharAt(at)),
		Paths:    paths,
		Span:     source.Span(start, start),
	}
}

func (e *ParseError) setEnd(end int, source *DefaultInputBuffer) {
	e.End = max(e.Start, min(end, source.Len()))
	e.Span = source.Span(e.Start, e.End)
}
