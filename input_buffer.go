package pegtree

import "strings"

// Sentinel characters.  They live in the Unicode noncharacter block
// so they never collide with well formed text.
const (
	// EOI is returned by CharAt for any index past the end of the
	// input.  A U+FFFF in the input itself reads as EOI too, so
	// matching stops there.
	EOI rune = '\uFFFF'

	// DelError marks that the character following it is skipped
	// by single character matchers.
	DelError rune = '\uFDEA'

	// InsError marks that the character following it was inserted
	// by the recovery engine.
	InsError rune = '\uFDEB'

	// Resync marks the position where the enclosing enforced
	// construct gives up and consumes illegal input.
	Resync rune = '\uFDEC'
)

// IsMarker tells whether r is one of the characters the recovery
// engine inserts into a MutableInputBuffer.
func IsMarker(r rune) bool {
	return r == DelError || r == InsError || r == Resync
}

// InputBuffer is the indexable view over the text being parsed.
// Reading is free of side effects, so matchers can look ahead and
// behind freely.
type InputBuffer interface {
	// CharAt returns the character at index, or EOI if index
	// is beyond the end of the input.
	CharAt(index int) rune

	// Len is the number of characters in the buffer, without
	// the EOI padding.
	Len() int

	// Extract returns the text between start and end as the
	// grammar sees it.
	Extract(start, end int) string

	// OriginalIndex maps an index of this buffer back into the
	// text the buffer was created from.
	OriginalIndex(index int) int

	// Location returns line and column of an original index.
	Location(index int) Location
}

// DefaultInputBuffer is the immutable InputBuffer created for every
// parse run.
type DefaultInputBuffer struct {
	runes []rune
	pos   *posIndex
}

func NewInputBuffer(input string) *DefaultInputBuffer {
	runes := []rune(input)
	return &DefaultInputBuffer{runes: runes, pos: newPosIndex(runes)}
}

func (b *DefaultInputBuffer) CharAt(index int) rune {
	if index < 0 || index >= len(b.runes) {
		return EOI
	}
	return b.runes[index]
}

func (b *DefaultInputBuffer) Len() int                    { return len(b.runes) }
func (b *DefaultInputBuffer) OriginalIndex(index int) int { return index }
func (b *DefaultInputBuffer) Location(index int) Location { return b.pos.LocationAt(index) }
func (b *DefaultInputBuffer) Span(start, end int) Span    { return b.pos.Span(start, end) }

func (b *DefaultInputBuffer) Extract(start, end int) string {
	start, end = clampRange(start, end, len(b.runes))
	return string(b.runes[start:end])
}

func (b *DefaultInputBuffer) String() string { return string(b.runes) }

func clampRange(start, end, size int) (int, int) {
	start = max(0, min(start, size))
	end = max(start, min(end, size))
	return start, end
}

// describeChar renders a character for error messages.
func describeChar(r rune) string {
	switch r {
	case EOI:
		return "EOI"
	case '\n':
		return `'\n'`
	case '\r':
		return `'\r'`
	case '\t':
		return `'\t'`
	}
	return "'" + escapeLiteral(string(r)) + "'"
}

func describeText(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(escapeLiteral(s))
	b.WriteByte('"')
	return b.String()
}
