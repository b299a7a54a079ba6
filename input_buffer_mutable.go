package pegtree

import (
	"fmt"
	"slices"
	"strings"
)

// MutableInputBuffer wraps another InputBuffer and allows single
// characters to be inserted and taken out again.  Only the recovery
// engine writes to it.  Indices of characters that were never
// inserted keep mapping back to the wrapped buffer through
// OriginalIndex, so locations computed before a mutation stay valid.
type MutableInputBuffer struct {
	buffer InputBuffer

	// inserts holds the sorted indices (in this buffer's
	// coordinates) of every inserted character and chars the
	// characters themselves.
	inserts []int
	chars   []rune
}

func NewMutableInputBuffer(buffer InputBuffer) *MutableInputBuffer {
	return &MutableInputBuffer{buffer: buffer}
}

func (b *MutableInputBuffer) CharAt(index int) rune {
	j, found := slices.BinarySearch(b.inserts, index)
	if found {
		return b.chars[j]
	}
	return b.buffer.CharAt(index - j)
}

func (b *MutableInputBuffer) Len() int {
	return b.buffer.Len() + len(b.inserts)
}

// InsertChar places c at index, shifting every character at or
// after index one position to the right.
func (b *MutableInputBuffer) InsertChar(index int, c rune) {
	j, _ := slices.BinarySearch(b.inserts, index)
	for k := j; k < len(b.inserts); k++ {
		b.inserts[k]++
	}
	b.inserts = slices.Insert(b.inserts, j, index)
	b.chars = slices.Insert(b.chars, j, c)
}

// UndoCharInsertion removes the character inserted at index and
// returns it.  Removing a character that was not inserted is a
// programming error.
func (b *MutableInputBuffer) UndoCharInsertion(index int) rune {
	j, found := slices.BinarySearch(b.inserts, index)
	if !found {
		panic(fmt.Sprintf("no character was inserted at index %d", index))
	}
	c := b.chars[j]
	b.inserts = slices.Delete(b.inserts, j, j+1)
	b.chars = slices.Delete(b.chars, j, j+1)
	for k := j; k < len(b.inserts); k++ {
		b.inserts[k]--
	}
	return c
}

func (b *MutableInputBuffer) OriginalIndex(index int) int {
	j, _ := slices.BinarySearch(b.inserts, index)
	return b.buffer.OriginalIndex(index - j)
}

func (b *MutableInputBuffer) Location(index int) Location {
	return b.buffer.Location(index)
}

// Extract returns the text as the grammar sees it: markers and the
// characters flagged for deletion are left out, inserted characters
// are kept.
func (b *MutableInputBuffer) Extract(start, end int) string {
	start, end = clampRange(start, end, b.Len())
	var s strings.Builder
	for i := start; i < end; i++ {
		switch c := b.CharAt(i); c {
		case DelError:
			i++
		case InsError, Resync:
		default:
			s.WriteRune(c)
		}
	}
	return s.String()
}

// Inserts returns how many characters were inserted so far.
func (b *MutableInputBuffer) Inserts() int { return len(b.inserts) }

func (b *MutableInputBuffer) String() string {
	var s strings.Builder
	for i := 0; i < b.Len(); i++ {
		switch c := b.CharAt(i); c {
		case DelError:
			s.WriteString("⟨del⟩")
		case InsError:
			s.WriteString("⟨ins⟩")
		case Resync:
			s.WriteString("⟨resync⟩")
		default:
			s.WriteRune(c)
		}
	}
	return s.String()
}
