package pegtree

import (
	"fmt"
	"sort"
)

// Location points at a single character of the input.  Line and
// Column are 1-based, Column counts runes and Index is the 0-based
// rune offset.
type Location struct {
	Line   int
	Column int
	Index  int
}

func NewLocation(line, column, index int) Location {
	return Location{Line: line, Column: column, Index: index}
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Span is the pair of locations delimiting a region of the input.
type Span struct{ Start, End Location }

func NewSpan(start, end Location) Span {
	return Span{Start: start, End: end}
}

func (s Span) String() string {
	startLine, startCol := s.Start.Line, s.Start.Column
	endLine, endCol := s.End.Line, s.End.Column
	if startLine == endLine && startLine == 1 {
		if startCol == endCol {
			return fmt.Sprintf("%d", startCol)
		}
		return fmt.Sprintf("%d..%d", startCol, endCol)
	}
	if startLine == endLine && startCol == endCol {
		return fmt.Sprintf("%d:%d", startLine, startCol)
	}
	return fmt.Sprintf("%d:%d..%d:%d", startLine, startCol, endLine, endCol)
}

// posIndex translates rune offsets into line/column pairs.
type posIndex struct {
	size int

	// lineStart holds 0-based rune offsets of each line start
	lineStart []int
}

func newPosIndex(input []rune) *posIndex {
	// Always include line 1 starting at offset 0.
	lineStart := make([]int, 1, 64)
	for i, r := range input {
		if r == '\n' {
			lineStart = append(lineStart, i+1)
		}
	}
	return &posIndex{size: len(input), lineStart: lineStart}
}

func (pi *posIndex) LocationAt(index int) Location {
	if index < 0 {
		index = 0
	}
	if index > pi.size {
		index = pi.size
	}

	// Find first lineStart > index, then step back one.
	lineIdx := sort.Search(len(pi.lineStart), func(i int) bool {
		return pi.lineStart[i] > index
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}
	return Location{
		Line:   lineIdx + 1,
		Column: index - pi.lineStart[lineIdx] + 1,
		Index:  index,
	}
}

func (pi *posIndex) Span(start, end int) Span {
	return Span{Start: pi.LocationAt(start), End: pi.LocationAt(end)}
}
