package pegtree

import (
	"fmt"
	"unicode"
)

// CharMatcher matches a single character within an inclusive range.
// Sentinel characters are only matched by a matcher whose range is
// exactly that sentinel.
type CharMatcher struct {
	matcherBase
	low, high rune
}

// CharMatch matches exactly c.
func CharMatch(c rune) Matcher {
	return CharRange(c, c)
}

// CharRange matches any character between low and high, inclusive.
func CharRange(low, high rune) Matcher {
	m := &CharMatcher{low: low, high: high}
	m.label = defaultCharLabel(low, high)
	return m
}

// Any matches any single character that is not the end of the input.
// Input characters equal to EOI, U+FFFF, are taken for the end of the
// input and aren't matched either.
func Any() Matcher { return CharRange(0, unicode.MaxRune) }

// EndOfInput succeeds only at the end of the input, without
// consuming anything.
func EndOfInput() Matcher { return CharMatch(EOI) }

// AnyOf matches any of the given characters.
func AnyOf(chars string) Matcher {
	runes := []rune(chars)
	if len(runes) == 1 {
		return CharMatch(runes[0])
	}
	items := make([]Matcher, len(runes))
	for i, r := range runes {
		items[i] = CharMatch(r)
	}
	m := &FirstOfMatcher{children: items}
	m.label = "[" + escapeLiteral(chars) + "]"
	return m
}

func defaultCharLabel(low, high rune) string {
	switch {
	case low == EOI && high == EOI:
		return "EOI"
	case low == 0 && high >= unicode.MaxRune:
		return "ANY"
	case low == high:
		return describeChar(low)
	default:
		return fmt.Sprintf("%s..%s", describeChar(low), describeChar(high))
	}
}

// Low and High are the inclusive bounds of the matched range.
func (m *CharMatcher) Low() rune  { return m.low }
func (m *CharMatcher) High() rune { return m.high }

func (m *CharMatcher) isAny() bool { return m.low == 0 && m.high >= unicode.MaxRune }

func (m *CharMatcher) accepts(c rune) bool {
	if c == EOI || IsMarker(c) {
		return m.low == c && m.high == c
	}
	return m.low <= c && c <= m.high
}

func (m *CharMatcher) Match(ctx *MatchContext) bool {
	c := ctx.CurrentChar()
	if !m.accepts(c) {
		return false
	}
	if c != EOI {
		ctx.currentIndex++
	}
	ctx.createNode()
	return true
}

func (m *CharMatcher) Children() []Matcher           { return nil }
func (m *CharMatcher) WithLabel(name string) Matcher { return withLabel(m, name) }
func (m *CharMatcher) Accept(v MatcherVisitor) error { return v.VisitCharMatcher(m) }
func (m *CharMatcher) clone() Matcher                { c := *m; return &c }

// StringMatcher matches a fixed run of characters and produces a
// single leaf node for it.
type StringMatcher struct {
	matcherBase
	text  string
	runes []rune
	chars []Matcher
}

// StringMatch matches the exact text s.
func StringMatch(s string) Matcher {
	runes := []rune(s)
	chars := make([]Matcher, len(runes))
	for i, r := range runes {
		chars[i] = CharMatch(r)
	}
	m := &StringMatcher{text: s, runes: runes, chars: chars}
	m.label = describeText(s)
	return m
}

func (m *StringMatcher) Text() string { return m.text }

// Match takes one of two paths.  Basic runs compare the characters
// directly.  Instrumented runs go through the character matchers one
// by one so the handler can see every position, with node creation
// suppressed so the tree keeps its single leaf.
func (m *StringMatcher) Match(ctx *MatchContext) bool {
	if ctx.run.fastStrings {
		for i, r := range m.runes {
			if ctx.run.buffer.CharAt(ctx.currentIndex+i) != r {
				return false
			}
		}
		ctx.currentIndex += len(m.runes)
		ctx.createNode()
		return true
	}
	for i, child := range m.chars {
		sub := ctx.subContext(child)
		sub.childIndex = i
		sub.suppressNodes = true
		if !sub.runMatcher() {
			return false
		}
	}
	ctx.createNode()
	return true
}

func (m *StringMatcher) Children() []Matcher           { return m.chars }
func (m *StringMatcher) WithLabel(name string) Matcher { return withLabel(m, name) }
func (m *StringMatcher) Accept(v MatcherVisitor) error { return v.VisitStringMatcher(m) }
func (m *StringMatcher) clone() Matcher                { c := *m; return &c }
