package pegtree

import "fmt"

// Matcher is a node of the matcher tree.  Matchers are built with
// the combinators of this package (CharMatch, Sequence, FirstOf, ...)
// and become immutable once a Grammar is created from them.
type Matcher interface {
	// Match tries the matcher against the input under ctx.  On
	// success the context cursor is left after the consumed input
	// and a parse tree node is created; on failure the parent
	// context is left untouched.
	Match(ctx *MatchContext) bool

	// Label is the display name of the matcher.  It names parse
	// tree nodes and shows up in error messages.
	Label() string

	// HasCustomLabel is true for matchers labelled by the grammar
	// author and for rules.
	HasCustomLabel() bool

	// WithLabel returns a copy of the matcher carrying the given
	// label.
	WithLabel(name string) Matcher

	// IsEnforced tells whether failing this matcher must not be
	// treated as an ordinary backtracking failure.
	IsEnforced() bool

	// Children returns the sub matchers in the order they are
	// tried.
	Children() []Matcher

	Accept(MatcherVisitor) error

	base() *matcherBase
	clone() Matcher
}

// matcherBase holds what's shared by all matcher variants.
type matcherBase struct {
	label       string
	customLabel bool
	enforced    bool

	// filled in by NewGrammar
	locked   bool
	nullable bool
	starters CharSet
}

func (b *matcherBase) base() *matcherBase   { return b }
func (b *matcherBase) Label() string        { return b.label }
func (b *matcherBase) HasCustomLabel() bool { return b.customLabel }
func (b *matcherBase) IsEnforced() bool     { return b.enforced }

func withLabel(m Matcher, name string) Matcher {
	c := m.clone()
	c.base().label = name
	c.base().customLabel = true
	return c
}

// Enforce returns a copy of m whose failure escalates instead of
// backtracking.  For sequences that happens once the first element
// matched; for everything else on any failure.  Enforcing matchers
// that can't fail or predicates is rejected by NewGrammar.
func Enforce(m Matcher) Matcher {
	c := m.clone()
	c.base().enforced = true
	return c
}

// unwrap follows proxies and memo wrappers down to the matcher that
// does the actual work.
func unwrap(m Matcher) Matcher {
	for {
		switch w := m.(type) {
		case *ProxyMatcher:
			m = w.target()
		case *MemoMatcher:
			m = w.child
		default:
			return m
		}
	}
}

// isEnforced looks through proxies and memo wrappers, so an enforced
// rule body stays enforced when reached through its rule.
func isEnforced(m Matcher) bool {
	for {
		if m.IsEnforced() {
			return true
		}
		switch w := m.(type) {
		case *ProxyMatcher:
			m = w.target()
		case *MemoMatcher:
			m = w.child
		default:
			return false
		}
	}
}

func isSequence(m Matcher) bool {
	_, ok := unwrap(m).(*SequenceMatcher)
	return ok
}

func singleChar(m Matcher) (*CharMatcher, bool) {
	c, ok := unwrap(m).(*CharMatcher)
	return c, ok
}

func labelsOf(ms []Matcher) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Label()
	}
	return out
}

func matcherName(m Matcher) string {
	return fmt.Sprintf("%s(%s)", kindOf(m), m.Label())
}

func kindOf(m Matcher) string {
	switch m := m.(type) {
	case *CharMatcher:
		return "Char"
	case *StringMatcher:
		return "String"
	case *SequenceMatcher:
		return "Sequence"
	case *FirstOfMatcher:
		return "FirstOf"
	case *OptionalMatcher:
		return "Optional"
	case *ZeroOrMoreMatcher:
		return "ZeroOrMore"
	case *OneOrMoreMatcher:
		return "OneOrMore"
	case *TestMatcher:
		if m.inverted {
			return "TestNot"
		}
		return "Test"
	case *ActionMatcher:
		return "Action"
	case *EmptyMatcher:
		return "Empty"
	case *ProxyMatcher:
		return "Rule"
	case *MemoMatcher:
		return "Memo"
	default:
		return fmt.Sprintf("%T", m)
	}
}
