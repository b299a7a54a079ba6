package pegtree

// SequenceMatcher matches its children one after the other.
type SequenceMatcher struct {
	matcherBase
	children []Matcher
}

// Sequence matches all items in order.  Strings and runes are
// accepted as shorthands for StringMatch and CharMatch.
func Sequence(items ...any) Matcher {
	m := &SequenceMatcher{children: toMatchers(items)}
	m.label = "Sequence"
	return m
}

// EnforcedSequence is a Sequence that, once its first item matched,
// escalates any later failure instead of backtracking.
func EnforcedSequence(items ...any) Matcher {
	return Enforce(Sequence(items...))
}

func (m *SequenceMatcher) Match(ctx *MatchContext) bool {
	enforced := m.enforced || isEnforced(ctx.matcher)
	for i, child := range m.children {
		sub := ctx.subContext(child)
		sub.childIndex = i
		if !sub.runMatcher() {
			if enforced && i > 0 && !ctx.inPredicate {
				ctx.enforcementTriggered = true
			}
			return false
		}
	}
	ctx.createNode()
	return true
}

func (m *SequenceMatcher) Children() []Matcher           { return m.children }
func (m *SequenceMatcher) WithLabel(name string) Matcher { return withLabel(m, name) }
func (m *SequenceMatcher) Accept(v MatcherVisitor) error { return v.VisitSequenceMatcher(m) }
func (m *SequenceMatcher) clone() Matcher                { c := *m; return &c }

// FirstOfMatcher is the ordered choice: the first child that
// matches wins and the others are never tried.
type FirstOfMatcher struct {
	matcherBase
	children []Matcher
}

func FirstOf(items ...any) Matcher {
	m := &FirstOfMatcher{children: toMatchers(items)}
	m.label = "FirstOf"
	return m
}

func (m *FirstOfMatcher) Match(ctx *MatchContext) bool {
	for i, child := range m.children {
		sub := ctx.subContext(child)
		sub.childIndex = i
		if sub.runMatcher() {
			ctx.createNode()
			return true
		}
		if ctx.run.aborted {
			return false
		}
	}
	return false
}

func (m *FirstOfMatcher) Children() []Matcher           { return m.children }
func (m *FirstOfMatcher) WithLabel(name string) Matcher { return withLabel(m, name) }
func (m *FirstOfMatcher) Accept(v MatcherVisitor) error { return v.VisitFirstOfMatcher(m) }
func (m *FirstOfMatcher) clone() Matcher                { c := *m; return &c }

// toMatchers converts the shorthand items accepted by the variadic
// combinators.  Anything else is a programming error.
func toMatchers(items []any) []Matcher {
	out := make([]Matcher, len(items))
	for i, item := range items {
		out[i] = toMatcher(item)
	}
	return out
}

func toMatcher(item any) Matcher {
	switch v := item.(type) {
	case Matcher:
		return v
	case string:
		if r := []rune(v); len(r) == 1 {
			return CharMatch(r[0])
		}
		return StringMatch(v)
	case rune:
		return CharMatch(v)
	case ActionFunc:
		return Action(v)
	case func(*MatchContext) bool:
		return Action(v)
	default:
		panic(errInvalidMatcherItem(item))
	}
}
