package pegtree

type MatcherVisitor interface {
	VisitCharMatcher(*CharMatcher) error
	VisitStringMatcher(*StringMatcher) error
	VisitSequenceMatcher(*SequenceMatcher) error
	VisitFirstOfMatcher(*FirstOfMatcher) error
	VisitOptionalMatcher(*OptionalMatcher) error
	VisitZeroOrMoreMatcher(*ZeroOrMoreMatcher) error
	VisitOneOrMoreMatcher(*OneOrMoreMatcher) error
	VisitTestMatcher(*TestMatcher) error
	VisitActionMatcher(*ActionMatcher) error
	VisitEmptyMatcher(*EmptyMatcher) error
	VisitProxyMatcher(*ProxyMatcher) error
	VisitMemoMatcher(*MemoMatcher) error
}

// WalkChildren accepts v on each child of m, stopping at the first
// error.
func WalkChildren(v MatcherVisitor, m Matcher) error {
	for _, child := range m.Children() {
		if err := child.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

// Inspect traverses a matcher tree in depth-first order. It calls
// the function f for each matcher reachable from m. If f returns
// true, Inspect continues to traverse the matcher's children; if it
// returns false, Inspect skips them.
//
// Rules make matcher trees cyclic, so each matcher is visited once.
// Labelled copies of the same rule share their target, which is
// then visited once as well.
func Inspect(m Matcher, f func(Matcher) bool) {
	visited := make(map[Matcher]bool)
	inspect(m, f, visited)
}

func inspect(m Matcher, f func(Matcher) bool, visited map[Matcher]bool) {
	if m == nil || visited[m] {
		return
	}
	visited[m] = true
	if !f(m) {
		return
	}
	for _, child := range m.Children() {
		inspect(child, f, visited)
	}
}
