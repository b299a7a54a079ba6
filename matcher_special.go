package pegtree

// TestMatcher is a syntactic predicate.  It runs its child without
// consuming input or creating nodes and succeeds when the child
// matched (Test) or failed (TestNot).
type TestMatcher struct {
	matcherBase
	child    Matcher
	inverted bool
}

// Test succeeds where item matches, without consuming it.
func Test(item any) Matcher {
	m := &TestMatcher{child: toMatcher(item)}
	m.label = "Test"
	return m
}

// TestNot succeeds where item does not match.
func TestNot(item any) Matcher {
	m := &TestMatcher{child: toMatcher(item), inverted: true}
	m.label = "TestNot"
	return m
}

func (m *TestMatcher) Inverted() bool { return m.inverted }

func (m *TestMatcher) Match(ctx *MatchContext) bool {
	at := ctx.currentIndex
	sub := ctx.subContext(m.child)
	sub.inPredicate = true
	sub.suppressNodes = true
	if m.inverted {
		sub.inTestNot = true
	}
	matched := sub.runMatcher()
	ctx.currentIndex = at
	return matched != m.inverted
}

func (m *TestMatcher) Children() []Matcher           { return []Matcher{m.child} }
func (m *TestMatcher) WithLabel(name string) Matcher { return withLabel(m, name) }
func (m *TestMatcher) Accept(v MatcherVisitor) error { return v.VisitTestMatcher(m) }
func (m *TestMatcher) clone() Matcher                { c := *m; return &c }

// ActionFunc is user code run as part of a match.  It receives the
// context of the matcher enclosing the action, typically the
// sequence it is an item of.  Returning false fails the match like
// any other matcher would.
type ActionFunc func(ctx *MatchContext) bool

// ActionMatcher wraps an ActionFunc.  Actions never consume input
// and never create nodes.
type ActionMatcher struct {
	matcherBase
	fn ActionFunc
}

func Action(fn ActionFunc) Matcher {
	m := &ActionMatcher{fn: fn}
	m.label = "Action"
	return m
}

func (m *ActionMatcher) Match(ctx *MatchContext) bool {
	target := ctx.parent
	if target == nil {
		target = ctx
	}
	at, targetAt := ctx.currentIndex, target.currentIndex
	ok := m.fn(target)
	if ctx.currentIndex != at || target.currentIndex != targetAt {
		panic(errActionMovedCursor(m))
	}
	return ok
}

func (m *ActionMatcher) Children() []Matcher           { return nil }
func (m *ActionMatcher) WithLabel(name string) Matcher { return withLabel(m, name) }
func (m *ActionMatcher) Accept(v MatcherVisitor) error { return v.VisitActionMatcher(m) }
func (m *ActionMatcher) clone() Matcher                { c := *m; return &c }

// EmptyMatcher always succeeds without consuming input.
type EmptyMatcher struct {
	matcherBase
}

func Empty() Matcher {
	m := &EmptyMatcher{}
	m.label = "EMPTY"
	return m
}

func (m *EmptyMatcher) Match(ctx *MatchContext) bool {
	ctx.createNode()
	return true
}

func (m *EmptyMatcher) Children() []Matcher           { return nil }
func (m *EmptyMatcher) WithLabel(name string) Matcher { return withLabel(m, name) }
func (m *EmptyMatcher) Accept(v MatcherVisitor) error { return v.VisitEmptyMatcher(m) }
func (m *EmptyMatcher) clone() Matcher                { c := *m; return &c }

// proxyCell is shared by a rule and all its labelled copies so
// arming any of them arms them all.
type proxyCell struct {
	name   string
	target Matcher
}

// ProxyMatcher stands in for a rule that might not exist yet.  It is
// how recursive grammars are written:
//
//	expr := Rule("Expr")
//	expr.Arm(FirstOf(Sequence("(", expr, ")"), "x"))
//
// The proxy shares the context of the matcher it forwards to, so the
// node it produces carries the rule name.
type ProxyMatcher struct {
	matcherBase
	cell *proxyCell
}

// Rule creates the unarmed proxy for the rule called name.
func Rule(name string) *ProxyMatcher {
	m := &ProxyMatcher{cell: &proxyCell{name: name}}
	m.label = name
	m.customLabel = true
	return m
}

// Arm sets the matcher the rule forwards to.  Arming twice, or after
// the proxy became part of a Grammar, is a programming error.
func (m *ProxyMatcher) Arm(target any) *ProxyMatcher {
	if m.locked {
		panic(errLockedMatcher(m))
	}
	if m.cell.target != nil {
		panic(errArmedTwice(m))
	}
	m.cell.target = toMatcher(target)
	return m
}

// Name is the rule name, which doesn't change with WithLabel.
func (m *ProxyMatcher) Name() string { return m.cell.name }
func (m *ProxyMatcher) Armed() bool  { return m.cell.target != nil }

func (m *ProxyMatcher) target() Matcher {
	if m.cell.target == nil {
		panic(errUnarmedProxy(m))
	}
	return m.cell.target
}

func (m *ProxyMatcher) Match(ctx *MatchContext) bool {
	return m.target().Match(ctx)
}

func (m *ProxyMatcher) Children() []Matcher {
	if m.cell.target == nil {
		return nil
	}
	return []Matcher{m.cell.target}
}

func (m *ProxyMatcher) WithLabel(name string) Matcher { return withLabel(m, name) }
func (m *ProxyMatcher) Accept(v MatcherVisitor) error { return v.VisitProxyMatcher(m) }
func (m *ProxyMatcher) clone() Matcher                { c := *m; return &c }

// MemoMatcher caches the outcome of its child per input position.
// The cache is only consulted by basic runs; instrumented runs need
// to see every match attempt.
type MemoMatcher struct {
	matcherBase
	child Matcher
}

func Memoize(item any) Matcher {
	child := toMatcher(item)
	m := &MemoMatcher{child: child}
	m.label = child.Label()
	m.customLabel = child.HasCustomLabel()
	return m
}

func (m *MemoMatcher) Match(ctx *MatchContext) bool {
	table := ctx.run.memo
	if table == nil {
		return m.child.Match(ctx)
	}
	key := memoKey{matcher: m, index: ctx.currentIndex, suppressed: ctx.suppressNodes}
	if e, ok := table.get(key); ok {
		if e.matched {
			ctx.currentIndex = e.end
			ctx.node = e.node
		}
		return e.matched
	}
	matched := m.child.Match(ctx)
	if !ctx.run.aborted {
		table.put(key, memoEntry{matched: matched, end: ctx.currentIndex, node: ctx.node})
	}
	return matched
}

func (m *MemoMatcher) Children() []Matcher           { return []Matcher{m.child} }
func (m *MemoMatcher) WithLabel(name string) Matcher { return withLabel(m, name) }
func (m *MemoMatcher) Accept(v MatcherVisitor) error { return v.VisitMemoMatcher(m) }
func (m *MemoMatcher) clone() Matcher                { c := *m; return &c }
