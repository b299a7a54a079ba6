package pegtree

// OptionalMatcher tries its child once and succeeds either way.
type OptionalMatcher struct {
	matcherBase
	child Matcher
}

func Optional(item any) Matcher {
	m := &OptionalMatcher{child: toMatcher(item)}
	m.label = "Optional"
	return m
}

func (m *OptionalMatcher) Match(ctx *MatchContext) bool {
	ctx.subContext(m.child).runMatcher()
	if ctx.run.aborted {
		return false
	}
	ctx.createNode()
	return true
}

func (m *OptionalMatcher) Children() []Matcher           { return []Matcher{m.child} }
func (m *OptionalMatcher) WithLabel(name string) Matcher { return withLabel(m, name) }
func (m *OptionalMatcher) Accept(v MatcherVisitor) error { return v.VisitOptionalMatcher(m) }
func (m *OptionalMatcher) clone() Matcher                { c := *m; return &c }

// ZeroOrMoreMatcher applies its child as many times as it matches.
type ZeroOrMoreMatcher struct {
	matcherBase
	child Matcher
}

func ZeroOrMore(item any) Matcher {
	m := &ZeroOrMoreMatcher{child: toMatcher(item)}
	m.label = "ZeroOrMore"
	return m
}

func (m *ZeroOrMoreMatcher) Match(ctx *MatchContext) bool {
	if !repeat(ctx, m, m.child) {
		return false
	}
	ctx.createNode()
	return true
}

func (m *ZeroOrMoreMatcher) Children() []Matcher           { return []Matcher{m.child} }
func (m *ZeroOrMoreMatcher) WithLabel(name string) Matcher { return withLabel(m, name) }
func (m *ZeroOrMoreMatcher) Accept(v MatcherVisitor) error { return v.VisitZeroOrMoreMatcher(m) }
func (m *ZeroOrMoreMatcher) clone() Matcher                { c := *m; return &c }

// OneOrMoreMatcher is like ZeroOrMoreMatcher but requires at least
// one match.
type OneOrMoreMatcher struct {
	matcherBase
	child Matcher
}

func OneOrMore(item any) Matcher {
	m := &OneOrMoreMatcher{child: toMatcher(item)}
	m.label = "OneOrMore"
	return m
}

func (m *OneOrMoreMatcher) Match(ctx *MatchContext) bool {
	if !ctx.subContext(m.child).runMatcher() {
		return false
	}
	if !repeat(ctx, m, m.child) {
		return false
	}
	ctx.createNode()
	return true
}

func (m *OneOrMoreMatcher) Children() []Matcher           { return []Matcher{m.child} }
func (m *OneOrMoreMatcher) WithLabel(name string) Matcher { return withLabel(m, name) }
func (m *OneOrMoreMatcher) Accept(v MatcherVisitor) error { return v.VisitOneOrMoreMatcher(m) }
func (m *OneOrMoreMatcher) clone() Matcher                { c := *m; return &c }

// repeat runs child until it fails.  A successful iteration that
// doesn't move the cursor would loop forever; NewGrammar rejects
// such grammars, so getting here means the matcher tree was built
// around the checks.
func repeat(ctx *MatchContext, m, child Matcher) bool {
	for {
		at := ctx.currentIndex
		if !ctx.subContext(child).runMatcher() {
			break
		}
		if ctx.currentIndex == at {
			panic(errNoProgress(m))
		}
	}
	return !ctx.run.aborted
}
