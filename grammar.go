package pegtree

import (
	"fmt"
	"sync"
)

// buildMu serializes grammar construction.  Matchers shared between
// grammars get their analysis written once and are read-only after.
var buildMu sync.Mutex

// Grammar is a checked matcher tree ready to be run.  It's safe for
// concurrent use: every run gets its own buffer, contexts and memo
// table.
type Grammar struct {
	root     Matcher
	matchers []Matcher
	rules    []*ProxyMatcher

	// owner maps every matcher to the label of the closest
	// labelled matcher enclosing it, for error messages.
	owner map[Matcher]string
}

// NewGrammar checks the matcher tree under root, computes what the
// error recovery needs to know about each matcher and locks them all
// against further changes.  Trees that would make a run loop forever
// or can't be run are rejected with a *GrammarError.
func NewGrammar(root Matcher) (*Grammar, error) {
	buildMu.Lock()
	defer buildMu.Unlock()

	g := &Grammar{root: root, owner: make(map[Matcher]string)}
	if err := g.collect(); err != nil {
		return nil, err
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	g.analyze()
	if err := g.checkRepetitions(); err != nil {
		return nil, err
	}
	if err := g.checkLeftRecursion(); err != nil {
		return nil, err
	}
	for _, m := range g.matchers {
		// matchers from other grammars may be running already
		if b := m.base(); !b.locked {
			b.locked = true
		}
	}
	return g, nil
}

// MustGrammar is like NewGrammar but panics on error.  It's meant for
// grammars defined in package level variables.
func MustGrammar(root Matcher) *Grammar {
	g, err := NewGrammar(root)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Grammar) Root() Matcher          { return g.root }
func (g *Grammar) Rules() []*ProxyMatcher { return g.rules }
func (g *Grammar) Size() int              { return len(g.matchers) }

// Nullable tells whether m can succeed without consuming input.
func (g *Grammar) Nullable(m Matcher) bool { return m.base().nullable }

// Starters returns the characters m can start with.
func (g *Grammar) Starters(m Matcher) CharSet { return m.base().starters }

// Rule finds a rule by name.
func (g *Grammar) Rule(name string) (*ProxyMatcher, bool) {
	for _, r := range g.rules {
		if r.Name() == name {
			return r, true
		}
	}
	return nil, false
}

// Run parses input with a new runner using strategy.
func (g *Grammar) Run(input string, strategy Strategy, opts ...RunnerOption) (*ParseResult, error) {
	return NewParseRunner(g, strategy, opts...).Run(input)
}

func (g *Grammar) String() string {
	return printMatchers(g)
}

// Run builds a grammar from m and parses input with it.
func Run(m Matcher, input string, strategy Strategy, opts ...RunnerOption) (*ParseResult, error) {
	g, err := NewGrammar(m)
	if err != nil {
		return nil, err
	}
	return g.Run(input, strategy, opts...)
}

func (g *Grammar) collect() error {
	var err error
	cells := make(map[*proxyCell]bool)
	owners := []string{"<root>"}
	var walk func(m Matcher, seen map[Matcher]bool)
	walk = func(m Matcher, seen map[Matcher]bool) {
		if err != nil || seen[m] {
			return
		}
		seen[m] = true
		owner := owners[len(owners)-1]
		if m.HasCustomLabel() {
			owner = m.Label()
		}
		g.owner[m] = owner
		g.matchers = append(g.matchers, m)
		if p, ok := m.(*ProxyMatcher); ok {
			if !p.Armed() {
				err = g.errorf(m, "rule `%s` was never armed", p.Name())
				return
			}
			if !cells[p.cell] {
				cells[p.cell] = true
				g.rules = append(g.rules, p)
			}
		}
		owners = append(owners, owner)
		for _, c := range m.Children() {
			walk(c, seen)
		}
		owners = owners[:len(owners)-1]
	}
	walk(g.root, make(map[Matcher]bool))
	return err
}

func (g *Grammar) validate() error {
	cells := make(map[string]*proxyCell)
	for _, m := range g.matchers {
		switch v := m.(type) {
		case *CharMatcher:
			if v.low > v.high {
				return g.errorf(m, "invalid character range %s", v.Label())
			}
		case *ProxyMatcher:
			if c, ok := cells[v.Name()]; ok && c != v.cell {
				return g.errorf(m, "more than one rule is called `%s`", v.Name())
			}
			cells[v.Name()] = v.cell
		}
		if !m.IsEnforced() {
			continue
		}
		switch v := unwrap(m).(type) {
		case *OptionalMatcher, *ZeroOrMoreMatcher, *EmptyMatcher, *ActionMatcher:
			return g.errorf(m, "%s can't fail and can't be enforced", matcherName(v))
		case *TestMatcher:
			return g.errorf(m, "%s is a predicate and can't be enforced", matcherName(v))
		}
	}
	return nil
}

func (g *Grammar) errorf(m Matcher, format string, args ...any) *GrammarError {
	rule := g.owner[m]
	if rule == "" {
		rule = m.Label()
	}
	return &GrammarError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}
