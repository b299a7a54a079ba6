package pegtree

// analyze computes, for every matcher, whether it can succeed without
// consuming input and which characters it can start with.  Rules make
// the definitions recursive, so values are refined until nothing
// changes.  Both properties only ever grow, which bounds the loop.
//
// Matchers locked by an earlier grammar already carry their final
// values and are left alone.
func (g *Grammar) analyze() {
	for changed := true; changed; {
		changed = false
		for _, m := range g.matchers {
			b := m.base()
			if b.locked {
				continue
			}
			nullable, starters := analyzeOne(m)
			if nullable != b.nullable || !starters.Equal(b.starters) {
				b.nullable, b.starters = nullable, starters
				changed = true
			}
		}
	}
}

func analyzeOne(m Matcher) (bool, CharSet) {
	switch m := m.(type) {
	case *CharMatcher:
		return m.low == EOI && m.high == EOI, newCharSetForRange(m.low, m.high)
	case *StringMatcher:
		if len(m.runes) == 0 {
			return true, CharSet{}
		}
		return false, newCharSetForRange(m.runes[0], m.runes[0])
	case *SequenceMatcher:
		var starters CharSet
		for _, c := range m.children {
			b := c.base()
			starters = starters.Union(b.starters)
			if !b.nullable {
				return false, starters
			}
		}
		return true, starters
	case *FirstOfMatcher:
		var starters CharSet
		nullable := false
		for _, c := range m.children {
			b := c.base()
			starters = starters.Union(b.starters)
			nullable = nullable || b.nullable
		}
		return nullable, starters
	case *OptionalMatcher:
		return true, m.child.base().starters
	case *ZeroOrMoreMatcher:
		return true, m.child.base().starters
	case *OneOrMoreMatcher:
		return m.child.base().nullable, m.child.base().starters
	case *TestMatcher:
		if m.inverted {
			return true, CharSet{}
		}
		return true, m.child.base().starters
	case *ActionMatcher, *EmptyMatcher:
		return true, CharSet{}
	case *ProxyMatcher:
		b := m.target().base()
		return b.nullable, b.starters
	case *MemoMatcher:
		b := m.child.base()
		return b.nullable, b.starters
	default:
		return false, CharSet{}
	}
}

// checkRepetitions rejects repetitions whose body can match without
// consuming input, they would never stop.
func (g *Grammar) checkRepetitions() error {
	for _, m := range g.matchers {
		var child Matcher
		switch v := m.(type) {
		case *ZeroOrMoreMatcher:
			child = v.child
		case *OneOrMoreMatcher:
			child = v.child
		default:
			continue
		}
		if child.base().nullable {
			return g.errorf(m, "%s wraps %s, which can match the empty string",
				matcherName(m), matcherName(child))
		}
	}
	return nil
}

// checkLeftRecursion looks for a matcher that can reach itself
// without consuming input, which would recurse forever.
func (g *Grammar) checkLeftRecursion() error {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[Matcher]int, len(g.matchers))
	var stack []Matcher
	var visit func(m Matcher) error
	visit = func(m Matcher) error {
		switch state[m] {
		case inProgress:
			return g.errorf(cycleRule(stack, m), "left recursion through %s", cyclePath(stack, m))
		case done:
			return nil
		}
		state[m] = inProgress
		stack = append(stack, m)
		for _, next := range leftEdges(m) {
			if err := visit(next); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[m] = done
		return nil
	}
	for _, m := range g.matchers {
		if err := visit(m); err != nil {
			return err
		}
	}
	return nil
}

// leftEdges returns the children m may try at the position it was
// started at.
func leftEdges(m Matcher) []Matcher {
	switch m := m.(type) {
	case *SequenceMatcher:
		for i, c := range m.children {
			if !c.base().nullable {
				return m.children[:i+1]
			}
		}
		return m.children
	case *StringMatcher:
		return nil
	default:
		return m.Children()
	}
}

// cycleRule prefers the first rule in the cycle for reporting.
func cycleRule(stack []Matcher, m Matcher) Matcher {
	cycle := cycleOf(stack, m)
	for _, c := range cycle {
		if _, ok := c.(*ProxyMatcher); ok {
			return c
		}
	}
	return m
}

func cyclePath(stack []Matcher, m Matcher) string {
	var path string
	for _, c := range cycleOf(stack, m) {
		if _, ok := c.(*ProxyMatcher); !ok {
			continue
		}
		path += c.Label() + " -> "
	}
	return path + m.Label()
}

func cycleOf(stack []Matcher, m Matcher) []Matcher {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == m {
			return stack[i:]
		}
	}
	return stack
}
