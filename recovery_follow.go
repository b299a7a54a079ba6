package pegtree

// followerSet computes the characters that may legally come after
// the input matched by ctx, looking at where ctx sits in the
// enclosing matchers.  Resynchronization stops at the first of them.
//
// Starter sets and nullability come from the analysis NewGrammar
// stores in every matcher.
func followerSet(ctx *MatchContext) CharSet {
	var set CharSet
	for c := ctx; c.parent != nil; c = c.parent {
		switch m := unwrap(c.parent.matcher).(type) {
		case *SequenceMatcher:
			rest, nullable := m.children[c.childIndex+1:], true
			for _, next := range rest {
				b := next.base()
				set = set.Union(b.starters)
				if !b.nullable {
					nullable = false
					break
				}
			}
			if !nullable {
				return set
			}
		case *ZeroOrMoreMatcher:
			set = set.Union(m.child.base().starters)
		case *OneOrMoreMatcher:
			set = set.Union(m.child.base().starters)
		}
	}
	set.eoi = true
	return set
}
