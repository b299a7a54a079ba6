package pegtree

import (
	"strings"

	"github.com/clarete/pegtree/ascii"
)

type MatcherFormatToken int

const (
	MatcherFormatToken_None MatcherFormatToken = iota
	MatcherFormatToken_Literal
	MatcherFormatToken_Operator
	MatcherFormatToken_Operand
)

func printMatchers(g *Grammar) string {
	return ppGrammar(g, func(input string, _ MatcherFormatToken) string { return input })
}

// HighlightGrammar renders the grammar in colors.
func HighlightGrammar(g *Grammar) string {
	theme := ascii.DefaultTheme
	colors := map[MatcherFormatToken]string{
		MatcherFormatToken_Literal:  theme.Literal,
		MatcherFormatToken_Operator: theme.Operator,
		MatcherFormatToken_Operand:  theme.Operand,
	}
	return ppGrammar(g, func(input string, token MatcherFormatToken) string {
		return ascii.Paint(colors[token], input)
	})
}

// ppGrammar prints the root followed by each rule.  Rules referenced
// from inside other matchers print as references so the output stays
// finite.
func ppGrammar(g *Grammar, format FormatFunc[MatcherFormatToken]) string {
	mp := &matcherPrinter{treePrinter: newTreePrinter(format)}
	entries := make([]Matcher, 0, len(g.rules)+1)
	if _, ok := g.root.(*ProxyMatcher); !ok {
		entries = append(entries, g.root)
	}
	for _, r := range g.rules {
		entries = append(entries, r)
	}
	mp.writeOperator("Grammar")
	mp.writel("")
	mp.children(len(entries), func(i int) {
		mp.top = true
		entries[i].Accept(mp)
	})
	return mp.output.String()
}

type matcherPrinter struct {
	*treePrinter[MatcherFormatToken]

	// top is set while printing a rule definition, where the proxy
	// expands into its target instead of printing a reference.
	top bool
}

func (mp *matcherPrinter) VisitCharMatcher(m *CharMatcher) error {
	if m.low == m.high || m.isAny() {
		mp.writeLeaf(m, "Char", m.label)
		return nil
	}
	mp.writeLeaf(m, "Range", defaultCharLabel(m.low, m.high))
	return nil
}

func (mp *matcherPrinter) VisitStringMatcher(m *StringMatcher) error {
	mp.writeLeaf(m, "String", describeText(m.text))
	return nil
}

func (mp *matcherPrinter) VisitSequenceMatcher(m *SequenceMatcher) error {
	return mp.writeParent(m, "Sequence")
}

func (mp *matcherPrinter) VisitFirstOfMatcher(m *FirstOfMatcher) error {
	return mp.writeParent(m, "FirstOf")
}

func (mp *matcherPrinter) VisitOptionalMatcher(m *OptionalMatcher) error {
	return mp.writeParent(m, "Optional")
}

func (mp *matcherPrinter) VisitZeroOrMoreMatcher(m *ZeroOrMoreMatcher) error {
	return mp.writeParent(m, "ZeroOrMore")
}

func (mp *matcherPrinter) VisitOneOrMoreMatcher(m *OneOrMoreMatcher) error {
	return mp.writeParent(m, "OneOrMore")
}

func (mp *matcherPrinter) VisitTestMatcher(m *TestMatcher) error {
	return mp.writeParent(m, kindOf(m))
}

func (mp *matcherPrinter) VisitActionMatcher(m *ActionMatcher) error {
	mp.writeLeaf(m, "Action", "")
	return nil
}

func (mp *matcherPrinter) VisitEmptyMatcher(m *EmptyMatcher) error {
	mp.writeLeaf(m, "Empty", "")
	return nil
}

func (mp *matcherPrinter) VisitProxyMatcher(m *ProxyMatcher) error {
	if !mp.top {
		mp.writeLeaf(m, "Ref", m.Name())
		return nil
	}
	mp.top = false
	mp.writeOperatorWithOneRand(mp.prefix(m)+"Rule", m.Name())
	mp.writel("")
	mp.children(1, func(int) { m.target().Accept(mp) })
	return nil
}

func (mp *matcherPrinter) VisitMemoMatcher(m *MemoMatcher) error {
	return mp.writeParent(m, "Memo")
}

func (mp *matcherPrinter) writeParent(m Matcher, operator string) error {
	mp.top = false
	mp.writeOperator(mp.prefix(m) + operator)
	mp.writeLabel(m)
	mp.writel("")
	children := m.Children()
	mp.children(len(children), func(i int) { children[i].Accept(mp) })
	return nil
}

func (mp *matcherPrinter) writeLeaf(m Matcher, operator, operand string) {
	mp.top = false
	if operand == "" {
		mp.writeOperator(mp.prefix(m) + operator)
	} else {
		mp.writeOperatorWithOneRand(mp.prefix(m)+operator, operand)
	}
	if _, ok := m.(*ProxyMatcher); !ok {
		mp.writeLabel(m)
	}
}

func (mp *matcherPrinter) prefix(m Matcher) string {
	if m.IsEnforced() {
		return "Enforced"
	}
	return ""
}

func (mp *matcherPrinter) writeLabel(m Matcher) {
	if m.HasCustomLabel() {
		mp.write(mp.format(" #"+m.Label(), MatcherFormatToken_Literal))
	}
}

func (mp *matcherPrinter) writeOperator(operator string) {
	mp.write(mp.format(operator, MatcherFormatToken_Operator))
}

func (mp *matcherPrinter) writeOperatorWithOneRand(operator, operand string) {
	var s strings.Builder
	s.WriteString(mp.format(operator, MatcherFormatToken_Operator))
	s.WriteString(mp.format("[", MatcherFormatToken_Operator))
	s.WriteString(mp.format(operand, MatcherFormatToken_Operand))
	s.WriteString(mp.format("]", MatcherFormatToken_Operator))
	mp.write(s.String())
}
