package pegtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrammarErrors(t *testing.T) {
	left := Rule("Left")
	left.Arm(FirstOf(Sequence(left, 'a'), 'b'))

	hidden := Rule("Hidden")
	hidden.Arm(Sequence(Optional(' '), hidden, 'x'))

	for _, test := range []struct {
		Name    string
		Root    Matcher
		Rule    string
		Message string
	}{
		{
			Name:    "repetition of something that matches empty",
			Root:    Sequence('a', ZeroOrMore(Optional('b')).WithLabel("Items")),
			Rule:    "Items",
			Message: "ZeroOrMore(Items) wraps Optional(Optional), which can match the empty string",
		},
		{
			Name:    "one or more of an empty rule",
			Root:    OneOrMore(Rule("Blank").Arm(Empty())),
			Rule:    "<root>",
			Message: "OneOrMore(OneOrMore) wraps Rule(Blank), which can match the empty string",
		},
		{
			Name:    "left recursion",
			Root:    left,
			Rule:    "Left",
			Message: "left recursion through Left -> Left",
		},
		{
			Name:    "left recursion behind a nullable prefix",
			Root:    hidden,
			Rule:    "Hidden",
			Message: "left recursion through Hidden -> Hidden",
		},
		{
			Name:    "unarmed rule",
			Root:    Sequence('a', Rule("Missing")),
			Rule:    "Missing",
			Message: "rule `Missing` was never armed",
		},
		{
			Name:    "enforced optional",
			Root:    Sequence('a', Enforce(Optional('b'))),
			Rule:    "<root>",
			Message: "Optional(Optional) can't fail and can't be enforced",
		},
		{
			Name:    "enforced predicate",
			Root:    Sequence('a', Enforce(Test('b'))),
			Rule:    "<root>",
			Message: "Test(Test) is a predicate and can't be enforced",
		},
		{
			Name:    "two rules with the same name",
			Root:    Sequence(Rule("A").Arm('a'), Rule("A").Arm('b')),
			Rule:    "A",
			Message: "more than one rule is called `A`",
		},
		{
			Name:    "backwards range",
			Root:    Sequence(CharRange('z', 'a').WithLabel("Letter")),
			Rule:    "Letter",
			Message: "invalid character range Letter",
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			_, err := NewGrammar(test.Root)
			require.Error(t, err)

			var gerr *GrammarError
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, test.Rule, gerr.Rule)
			assert.Equal(t, test.Message, gerr.Message)
		})
	}

	t.Run("must grammar panics", func(t *testing.T) {
		assert.Panics(t, func() { MustGrammar(Rule("Nope")) })
	})
}

func TestGrammarAnalysis(t *testing.T) {
	digit := CharRange('0', '9')
	sign := Optional(AnyOf("+-"))
	number := Rule("Number").Arm(Sequence(sign, OneOrMore(digit)))
	list := Rule("List")
	list.Arm(Sequence('[', Optional(Sequence(number, ZeroOrMore(Sequence(',', number)))), ']'))

	g, err := NewGrammar(list)
	require.NoError(t, err)

	assert.False(t, g.Nullable(list))
	assert.Equal(t, "[[]", g.Starters(list).String())
	assert.False(t, g.Nullable(number))
	assert.Equal(t, "[+-0..9]", g.Starters(number).String())
	assert.True(t, g.Nullable(sign))

	names := make([]string, 0)
	for _, r := range g.Rules() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"List", "Number"}, names)

	r, ok := g.Rule("Number")
	require.True(t, ok)
	assert.Equal(t, number, r)
	_, ok = g.Rule("Nope")
	assert.False(t, ok)

	t.Run("locked", func(t *testing.T) {
		assert.Panics(t, func() { number.Arm('x') })
	})

	t.Run("shared between grammars", func(t *testing.T) {
		other, err := NewGrammar(Sequence(number, EndOfInput()))
		require.NoError(t, err)
		result, err := other.Run("-12", StrategyBasic)
		require.NoError(t, err)
		assert.True(t, result.Matched)
	})
}

func TestGrammarPrinting(t *testing.T) {
	t.Run("matchers", func(t *testing.T) {
		g, err := NewGrammar(Sequence('a', Optional(StringMatch("bc")), Enforce(CharRange('0', '9')).WithLabel("Digit")))
		require.NoError(t, err)
		assert.Equal(t, `Grammar
└── Sequence
    ├── Char['a']
    ├── Optional
    │   └── String["bc"]
    └── EnforcedRange['0'..'9'] #Digit`, g.String())
	})

	t.Run("rules print once", func(t *testing.T) {
		value := Rule("Value")
		list := Rule("List")
		list.Arm(EnforcedSequence('(', ZeroOrMore(value), ')'))
		value.Arm(FirstOf(list, 'x'))
		g, err := NewGrammar(value)
		require.NoError(t, err)
		assert.Equal(t, `Grammar
├── Rule[Value]
│   └── FirstOf
│       ├── Ref[List]
│       └── Char['x']
└── Rule[List]
    └── EnforcedSequence
        ├── Char['(']
        ├── ZeroOrMore
        │   └── Ref[Value]
        └── Char[')']`, g.String())
	})

	t.Run("highlight", func(t *testing.T) {
		g, err := NewGrammar(Sequence('a'))
		require.NoError(t, err)
		assert.Contains(t, HighlightGrammar(g), "\033[")
	})
}
