package pegtree

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery(t *testing.T) {
	group := EnforcedSequence('(', 'x', ')').WithLabel("Group")
	groups := Sequence(ZeroOrMore(group), EndOfInput())

	for _, test := range []struct {
		Name    string
		Root    Matcher
		Input   string
		Errors  []string
		Kinds   []ErrorKind
		Illegal []string
	}{
		{
			Name:   "replacement",
			Root:   Sequence('a', 'b', EndOfInput()),
			Input:  "ax",
			Errors: []string{"expected 'b', found 'x' @ 2..3"},
			Kinds:  []ErrorKind{ErrorKind_Replacement},
		},
		{
			Name:   "insertion",
			Root:   Sequence('a', 'b', 'c', EndOfInput()),
			Input:  "ac",
			Errors: []string{"expected 'b', found 'c' @ 2"},
			Kinds:  []ErrorKind{ErrorKind_Insertion},
		},
		{
			Name:   "deletion",
			Root:   Sequence('a', 'b', EndOfInput()),
			Input:  "axb",
			Errors: []string{"expected 'b', found 'x' @ 2..3"},
			Kinds:  []ErrorKind{ErrorKind_Deletion},
		},
		{
			Name:    "resynchronization inside an enforced sequence",
			Root:    groups,
			Input:   "(x)(yy)(x)",
			Errors:  []string{"expected 'x', found 'y' @ 5..8"},
			Kinds:   []ErrorKind{ErrorKind_Resync},
			Illegal: []string{"yy)"},
		},
		{
			Name:   "input left after the root",
			Root:   Sequence('a', 'b'),
			Input:  "abx",
			Errors: []string{"unexpected 'x' @ 3..4"},
			Kinds:  []ErrorKind{ErrorKind_Deletion},
		},
		{
			Name:   "repetition stopped before the end",
			Root:   OneOrMore(CharRange('0', '9')),
			Input:  "12x3",
			Errors: []string{"expected '0'..'9', found 'x' @ 3..4"},
			Kinds:  []ErrorKind{ErrorKind_Deletion},
		},
		{
			Name:  "trailing input",
			Root:  Sequence('a', 'b', 'c', EndOfInput()),
			Input: "axcxx",
			Errors: []string{
				"expected 'b', found 'x' @ 2..3",
				"expected EOI, found 'x' @ 4..6",
			},
			Kinds:   []ErrorKind{ErrorKind_Replacement, ErrorKind_Resync},
			Illegal: []string{"xx"},
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			result, err := Run(test.Root, test.Input, StrategyRecovering)
			require.NoError(t, err)
			require.True(t, result.Matched)
			require.NotNil(t, result.Root)

			var messages []string
			var kinds []ErrorKind
			for _, e := range result.Errors {
				messages = append(messages, e.Error())
				kinds = append(kinds, e.Kind)
			}
			assert.Equal(t, test.Errors, messages)
			assert.Equal(t, test.Kinds, kinds)

			// the tree always covers the whole input
			assert.Equal(t, 0, result.Root.Start())
			assert.Equal(t, len([]rune(test.Input)), result.Root.End())
			assert.True(t, result.Root.ContainsErrors() || len(test.Illegal) == 0)

			var illegal []string
			for _, n := range result.Root.FindAll(IllegalLabel) {
				illegal = append(illegal, n.Text())
			}
			assert.Equal(t, test.Illegal, illegal)
		})
	}

	t.Run("error details", func(t *testing.T) {
		result, err := Run(Sequence('a', 'b', EndOfInput()), "ax", StrategyRecovering)
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)

		e := result.Errors[0]
		assert.Equal(t, 1, e.Start)
		assert.Equal(t, 2, e.End)
		assert.Equal(t, []string{"'b'"}, e.Expected)
		assert.Equal(t, "'x'", e.Found)
		assert.Equal(t, [][]string{{"Sequence", "'b'"}}, e.Paths)
		assert.Equal(t, NewSpan(NewLocation(1, 2, 1), NewLocation(1, 3, 2)), e.Span)
		assert.Equal(t, "expected 'b', found 'x'", e.Message())
	})

	t.Run("inserted text isn't part of the tree text", func(t *testing.T) {
		result, err := Run(Sequence('a', 'b', 'c', EndOfInput()), "ac", StrategyRecovering)
		require.NoError(t, err)

		var text strings.Builder
		for _, leaf := range result.Root.Leaves() {
			text.WriteString(leaf.Text())
		}
		assert.Equal(t, "ac", text.String())
		assert.Equal(t, "abc", result.Buffer.Extract(0, result.Buffer.Len()))
	})

	t.Run("resynchronized group is marked", func(t *testing.T) {
		result, err := Run(groups, "(x)(yy)(x)", StrategyRecovering)
		require.NoError(t, err)

		items := result.Root.Child(0).Children()
		require.Len(t, items, 3)
		assert.False(t, items[0].HasError())
		assert.True(t, items[1].HasError())
		assert.Equal(t, "(yy)", items[1].Text())
		assert.False(t, items[2].HasError())
	})

	t.Run("recovery is idempotent", func(t *testing.T) {
		number := Rule("Number").Arm(OneOrMore(CharRange('0', '9')))
		list := Rule("List").Arm(EnforcedSequence(
			'[',
			Optional(Sequence(number, ZeroOrMore(EnforcedSequence(',', number)))),
			']',
		))
		g, err := NewGrammar(Sequence(list, EndOfInput()))
		require.NoError(t, err)

		for _, input := range []string{"[1,,2 3]", "[1,2", "1,2]", "[,]]", "[12,x4,5"} {
			first, err := g.Run(input, StrategyRecovering)
			require.NoError(t, err)
			second, err := g.Run(input, StrategyRecovering)
			require.NoError(t, err)

			require.True(t, first.Matched, input)
			assert.NotEmpty(t, first.Errors, input)
			assert.Empty(t, cmp.Diff(first.Errors, second.Errors), input)
			assert.Equal(t, first.Root.Pretty(), second.Root.Pretty(), input)
			assert.Equal(t, len([]rune(input)), first.Root.End(), input)
		}
	})
}

func TestValidInputRoundTrip(t *testing.T) {
	digit := CharRange('0', '9')
	spacing := Rule("Spacing").Arm(ZeroOrMore(AnyOf(" \t\n")))
	value := Rule("Value")
	list := Rule("List").Arm(EnforcedSequence(
		'[', spacing,
		Optional(Sequence(value, ZeroOrMore(Sequence(',', spacing, value)))),
		']', spacing,
	))
	value.Arm(FirstOf(list, Sequence(OneOrMore(digit), spacing), Sequence(StringMatch("null"), spacing)))
	g, err := NewGrammar(Sequence(spacing, value, EndOfInput()))
	require.NoError(t, err)

	for _, input := range []string{"1", " [ ] ", "[1, [2, null], [[3]]]\n", "[null,null]"} {
		for _, strategy := range []Strategy{StrategyBasic, StrategyReporting, StrategyRecovering} {
			t.Run(strategy.String()+" "+input, func(t *testing.T) {
				result, err := g.Run(input, strategy)
				require.NoError(t, err)
				require.True(t, result.Matched)
				assert.Empty(t, result.Errors)

				var text strings.Builder
				for _, leaf := range result.Root.Leaves() {
					text.WriteString(leaf.Text())
				}
				assert.Equal(t, input, text.String())
			})
		}
	}
}
