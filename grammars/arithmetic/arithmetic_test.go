package arithmetic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	p "github.com/clarete/pegtree"
)

func TestEval(t *testing.T) {
	for _, test := range []struct {
		Expr  string
		Value int
	}{
		{"42", 42},
		{"  42 ", 42},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"8 - 2 - 1", 5},
		{"10 / 3", 3},
		{"2 * (3 + (4 - 1)) / 3", 4},
	} {
		t.Run(test.Expr, func(t *testing.T) {
			v, err := Eval(test.Expr)
			require.NoError(t, err)
			assert.Equal(t, test.Value, v)
		})
	}

	t.Run("division by zero", func(t *testing.T) {
		_, err := Eval("1 / (2 - 2)")
		require.ErrorIs(t, err, ErrDivisionByZero)
	})
}

func TestEvalErrors(t *testing.T) {
	for _, test := range []struct {
		Expr  string
		Error string
	}{
		{"(1 + 2", "expected '0'..'9', Spacing, Operator or ')', found EOI @ 7"},
		{"1 +", "expected Spacing or Term, found EOI @ 4"},
	} {
		t.Run(test.Expr, func(t *testing.T) {
			_, err := Eval(test.Expr)
			require.Error(t, err)
			assert.Equal(t, test.Error, err.Error())
		})
	}

	t.Run("every error is reported", func(t *testing.T) {
		result, err := Grammar().Run("(1 + ) * 2 +", p.StrategyRecovering)
		require.NoError(t, err)
		require.True(t, result.Matched)
		assert.GreaterOrEqual(t, len(result.Errors), 2)
		assert.Equal(t, 12, result.Root.End())
	})
}

func TestGrammar(t *testing.T) {
	g := Grammar()
	var names []string
	for _, r := range g.Rules() {
		names = append(names, r.Name())
	}
	assert.ElementsMatch(t, []string{"Expression", "Spacing", "Sum", "Term", "Factor", "Number", "Parens"}, names)

	result, err := g.Run("1+2", p.StrategyBasic)
	require.NoError(t, err)
	require.True(t, result.Matched)
	assert.Equal(t, 3, result.Root.Value())
	assert.Equal(t, "2", result.Root.Find("Sum/ZeroOrMore/Sequence/Term").Text())
}
