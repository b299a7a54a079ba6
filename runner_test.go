package pegtree

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	runs []RunStats
}

func (o *recordingObserver) ObserveRun(s RunStats) { o.runs = append(o.runs, s) }

func TestStrategies(t *testing.T) {
	g, err := NewGrammar(Sequence('a', 'b', EndOfInput()))
	require.NoError(t, err)

	t.Run("basic doesn't explain failures", func(t *testing.T) {
		result, err := g.Run("ax", StrategyBasic)
		require.NoError(t, err)
		assert.False(t, result.Matched)
		assert.Nil(t, result.Root)
		assert.Empty(t, result.Errors)
	})

	t.Run("reporting finds the first error", func(t *testing.T) {
		result, err := g.Run("ax", StrategyReporting)
		require.NoError(t, err)
		assert.False(t, result.Matched)
		assert.Nil(t, result.Root)
		require.Len(t, result.Errors, 1)

		e := result.Errors[0]
		assert.Equal(t, ErrorKind_InvalidInput, e.Kind)
		assert.Equal(t, 1, e.Start)
		assert.Equal(t, 2, e.End)
		assert.Equal(t, "expected 'b', found 'x' @ 2..3", e.Error())
	})

	t.Run("reporting at the end of the input", func(t *testing.T) {
		result, err := g.Run("a", StrategyReporting)
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "expected 'b', found EOI", result.Errors[0].Message())
		assert.Equal(t, 1, result.Errors[0].End)
	})

	t.Run("recovering always matches", func(t *testing.T) {
		result, err := g.Run("ax", StrategyRecovering)
		require.NoError(t, err)
		assert.True(t, result.Matched)
		assert.True(t, result.HasErrors())
	})

	t.Run("names", func(t *testing.T) {
		for _, s := range []Strategy{StrategyBasic, StrategyReporting, StrategyRecovering} {
			parsed, err := ParseStrategy(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		}
		_, err := ParseStrategy("optimistic")
		assert.Error(t, err)
	})
}

func TestRunner(t *testing.T) {
	t.Run("observer", func(t *testing.T) {
		g, err := NewGrammar(Sequence('a', 'b', EndOfInput()))
		require.NoError(t, err)
		observer := &recordingObserver{}
		runner := NewParseRunner(g, StrategyRecovering, WithObserver(observer))
		assert.Equal(t, g, runner.Grammar())
		assert.Equal(t, StrategyRecovering, runner.Strategy())

		_, err = runner.Run("ab")
		require.NoError(t, err)
		_, err = runner.Run("ax")
		require.NoError(t, err)

		require.Len(t, observer.runs, 2)
		assert.True(t, observer.runs[0].Matched)
		assert.Equal(t, 1, observer.runs[0].Passes)
		assert.Equal(t, 2, observer.runs[0].Input)
		assert.Empty(t, observer.runs[0].Errors)

		assert.True(t, observer.runs[1].Matched)
		assert.Greater(t, observer.runs[1].Passes, 1)
		assert.Equal(t, map[ErrorKind]int{ErrorKind_Replacement: 1}, observer.runs[1].Errors)
	})

	t.Run("memoization", func(t *testing.T) {
		digits := Memoize(OneOrMore(CharRange('0', '9')).WithLabel("Digits"))
		assert.Equal(t, "Digits", digits.Label())
		g, err := NewGrammar(FirstOf(Sequence(digits, 'x'), Sequence(digits, 'y')))
		require.NoError(t, err)

		observer := &recordingObserver{}
		result, err := g.Run("123y", StrategyBasic, WithObserver(observer))
		require.NoError(t, err)
		require.True(t, result.Matched)
		assert.Equal(t, "123", result.Root.Find("Sequence/Digits").Text())
		assert.Equal(t, 1, observer.runs[0].MemoHits)

		cfg := NewConfig()
		cfg.SetInt("memo.max_entries", 0)
		result, err = g.Run("123y", StrategyBasic, WithObserver(observer), WithConfig(cfg))
		require.NoError(t, err)
		require.True(t, result.Matched)
		assert.Equal(t, 0, observer.runs[1].MemoHits)
	})

	t.Run("memoized predicate doesn't hide the node", func(t *testing.T) {
		m := Memoize(StringMatch("ab").WithLabel("X"))
		g, err := NewGrammar(Sequence(Test(m), m, EndOfInput()))
		require.NoError(t, err)

		result, err := g.Run("ab", StrategyBasic)
		require.NoError(t, err)
		require.True(t, result.Matched)
		x := result.Root.Find("X")
		require.NotNil(t, x)
		assert.Equal(t, "ab", x.Text())

		var text strings.Builder
		for _, leaf := range result.Root.Leaves() {
			text.WriteString(leaf.Text())
		}
		assert.Equal(t, "ab", text.String())
	})

	t.Run("max depth", func(t *testing.T) {
		parens := Rule("Parens")
		parens.Arm(FirstOf(Sequence('(', parens, ')'), 'x'))
		g, err := NewGrammar(parens)
		require.NoError(t, err)

		cfg := NewConfig()
		cfg.SetInt("run.max_depth", 4)
		for _, strategy := range []Strategy{StrategyBasic, StrategyRecovering} {
			_, err = g.Run("((((x))))", strategy, WithConfig(cfg))
			require.ErrorIs(t, err, ErrMaxDepthExceeded)
		}

		result, err := g.Run("((((x))))", StrategyBasic)
		require.NoError(t, err)
		assert.True(t, result.Matched)
	})

	t.Run("logging", func(t *testing.T) {
		var out bytes.Buffer
		logger, err := NewLogger(&out, "debug")
		require.NoError(t, err)

		_, err = Run(Sequence('a', 'b', EndOfInput()), "ax", StrategyRecovering, WithLogger(logger))
		require.NoError(t, err)
		assert.Contains(t, out.String(), "run finished")
		assert.Contains(t, out.String(), "state=fixing")
		assert.Contains(t, out.String(), "kind=replacement")

		_, err = NewLogger(&out, "loud")
		assert.Error(t, err)
	})

	t.Run("log level setting", func(t *testing.T) {
		root := Sequence('a', 'b', EndOfInput())
		var out bytes.Buffer
		cfg := NewConfig()
		cfg.SetString("log.level", "debug")
		_, err := Run(root, "ax", StrategyRecovering, WithConfig(cfg), WithLogOutput(&out))
		require.NoError(t, err)
		assert.Contains(t, out.String(), "run finished")

		out.Reset()
		_, err = Run(root, "ax", StrategyRecovering, WithLogOutput(&out))
		require.NoError(t, err)
		assert.Empty(t, out.String())

		cfg.SetString("log.level", "loud")
		_, err = Run(root, "ax", StrategyRecovering, WithConfig(cfg), WithLogOutput(&out))
		require.NoError(t, err)
		assert.Empty(t, out.String())

		logger, err := NewLogger(&out, "info")
		require.NoError(t, err)
		cfg.SetString("log.level", "debug")
		_, err = Run(root, "ax", StrategyRecovering, WithConfig(cfg), WithLogOutput(io.Discard), WithLogger(logger))
		require.NoError(t, err)
		assert.Empty(t, out.String())
	})
}
