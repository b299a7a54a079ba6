package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarete/pegtree"
)

func TestObserver(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	o, err := NewObserver(reg)
	require.NoError(t, err)

	o.ObserveRun(pegtree.RunStats{
		Strategy: pegtree.StrategyRecovering,
		Matched:  true,
		Passes:   7,
		Errors:   map[pegtree.ErrorKind]int{pegtree.ErrorKind_Insertion: 2, pegtree.ErrorKind_Resync: 1},
		Input:    120,
		MemoHits: 3,
		Duration: time.Millisecond,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(o.runs.WithLabelValues("recovering", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.errors.WithLabelValues("insertion")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.errors.WithLabelValues("resync")))
	assert.Equal(t, 3.0, testutil.ToFloat64(o.memoHits))

	expected := `
# HELP pegtree_runs_total Parse runs by strategy and outcome.
# TYPE pegtree_runs_total counter
pegtree_runs_total{matched="true",strategy="recovering"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "pegtree_runs_total"))

	t.Run("registering twice fails", func(t *testing.T) {
		_, err := NewObserver(reg)
		assert.Error(t, err)
	})
}

func TestObserverWithRunner(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewObserver(reg)
	require.NoError(t, err)

	g, err := pegtree.NewGrammar(pegtree.Sequence('a', 'b', pegtree.EndOfInput()))
	require.NoError(t, err)
	runner := pegtree.NewParseRunner(g, pegtree.StrategyRecovering, pegtree.WithObserver(o))

	for _, input := range []string{"ab", "ax", "ab"} {
		_, err := runner.Run(input)
		require.NoError(t, err)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(o.runs.WithLabelValues("recovering", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.errors.WithLabelValues("replacement")))
	assert.Equal(t, 1, testutil.CollectAndCount(o.inputSize))
}
