// Package metrics exports statistics about parse runs to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/clarete/pegtree"
)

const namespace = "pegtree"

var (
	defaultPassesBuckets   = prometheus.ExponentialBuckets(1, 2, 12)
	defaultDurationBuckets = prometheus.ExponentialBuckets(1e-6, 4, 12)
	defaultInputBuckets    = prometheus.ExponentialBuckets(16, 4, 10)
)

// Observer is a pegtree.RunObserver that feeds Prometheus
// collectors.  Hand it to runners with pegtree.WithObserver.
type Observer struct {
	runs      *prometheus.CounterVec
	errors    *prometheus.CounterVec
	passes    *prometheus.HistogramVec
	duration  *prometheus.HistogramVec
	inputSize prometheus.Histogram
	memoHits  prometheus.Counter
}

// NewObserver creates the collectors and registers them with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Parse runs by strategy and outcome.",
			},
			[]string{"strategy", "matched"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_errors_total",
				Help:      "Parse errors reported, by how they were dealt with.",
			},
			[]string{"kind"},
		),
		passes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_passes",
				Help:      "Passes over the input needed by a run.",
				Buckets:   defaultPassesBuckets,
			},
			[]string{"strategy"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of a run.",
				Buckets:   defaultDurationBuckets,
			},
			[]string{"strategy"},
		),
		inputSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "input_characters",
				Help:      "Size of the parsed inputs, in characters.",
				Buckets:   defaultInputBuckets,
			},
		),
		memoHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "memo_hits_total",
				Help:      "Matcher outcomes served by memo tables.",
			},
		),
	}
	for _, c := range o.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Observer) collectors() []prometheus.Collector {
	return []prometheus.Collector{o.runs, o.errors, o.passes, o.duration, o.inputSize, o.memoHits}
}

func (o *Observer) ObserveRun(s pegtree.RunStats) {
	strategy := s.Strategy.String()
	o.runs.WithLabelValues(strategy, strconv.FormatBool(s.Matched)).Inc()
	for kind, n := range s.Errors {
		o.errors.WithLabelValues(kind.String()).Add(float64(n))
	}
	o.passes.WithLabelValues(strategy).Observe(float64(s.Passes))
	o.duration.WithLabelValues(strategy).Observe(s.Duration.Seconds())
	o.inputSize.Observe(float64(s.Input))
	o.memoHits.Add(float64(s.MemoHits))
}
