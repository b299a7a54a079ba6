package pegtree

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Strategy selects how a ParseRunner treats input that doesn't
// match the grammar.
type Strategy int

const (
	// StrategyBasic matches or fails, nothing else.
	StrategyBasic Strategy = iota

	// StrategyReporting reports where and why matching failed.
	StrategyReporting

	// StrategyRecovering repairs the input until it matches and
	// reports every repair.
	StrategyRecovering
)

func (s Strategy) String() string {
	switch s {
	case StrategyBasic:
		return "basic"
	case StrategyReporting:
		return "reporting"
	case StrategyRecovering:
		return "recovering"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy is the inverse of Strategy.String.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range []Strategy{StrategyBasic, StrategyReporting, StrategyRecovering} {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy `%s`", name)
}

// ParseResult is the outcome of a run.
type ParseResult struct {
	// Matched tells whether the root matcher matched.  Recovering
	// runs match whenever the repaired input does.
	Matched bool

	// Root is the parse tree, nil when nothing matched.
	Root *Node

	// Errors lists the problems found in the input, in input
	// order.
	Errors []ParseError

	// Buffer is the buffer the tree was built from, a
	// MutableInputBuffer with the repairs after recovery.
	Buffer InputBuffer

	// Input is the original, unmodified input.
	Input *DefaultInputBuffer
}

func (r *ParseResult) HasErrors() bool { return len(r.Errors) > 0 }

// RunStats summarizes a run for a RunObserver.
type RunStats struct {
	Strategy Strategy
	Matched  bool
	Passes   int
	Errors   map[ErrorKind]int
	Input    int
	MemoHits int
	Duration time.Duration
}

// RunObserver is notified at the end of every run.
type RunObserver interface {
	ObserveRun(RunStats)
}

type RunnerOption func(*ParseRunner)

func WithConfig(cfg *Config) RunnerOption {
	return func(pr *ParseRunner) { pr.config = cfg }
}

func WithLogger(logger logrus.FieldLogger) RunnerOption {
	return func(pr *ParseRunner) { pr.logger = logger }
}

// WithLogOutput sets where the logger built from the `log.level`
// setting writes, os.Stderr by default.  It's ignored when WithLogger
// is given.
func WithLogOutput(out io.Writer) RunnerOption {
	return func(pr *ParseRunner) { pr.logOutput = out }
}

func WithObserver(o RunObserver) RunnerOption {
	return func(pr *ParseRunner) { pr.observer = o }
}

// ParseRunner runs a grammar with a fixed strategy.  Runners keep no
// state between runs and may be used concurrently.
type ParseRunner struct {
	grammar  *Grammar
	strategy Strategy
	config   *Config
	logger   logrus.FieldLogger
	observer RunObserver

	logOutput io.Writer
}

func NewParseRunner(g *Grammar, strategy Strategy, opts ...RunnerOption) *ParseRunner {
	pr := &ParseRunner{grammar: g, strategy: strategy}
	for _, opt := range opts {
		opt(pr)
	}
	if pr.config == nil {
		pr.config = NewConfig()
	}
	if pr.logger == nil {
		pr.logger = defaultLogger(pr.logOutput, pr.config.GetString("log.level"))
	}
	return pr
}

func (pr *ParseRunner) Grammar() *Grammar  { return pr.grammar }
func (pr *ParseRunner) Strategy() Strategy { return pr.strategy }

// Run parses input.  Input that doesn't match the grammar is not an
// error: it's reported through the result.  Errors are reserved for
// runs that couldn't complete, like ErrMaxDepthExceeded.
func (pr *ParseRunner) Run(input string) (*ParseResult, error) {
	started := time.Now()
	stats := RunStats{Strategy: pr.strategy, Errors: make(map[ErrorKind]int)}
	source := NewInputBuffer(input)
	stats.Input = source.Len()

	result, err := pr.run(source, &stats)
	if err != nil {
		pr.logger.WithError(err).Warn("run failed")
		return nil, err
	}
	stats.Matched = result.Matched
	for _, e := range result.Errors {
		stats.Errors[e.Kind]++
	}
	stats.Duration = time.Since(started)
	if pr.observer != nil {
		pr.observer.ObserveRun(stats)
	}
	pr.logger.WithFields(logrus.Fields{
		"strategy": pr.strategy,
		"matched":  result.Matched,
		"errors":   len(result.Errors),
		"passes":   stats.Passes,
	}).Debug("run finished")
	return result, nil
}

func (pr *ParseRunner) run(source *DefaultInputBuffer, stats *RunStats) (*ParseResult, error) {
	// Every strategy starts with the fast pass, well formed input
	// pays nothing for error handling.
	p := pr.basicPass(source)
	stats.Passes++
	if p.memo != nil {
		stats.MemoHits = p.memo.hits
	}
	if p.err != nil {
		return nil, p.err
	}
	done := p.matched
	if pr.strategy == StrategyRecovering {
		// recovering results cover the whole input
		done = done && p.root.currentIndex == source.Len()
	}
	if done || pr.strategy == StrategyBasic {
		return &ParseResult{Matched: p.matched, Root: p.node, Buffer: source, Input: source}, nil
	}

	switch pr.strategy {
	case StrategyReporting:
		return pr.report(source, stats)
	case StrategyRecovering:
		return newRecoveryEngine(pr, source, stats).run()
	default:
		return nil, fmt.Errorf("unknown strategy %s", pr.strategy)
	}
}

// report finds the first error of input that failed the basic pass.
func (pr *ParseRunner) report(source *DefaultInputBuffer, stats *RunStats) (*ParseResult, error) {
	locator := newRecoveringHandler(source, false)
	if p := pr.instrumentedPass(source, locator); p.err != nil {
		return nil, p.err
	}
	at := locator.errorIndex
	reporter := newRecoveringHandler(source, false)
	reporter.reportAt = at
	if p := pr.instrumentedPass(source, reporter); p.err != nil {
		return nil, p.err
	}
	stats.Passes += 2

	e := newParseError(ErrorKind_InvalidInput, source, reporter, at)
	e.setEnd(at+1, source)
	pr.logger.WithField("error", e.Error()).Debug("reporting first error")
	return &ParseResult{Errors: []ParseError{e}, Buffer: source, Input: source}, nil
}

// run is the state shared by the contexts of one pass.
type run struct {
	buffer       InputBuffer
	source       *DefaultInputBuffer
	handler      MatchHandler
	fastStrings  bool
	instrumented bool
	maxDepth     int
	memo         *memoTable

	aborted bool
	err     error
}

func (r *run) abort() { r.aborted = true }

func (r *run) fail(err error) {
	r.aborted = true
	if r.err == nil {
		r.err = err
	}
}

type passResult struct {
	matched bool
	node    *Node
	memo    *memoTable
	err     error
	root    *MatchContext
}

func (pr *ParseRunner) basicPass(source *DefaultInputBuffer) passResult {
	r := &run{
		buffer:      source,
		source:      source,
		handler:     basicHandler{},
		fastStrings: pr.config.GetBool("run.fast_strings"),
		maxDepth:    pr.config.GetInt("run.max_depth"),
		memo:        newMemoTable(pr.config.GetInt("memo.max_entries")),
	}
	return pr.pass(r)
}

func (pr *ParseRunner) instrumentedPass(buffer InputBuffer, h *recoveringHandler) passResult {
	r := &run{
		buffer:       buffer,
		source:       sourceOf(buffer),
		handler:      h,
		instrumented: true,
		maxDepth:     pr.config.GetInt("run.max_depth"),
	}
	return pr.pass(r)
}

func (pr *ParseRunner) pass(r *run) passResult {
	root := newRootContext(r, pr.grammar.root)
	matched := root.runMatcher()
	if h, ok := r.handler.(*recoveringHandler); ok && h.markers {
		matched = h.finishRoot(root, matched)
	}
	matched = matched && !r.aborted
	p := passResult{matched: matched, memo: r.memo, err: r.err, root: root}
	if matched {
		p.node = root.node
	}
	return p
}

func sourceOf(buffer InputBuffer) *DefaultInputBuffer {
	switch b := buffer.(type) {
	case *DefaultInputBuffer:
		return b
	case *MutableInputBuffer:
		return sourceOf(b.buffer)
	default:
		panic(fmt.Sprintf("unsupported input buffer %T", buffer))
	}
}
