package pegtree

import (
	"github.com/sirupsen/logrus"
)

type recoveryState int

const (
	recoveryState_Matching recoveryState = iota
	recoveryState_FirstErrorSeeking
	recoveryState_ReportingError
	recoveryState_Fixing
	recoveryState_Resynchronizing
	recoveryState_Done
)

func (s recoveryState) String() string {
	return map[recoveryState]string{
		recoveryState_Matching:          "matching",
		recoveryState_FirstErrorSeeking: "first-error-seeking",
		recoveryState_ReportingError:    "reporting-error",
		recoveryState_Fixing:            "fixing",
		recoveryState_Resynchronizing:   "resynchronizing",
		recoveryState_Done:              "done",
	}[s]
}

// recoveryEngine repairs input that failed the basic pass.  It works
// one error at a time, in input order: it finds the furthest position
// the grammar reaches, tries single character fixes there by writing
// markers into a MutableInputBuffer and keeps the fix that gets the
// parse furthest.  When no fix helps, a Resync marker makes the
// closest enforced construct skip the illegal input instead.
//
// Every committed fix moves the error position forward, and the
// `recovery.max_errors` and `recovery.max_stalls` settings hand the
// rest of the input to the root when that stops being true, so the
// loop always ends with a tree covering all of the input.
type recoveryEngine struct {
	runner *ParseRunner
	logger logrus.FieldLogger
	stats  *RunStats
	source *DefaultInputBuffer
	buffer *MutableInputBuffer

	errors []ParseError
	// resyncs maps positions in errors to the buffer index of the
	// Resync marker each of them inserted.
	resyncs   map[int]int
	forceRoot map[int]bool

	root       *Node
	errorIndex int
	report     *recoveringHandler
	forced     bool
	lastFix    int
	stalls     int
	maxErrors  int
	maxStalls  int
	err        error
}

func newRecoveryEngine(pr *ParseRunner, source *DefaultInputBuffer, stats *RunStats) *recoveryEngine {
	return &recoveryEngine{
		runner:    pr,
		logger:    pr.logger.WithField("strategy", StrategyRecovering),
		stats:     stats,
		source:    source,
		buffer:    NewMutableInputBuffer(source),
		resyncs:   make(map[int]int),
		forceRoot: make(map[int]bool),
		lastFix:   -1,
		maxErrors: pr.config.GetInt("recovery.max_errors"),
		maxStalls: pr.config.GetInt("recovery.max_stalls"),
	}
}

func (e *recoveryEngine) run() (*ParseResult, error) {
	state := recoveryState_FirstErrorSeeking
	for state != recoveryState_Done && e.err == nil {
		e.logger.WithFields(logrus.Fields{
			"state":  state,
			"index":  e.errorIndex,
			"errors": len(e.errors),
		}).Debug("recovery")

		switch state {
		case recoveryState_FirstErrorSeeking, recoveryState_Matching:
			state = e.match(state == recoveryState_Matching)
		case recoveryState_ReportingError:
			e.report = e.reportAt(e.errorIndex)
			state = recoveryState_Fixing
		case recoveryState_Fixing:
			state = e.fix()
		case recoveryState_Resynchronizing:
			state = e.resynchronize()
		}
	}
	if e.err != nil {
		return nil, e.err
	}
	return &ParseResult{
		Matched: true,
		Root:    e.root,
		Errors:  e.errors,
		Buffer:  e.buffer,
		Input:   e.source,
	}, nil
}

// match runs the grammar over the buffer with the fixes so far.
func (e *recoveryEngine) match(afterFix bool) recoveryState {
	ok, at := e.locate()
	if e.err != nil {
		return recoveryState_Done
	}
	if ok {
		return recoveryState_Done
	}
	e.errorIndex = at
	if !afterFix {
		return recoveryState_ReportingError
	}

	if orig := e.buffer.OriginalIndex(at); orig <= e.lastFix {
		e.stalls++
	} else {
		e.stalls = 0
	}
	if e.forced && e.stalls > 0 {
		// Not even the root could get past this point
		e.giveUp()
		return recoveryState_Done
	}
	return recoveryState_ReportingError
}

// locate runs a pass over the buffer and returns whether it matched
// and, otherwise, the error position.  Matching passes replace the
// tree of the result.
func (e *recoveryEngine) locate() (bool, int) {
	h := newRecoveringHandler(e.buffer, true)
	h.forceRoot = e.forceRoot
	p := e.runner.instrumentedPass(e.buffer, h)
	e.stats.Passes++
	if p.err != nil {
		e.err = p.err
		return false, 0
	}
	e.updateResyncs(h)
	if p.matched {
		e.root = p.node
		return true, 0
	}
	return false, h.skipDeletions(h.errorIndex)
}

// reportAt collects the failed expectations at buffer index at.
func (e *recoveryEngine) reportAt(at int) *recoveringHandler {
	h := newRecoveringHandler(e.buffer, true)
	h.forceRoot = e.forceRoot
	h.reportAt = at
	if p := e.runner.instrumentedPass(e.buffer, h); p.err != nil {
		e.err = p.err
	}
	e.stats.Passes++
	return h
}

// noGain is below any gain a fix can score
const noGain = 0

// fix tries deletion, insertion and replacement at the error index,
// in that order.  The first one leaving no error behind is committed
// right away; otherwise the one that moved the error position furthest
// wins, ties going to the earlier kind.
func (e *recoveryEngine) fix() recoveryState {
	i := e.errorIndex
	if len(e.errors) >= e.maxErrors || e.stalls >= e.maxStalls {
		e.forced = true
		return recoveryState_Resynchronizing
	}

	origI := e.buffer.OriginalIndex(i)
	atEOI := e.buffer.CharAt(i) == EOI
	delGain, insGain, repGain := noGain, noGain, noGain
	var insChar, repChar rune

	if !atEOI {
		e.buffer.InsertChar(i, DelError)
		ok, at := e.locate()
		if ok {
			return e.commit(ErrorKind_Deletion, i, origI, origI+1)
		}
		if e.err != nil {
			return recoveryState_Done
		}
		delGain = e.buffer.OriginalIndex(at) - (origI + 1)
		e.buffer.UndoCharInsertion(i)
	}

	for _, c := range e.report.candidates() {
		if e.err != nil {
			return recoveryState_Done
		}
		e.buffer.InsertChar(i, InsError)
		e.buffer.InsertChar(i+1, c)
		ok, at := e.locate()
		if ok {
			return e.commit(ErrorKind_Insertion, i, origI, origI)
		}
		if gain := e.buffer.OriginalIndex(at) - origI; gain > insGain {
			insGain, insChar = gain, c
		}
		e.buffer.UndoCharInsertion(i + 1)
		e.buffer.UndoCharInsertion(i)
	}

	if !atEOI && e.err == nil {
		e.buffer.InsertChar(i, DelError)
		for _, c := range e.reportAt(i + 2).candidates() {
			if e.err != nil {
				return recoveryState_Done
			}
			e.buffer.InsertChar(i+2, InsError)
			e.buffer.InsertChar(i+3, c)
			ok, at := e.locate()
			if ok {
				return e.commit(ErrorKind_Replacement, i, origI, origI+1)
			}
			if gain := e.buffer.OriginalIndex(at) - (origI + 1); gain > repGain {
				repGain, repChar = gain, c
			}
			e.buffer.UndoCharInsertion(i + 3)
			e.buffer.UndoCharInsertion(i + 2)
		}
		e.buffer.UndoCharInsertion(i)
	}

	e.logger.WithFields(logrus.Fields{
		"index":       origI,
		"deletion":    delGain,
		"insertion":   insGain,
		"replacement": repGain,
	}).Debug("fix attempts")

	switch {
	case delGain <= noGain && insGain <= noGain && repGain <= noGain:
		return recoveryState_Resynchronizing
	case delGain >= insGain && delGain >= repGain:
		e.buffer.InsertChar(i, DelError)
		e.record(ErrorKind_Deletion, i, origI, origI+1)
	case insGain >= repGain:
		e.buffer.InsertChar(i, InsError)
		e.buffer.InsertChar(i+1, insChar)
		e.record(ErrorKind_Insertion, i, origI, origI)
	default:
		e.buffer.InsertChar(i, DelError)
		e.buffer.InsertChar(i+2, InsError)
		e.buffer.InsertChar(i+3, repChar)
		e.record(ErrorKind_Replacement, i, origI, origI+1)
	}
	return recoveryState_Matching
}

// commit keeps the fix currently applied to the buffer, which left
// no error behind.
func (e *recoveryEngine) commit(kind ErrorKind, at, start, end int) recoveryState {
	e.record(kind, at, start, end)
	return recoveryState_Done
}

func (e *recoveryEngine) record(kind ErrorKind, at, start, end int) {
	pe := newParseError(kind, e.buffer, e.report, at)
	pe.Start = start
	pe.Found = describeChar(e.source.CharAt(start))
	pe.setEnd(end, e.source)
	e.errors = append(e.errors, pe)
	e.lastFix = start
	e.logger.WithFields(logrus.Fields{
		"kind":  kind,
		"index": start,
	}).Debug(pe.Message())
}

// resynchronize inserts a Resync marker at the error index.  The
// following pass consumes the illegal input after it, the error is
// widened over that input once the pass tells how far it went.
func (e *recoveryEngine) resynchronize() recoveryState {
	i := e.errorIndex
	origI := e.buffer.OriginalIndex(i)
	e.buffer.InsertChar(i, Resync)
	if e.forced {
		e.forceRoot[i] = true
	}
	e.resyncs[len(e.errors)] = i
	e.record(ErrorKind_Resync, i, origI, origI)
	return recoveryState_Matching
}

func (e *recoveryEngine) updateResyncs(h *recoveringHandler) {
	for k, at := range e.resyncs {
		if end, ok := h.resyncEnds[at]; ok {
			e.errors[k].setEnd(e.buffer.OriginalIndex(end), e.source)
		}
	}
}

// giveUp turns the whole input into illegal input under a root node.
// It's only reached when the grammar can't even be resynchronized by
// its root, say because no matcher ever looks at the input past the
// point where things went wrong.
func (e *recoveryEngine) giveUp() {
	e.logger.WithField("index", e.errorIndex).Warn("recovery gave up")
	illegal := &Node{
		label:    IllegalLabel,
		start:    0,
		end:      e.source.Len(),
		hasError: true,
		source:   e.source,
	}
	e.root = &Node{
		label:    e.runner.grammar.root.Label(),
		start:    0,
		end:      e.source.Len(),
		children: []*Node{illegal},
		hasError: true,
		source:   e.source,
	}
}
