package pegtree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMaxDepthExceeded is returned by a run that nested matchers
// deeper than the `run.max_depth` setting allows.
var ErrMaxDepthExceeded = errors.New("maximum matcher depth exceeded")

// ErrorKind tells how the recovery engine dealt with a parse error.
type ErrorKind int

const (
	ErrorKind_InvalidInput ErrorKind = iota
	ErrorKind_Deletion
	ErrorKind_Insertion
	ErrorKind_Replacement
	ErrorKind_Resync
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKind_InvalidInput:
		return "invalid-input"
	case ErrorKind_Deletion:
		return "deletion"
	case ErrorKind_Insertion:
		return "insertion"
	case ErrorKind_Replacement:
		return "replacement"
	case ErrorKind_Resync:
		return "resync"
	default:
		return "unknown"
	}
}

// ParseError describes a position where the input doesn't match the
// grammar.  Start and End are rune offsets into the original input;
// insertions are zero width.
type ParseError struct {
	Kind     ErrorKind
	Start    int
	End      int
	Expected []string
	Found    string
	// Paths holds, for each expectation, the labels of the matchers
	// from the root down to the one that failed.
	Paths [][]string
	Span  Span
}

// Message is the human readable part of the error.
func (e ParseError) Message() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("unexpected %s", e.Found)
	}
	return fmt.Sprintf("expected %s, found %s", joinAlternatives(e.Expected), e.Found)
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s @ %s", e.Message(), e.Span)
}

// joinAlternatives renders "a", "a or b" and "a, b or c".
func joinAlternatives(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}

// GrammarError is returned by NewGrammar for matcher trees that
// can't be run.
type GrammarError struct {
	Rule    string
	Message string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("grammar error in rule `%s`: %s", e.Rule, e.Message)
}

// The following are programming errors raised with panic while
// building or running matcher trees.

func errInvalidMatcherItem(item any) error {
	return fmt.Errorf("can't use %T as a matcher", item)
}

func errNoProgress(m Matcher) error {
	return fmt.Errorf("%s matched without consuming input", matcherName(m))
}

func errActionMovedCursor(m Matcher) error {
	return fmt.Errorf("%s moved the cursor", matcherName(m))
}

func errLockedMatcher(m Matcher) error {
	return fmt.Errorf("%s is part of a grammar and can't be changed", matcherName(m))
}

func errArmedTwice(m *ProxyMatcher) error {
	return fmt.Errorf("rule `%s` is already armed", m.Name())
}

func errUnarmedProxy(m *ProxyMatcher) error {
	return fmt.Errorf("rule `%s` was never armed", m.Name())
}
