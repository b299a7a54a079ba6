package pegtree

import "strings"

// MatchContext is the state of one matcher application.  A fresh
// context is created for every child a matcher runs; rules and memo
// wrappers reuse the context of the matcher they forward to.
//
// Actions receive the context of their enclosing matcher and use the
// exported methods to inspect what matched so far and to attach
// values to the node being built.
type MatchContext struct {
	run *run

	matcher    Matcher
	parent     *MatchContext
	level      int
	childIndex int

	startIndex   int
	currentIndex int

	subNodes        []*Node
	matchedChildren int
	node            *Node
	value           any

	inPredicate          bool
	inTestNot            bool
	suppressNodes        bool
	hasError             bool
	enforcementTriggered bool
}

func newRootContext(r *run, m Matcher) *MatchContext {
	return &MatchContext{run: r, matcher: m}
}

func (c *MatchContext) subContext(m Matcher) *MatchContext {
	return &MatchContext{
		run:           c.run,
		matcher:       m,
		parent:        c,
		level:         c.level + 1,
		startIndex:    c.currentIndex,
		currentIndex:  c.currentIndex,
		inPredicate:   c.inPredicate,
		inTestNot:     c.inTestNot,
		suppressNodes: c.suppressNodes,
	}
}

// runMatcher applies the context's matcher through the run handler.
// On success the parent's cursor moves to where this context ended
// and the node created, if any, becomes the parent's last sub node.
// A failed context leaves its parent untouched.
func (c *MatchContext) runMatcher() bool {
	r := c.run
	if r.aborted {
		return false
	}
	if r.maxDepth > 0 && c.level > r.maxDepth {
		r.fail(ErrMaxDepthExceeded)
		return false
	}
	if !r.handler.Match(c) {
		return false
	}
	if p := c.parent; p != nil {
		p.currentIndex = c.currentIndex
		p.matchedChildren++
		if c.node != nil {
			p.subNodes = append(p.subNodes, c.node)
		}
	}
	return true
}

// createNode builds the parse tree node for this context, in the
// coordinates of the original input.  It is a no-op where nodes are
// suppressed.
func (c *MatchContext) createNode() {
	if c.suppressNodes {
		return
	}
	r := c.run
	c.node = &Node{
		label:    c.matcher.Label(),
		start:    r.buffer.OriginalIndex(c.startIndex),
		end:      r.buffer.OriginalIndex(c.currentIndex),
		children: c.subNodes,
		value:    c.value,
		hasError: c.hasError,
		source:   r.source,
	}
}

// addIllegalNode records a run of input consumed by error recovery
// as a sub node of this context.
func (c *MatchContext) addIllegalNode(start, end int) {
	if c.suppressNodes {
		return
	}
	r := c.run
	start, end = r.buffer.OriginalIndex(start), r.buffer.OriginalIndex(end)
	if start == end {
		return
	}
	c.subNodes = append(c.subNodes, &Node{
		label:    IllegalLabel,
		start:    start,
		end:      end,
		hasError: true,
		source:   r.source,
	})
}

// escalates tells whether the failure of this context must abort the
// run instead of backtracking.
func (c *MatchContext) escalates() bool {
	if c.inPredicate {
		return false
	}
	if c.enforcementTriggered {
		return true
	}
	return isEnforced(c.matcher) && !isSequence(c.matcher)
}

// canResync tells whether the recovery engine may resynchronize on
// this context: it's an enforced construct that has committed to
// what it's matching.
func (c *MatchContext) canResync() bool {
	if c.inPredicate || !isEnforced(c.matcher) {
		return false
	}
	if isSequence(c.matcher) {
		return c.matchedChildren > 0
	}
	return true
}

func (c *MatchContext) isDescendantOf(o *MatchContext) bool {
	for p := c.parent; p != nil; p = p.parent {
		if p == o {
			return true
		}
	}
	return false
}

func (c *MatchContext) root() *MatchContext {
	for c.parent != nil {
		c = c.parent
	}
	return c
}

// path returns the labels from the root context down to this one.
func (c *MatchContext) path() []string {
	var labels []string
	for p := c; p != nil; p = p.parent {
		labels = append(labels, p.matcher.Label())
	}
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return labels
}

func (c *MatchContext) Matcher() Matcher       { return c.matcher }
func (c *MatchContext) Parent() *MatchContext  { return c.parent }
func (c *MatchContext) Level() int             { return c.level }
func (c *MatchContext) StartIndex() int        { return c.startIndex }
func (c *MatchContext) CurrentIndex() int      { return c.currentIndex }
func (c *MatchContext) CurrentChar() rune      { return c.run.buffer.CharAt(c.currentIndex) }
func (c *MatchContext) InPredicate() bool      { return c.inPredicate }
func (c *MatchContext) InErrorRecovery() bool  { return c.run.instrumented }
func (c *MatchContext) HasError() bool         { return c.hasError }
func (c *MatchContext) Buffer() InputBuffer    { return c.run.buffer }
func (c *MatchContext) NodeValue() any         { return c.value }
func (c *MatchContext) SubNodes() []*Node      { return c.subNodes }
func (c *MatchContext) SetNodeValue(value any) { c.value = value }

// MatchedText is the text consumed by this context so far.
func (c *MatchContext) MatchedText() string {
	return c.run.buffer.Extract(c.startIndex, c.currentIndex)
}

// LastNode is the most recent sub node, or nil.
func (c *MatchContext) LastNode() *Node {
	if len(c.subNodes) == 0 {
		return nil
	}
	return c.subNodes[len(c.subNodes)-1]
}

// NodeByLabel finds a node by a slash separated label path starting
// at the sub nodes of this context, for example "Term/Number".  The
// first node with a matching label is taken at every step.
func (c *MatchContext) NodeByLabel(path string) *Node {
	head, rest, _ := strings.Cut(path, "/")
	for _, n := range c.subNodes {
		if n.label != head {
			continue
		}
		if rest == "" {
			return n
		}
		return n.Find(rest)
	}
	return nil
}
