package pegtree

// MatchHandler decides how a context gets matched.  Every matcher
// application of a run goes through the run's handler, which makes
// it the single place to observe, redirect or repair matching.
type MatchHandler interface {
	Match(ctx *MatchContext) bool
}

// basicHandler runs the matcher and nothing else.
type basicHandler struct{}

func (basicHandler) Match(ctx *MatchContext) bool {
	if ctx.matcher.Match(ctx) {
		return true
	}
	if ctx.escalates() {
		ctx.run.abort()
	}
	return false
}

// recoveringHandler instruments the match for error location,
// reporting and resynchronization.  The same handler type serves all
// the passes of the reporting and recovering runners, the switches
// set up by each pass decide what gets collected.
type recoveringHandler struct {
	buffer InputBuffer

	// markers makes single character matchers honor the characters
	// inserted by the recovery engine.
	markers bool

	// errorIndex is the furthest position reached by a successful
	// match outside of negative predicates.
	errorIndex int

	// reportAt is the position failed single character matchers
	// are collected for, or -1.
	reportAt int
	failed   []*MatchContext

	resyncTarget *MatchContext
	resyncAt     int
	resyncEnds   map[int]int

	// forceRoot lists Resync markers only the root may recover
	// from.
	forceRoot map[int]bool
}

func newRecoveringHandler(buffer InputBuffer, markers bool) *recoveringHandler {
	return &recoveringHandler{
		buffer:     buffer,
		markers:    markers,
		reportAt:   -1,
		resyncEnds: make(map[int]int),
		forceRoot:  make(map[int]bool),
	}
}

func (h *recoveringHandler) Match(ctx *MatchContext) bool {
	if _, ok := singleChar(ctx.matcher); ok {
		return h.matchSingleChar(ctx)
	}
	if ctx.matcher.Match(ctx) {
		if h.resyncTarget == ctx {
			h.resyncTarget = nil
		}
		h.track(ctx)
		return true
	}
	if h.resyncTarget == ctx {
		h.resynchronize(ctx)
		h.track(ctx)
		return true
	}
	h.escalate(ctx)
	return false
}

// escalate aborts the run for enforced failures, except while a
// resync target above ctx is waiting for the failure to reach it.
func (h *recoveringHandler) escalate(ctx *MatchContext) {
	if !ctx.escalates() {
		return
	}
	if h.resyncTarget != nil && ctx.isDescendantOf(h.resyncTarget) {
		return
	}
	ctx.run.abort()
}

func (h *recoveringHandler) matchSingleChar(ctx *MatchContext) bool {
	start, current := ctx.startIndex, ctx.currentIndex
	if h.markers {
		ctx.currentIndex = h.skipMarkers(ctx.currentIndex)
		ctx.startIndex = ctx.currentIndex
	}
	at := ctx.currentIndex
	if ctx.matcher.Match(ctx) {
		h.track(ctx)
		return true
	}
	ctx.startIndex, ctx.currentIndex = start, current
	if ctx.inPredicate {
		return false
	}
	if at == h.reportAt {
		h.failed = append(h.failed, ctx)
	}
	if h.markers && h.buffer.CharAt(at) == Resync {
		h.chooseResyncTarget(ctx, at)
		if h.resyncTarget == ctx {
			h.resynchronize(ctx)
			h.track(ctx)
			return true
		}
	}
	h.escalate(ctx)
	return false
}

// skipMarkers moves past deletion pairs and insertion markers, which
// is where single character matchers look at the input.
func (h *recoveringHandler) skipMarkers(i int) int {
	for {
		switch h.buffer.CharAt(i) {
		case DelError:
			i += 2
		case InsError:
			i++
		default:
			return i
		}
	}
}

// skipDeletions only moves past deletion pairs.  It normalizes error
// positions so fixes never land between a marker and the character
// it applies to.
func (h *recoveringHandler) skipDeletions(i int) int {
	for h.buffer.CharAt(i) == DelError {
		i += 2
	}
	return i
}

func (h *recoveringHandler) track(ctx *MatchContext) {
	if ctx.inTestNot {
		return
	}
	h.errorIndex = max(h.errorIndex, ctx.currentIndex)
}

// chooseResyncTarget picks the context that recovers from the Resync
// marker at pos: the closest enclosing enforced construct that
// already made progress, or the root.  A target chosen earlier is
// only replaced by one nested inside it.
func (h *recoveringHandler) chooseResyncTarget(ctx *MatchContext, pos int) {
	target := ctx.root()
	if !h.forceRoot[pos] {
		for c := ctx; c.parent != nil; c = c.parent {
			if c.canResync() {
				target = c
				break
			}
		}
	}
	if h.resyncTarget == nil || target.isDescendantOf(h.resyncTarget) {
		h.resyncTarget = target
		h.resyncAt = pos
	}
}

// resynchronize makes ctx succeed by consuming the Resync marker and
// the illegal input after it, up to a character that can follow ctx
// in the grammar.
func (h *recoveringHandler) resynchronize(ctx *MatchContext) {
	var followers CharSet
	if ctx.parent == nil || h.forceRoot[h.resyncAt] {
		followers.eoi = true
	} else {
		followers = followerSet(ctx)
	}
	from := ctx.currentIndex
	i := h.resyncAt + 1
	if c := h.buffer.CharAt(i); c != EOI && !IsMarker(c) {
		i++
	}
	for c := h.buffer.CharAt(i); c != EOI && !IsMarker(c) && !followers.Has(c); c = h.buffer.CharAt(i) {
		i++
	}
	h.resyncEnds[h.resyncAt] = i
	ctx.addIllegalNode(from, i)
	ctx.currentIndex = i
	ctx.hasError = true
	ctx.createNode()
	h.resyncTarget = nil
}

// finishRoot applies the recovery rules for the end of a run: only a
// root that reached the end of the input counts as a match, and a
// Resync marker left over after the root turns everything up to the
// end into illegal input.
func (h *recoveringHandler) finishRoot(root *MatchContext, matched bool) bool {
	if !matched || root.run.aborted {
		return false
	}
	i := h.skipDeletions(root.currentIndex)
	switch h.buffer.CharAt(i) {
	case EOI:
		if i > root.currentIndex {
			// trailing input deleted by a fix
			root.currentIndex = i
			root.createNode()
		}
		return true
	case Resync:
		end := i + 1
		for h.buffer.CharAt(end) != EOI {
			end++
		}
		h.resyncEnds[i] = end
		root.addIllegalNode(i, end)
		root.currentIndex = end
		root.hasError = true
		root.createNode()
		return true
	default:
		h.errorIndex = max(h.errorIndex, i)
		return false
	}
}
