package pegtree

import (
	"fmt"
	"strings"

	"github.com/clarete/pegtree/ascii"
)

// IllegalLabel names the leaf nodes covering input skipped by
// resynchronization.
const IllegalLabel = "ILLEGAL"

// Node is an element of the parse tree.  Start and End are rune
// offsets into the original input, so text inserted by error
// recovery never shows up in node text and deleted text is still
// part of the node that skipped it.
type Node struct {
	label    string
	start    int
	end      int
	children []*Node
	value    any
	hasError bool
	source   *DefaultInputBuffer
}

func (n *Node) Label() string     { return n.label }
func (n *Node) Start() int        { return n.start }
func (n *Node) End() int          { return n.end }
func (n *Node) Children() []*Node { return n.children }
func (n *Node) Value() any        { return n.value }
func (n *Node) HasError() bool    { return n.hasError }
func (n *Node) IsIllegal() bool   { return n.label == IllegalLabel }
func (n *Node) Text() string      { return n.source.Extract(n.start, n.end) }
func (n *Node) Span() Span        { return n.source.Span(n.start, n.end) }
func (n *Node) String() string    { return n.Pretty() }
func (n *Node) ChildCount() int   { return len(n.children) }
func (n *Node) Child(i int) *Node { return n.children[i] }
func (n *Node) IsLeaf() bool      { return len(n.children) == 0 }

// ContainsErrors tells whether this node or any node below it was
// produced by error recovery.
func (n *Node) ContainsErrors() bool {
	found := false
	n.Visit(func(c *Node) bool {
		found = found || c.hasError
		return !found
	})
	return found
}

// Visit walks the tree in depth-first order.  Returning false from
// fn skips the children of the node just visited.
func (n *Node) Visit(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Visit(fn)
	}
}

// Find follows a slash separated path of labels below this node, for
// example "Statement/Expression".  The first child with a matching
// label is taken at every step.
func (n *Node) Find(path string) *Node {
	current := n
	for _, label := range strings.Split(path, "/") {
		var next *Node
		for _, c := range current.children {
			if c.label == label {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

// FindAll collects every node below this one, at any depth, that
// carries label.
func (n *Node) FindAll(label string) []*Node {
	var out []*Node
	for _, c := range n.children {
		c.Visit(func(d *Node) bool {
			if d.label == label {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// Leaves returns the nodes without children, in input order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Visit(func(d *Node) bool {
		if d.IsLeaf() {
			out = append(out, d)
		}
		return true
	})
	return out
}

func (n *Node) Pretty() string {
	vi := newNodePrinter(func(input string, _ FormatToken) string {
		return input
	})
	vi.visit(n)
	return vi.output.String()
}

func (n *Node) Highlight() string {
	return n.HighlightWith(ascii.DefaultTheme)
}

// HighlightWith renders the tree with the colors of theme.
func (n *Node) HighlightWith(theme ascii.Theme) string {
	colors := map[FormatToken]string{
		FormatToken_Label:   theme.Label,
		FormatToken_Range:   theme.Span,
		FormatToken_Literal: theme.Literal,
		FormatToken_Error:   theme.Illegal,
	}
	vi := newNodePrinter(func(input string, token FormatToken) string {
		return ascii.Paint(colors[token], input)
	})
	vi.visit(n)
	return vi.output.String()
}

type FormatToken int

const (
	FormatToken_None FormatToken = iota
	FormatToken_Label
	FormatToken_Range
	FormatToken_Literal
	FormatToken_Error
)

type nodePrinter struct {
	*treePrinter[FormatToken]
}

func newNodePrinter(format FormatFunc[FormatToken]) *nodePrinter {
	return &nodePrinter{treePrinter: newTreePrinter(format)}
}

func (vi *nodePrinter) visit(n *Node) {
	rg := fmt.Sprintf(" (%s)", n.Span())
	switch {
	case n.IsIllegal():
		vi.write(vi.format("Error<"+n.label+">", FormatToken_Error))
		vi.write(vi.format(" "+describeText(n.Text()), FormatToken_Literal))
		vi.write(vi.format(rg, FormatToken_Range))
		return
	case n.hasError:
		vi.write(vi.format("Error<"+n.label+">", FormatToken_Error))
	default:
		vi.write(vi.format(n.label, FormatToken_Label))
	}
	if n.IsLeaf() {
		vi.write(vi.format(" "+describeText(n.Text()), FormatToken_Literal))
		vi.write(vi.format(rg, FormatToken_Range))
		return
	}
	vi.writel(vi.format(rg, FormatToken_Range))
	vi.children(len(n.children), func(i int) {
		vi.visit(n.children[i])
	})
}
