package pegtree

import (
	"reflect"

	"gopkg.in/yaml.v3"
)

type nodeDocument struct {
	Label    string  `yaml:"label"`
	Start    int     `yaml:"start"`
	End      int     `yaml:"end"`
	Text     string  `yaml:"text,omitempty"`
	Error    bool    `yaml:"error,omitempty"`
	Value    any     `yaml:"value,omitempty"`
	Children []*Node `yaml:"children,omitempty"`
}

// MarshalYAML exports the node with its children.  Only leaves carry
// their text, inner nodes can be rebuilt from them.
func (n *Node) MarshalYAML() (any, error) {
	doc := nodeDocument{
		Label:    n.label,
		Start:    n.start,
		End:      n.end,
		Error:    n.hasError,
		Value:    exportedValue(n.value),
		Children: n.children,
	}
	if n.IsLeaf() {
		doc.Text = n.Text()
	}
	return doc, nil
}

// exportedValue drops values YAML can't represent, like the closures
// some grammars build their results from.
func exportedValue(v any) any {
	if v == nil {
		return nil
	}
	if !representable(reflect.TypeOf(v)) {
		return nil
	}
	return v
}

func representable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	case reflect.Slice, reflect.Array, reflect.Pointer:
		return representable(t.Elem())
	case reflect.Map:
		return representable(t.Key()) && representable(t.Elem())
	}
	return true
}

type errorDocument struct {
	Kind     string   `yaml:"kind"`
	Start    int      `yaml:"start"`
	End      int      `yaml:"end"`
	Location string   `yaml:"location"`
	Message  string   `yaml:"message"`
	Expected []string `yaml:"expected,omitempty"`
}

func (e ParseError) MarshalYAML() (any, error) {
	return errorDocument{
		Kind:     e.Kind.String(),
		Start:    e.Start,
		End:      e.End,
		Location: e.Span.String(),
		Message:  e.Message(),
		Expected: e.Expected,
	}, nil
}

type resultDocument struct {
	Matched bool         `yaml:"matched"`
	Errors  []ParseError `yaml:"errors,omitempty"`
	Tree    *Node        `yaml:"tree,omitempty"`
}

// ToYAML renders the outcome of a run: whether it matched, the
// errors found and the parse tree.
func (r *ParseResult) ToYAML() ([]byte, error) {
	return yaml.Marshal(resultDocument{
		Matched: r.Matched,
		Errors:  r.Errors,
		Tree:    r.Root,
	})
}
