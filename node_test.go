package pegtree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/clarete/pegtree/ascii"
)

func TestNodePrinting(t *testing.T) {
	group := EnforcedSequence('(', 'x', ')').WithLabel("Group")
	result, err := Run(Sequence(ZeroOrMore(group), EndOfInput()), "(x)(yy)(x)", StrategyRecovering)
	require.NoError(t, err)

	assert.Equal(t, `Sequence (1..11)
├── ZeroOrMore (1..11)
│   ├── Group (1..4)
│   │   ├── '(' "(" (1..2)
│   │   ├── 'x' "x" (2..3)
│   │   └── ')' ")" (3..4)
│   ├── Error<Group> (4..8)
│   │   ├── '(' "(" (4..5)
│   │   └── Error<ILLEGAL> "yy)" (5..8)
│   └── Group (8..11)
│       ├── '(' "(" (8..9)
│       ├── 'x' "x" (9..10)
│       └── ')' ")" (10..11)
└── EOI "" (11)`, result.Root.Pretty())

	assert.Equal(t, result.Root.Pretty(), result.Root.HighlightWith(ascii.NoColors))
	assert.Contains(t, result.Root.Highlight(), ascii.DefaultTheme.Illegal)
}

func TestNodeQueries(t *testing.T) {
	key := OneOrMore(CharRange('a', 'z')).WithLabel("Key")
	val := OneOrMore(CharRange('0', '9')).WithLabel("Value")
	pair := Sequence(key, '=', val).WithLabel("Pair")
	pairs := Sequence(pair, ZeroOrMore(Sequence(',', pair)), EndOfInput())

	result, err := Run(pairs, "a=1,bc=22", StrategyBasic)
	require.NoError(t, err)
	require.True(t, result.Matched)
	root := result.Root

	assert.Equal(t, "1", root.Find("Pair/Value").Text())
	assert.Nil(t, root.Find("Pair/Nope"))

	var keys []string
	for _, n := range root.FindAll("Key") {
		keys = append(keys, n.Text())
	}
	assert.Equal(t, []string{"a", "bc"}, keys)

	var labels []string
	root.Visit(func(n *Node) bool {
		labels = append(labels, n.Label())
		// don't descend into pairs
		return n.Label() != "Pair"
	})
	assert.Equal(t, []string{"Sequence", "Pair", "ZeroOrMore", "Sequence", "','", "Pair", "EOI"}, labels)

	var text strings.Builder
	for _, leaf := range root.Leaves() {
		text.WriteString(leaf.Text())
	}
	assert.Equal(t, "a=1,bc=22", text.String())
	assert.False(t, root.ContainsErrors())
	assert.Equal(t, "1..10", root.Span().String())
	assert.Equal(t, root.Pretty(), root.String())
}

func TestYAMLExport(t *testing.T) {
	t.Run("tree", func(t *testing.T) {
		m := Sequence('a', 'b', Action(func(ctx *MatchContext) bool {
			ctx.SetNodeValue(42)
			return true
		}))
		result, err := Run(m, "ab", StrategyBasic)
		require.NoError(t, err)

		out, err := result.ToYAML()
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal(out, &doc))
		assert.Equal(t, true, doc["matched"])
		assert.NotContains(t, doc, "errors")

		tree := doc["tree"].(map[string]any)
		assert.Equal(t, "Sequence", tree["label"])
		assert.Equal(t, 0, tree["start"])
		assert.Equal(t, 2, tree["end"])
		assert.Equal(t, 42, tree["value"])
		assert.NotContains(t, tree, "text")

		children := tree["children"].([]any)
		require.Len(t, children, 2)
		first := children[0].(map[string]any)
		assert.Equal(t, "'a'", first["label"])
		assert.Equal(t, "a", first["text"])
	})

	t.Run("errors", func(t *testing.T) {
		result, err := Run(Sequence('a', 'b', EndOfInput()), "ax", StrategyRecovering)
		require.NoError(t, err)

		out, err := result.ToYAML()
		require.NoError(t, err)

		var doc struct {
			Errors []struct {
				Kind     string   `yaml:"kind"`
				Start    int      `yaml:"start"`
				End      int      `yaml:"end"`
				Location string   `yaml:"location"`
				Message  string   `yaml:"message"`
				Expected []string `yaml:"expected"`
			} `yaml:"errors"`
		}
		require.NoError(t, yaml.Unmarshal(out, &doc))
		require.Len(t, doc.Errors, 1)
		assert.Equal(t, "replacement", doc.Errors[0].Kind)
		assert.Equal(t, 1, doc.Errors[0].Start)
		assert.Equal(t, 2, doc.Errors[0].End)
		assert.Equal(t, "2..3", doc.Errors[0].Location)
		assert.Equal(t, "expected 'b', found 'x'", doc.Errors[0].Message)
		assert.Equal(t, []string{"'b'"}, doc.Errors[0].Expected)
	})

	t.Run("values that can't be exported", func(t *testing.T) {
		m := Sequence('a', Action(func(ctx *MatchContext) bool {
			ctx.SetNodeValue([]func(){func() {}})
			return true
		}))
		result, err := Run(m, "a", StrategyBasic)
		require.NoError(t, err)
		out, err := result.ToYAML()
		require.NoError(t, err)
		assert.NotContains(t, string(out), "value")
	})
}
