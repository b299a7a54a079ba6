// Package json decodes JSON documents into the values encoding/json
// produces for an `any` target: maps, slices, strings, float64, bool
// and nil.
package json

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf16"

	p "github.com/clarete/pegtree"
)

// null stands in for JSON null while decoding, nil node values mean
// "no value".
type null struct{}

var grammar = p.MustGrammar(build())

func Grammar() *p.Grammar { return grammar }

func build() p.Matcher {
	var (
		document = p.Rule("JSON")
		value    = p.Rule("Value")
		object   = p.Rule("Object")
		member   = p.Rule("Member")
		array    = p.Rule("Array")
		str      = p.Rule("String")
		number   = p.Rule("Number")
		literal  = p.Rule("Literal")
		spacing  = p.Rule("Spacing")
	)
	spacing.Arm(p.ZeroOrMore(p.AnyOf(" \t\r\n")))
	document.Arm(p.Sequence(spacing, value, p.EndOfInput(), p.Action(lift("Value"))))
	value.Arm(p.Memoize(p.Sequence(
		p.FirstOf(object, array, str, number, literal),
		spacing,
		p.Action(lift("")),
	)))

	object.Arm(p.EnforcedSequence(
		token('{', spacing),
		p.Optional(p.Sequence(member, p.ZeroOrMore(p.Sequence(token(',', spacing), member)))),
		token('}', spacing),
		p.Action(decodeObject),
	))
	member.Arm(p.EnforcedSequence(str, spacing, token(':', spacing), value))

	array.Arm(p.EnforcedSequence(
		token('[', spacing),
		p.Optional(p.Sequence(value, p.ZeroOrMore(p.Sequence(token(',', spacing), value)))),
		token(']', spacing),
		p.Action(decodeArray),
	))

	hex := p.FirstOf(p.CharRange('0', '9'), p.CharRange('a', 'f'), p.CharRange('A', 'F'))
	escape := p.Sequence('\\', p.FirstOf(
		p.AnyOf(`"\/bfnrt`),
		p.Sequence('u', hex, hex, hex, hex),
	)).WithLabel("Escape")
	char := p.FirstOf(escape, p.Sequence(p.TestNot(p.AnyOf("\"\\")), p.CharRange(' ', 0x10FFFF)))
	str.Arm(p.Sequence(
		p.CharMatch('"'),
		p.ZeroOrMore(char).WithLabel("Chars"),
		p.CharMatch('"'),
		p.Action(decodeString),
	))

	digits := p.OneOrMore(p.CharRange('0', '9'))
	number.Arm(p.Sequence(
		p.Optional('-'),
		p.FirstOf('0', p.Sequence(p.CharRange('1', '9'), p.ZeroOrMore(p.CharRange('0', '9')))),
		p.Optional(p.Sequence('.', digits)),
		p.Optional(p.Sequence(p.AnyOf("eE"), p.Optional(p.AnyOf("+-")), digits)),
		p.Action(decodeNumber),
	))

	literal.Arm(p.Sequence(
		p.FirstOf(p.StringMatch("true"), p.StringMatch("false"), p.StringMatch("null")),
		p.Action(decodeLiteral),
	))
	return document
}

func token(c rune, spacing p.Matcher) p.Matcher {
	return p.Sequence(p.CharMatch(c), spacing).WithLabel("'" + string(c) + "'")
}

// lift copies the value of the sub node labelled label, or of the
// first sub node, to the node being built.
func lift(label string) p.ActionFunc {
	return func(ctx *p.MatchContext) bool {
		if ctx.InErrorRecovery() {
			return true
		}
		var n *p.Node
		if label == "" {
			n = ctx.SubNodes()[0]
		} else {
			n = ctx.NodeByLabel(label)
		}
		ctx.SetNodeValue(valueOf(n))
		return true
	}
}

func decodeObject(ctx *p.MatchContext) bool {
	if ctx.InErrorRecovery() {
		return true
	}
	obj := make(map[string]any)
	add := func(m *p.Node) {
		key, _ := valueOf(m.Find("String")).(string)
		obj[key] = unwrapNull(valueOf(m.Find("Value")))
	}
	if opt := ctx.SubNodes()[1]; opt.ChildCount() > 0 {
		seq := opt.Child(0)
		add(seq.Child(0))
		for _, pair := range seq.Child(1).Children() {
			add(pair.Find("Member"))
		}
	}
	ctx.SetNodeValue(obj)
	return true
}

func decodeArray(ctx *p.MatchContext) bool {
	if ctx.InErrorRecovery() {
		return true
	}
	items := []any{}
	if opt := ctx.SubNodes()[1]; opt.ChildCount() > 0 {
		seq := opt.Child(0)
		items = append(items, unwrapNull(valueOf(seq.Child(0))))
		for _, pair := range seq.Child(1).Children() {
			items = append(items, unwrapNull(valueOf(pair.Find("Value"))))
		}
	}
	ctx.SetNodeValue(items)
	return true
}

func decodeString(ctx *p.MatchContext) bool {
	if ctx.InErrorRecovery() {
		return true
	}
	s, err := unescape(ctx.NodeByLabel("Chars").Text())
	if err != nil {
		return false
	}
	ctx.SetNodeValue(s)
	return true
}

func decodeNumber(ctx *p.MatchContext) bool {
	if ctx.InErrorRecovery() {
		return true
	}
	n, err := strconv.ParseFloat(ctx.MatchedText(), 64)
	if err != nil {
		return false
	}
	ctx.SetNodeValue(n)
	return true
}

func decodeLiteral(ctx *p.MatchContext) bool {
	if ctx.InErrorRecovery() {
		return true
	}
	switch ctx.MatchedText() {
	case "true":
		ctx.SetNodeValue(true)
	case "false":
		ctx.SetNodeValue(false)
	default:
		ctx.SetNodeValue(null{})
	}
	return true
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' {
			b.WriteRune(runes[i])
			continue
		}
		i++
		switch runes[i] {
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			r, err := strconv.ParseUint(string(runes[i+1:i+5]), 16, 32)
			if err != nil {
				return "", err
			}
			i += 4
			// surrogate pairs come as two escapes
			if utf16.IsSurrogate(rune(r)) && i+6 < len(runes) && runes[i+1] == '\\' && runes[i+2] == 'u' {
				if r2, err := strconv.ParseUint(string(runes[i+3:i+7]), 16, 32); err == nil {
					b.WriteRune(utf16.DecodeRune(rune(r), rune(r2)))
					i += 6
					continue
				}
			}
			b.WriteRune(rune(r))
		default:
			b.WriteRune(runes[i])
		}
	}
	return b.String(), nil
}

func valueOf(n *p.Node) any {
	for n != nil {
		if v := n.Value(); v != nil {
			return v
		}
		if n.ChildCount() == 0 {
			return nil
		}
		n = n.Child(0)
	}
	return nil
}

func unwrapNull(v any) any {
	if _, ok := v.(null); ok {
		return nil
	}
	return v
}

// Decode parses a JSON document.  Invalid documents return every
// problem found in them, joined.
func Decode(input string) (any, error) {
	result, err := grammar.Run(input, p.StrategyBasic)
	if err != nil {
		return nil, err
	}
	if result.Matched {
		return unwrapNull(result.Root.Value()), nil
	}
	result, err = grammar.Run(input, p.StrategyRecovering)
	if err != nil {
		return nil, err
	}
	errs := make([]error, len(result.Errors))
	for i, e := range result.Errors {
		errs[i] = e
	}
	return nil, errors.Join(errs...)
}
