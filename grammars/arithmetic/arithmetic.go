// Package arithmetic evaluates integer expressions with the four
// basic operations and parentheses.  Values are computed by actions
// while the input is matched.
package arithmetic

import (
	"errors"
	"fmt"
	"strconv"

	p "github.com/clarete/pegtree"
)

var ErrDivisionByZero = errors.New("division by zero")

var grammar = p.MustGrammar(build())

// Grammar returns the expression grammar.
func Grammar() *p.Grammar { return grammar }

func build() p.Matcher {
	var (
		expression = p.Rule("Expression")
		sum        = p.Rule("Sum")
		term       = p.Rule("Term")
		factor     = p.Rule("Factor")
		parens     = p.Rule("Parens")
		number     = p.Rule("Number")
		spacing    = p.Rule("Spacing")
	)
	spacing.Arm(p.ZeroOrMore(p.AnyOf(" \t")))
	expression.Arm(p.Sequence(spacing, sum, p.EndOfInput(), p.Action(liftValue("Sum"))))
	sum.Arm(p.Sequence(term, p.ZeroOrMore(p.Sequence(operator("+-", spacing), term)), p.Action(fold)))
	term.Arm(p.Sequence(factor, p.ZeroOrMore(p.Sequence(operator("*/", spacing), factor)), p.Action(fold)))
	factor.Arm(p.Sequence(p.FirstOf(number, parens), p.Action(liftValue(""))))
	parens.Arm(p.EnforcedSequence(token('(', spacing), sum, token(')', spacing), p.Action(liftValue("Sum"))))
	number.Arm(p.Sequence(
		p.OneOrMore(p.CharRange('0', '9')).WithLabel("Digits"),
		spacing,
		p.Action(parseNumber),
	))
	return expression
}

func token(c rune, spacing p.Matcher) p.Matcher {
	return p.Sequence(p.CharMatch(c), spacing).WithLabel(fmt.Sprintf("'%c'", c))
}

func operator(ops string, spacing p.Matcher) p.Matcher {
	return p.Sequence(p.AnyOf(ops).WithLabel("Op"), spacing).WithLabel("Operator")
}

func parseNumber(ctx *p.MatchContext) bool {
	if ctx.InErrorRecovery() {
		return true
	}
	n, err := strconv.Atoi(ctx.NodeByLabel("Digits").Text())
	if err != nil {
		ctx.SetNodeValue(err)
		return true
	}
	ctx.SetNodeValue(n)
	return true
}

// liftValue copies the value of the sub node labelled label, or of
// the first sub node when label is empty, to the node being built.
func liftValue(label string) p.ActionFunc {
	return func(ctx *p.MatchContext) bool {
		if ctx.InErrorRecovery() {
			return true
		}
		var n *p.Node
		if label == "" {
			if nodes := ctx.SubNodes(); len(nodes) > 0 {
				n = nodes[0]
			}
		} else {
			n = ctx.NodeByLabel(label)
		}
		ctx.SetNodeValue(valueOf(n))
		return true
	}
}

// fold applies the operators of a Sum or Term from left to right.
// Its sub nodes are the first operand and the repetition holding the
// operator and operand pairs.
func fold(ctx *p.MatchContext) bool {
	if ctx.InErrorRecovery() {
		return true
	}
	nodes := ctx.SubNodes()
	acc := valueOf(nodes[0])
	for _, pair := range nodes[1].Children() {
		op := pair.Find("Operator/Op").Text()
		acc = apply(op, acc, valueOf(pair.Children()[1]))
	}
	ctx.SetNodeValue(acc)
	return true
}

func apply(op string, a, b any) any {
	x, ok := a.(int)
	if !ok {
		return a
	}
	y, ok := b.(int)
	if !ok {
		return b
	}
	switch op {
	case "+":
		return x + y
	case "-":
		return x - y
	case "*":
		return x * y
	default:
		if y == 0 {
			return ErrDivisionByZero
		}
		return x / y
	}
}

// valueOf finds the value of n, looking through nodes that only wrap
// another one.
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

// Eval computes the value of expr.  Input that isn't an expression
// returns the parse errors found in it, all of them.
func Eval(expr string) (int, error) {
	result, err := grammar.Run(expr, p.StrategyBasic)
	if err != nil {
		return 0, err
	}
	if !result.Matched {
		return 0, describeErrors(expr)
	}
	switch v := result.Root.Value().(type) {
	case int:
		return v, nil
	case error:
		return 0, v
	default:
		return 0, fmt.Errorf("expression has no value: %v", v)
	}
}

func describeErrors(expr string) error {
	result, err := grammar.Run(expr, p.StrategyRecovering)
	if err != nil {
		return err
	}
	errs := make([]error, len(result.Errors))
	for i, e := range result.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}
