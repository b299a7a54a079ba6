// Package statements is a small imperative language with integer and
// boolean variables, assignments, if and while.  Its constructs are
// enforced sequences, which makes it the grammar of choice to see
// error recovery at work:
//
//	x = 0;
//	while (x < 10) { x = x + 1; }
//	if (x == 10) { done = true; } else { done = false; }
package statements

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	p "github.com/clarete/pegtree"
)

var (
	ErrTooManySteps = errors.New("program ran for too long")
	ErrUndefined    = errors.New("undefined variable")
	ErrType         = errors.New("type mismatch")
)

// MaxSteps caps the statements a single Exec may run.
const MaxSteps = 100000

// Env holds the variables of a program, ints and bools.
type Env map[string]any

type (
	expr func(Env) (any, error)
	stmt func(*machine) error
)

type machine struct {
	env   Env
	steps int
}

func (m *machine) exec(stmts []stmt) error {
	for _, s := range stmts {
		m.steps++
		if m.steps > MaxSteps {
			return ErrTooManySteps
		}
		if err := s(m); err != nil {
			return err
		}
	}
	return nil
}

var keywords = []string{"if", "else", "while", "true", "false"}

var grammar = p.MustGrammar(build())

func Grammar() *p.Grammar { return grammar }

func build() p.Matcher {
	var (
		program    = p.Rule("Program")
		statement  = p.Rule("Statement")
		ifStmt     = p.Rule("IfStatement")
		whileStmt  = p.Rule("WhileStatement")
		assignment = p.Rule("Assignment")
		body       = p.Rule("Body")
		expression = p.Rule("Expression")
		operand    = p.Rule("Operand")
		number     = p.Rule("Number")
		boolean    = p.Rule("Bool")
		identifier = p.Rule("Identifier")
		spacing    = p.Rule("Spacing")
	)
	identStart := p.FirstOf(p.CharRange('a', 'z'), p.CharRange('A', 'Z'), '_')
	identChar := p.FirstOf(identStart, p.CharRange('0', '9'))
	keyword := func(word string) p.Matcher {
		return p.Sequence(p.StringMatch(word), p.TestNot(identChar), spacing).WithLabel(word)
	}
	token := func(c rune) p.Matcher {
		return p.Sequence(p.CharMatch(c), spacing).WithLabel(fmt.Sprintf("'%c'", c))
	}
	anyKeyword := make([]any, len(keywords))
	for i, k := range keywords {
		anyKeyword[i] = keyword(k)
	}

	spacing.Arm(p.ZeroOrMore(p.AnyOf(" \t\r\n")))
	program.Arm(p.Sequence(
		spacing,
		p.ZeroOrMore(statement).WithLabel("Statements"),
		p.EndOfInput(),
		p.Action(buildProgram),
	))
	statement.Arm(p.Sequence(p.FirstOf(ifStmt, whileStmt, assignment), p.Action(lift)))
	ifStmt.Arm(p.EnforcedSequence(
		keyword("if"), token('('), expression, token(')'), body,
		p.Optional(p.Sequence(keyword("else"), body)).WithLabel("Else"),
		p.Action(buildIf),
	))
	whileStmt.Arm(p.EnforcedSequence(
		keyword("while"), token('('), expression, token(')'), body,
		p.Action(buildWhile),
	))
	assignment.Arm(p.EnforcedSequence(
		identifier, token('='), expression, token(';'),
		p.Action(buildAssignment),
	))
	body.Arm(p.EnforcedSequence(
		token('{'),
		p.ZeroOrMore(statement).WithLabel("Statements"),
		token('}'),
		p.Action(buildBody),
	))

	op := p.FirstOf(p.StringMatch("=="), p.AnyOf("+-*<>")).WithLabel("Op")
	expression.Arm(p.Sequence(
		operand,
		p.ZeroOrMore(p.Sequence(p.Sequence(op, spacing).WithLabel("Operator"), operand)),
		p.Action(buildExpression),
	))
	operand.Arm(p.Sequence(p.FirstOf(number, boolean, identifier), p.Action(buildOperand)))
	number.Arm(p.Sequence(
		p.OneOrMore(p.CharRange('0', '9')).WithLabel("Digits"),
		spacing,
		p.Action(buildNumber),
	))
	boolean.Arm(p.Sequence(p.FirstOf(keyword("true"), keyword("false")), p.Action(buildBool)))
	identifier.Arm(p.Sequence(
		p.TestNot(p.FirstOf(anyKeyword...)),
		identStart,
		p.ZeroOrMore(identChar),
		spacing,
		p.Action(buildIdentifier),
	))
	return program
}

// Values are only built by basic runs, recovery passes see partial
// trees.

func lift(ctx *p.MatchContext) bool {
	if !ctx.InErrorRecovery() {
		ctx.SetNodeValue(valueOf(ctx.SubNodes()[0]))
	}
	return true
}

func buildProgram(ctx *p.MatchContext) bool {
	if !ctx.InErrorRecovery() {
		ctx.SetNodeValue(statementsOf(ctx.NodeByLabel("Statements")))
	}
	return true
}

func buildBody(ctx *p.MatchContext) bool {
	if !ctx.InErrorRecovery() {
		ctx.SetNodeValue(statementsOf(ctx.NodeByLabel("Statements")))
	}
	return true
}

func statementsOf(n *p.Node) []stmt {
	out := make([]stmt, 0, n.ChildCount())
	for _, c := range n.Children() {
		out = append(out, valueOf(c).(stmt))
	}
	return out
}

func buildIf(ctx *p.MatchContext) bool {
	if ctx.InErrorRecovery() {
		return true
	}
	cond := ctx.NodeByLabel("Expression").Value().(expr)
	then := ctx.NodeByLabel("Body").Value().([]stmt)
	var otherwise []stmt
	if b := ctx.NodeByLabel("Else/Sequence/Body"); b != nil {
		otherwise = b.Value().([]stmt)
	}
	ctx.SetNodeValue(stmt(func(m *machine) error {
		ok, err := condition(cond, m.env)
		if err != nil {
			return err
		}
		if ok {
			return m.exec(then)
		}
		return m.exec(otherwise)
	}))
	return true
}

func buildWhile(ctx *p.MatchContext) bool {
	if ctx.InErrorRecovery() {
		return true
	}
	cond := ctx.NodeByLabel("Expression").Value().(expr)
	loop := ctx.NodeByLabel("Body").Value().([]stmt)
	ctx.SetNodeValue(stmt(func(m *machine) error {
		for {
			ok, err := condition(cond, m.env)
			if err != nil || !ok {
				return err
			}
			// an empty body still counts as a step
			m.steps++
			if m.steps > MaxSteps {
				return ErrTooManySteps
			}
			if err := m.exec(loop); err != nil {
				return err
			}
		}
	}))
	return true
}

func buildAssignment(ctx *p.MatchContext) bool {
	if ctx.InErrorRecovery() {
		return true
	}
	name := ctx.NodeByLabel("Identifier").Value().(string)
	value := ctx.NodeByLabel("Expression").Value().(expr)
	ctx.SetNodeValue(stmt(func(m *machine) error {
		v, err := value(m.env)
		if err != nil {
			return err
		}
		m.env[name] = v
		return nil
	}))
	return true
}

func buildExpression(ctx *p.MatchContext) bool {
	if ctx.InErrorRecovery() {
		return true
	}
	nodes := ctx.SubNodes()
	acc := nodes[0].Value().(expr)
	for _, pair := range nodes[1].Children() {
		acc = binary(pair.Find("Operator/Op").Text(), acc, pair.Find("Operand").Value().(expr))
	}
	ctx.SetNodeValue(acc)
	return true
}

func buildOperand(ctx *p.MatchContext) bool {
	if ctx.InErrorRecovery() {
		return true
	}
	n := ctx.SubNodes()[0].Child(0)
	switch v := n.Value().(type) {
	case string:
		ctx.SetNodeValue(expr(func(env Env) (any, error) {
			value, ok := env[v]
			if !ok {
				return nil, fmt.Errorf("%w `%s`", ErrUndefined, v)
			}
			return value, nil
		}))
	default:
		ctx.SetNodeValue(expr(func(Env) (any, error) { return v, nil }))
	}
	return true
}

func buildNumber(ctx *p.MatchContext) bool {
	if ctx.InErrorRecovery() {
		return true
	}
	n, err := strconv.Atoi(ctx.NodeByLabel("Digits").Text())
	if err != nil {
		return false
	}
	ctx.SetNodeValue(n)
	return true
}

func buildBool(ctx *p.MatchContext) bool {
	if !ctx.InErrorRecovery() {
		ctx.SetNodeValue(strings.HasPrefix(ctx.MatchedText(), "true"))
	}
	return true
}

func buildIdentifier(ctx *p.MatchContext) bool {
	if !ctx.InErrorRecovery() {
		ctx.SetNodeValue(strings.TrimRight(ctx.MatchedText(), " \t\r\n"))
	}
	return true
}

func binary(op string, left, right expr) expr {
	return func(env Env) (any, error) {
		a, err := left(env)
		if err != nil {
			return nil, err
		}
		b, err := right(env)
		if err != nil {
			return nil, err
		}
		if op == "==" {
			return a == b, nil
		}
		x, ok1 := a.(int)
		y, ok2 := b.(int)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: %v %s %v", ErrType, a, op, b)
		}
		switch op {
		case "+":
			return x + y, nil
		case "-":
			return x - y, nil
		case "*":
			return x * y, nil
		case "<":
			return x < y, nil
		default:
			return x > y, nil
		}
	}
}

func condition(cond expr, env Env) (bool, error) {
	v, err := cond(env)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: condition is %v", ErrType, v)
	}
	return b, nil
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

// Check parses source with error recovery, the result lists every
// syntax error and carries a tree covering all of source.
func Check(source string) (*p.ParseResult, error) {
	return grammar.Run(source, p.StrategyRecovering)
}

// Exec runs source against env, which receives the assignments.
// Programs with syntax errors don't run at all.
func Exec(source string, env Env) error {
	result, err := grammar.Run(source, p.StrategyBasic)
	if err != nil {
		return err
	}
	if !result.Matched {
		checked, err := Check(source)
		if err != nil {
			return err
		}
		errs := make([]error, len(checked.Errors))
		for i, e := range checked.Errors {
			errs[i] = e
		}
		return errors.Join(errs...)
	}
	m := &machine{env: env}
	return m.exec(result.Root.Value().([]stmt))
}
