package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/clarete/pegtree"
	"github.com/clarete/pegtree/ascii"
)

const replHelp = `Each line is parsed with the current grammar and strategy.
  :grammar NAME     switch grammars (%s)
  :strategy NAME    switch strategies (basic, reporting, recovering)
  :print            print the current grammar
  :quit             leave`

type repl struct {
	app      *app
	grammar  string
	strategy pegtree.Strategy
	runner   *pegtree.ParseRunner
}

func (a *app) replCommand() *cobra.Command {
	var grammar, strategy string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Parse lines read interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := &repl{app: a}
			if err := r.use(grammar, strategy); err != nil {
				return err
			}
			return r.loop(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&grammar, "grammar", "g", "arithmetic", "Grammar to start with")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "recovering", "Strategy to start with")
	return cmd
}

func (r *repl) loop(out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
		Stdout:          out,
	})
	if err != nil {
		return fmt.Errorf("create readline config: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(out, replHelp+"\n", strings.Join(grammarNames(), ", "))
	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}
		if r.eval(out, line) {
			return nil
		}
	}
}

// eval handles one line of input and tells whether the session is
// over.
func (r *repl) eval(out io.Writer, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ":") {
		return r.command(out, line)
	}

	result, err := r.runner.Run(line)
	if err != nil {
		r.printError(out, err)
		return false
	}
	r.app.printResult(out, result)
	if !result.Matched && !result.HasErrors() {
		r.printError(out, ErrNoMatch)
	}
	return false
}

func (r *repl) command(out io.Writer, line string) bool {
	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	var err error
	switch name {
	case "quit", "q":
		return true
	case "grammar":
		err = r.use(arg, r.strategy.String())
	case "strategy":
		err = r.use(r.grammar, arg)
	case "print":
		fmt.Fprintln(out, r.runner.Grammar().String())
	case "help":
		fmt.Fprintf(out, replHelp+"\n", strings.Join(grammarNames(), ", "))
	default:
		err = fmt.Errorf("unknown command `%s`, try :help", name)
	}
	if err != nil {
		r.printError(out, err)
	}
	return false
}

func (r *repl) use(grammar, strategy string) error {
	g, err := lookupGrammar(grammar)
	if err != nil {
		return err
	}
	s, err := pegtree.ParseStrategy(strategy)
	if err != nil {
		return err
	}
	r.grammar, r.strategy = grammar, s
	r.runner = pegtree.NewParseRunner(g, s, r.app.runnerOptions()...)
	return nil
}

func (r *repl) printError(out io.Writer, err error) {
	fmt.Fprintf(out, "%s %s\n", ascii.Paint(r.app.theme.Error, "ERROR:"), err.Error())
}
