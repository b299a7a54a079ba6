package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/clarete/pegtree"
	"github.com/clarete/pegtree/grammars/arithmetic"
	"github.com/clarete/pegtree/grammars/json"
	"github.com/clarete/pegtree/grammars/statements"
)

var ErrUnknownGrammar = errors.New("unknown grammar")

type grammarEntry struct {
	name        string
	description string
	grammar     func() *pegtree.Grammar
}

var registry = []grammarEntry{
	{"arithmetic", "Integer expressions with + - * / and parentheses", arithmetic.Grammar},
	{"json", "JSON documents", json.Grammar},
	{"statements", "Assignments, if and while over integers and booleans", statements.Grammar},
}

func grammarNames() []string {
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.name
	}
	return names
}

func lookupGrammar(name string) (*pegtree.Grammar, error) {
	for _, e := range registry {
		if e.name == name {
			return e.grammar(), nil
		}
	}
	return nil, fmt.Errorf("%w `%s`, available: %s", ErrUnknownGrammar, name, strings.Join(grammarNames(), ", "))
}

func (a *app) grammarsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grammars",
		Short: "List the bundled grammars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tbl := table.NewWriter()
			tbl.SetStyle(table.StyleLight)
			tbl.Style().Options.DrawBorder = false
			tbl.Style().Options.SeparateColumns = false
			tbl.AppendHeader(table.Row{"Name", "Rules", "Matchers", "Description"})
			for _, e := range registry {
				g := e.grammar()
				tbl.AppendRow(table.Row{e.name, len(g.Rules()), g.Size(), e.description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
			return nil
		},
	}
}

func (a *app) printCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the matcher tree of a grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := lookupGrammar(name)
			if err != nil {
				return err
			}
			out := g.String()
			if a.color {
				out = pegtree.HighlightGrammar(g)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "grammar", "g", "arithmetic", "Grammar to print")
	return cmd
}
