package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/clarete/pegtree"
	"github.com/clarete/pegtree/ascii"
	"github.com/clarete/pegtree/metrics"
)

var (
	ErrNoMatch       = errors.New("input doesn't match the grammar")
	ErrInvalidInput  = errors.New("input has errors")
	ErrUnknownFormat = errors.New("unknown output format")
)

type parseOptions struct {
	grammar  string
	strategy string
	format   string
	stats    bool
	metrics  bool
}

func (a *app) parseCommand() *cobra.Command {
	opts := &parseOptions{}
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a file, or the standard input, and print the tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return a.parse(cmd.OutOrStdout(), opts, input)
		},
	}
	cmd.Flags().StringVarP(&opts.grammar, "grammar", "g", "arithmetic", "Grammar to parse with")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "recovering", "Strategy (basic, reporting, recovering)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format (text, yaml)")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print a summary of the run")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print the run metrics in the Prometheus text format")
	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("can't read input: %w", err)
	}
	return string(data), nil
}

func (a *app) parse(out io.Writer, opts *parseOptions, input string) error {
	g, err := lookupGrammar(opts.grammar)
	if err != nil {
		return err
	}
	strategy, err := pegtree.ParseStrategy(opts.strategy)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	observer, err := metrics.NewObserver(reg)
	if err != nil {
		return fmt.Errorf("can't register metrics: %w", err)
	}
	recorder := &statsRecorder{next: observer}

	runner := pegtree.NewParseRunner(g, strategy, a.runnerOptions(pegtree.WithObserver(recorder))...)
	result, err := runner.Run(input)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	switch opts.format {
	case "text":
		a.printResult(out, result)
	case "yaml":
		data, err := result.ToYAML()
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w `%s`", ErrUnknownFormat, opts.format)
	}

	if opts.stats {
		fmt.Fprintln(out, summarize(recorder.last, len(input)))
	}
	if opts.metrics {
		if err := writeMetrics(out, reg); err != nil {
			return err
		}
	}
	return resultError(result)
}

func resultError(result *pegtree.ParseResult) error {
	switch {
	case result.HasErrors():
		return fmt.Errorf("%w: %d found", ErrInvalidInput, len(result.Errors))
	case !result.Matched:
		return ErrNoMatch
	default:
		return nil
	}
}

func (a *app) printResult(out io.Writer, result *pegtree.ParseResult) {
	if result.Root != nil {
		fmt.Fprintln(out, result.Root.HighlightWith(a.theme))
	}
	if result.HasErrors() {
		fmt.Fprintln(out, a.errorTable(result.Errors))
	}
}

// errorTable lists errors with the same columns the YAML output has.
func (a *app) errorTable(errs []pegtree.ParseError) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.AppendHeader(table.Row{"#", "Kind", "Location", "Message"})
	for i, e := range errs {
		tbl.AppendRow(table.Row{
			i + 1,
			ascii.Paint(a.theme.Error, e.Kind.String()),
			e.Span.String(),
			e.Message(),
		})
	}
	return tbl.Render()
}

// statsRecorder keeps the statistics of the last run and passes them
// on to next.
type statsRecorder struct {
	next pegtree.RunObserver
	last pegtree.RunStats
}

func (r *statsRecorder) ObserveRun(s pegtree.RunStats) {
	r.last = s
	if r.next != nil {
		r.next.ObserveRun(s)
	}
}

func summarize(s pegtree.RunStats, size int) string {
	errs := 0
	for _, n := range s.Errors {
		errs += n
	}
	return fmt.Sprintf("%s run over %s characters (%s) in %s: %s, %s, %s",
		s.Strategy,
		humanize.Comma(int64(s.Input)),
		humanize.Bytes(uint64(size)),
		humanize.SIWithDigits(s.Duration.Seconds(), 2, "s"),
		plural(s.Passes, "pass", "passes"),
		plural(errs, "error", "errors"),
		plural(s.MemoHits, "memo hit", "memo hits"),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return humanize.Comma(int64(n)) + " " + many
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("can't gather metrics: %w", err)
	}
	return encodeFamilies(w, families)
}

func encodeFamilies(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
