// Command pegtree runs the bundled grammars over input, reporting or
// repairing whatever doesn't match.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clarete/pegtree/ascii"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fatal("%s", err.Error())
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pegtree",
		Short: "Parse input with PEG grammars that recover from errors",
		Long: `pegtree matches input against one of the bundled grammars and prints
the parse tree.  Input that doesn't match is either reported or repaired,
depending on the strategy:

  basic       match or fail
  reporting   tell where and why matching failed
  recovering  fix the input and report every fix`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML configuration file")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Int("max-depth", 0, "Deepest matcher nesting allowed (0 = unlimited)")
	flags.Int("max-errors", 1000, "Errors a recovering run fixes before giving up")

	root.AddCommand(
		a.parseCommand(),
		a.replCommand(),
		a.grammarsCommand(),
		a.printCommand(),
	)
	return root
}

// fatal prints an error message and exits with code 1.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s ", ascii.Paint(ascii.DefaultTheme.Error, "error:"))
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintf(os.Stderr, "\n")
	os.Exit(1)
}
