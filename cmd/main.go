// Command cobertura-writer merges coverage inputs and writes a Cobertura
// coverage.xml report.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// version is written into the report; release builds set it with -ldflags.
var version = "1.0.0"

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "cobertura-writer",
		Short: "Write Cobertura coverage.xml reports",
		Long: `cobertura-writer reads coverage inputs (Go cover profiles, model dumps or coverage.xml files),
merges them and writes a single coverage.xml that follows coverage-04.dtd.

Examples:
  cobertura-writer report --report "coverage/*.out" --output build
  cobertura-writer report --config cobertura.yaml
  cobertura-writer history --history-db runs.db --limit 10`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newReportCommand(), newHistoryCommand(), newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version written into reports",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
