// Command flatbase opens a single-table database file and serves an
// interactive insert/select REPL over it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flatbase/config"
	"flatbase/logging"
	"flatbase/repl"
	"flatbase/table"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatbase <database-file>",
		Short: "A single-table, B+ tree backed database REPL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDatabase(args[0])
		},
		SilenceUsage: true,
	}
	return cmd
}

func runDatabase(path string) error {
	settings := config.Load()
	if err := logging.SetLevel(settings.LogLevel); err != nil {
		return fmt.Errorf("flatbase: invalid log level %q: %w", settings.LogLevel, err)
	}
	if settings.LogFormat == "json" {
		logging.SetJSONFormat()
	}

	t, err := table.Open(path)
	if err != nil {
		return fmt.Errorf("flatbase: %w", err)
	}

	if err := repl.Run(t, os.Stdout); err != nil {
		return fmt.Errorf("flatbase: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
