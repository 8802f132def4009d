package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/maxvaer/urlbypass/internal/config"
	"github.com/maxvaer/urlbypass/internal/outcome"
	"github.com/maxvaer/urlbypass/internal/output"
	"github.com/maxvaer/urlbypass/internal/store"
)

func newHistoryCmd() *cobra.Command {
	var (
		dbDir   string
		show    int64
		limit   int
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored runs or show one of them",
		Example: `  urlbypass history
  urlbypass history --show 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(dbDir)
			if err != nil {
				return err
			}
			defer db.Close()

			w := cmd.OutOrStdout()
			if cmd.Flags().Changed("show") {
				run, results, err := db.GetRun(cmd.Context(), show)
				if err != nil {
					return err
				}
				printRun(w, run)
				console := output.NewConsole(w, noColor)
				console.Buckets(outcome.GroupByOutcome(results))
				console.Finish(run.Duration, len(results), run.Incomplete)
				return nil
			}

			runs, err := db.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintf(w, "No runs stored in %s\n", db.Path())
				return nil
			}
			fmt.Fprintf(w, "%-5s %-19s %9s %6s %6s  %s\n", "ID", "STARTED", "DURATION", "URLS", "ERRORS", "TARGETS")
			for _, run := range runs {
				fmt.Fprintf(w, "%-5d %-19s %8.2fs %6d %6d  %s\n",
					run.ID, run.Started.Local().Format(output.TimeLayout), run.Duration.Seconds(),
					run.Total, run.Errors, targetSummary(run))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&dbDir, "db-dir", config.XDGDataDir(), "History database directory")
	f.Int64Var(&show, "show", 0, "Print the results of the run with this ID")
	f.IntVarP(&limit, "limit", "n", 20, "Number of runs to list (0 = all)")
	f.BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}

func printRun(w io.Writer, run store.Run) {
	fmt.Fprintf(w, "Run #%d started %s (%s)\n", run.ID,
		run.Started.Local().Format(output.TimeLayout), run.Duration.Round(time.Millisecond))
	for _, t := range run.Targets {
		fmt.Fprintf(w, "- Target: %s\n", t)
	}
}

func targetSummary(run store.Run) string {
	s := strings.Join(run.Targets, ", ")
	if run.Incomplete {
		s += " (interrupted)"
	}
	return s
}
