package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/history"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/model"
)

func newHistoryCommand() *cobra.Command {
	var (
		dbPath string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the runs recorded in a history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = os.Getenv("COBERTURA_HISTORY_DB")
			}
			if dbPath == "" {
				return fmt.Errorf("no history database given: use --history-db or COBERTURA_HISTORY_DB")
			}
			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("history database %s: %w", dbPath, err)
			}

			store, err := history.Open(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWHEN\tLINES\tBRANCHES\tCOMPLEXITY\tVERSION\tREPORT")
			for _, r := range runs {
				fmt.Fprintf(tw, "%d\t%s\t%s (%d/%d)\t%s (%d/%d)\t%.2f\t%s\t%s\n",
					r.ID, humanize.Time(r.Timestamp),
					model.PercentString(r.LineRate), r.LinesCovered, r.LinesValid,
					model.PercentString(r.BranchRate), r.BranchesCovered, r.BranchesValid,
					r.Complexity, r.Version, r.ReportPath)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dbPath, "history-db", "", "History database written by report --history-db")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of most recent runs to show (0 = all)")
	return cmd
}
