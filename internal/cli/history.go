package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCommand(a *app) *cobra.Command {
	var (
		limit    int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			history, closeHistory := a.openHistory()
			defer closeHistory()
			if history == nil {
				fmt.Fprintln(out, "History is disabled or unavailable")
				return nil
			}

			if clearAll {
				n, err := history.Clear()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d entries\n", n)
				return nil
			}

			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.History.Limit
			}
			entries, err := history.Recent(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tOPERATION\tMETHOD\tSIZE\tSTATUS\tDETAIL")
			for _, e := range entries {
				detail := e.Source
				if e.Sink != "" {
					detail += " -> " + e.Sink
				}
				if e.Error != "" {
					detail = e.Error
				}
				fmt.Fprintf(w, "%s\t%s:%s\t%s\t%s\t%s\t%s\n",
					humanize.Time(e.Time), e.Operation, e.Mode, e.Method,
					humanize.Bytes(uint64(e.Bytes)), e.Status, detail)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all history")
	return cmd
}
