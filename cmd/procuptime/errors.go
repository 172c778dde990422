package main

import (
	"fmt"
	"time"

	"github.com/procuptime/procuptime/internal/database"
	"github.com/spf13/cobra"
)

func newErrorsCmd(opts *rootOptions) *cobra.Command {
	var (
		limit   int
		kind    string
		summary time.Duration
		prune   time.Duration
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "errors",
		Short: "Show recent tracker errors from the diagnostics log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if !opts.cfg.Diagnostics.Enabled {
				fmt.Fprintln(out, "Diagnostics are disabled")
				return nil
			}

			db, err := database.Connect(opts.cfg.Diagnostics.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Initialize(); err != nil {
				return err
			}
			repo := database.NewRepository(db)

			switch {
			case clearAll:
				if err := repo.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Diagnostics log cleared")
				return nil
			case prune > 0:
				n, err := repo.PruneErrors(time.Now().Add(-prune))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d entries older than %v\n", n, prune)
				return nil
			case summary > 0:
				summaries, err := repo.SummarizeErrors(time.Now().Add(-summary))
				if err != nil {
					return err
				}
				if len(summaries) == 0 {
					fmt.Fprintf(out, "No errors in the last %v\n", summary)
					return nil
				}
				fmt.Fprintf(out, "%-10s %8s\n", "Kind", "Count")
				for _, s := range summaries {
					fmt.Fprintf(out, "%-10s %8d\n", s.Kind, s.Count)
				}
				return nil
			}

			logs, err := repo.RecentErrors(kind, limit)
			if err != nil {
				return err
			}
			if len(logs) == 0 {
				fmt.Fprintln(out, "No errors recorded")
				return nil
			}
			for _, l := range logs {
				fmt.Fprintf(out, "%s  %-8s %s\n", l.Timestamp.Local().Format("2006-01-02 15:04:05"), l.Kind, l.ErrorMsg)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	cmd.Flags().StringVar(&kind, "kind", "", "Only show one kind (sample, persist, launch, tray)")
	cmd.Flags().DurationVar(&summary, "summary", 0, "Count errors per kind over this window (e.g. 24h)")
	cmd.Flags().DurationVar(&prune, "prune", 0, "Delete entries older than this age (e.g. 720h)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete every entry")

	return cmd
}
