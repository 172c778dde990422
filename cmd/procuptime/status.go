package main

import (
	"context"
	"fmt"
	"io"

	"github.com/procuptime/procuptime/internal/daemon"
	"github.com/procuptime/procuptime/internal/reporter"
	"github.com/procuptime/procuptime/internal/sampler"
	"github.com/procuptime/procuptime/pkg/detector"
	"github.com/procuptime/procuptime/pkg/utils"
	"github.com/spf13/cobra"
)

const statusTopN = 5

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var noWindow bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show tracker status, the focused window and top totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := opts.cfg

			running, pid, err := daemon.New(cfg.Daemon.PIDFile).IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check tracker status: %w", err)
			}
			if running {
				fmt.Fprintf(out, "Status: Running (PID: %d)\n", pid)
			} else {
				fmt.Fprintln(out, "Status: Not running")
			}
			fmt.Fprintf(out, "Tick Interval: %v\n", cfg.Tracker.TickInterval)
			fmt.Fprintf(out, "State File: %s\n", cfg.Store.Path)

			if !noWindow {
				printCurrentWindow(cmd.Context(), out, opts)
			}

			report, err := reporter.New(cfg.Store.Path).GenerateReport()
			if err != nil {
				fmt.Fprintf(out, "\nCould not read totals: %v\n", err)
				return nil
			}

			fmt.Fprintf(out, "\nTotals (%d applications, %s):\n", len(report.Entries), report.Total)
			for i, entry := range report.Entries {
				if i == statusTopN {
					fmt.Fprintf(out, "  ... %d more\n", len(report.Entries)-statusTopN)
					break
				}
				fmt.Fprintf(out, "  %-30s %12s  %5.1f%%\n",
					utils.Truncate(entry.Name, 30), entry.Uptime, entry.Percentage)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noWindow, "no-window", false, "Skip querying the focused window")
	return cmd
}

func printCurrentWindow(ctx context.Context, out io.Writer, opts *rootOptions) {
	det, err := detector.New()
	if err != nil {
		fmt.Fprintf(out, "\nCould not detect current window: %v\n", err)
		return
	}
	defer det.Close()

	windowInfo, err := det.GetFocusedWindow(ctx)
	if err != nil || windowInfo == nil {
		fmt.Fprintf(out, "\nNo focused window (%v)\n", err)
		return
	}

	fmt.Fprintf(out, "\nCurrent Window:\n")
	fmt.Fprintf(out, "  App: %s\n", windowInfo.AppName)
	fmt.Fprintf(out, "  Title: %s\n", windowInfo.WindowTitle)
	fmt.Fprintf(out, "  PID: %d\n", windowInfo.PID)
	fmt.Fprintf(out, "  Display: %s\n", windowInfo.DisplayServer)

	identity, err := sampler.New(det, nil, opts.cfg.Tracker).Sample(ctx)
	if err != nil {
		fmt.Fprintf(out, "  Identity: none (%v)\n", err)
		return
	}
	fmt.Fprintf(out, "  Identity: %s\n", identity)
}
