package main

import (
	"fmt"

	"github.com/procuptime/procuptime/internal/daemon"
	"github.com/spf13/cobra"
)

func newStopCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running tracker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			dm := daemon.New(opts.cfg.Daemon.PIDFile)

			running, pid, err := dm.IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check tracker status: %w", err)
			}
			if !running {
				fmt.Fprintln(out, "Tracker is not running")
				return nil
			}

			fmt.Fprintf(out, "Stopping tracker (PID: %d)...\n", pid)
			if err := dm.Stop(); err != nil {
				return fmt.Errorf("failed to stop tracker: %w", err)
			}

			fmt.Fprintln(out, "Stop requested")
			return nil
		},
	}
}
