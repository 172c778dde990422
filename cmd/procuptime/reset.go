package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/procuptime/procuptime/internal/daemon"
	"github.com/procuptime/procuptime/internal/store"
	"github.com/spf13/cobra"
)

func newResetCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all recorded totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := opts.cfg.Store.Path

			running, pid, err := daemon.New(opts.cfg.Daemon.PIDFile).IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check tracker status: %w", err)
			}
			if running {
				return fmt.Errorf("tracker is running (PID: %d); stop it first", pid)
			}

			if !yes {
				fmt.Fprint(out, "This will delete all tracking data. Are you sure? (yes/no): ")
				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				response = strings.TrimSpace(strings.ToLower(response))
				if response != "yes" && response != "y" {
					fmt.Fprintln(out, "Operation cancelled")
					return nil
				}
			}

			backups, err := store.CorruptBackups(path)
			if err != nil {
				return fmt.Errorf("failed to list corrupt backups: %w", err)
			}
			for _, p := range append([]string{path}, backups...) {
				if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("failed to delete %s: %w", p, err)
				}
			}

			fmt.Fprintln(out, "Tracking data deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
