package main

import (
	"context"
	"errors"

	"github.com/procuptime/procuptime/internal/logging"
	"github.com/procuptime/procuptime/internal/tray"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the tray icon and the tracker (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(cmd, opts)
		},
	}
}

func runTray(cmd *cobra.Command, opts *rootOptions) error {
	// The tray usually has no terminal, so logs go to the log file.
	if err := logging.Configure(opts.cfg.Log, true); err != nil {
		return err
	}

	tr, err := tray.New()
	if err != nil {
		return err
	}

	a, err := newApp(opts.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	a.queue.RelaySignals(ctx)

	return tr.Run(a.queue, func() error {
		return trackerResult(a.engine.Run(ctx))
	})
}

func newTrackCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "track",
		Short: "Run the tracker without a tray icon",
		Long: `Run the tracker in the foreground without a tray icon. SIGINT and SIGTERM
stop it cleanly; the state is saved after every tick.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			a.queue.RelaySignals(ctx)

			return trackerResult(a.engine.Run(ctx))
		},
	}
}

// trackerResult maps a canceled context to a clean exit.
func trackerResult(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
