package main

import (
	"fmt"

	"github.com/procuptime/procuptime/internal/config"
	"github.com/procuptime/procuptime/internal/logging"
	"github.com/procuptime/procuptime/internal/version"
	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configFile string
	verbose    bool
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "procuptime",
		Short: "Per-application focus time tracker",
		Long: `procuptime samples the focused window once per tick and adds the elapsed
time to the owning process. Totals are kept in a JSON file and survive restarts.

Running without a subcommand starts the tray icon and the tracker.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(cmd, opts)
		},
	}
	cmd.SetVersionTemplate(version.String())

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to config.yml (default $PROCUPTIME_CONFIG or the user config dir)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newRunCmd(opts),
		newTrackCmd(opts),
		newViewCmd(opts),
		newStatusCmd(opts),
		newErrorsCmd(opts),
		newResetCmd(opts),
		newStopCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

// load resolves the effective configuration and applies its log settings
// for console use. Long-running commands reconfigure logging themselves.
func (o *rootOptions) load() error {
	cfg, err := config.New(o.configFile)
	if err != nil {
		return err
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	o.cfg = cfg

	return logging.Configure(cfg.Log, false)
}
