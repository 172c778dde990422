package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/procuptime/procuptime/internal/viewer"
	"github.com/procuptime/procuptime/internal/web"
	"github.com/spf13/cobra"
)

func newViewCmd(opts *rootOptions) *cobra.Command {
	var (
		html     bool
		jsonOut  bool
		plain    bool
		follow   bool
		noOpen   bool
		output   string
		width    int
		filePath string
		serve    string
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show time spent per application",
		Long: `Load the state file once and show each application's total focus time,
longest first. On a terminal an interactive view is used; --html writes a
report page and opens it in the browser.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := viewer.ModeAuto
			switch {
			case html && jsonOut:
				return fmt.Errorf("--html and --json are mutually exclusive")
			case html:
				mode = viewer.ModeHTML
			case jsonOut:
				mode = viewer.ModeJSON
			case plain:
				mode = viewer.ModeText
			}
			if follow && (html || jsonOut || plain) {
				return fmt.Errorf("--follow only applies to the interactive view")
			}

			statePath := opts.cfg.Store.Path
			if filePath != "" {
				statePath = filePath
			}

			if cmd.Flags().Changed("serve") {
				return serveStats(cmd.Context(), statePath, serve, noOpen)
			}
			if output == "" {
				output = filepath.Join(filepath.Dir(opts.cfg.Store.Path), "report.html")
			}

			return viewer.Run(cmd.Context(), viewer.Options{
				StatePath: statePath,
				Mode:      mode,
				Follow:    follow,
				HTMLPath:  output,
				NoOpen:    noOpen,
				Width:     width,
				Out:       cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().BoolVar(&html, "html", false, "Write an HTML report and open it in the browser")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print a plain text table even on a terminal")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Reload the interactive view when the state file changes")
	cmd.Flags().BoolVar(&noOpen, "no-open", false, "With --html, print the report path instead of opening it")
	cmd.Flags().StringVarP(&output, "output", "o", "", "HTML report path (default next to the state file)")
	cmd.Flags().IntVar(&width, "width", 80, "Line width of the plain text table")
	cmd.Flags().StringVar(&filePath, "file", "", "Read this state file instead of the configured one")
	cmd.Flags().StringVar(&serve, "serve", web.DefaultAddr, "Serve the report over HTTP on this address until interrupted")
	cmd.Flags().Lookup("serve").NoOptDefVal = web.DefaultAddr

	return cmd
}

// serveStats runs the HTTP report until SIGINT or SIGTERM.
func serveStats(ctx context.Context, statePath, addr string, noOpen bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return web.NewServer(statePath, addr).Serve(ctx, func(bound string) {
		if noOpen {
			return
		}
		_ = viewer.OpenInBrowser("http://" + bound + "/")
	})
}
