// Package viewer renders the cumulative state: a bubbletea TUI on terminals,
// a plain table otherwise, or a static HTML page opened in the browser.
package viewer

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/procuptime/procuptime/internal/logging"
	"github.com/procuptime/procuptime/internal/reporter"
)

// Mode selects how a report is presented.
type Mode int

const (
	ModeAuto Mode = iota
	ModeText
	ModeJSON
	ModeHTML
	ModeTUI
)

// Options configures a viewer run.
type Options struct {
	StatePath string
	Mode      Mode
	// Follow reloads the TUI whenever the state file changes.
	Follow bool
	// HTMLPath is where ModeHTML writes its page.
	HTMLPath string
	// NoOpen skips launching the browser in ModeHTML.
	NoOpen bool
	Width  int
	Out    io.Writer
	Opener func(path string) error
}

// Run loads the state file once and presents it according to opts.
func Run(ctx context.Context, opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Opener == nil {
		opts.Opener = OpenInBrowser
	}

	mode := opts.Mode
	if mode == ModeAuto {
		mode = ModeText
		if isTerminal(opts.Out) {
			mode = ModeTUI
		}
	}

	r := reporter.New(opts.StatePath)

	switch mode {
	case ModeTUI:
		return runTUI(ctx, r, opts)
	case ModeHTML:
		return runHTML(r, opts)
	default:
		return runStatic(r, mode, opts.Out, opts.Width)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runStatic(r *reporter.Reporter, mode Mode, out io.Writer, width int) error {
	report, err := r.GenerateReport()
	if err != nil {
		return err
	}

	if mode == ModeJSON {
		data, err := reporter.FormatReportJSON(report)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, data)
		return err
	}

	if width <= 0 {
		width = 80
	}
	_, err = io.WriteString(out, reporter.FormatReportText(report, width))
	return err
}

func runHTML(r *reporter.Reporter, opts Options) error {
	report, err := r.GenerateReport()
	if err != nil {
		return err
	}

	if err := WriteHTMLReport(opts.HTMLPath, report); err != nil {
		return err
	}
	logging.NewLogger("viewer").Debugf("Report written to %s", opts.HTMLPath)

	if opts.NoOpen {
		fmt.Fprintln(opts.Out, opts.HTMLPath)
		return nil
	}
	return opts.Opener(opts.HTMLPath)
}

func runTUI(ctx context.Context, r *reporter.Reporter, opts Options) error {
	var changes <-chan struct{}
	if opts.Follow {
		w, err := NewWatcher(opts.StatePath, 0)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", opts.StatePath, err)
		}
		defer w.Close()

		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go w.Start(watchCtx)
		changes = w.Changes()
	}

	p := tea.NewProgram(newModel(r, changes), tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(opts.Out))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}
