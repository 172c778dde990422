package viewer

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/procuptime/procuptime/internal/models"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Process Uptimes</title>
    <style>
        :root {
            --bg-primary: #f5f5f5;
            --bg-secondary: white;
            --text-primary: #333;
            --text-muted: #7f8c8d;
            --border-color: #eee;
            --bar-color: #0000ff;
        }
        @media (prefers-color-scheme: dark) {
            :root {
                --bg-primary: #1a1a1a;
                --bg-secondary: #2d2d2d;
                --text-primary: #e0e0e0;
                --text-muted: #a0a0a0;
                --border-color: #404040;
                --bar-color: #5dade2;
            }
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            margin: 0;
            padding: 20px;
        }
        .report-box {
            background: var(--bg-secondary);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 20px;
            max-width: 820px;
        }
        .entry { margin-bottom: 12px; }
        .label { margin-bottom: 4px; }
        .uptime { color: var(--text-muted); }
        .bar {
            height: 20px;
            border-radius: 5px;
            background: var(--bar-color);
        }
        .footer { color: var(--text-muted); font-size: 0.85rem; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="report-box">
        <h1>Process Uptimes</h1>
        {{- range .Entries}}
        <div class="entry">
            <div class="label">{{.Name}}: <span class="uptime">{{.Uptime}}</span></div>
            <div class="bar" style="width: {{printf "%.1f" .BarWidth}}px"></div>
        </div>
        {{- else}}
        <p>No activity recorded yet.</p>
        {{- end}}
        <div class="footer">Total: {{.Total}} &middot; generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</div>
    </div>
</body>
</html>
`))

// RenderHTML writes the report as a standalone HTML page.
func RenderHTML(w io.Writer, report *models.Report) error {
	if err := reportTemplate.Execute(w, report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// WriteHTMLReport renders the report to path, replacing any previous file.
func WriteHTMLReport(path string, report *models.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := RenderHTML(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
