package viewer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/procuptime/procuptime/internal/models"
	"github.com/procuptime/procuptime/internal/reporter"
	"github.com/procuptime/procuptime/pkg/utils"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4A90E2")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().Bold(true)

	uptimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7F8C8D"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0000FF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// rows used by header, blank line and footer
const chromeHeight = 4

type changedMsg struct{}

// model is the bubbletea model for the interactive viewer.
type model struct {
	reporter *reporter.Reporter
	report   *models.Report
	err      error
	changes  <-chan struct{}
	width    int
	height   int
	offset   int
}

func newModel(r *reporter.Reporter, changes <-chan struct{}) model {
	m := model{reporter: r, changes: changes}
	m.reload()
	return m
}

func (m *model) reload() {
	report, err := m.reporter.GenerateReport()
	m.err = err
	if err == nil {
		m.report = report
	}
	m.clampOffset()
}

func (m model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.reload()
		case "down", "j":
			m.offset++
			m.clampOffset()
		case "up", "k":
			m.offset--
			m.clampOffset()
		case "home", "g":
			m.offset = 0
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
	case changedMsg:
		m.reload()
		return m, m.waitForChange()
	}
	return m, nil
}

func (m *model) visibleRows() int {
	rows := m.height - chromeHeight
	if rows < 1 {
		rows = 1
	}
	return rows / 2
}

func (m *model) clampOffset() {
	if m.report == nil {
		m.offset = 0
		return
	}
	maxOffset := len(m.report.Entries) - m.visibleRows()
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	total := "0s"
	if m.report != nil {
		total = m.report.Total
	}
	b.WriteString(headerStyle.Width(m.width).Render(fmt.Sprintf("Process Uptimes  (total %s)", total)))
	b.WriteString("\n\n")

	switch {
	case m.report == nil && m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	case len(m.report.Entries) == 0:
		b.WriteString("No activity recorded yet.\n")
	default:
		end := m.offset + m.visibleRows()
		if end > len(m.report.Entries) {
			end = len(m.report.Entries)
		}
		for _, entry := range m.report.Entries[m.offset:end] {
			b.WriteString(nameStyle.Render(utils.Truncate(entry.Name, m.width-16)))
			b.WriteString(": ")
			b.WriteString(uptimeStyle.Render(entry.Uptime))
			b.WriteString("\n")
			b.WriteString(barStyle.Render(strings.Repeat("█", reporter.BarColumns(entry, m.width-2))))
			b.WriteString("\n")
		}
	}

	footer := "q quit • r reload • ↑/↓ scroll"
	if m.changes != nil {
		footer += " • following changes"
	}
	if m.report != nil && m.err != nil {
		footer += " • " + errorStyle.Render("reload failed: "+m.err.Error())
	}
	b.WriteString(footerStyle.Render(footer))

	return b.String()
}
