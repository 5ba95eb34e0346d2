// Package tui implements the interactive front end: a directory picker,
// scan options, and a live log pane fed by a background scan worker.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/modtools/modup/internal/config"
	"github.com/modtools/modup/internal/progress"
)

// Runner executes one full scan, reporting lines to sink. It is called on a
// background goroutine; the model drains the sink's channel from its own
// event loop. The channel is the only state shared between the two.
type Runner func(dir string, recursive, backup bool, sink progress.Sink)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
	optionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8F8F2"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
)

type (
	scanLineMsg string
	scanDoneMsg struct{}
)

// Model is the Bubble Tea model for the interactive updater.
type Model struct {
	dirInput textinput.Model
	spinner  spinner.Model

	recursive bool
	backup    bool

	runner Runner
	events chan string

	lines   []string
	running bool
	errText string

	width  int
	height int
}

// New creates a model seeded from persisted preferences.
func New(prefs config.Preferences, runner Runner) Model {
	ti := textinput.New()
	ti.Placeholder = "/path/to/modules"
	ti.SetValue(prefs.LastDirectory)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return Model{
		dirInput:  ti,
		spinner:   sp,
		recursive: prefs.Recursive,
		backup:    prefs.Backup,
		runner:    runner,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// waitForLine blocks until the worker produces the next progress line, or
// reports completion once the worker closes the channel.
func (m Model) waitForLine() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		line, ok := <-events
		if !ok {
			return scanDoneMsg{}
		}
		return scanLineMsg(line)
	}
}

// startScan launches the worker goroutine for one batch. Starting a scan
// while one is running is rejected by the caller, not here.
func (m *Model) startScan() tea.Cmd {
	dir := strings.TrimSpace(m.dirInput.Value())
	if dir == "" {
		m.errText = "select a modules directory first"
		return nil
	}

	m.errText = ""
	m.lines = nil
	m.running = true
	m.events = make(chan string, 64)

	events := m.events
	runner := m.runner
	recursive, backup := m.recursive, m.backup
	go func() {
		runner(dir, recursive, backup, progress.NewChannelSink(events))
		close(events)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForLine())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.running {
				return m, nil
			}
			cmd := m.startScan()
			return m, cmd
		case "ctrl+r":
			if !m.running {
				m.recursive = !m.recursive
			}
			return m, nil
		case "ctrl+b":
			if !m.running {
				m.backup = !m.backup
			}
			return m, nil
		}
		if m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.dirInput, cmd = m.dirInput.Update(msg)
		return m, cmd

	case scanLineMsg:
		m.lines = append(m.lines, string(msg))
		return m, m.waitForLine()

	case scanDoneMsg:
		m.running = false
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("modup - module updater"))
	b.WriteString("\n\n")
	b.WriteString("Modules directory:\n")
	b.WriteString(m.dirInput.View())
	b.WriteString("\n\n")

	b.WriteString(optionStyle.Render(fmt.Sprintf("[%s] recursive (ctrl+r)   [%s] backup (ctrl+b)",
		checkbox(m.recursive), checkbox(m.backup))))
	b.WriteString("\n\n")

	if m.errText != "" {
		b.WriteString(errStyle.Render(m.errText))
		b.WriteString("\n")
	}

	if m.running {
		b.WriteString(m.spinner.View())
		b.WriteString(" scanning ...\n")
	}

	for _, line := range m.visibleLines() {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: start scan   esc: quit"))
	return b.String()
}

// visibleLines returns the log tail that fits the terminal height.
func (m Model) visibleLines() []string {
	// Rows consumed by the chrome around the log pane.
	const reserved = 10
	max := m.height - reserved
	if max <= 0 || len(m.lines) <= max {
		return m.lines
	}
	return m.lines[len(m.lines)-max:]
}

func checkbox(on bool) string {
	if on {
		return "x"
	}
	return " "
}

// Preferences returns the current option state, used to persist settings
// when a scan starts.
func (m Model) Preferences() config.Preferences {
	return config.Preferences{
		LastDirectory: strings.TrimSpace(m.dirInput.Value()),
		Recursive:     m.recursive,
		Backup:        m.backup,
	}
}
