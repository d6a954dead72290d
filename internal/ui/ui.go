// Package ui is the interactive submission console. It collects the
// CSV path and default clock times, streams the run log while a
// submission is in flight, and shows the final report.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/danielhalim/logbook/internal/logbook"
	"github.com/danielhalim/logbook/internal/runlog"
)

// Request is what the console hands to the submit pipeline.
type Request struct {
	CSVPath  string
	ClockIn  string
	ClockOut string
	Edit     bool
	DryRun   bool
}

// RunFunc executes a full submission. The sink receives log lines as
// they happen; it is called from the run goroutine.
type RunFunc func(ctx context.Context, req Request, sink func(runlog.Line)) (*logbook.Report, error)

type state int

const (
	stateForm state = iota
	stateRunning
	stateDone
)

const (
	fieldCSV = iota
	fieldClockIn
	fieldClockOut
	fieldCount
)

type logLineMsg runlog.Line

type runDoneMsg struct {
	report *logbook.Report
	err    error
}

type styles struct {
	title    lipgloss.Style
	label    lipgloss.Style
	hint     lipgloss.Style
	toggleOn lipgloss.Style
	errText  lipgloss.Style
	okText   lipgloss.Style
	logBox   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4")).Bold(true),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#bac2de")),
		hint:     lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8")).Faint(true),
		toggleOn: lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA")).Bold(true),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		okText:   lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		logBox:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#585b70")).Padding(0, 1),
	}
}

type Model struct {
	run RunFunc

	state   state
	focus   int
	inputs  [fieldCount]textinput.Model
	edit    bool
	dryRun  bool
	spin    spinner.Model
	logView viewport.Model
	lines   []string
	events  chan tea.Msg
	cancel  context.CancelFunc

	report *logbook.Report
	err    error

	width  int
	height int
	st     styles
}

// New builds the console. The run function is invoked when the user
// confirms the form; initial values pre-fill the inputs.
func New(run RunFunc, initial Request) Model {
	csvIn := textinput.New()
	csvIn.Placeholder = "logbook.csv"
	csvIn.SetValue(initial.CSVPath)
	csvIn.Focus()

	clockIn := textinput.New()
	clockIn.Placeholder = "09:00 am"
	clockIn.SetValue(initial.ClockIn)
	clockIn.CharLimit = 10

	clockOut := textinput.New()
	clockOut.Placeholder = "06:00 pm"
	clockOut.SetValue(initial.ClockOut)
	clockOut.CharLimit = 10

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA"))

	m := Model{
		run:     run,
		edit:    initial.Edit,
		dryRun:  initial.DryRun,
		spin:    sp,
		logView: viewport.New(78, 14),
		events:  make(chan tea.Msg, 64),
		st:      newStyles(),
	}
	m.inputs[fieldCSV] = csvIn
	m.inputs[fieldClockIn] = clockIn
	m.inputs[fieldClockOut] = clockOut
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// waitForEvent relays one message from the run goroutine into the
// bubbletea loop.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) startRunCmd() tea.Cmd {
	req := Request{
		CSVPath:  strings.TrimSpace(m.inputs[fieldCSV].Value()),
		ClockIn:  strings.TrimSpace(m.inputs[fieldClockIn].Value()),
		ClockOut: strings.TrimSpace(m.inputs[fieldClockOut].Value()),
		Edit:     m.edit,
		DryRun:   m.dryRun,
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	events := m.events
	run := m.run
	go func() {
		sink := func(l runlog.Line) { events <- logLineMsg(l) }
		report, err := run(ctx, req, sink)
		events <- runDoneMsg{report: report, err: err}
	}()
	return tea.Batch(m.spin.Tick, m.waitForEvent())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.logView.Width = clamp(msg.Width-4, 40, 100)
		m.logView.Height = clamp(msg.Height-10, 6, 24)
		return m, nil

	case logLineMsg:
		m.lines = append(m.lines, runlog.Line(msg).String())
		m.logView.SetContent(strings.Join(m.lines, "\n"))
		m.logView.GotoBottom()
		return m, m.waitForEvent()

	case runDoneMsg:
		m.state = stateDone
		m.report = msg.report
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.state != stateRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateForm:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			m.focus = (m.focus + 1) % fieldCount
			return m.refocus(), nil
		case "shift+tab", "up":
			m.focus = (m.focus + fieldCount - 1) % fieldCount
			return m.refocus(), nil
		case "ctrl+e":
			m.edit = !m.edit
			return m, nil
		case "ctrl+d":
			m.dryRun = !m.dryRun
			return m, nil
		case "enter":
			if strings.TrimSpace(m.inputs[fieldCSV].Value()) == "" {
				return m, nil
			}
			m.state = stateRunning
			m.lines = nil
			cmd := m.startRunCmd()
			return m, cmd
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd

	case stateRunning:
		switch msg.String() {
		case "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd

	case stateDone:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "r":
			m.state = stateForm
			m.report = nil
			m.err = nil
			return m.refocus(), textinput.Blink
		}
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) refocus() Model {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.st.title.Render("Logbook submission"))
	b.WriteString("\n\n")

	switch m.state {
	case stateForm:
		b.WriteString(m.st.label.Render("CSV file   ") + m.inputs[fieldCSV].View() + "\n")
		b.WriteString(m.st.label.Render("Clock in   ") + m.inputs[fieldClockIn].View() + "\n")
		b.WriteString(m.st.label.Render("Clock out  ") + m.inputs[fieldClockOut].View() + "\n\n")
		b.WriteString(m.st.label.Render("Modes      ") + m.toggle("edit", m.edit) + "  " + m.toggle("dry-run", m.dryRun) + "\n\n")
		b.WriteString(m.st.hint.Render("tab: next field · ctrl+e: edit mode · ctrl+d: dry run · enter: submit · esc: quit"))

	case stateRunning:
		b.WriteString(m.spin.View() + " submitting" + m.modeSuffix() + "\n\n")
		b.WriteString(m.st.logBox.Render(m.logView.View()))
		b.WriteString("\n" + m.st.hint.Render("ctrl+c: cancel"))

	case stateDone:
		if m.err != nil {
			b.WriteString(m.st.errText.Render("✘ "+m.err.Error()) + "\n\n")
		} else if m.report != nil {
			line := m.report.Summary()
			if len(m.report.Failures) > 0 {
				b.WriteString(m.st.errText.Render("! "+line) + "\n\n")
			} else {
				b.WriteString(m.st.okText.Render("✔ "+line) + "\n\n")
			}
		}
		b.WriteString(m.st.logBox.Render(m.logView.View()))
		b.WriteString("\n" + m.st.hint.Render("r: run again · q: quit"))
	}

	return b.String() + "\n"
}

func (m Model) toggle(name string, on bool) string {
	if on {
		return m.st.toggleOn.Render(fmt.Sprintf("[x] %s", name))
	}
	return m.st.hint.Render(fmt.Sprintf("[ ] %s", name))
}

func (m Model) modeSuffix() string {
	var parts []string
	if m.edit {
		parts = append(parts, "edit")
	}
	if m.dryRun {
		parts = append(parts, "dry-run")
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
