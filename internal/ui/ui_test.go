package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhalim/logbook/internal/logbook"
	"github.com/danielhalim/logbook/internal/runlog"
)

func TestNew_PrefillsForm(t *testing.T) {
	m := New(nil, Request{CSVPath: "june.csv", ClockIn: "09:00 am", ClockOut: "06:00 pm", Edit: true})

	assert.Equal(t, "june.csv", m.inputs[fieldCSV].Value())
	assert.Equal(t, "09:00 am", m.inputs[fieldClockIn].Value())
	assert.Equal(t, "06:00 pm", m.inputs[fieldClockOut].Value())
	assert.True(t, m.edit)
	assert.False(t, m.dryRun)
	assert.Equal(t, stateForm, m.state)
}

func TestUpdate_TogglesModes(t *testing.T) {
	m := New(nil, Request{CSVPath: "june.csv"})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = next.(Model)
	assert.True(t, m.dryRun)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	m = next.(Model)
	assert.True(t, m.edit)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	m = next.(Model)
	assert.False(t, m.edit)
}

func TestUpdate_EnterRequiresCSVPath(t *testing.T) {
	m := New(nil, Request{})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.Equal(t, stateForm, m.state)
	assert.Nil(t, cmd)
}

func TestUpdate_LogLinesFlowIntoView(t *testing.T) {
	m := New(nil, Request{CSVPath: "june.csv"})
	m.state = stateRunning

	line := runlog.Line{
		Time:    time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
		Level:   runlog.LevelSuccess,
		Message: "2025-06-02 submitted",
	}
	next, cmd := m.Update(logLineMsg(line))
	m = next.(Model)

	require.Len(t, m.lines, 1)
	assert.Contains(t, m.lines[0], "2025-06-02 submitted")
	assert.NotNil(t, cmd, "keeps waiting for the next event")
}

func TestUpdate_RunDone(t *testing.T) {
	m := New(nil, Request{CSVPath: "june.csv"})
	m.state = stateRunning

	report := &logbook.Report{ActiveSubmitted: 12, OffSubmitted: 18}
	next, _ := m.Update(runDoneMsg{report: report})
	m = next.(Model)

	assert.Equal(t, stateDone, m.state)
	assert.Same(t, report, m.report)
	assert.Contains(t, m.View(), "12 active and 18 OFF entries submitted")
}
