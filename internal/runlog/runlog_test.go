package runlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
}

func TestLogger_WritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")

	var buf bytes.Buffer
	l, err := New(&buf, path)
	require.NoError(t, err)
	l.Plain()
	l.now = fixedNow

	l.Infof("starting run")
	l.Successf("2025-06-02 submitted")
	l.Errorf("2025-06-03 failed: %d", 500)
	require.NoError(t, l.Close())

	out := buf.String()
	assert.Contains(t, out, "starting run")
	assert.Contains(t, out, "✔ 2025-06-02 submitted")
	assert.Contains(t, out, "✘ 2025-06-03 failed: 500")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[2025-06-01 09:30:00] INFO starting run", lines[0])
	assert.Equal(t, "[2025-06-01 09:30:00] OK 2025-06-02 submitted", lines[1])
	assert.Equal(t, "[2025-06-01 09:30:00] FAIL 2025-06-03 failed: 500", lines[2])
}

func TestLogger_AppendsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")

	for i := 0; i < 2; i++ {
		l, err := New(nil, path)
		require.NoError(t, err)
		l.Infof("run %d", i)
		require.NoError(t, l.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestLogger_Sink(t *testing.T) {
	l := Discard()
	var got []Line
	l.SetSink(func(ln Line) { got = append(got, ln) })

	l.Warnf("no months found")
	require.Len(t, got, 1)
	assert.Equal(t, LevelWarn, got[0].Level)
	assert.Equal(t, "no months found", got[0].Message)
}
