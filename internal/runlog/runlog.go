package runlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "OK"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "FAIL"
	default:
		return "INFO"
	}
}

// Line is one emitted log line.
type Line struct {
	Time    time.Time
	Level   Level
	Message string
}

// String renders the line the way it is persisted to the log file.
func (ln Line) String() string {
	return fmt.Sprintf("[%s] %s %s", ln.Time.Format("2006-01-02 15:04:05"), ln.Level, ln.Message)
}

type styles struct {
	info    lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	stamp   lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		return styles{}
	}
	return styles{
		info:    lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FAB387")),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		stamp:   lipgloss.NewStyle().Faint(true),
	}
}

// Logger writes timestamped, leveled lines to a console writer, an
// append-only log file, and an optional sink callback. The sink is how
// the TUI observes a run without sharing state across goroutines.
type Logger struct {
	mu   sync.Mutex
	out  io.Writer
	file *os.File
	sink func(Line)
	st   styles
	now  func() time.Time
}

// New creates a logger that echoes to out and appends to the file at
// path. An empty path disables the persistent log.
func New(out io.Writer, path string) (*Logger, error) {
	l := &Logger{out: out, st: newStyles(true), now: time.Now}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
	}
	return l, nil
}

// SetSink installs a callback invoked for every line. Pass nil to remove.
func (l *Logger) SetSink(fn func(Line)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sink = fn
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) emit(level Level, format string, args ...any) {
	ln := Line{Time: l.now(), Level: level, Message: fmt.Sprintf(format, args...)}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.out != nil {
		var style lipgloss.Style
		switch level {
		case LevelSuccess:
			style = l.st.success
		case LevelWarn:
			style = l.st.warn
		case LevelError:
			style = l.st.err
		default:
			style = l.st.info
		}
		stamp := l.st.stamp.Render("[" + ln.Time.Format("15:04:05") + "]")
		fmt.Fprintf(l.out, "%s %s\n", stamp, style.Render(marker(level)+ln.Message))
	}
	if l.file != nil {
		fmt.Fprintln(l.file, ln.String())
	}
	if l.sink != nil {
		l.sink(ln)
	}
}

func marker(level Level) string {
	switch level {
	case LevelSuccess:
		return "✔ "
	case LevelWarn:
		return "! "
	case LevelError:
		return "✘ "
	default:
		return ""
	}
}

func (l *Logger) Infof(format string, args ...any)    { l.emit(LevelInfo, format, args...) }
func (l *Logger) Successf(format string, args ...any) { l.emit(LevelSuccess, format, args...) }
func (l *Logger) Warnf(format string, args ...any)    { l.emit(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any)   { l.emit(LevelError, format, args...) }

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return &Logger{st: newStyles(false), now: time.Now}
}

// Plain disables color styling, keeping timestamps and markers.
func (l *Logger) Plain() *Logger {
	l.st = newStyles(false)
	return l
}

// Indent prefixes a message block for multi-line detail under a step.
func Indent(s string) string {
	parts := strings.Split(s, "\n")
	for i := range parts {
		parts[i] = "   " + parts[i]
	}
	return strings.Join(parts, "\n")
}
