package ui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

type doneMsg struct{}

// lineMsg is a progress line to print above the spinner.
type lineMsg string

type spinnerModel struct {
	spinner spinner.Model
	message string
	lines   []string
	done    bool
}

func newSpinnerModel(message string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(Primary)
	return spinnerModel{spinner: s, message: message}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case lineMsg:
		m.lines = append(m.lines, string(msg))
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

// View renders the progress lines received so far with the spinner below
// them. The final frame keeps the lines and drops the spinner.
func (m spinnerModel) View() string {
	var b strings.Builder
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if !m.done {
		fmt.Fprintf(&b, " %s %s\n", m.spinner.View(), m.message)
	}
	return b.String()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WithSpinner runs fn while animating a spinner on w. When w is not a
// terminal fn simply runs, so piped installs and CI logs stay clean.
//
// fn receives the writer to use for its own progress lines. On a terminal
// those lines are drawn above the spinner and stay on screen afterwards.
// Otherwise the writer is w.
func WithSpinner(w io.Writer, message string, fn func(out io.Writer) error) error {
	if !IsTerminal(w) {
		return fn(w)
	}

	p := tea.NewProgram(newSpinnerModel(message),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	result := make(chan error, 1)
	go func() {
		out := &lineWriter{println: func(line string) { p.Send(lineMsg(line)) }}
		err := fn(out)
		out.Flush()
		result <- err
		p.Send(doneMsg{})
	}()

	// fn always runs to completion, even if the spinner cannot draw.
	_, runErr := p.Run()
	if err := <-result; err != nil {
		return err
	}
	return runErr
}

// lineWriter splits writes into lines and hands each complete line to
// println. A trailing partial line is held until Flush.
type lineWriter struct {
	mu      sync.Mutex
	buf     []byte
	println func(line string)
}

func (lw *lineWriter) Write(b []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	lw.buf = append(lw.buf, b...)
	for {
		i := bytes.IndexByte(lw.buf, '\n')
		if i < 0 {
			break
		}
		lw.println(string(lw.buf[:i]))
		lw.buf = lw.buf[i+1:]
	}
	return len(b), nil
}

// Flush emits any buffered partial line.
func (lw *lineWriter) Flush() {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if len(lw.buf) > 0 {
		lw.println(string(lw.buf))
		lw.buf = nil
	}
}
