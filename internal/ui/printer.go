package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Printer writes styled status lines.
type Printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer
}

// NewPrinter creates a Printer for w. Colors are used only when w is a
// terminal, so redirected logs stay plain text.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, renderer: lipgloss.NewRenderer(w)}
}

// NewPlainPrinter creates a Printer that never emits ANSI escapes.
func NewPlainPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.Ascii)
	return &Printer{w: w, renderer: r}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// WithWriter returns a Printer that keeps p's color profile but writes to w.
// Lines printed while a spinner is running go through the spinner's writer.
func (p *Printer) WithWriter(w io.Writer) *Printer {
	return &Printer{w: w, renderer: p.renderer}
}

// Command renders a shell command for inline use in a message.
func (p *Printer) Command(s string) string {
	return p.render(Code, s)
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	return style.Renderer(p.renderer).Render(s)
}

// Println writes an unstyled line.
func (p *Printer) Println(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Blank writes an empty line.
func (p *Printer) Blank() {
	fmt.Fprintln(p.w)
}

// Success writes "✓ <msg>".
func (p *Printer) Success(format string, args ...any) {
	p.status(SuccessStyle, SymbolSuccess, format, args...)
}

// Error writes "✗ <msg>".
func (p *Printer) Error(format string, args ...any) {
	p.status(ErrorStyle, SymbolError, format, args...)
}

// Warning writes "⚠ <msg>".
func (p *Printer) Warning(format string, args ...any) {
	p.status(WarningStyle, SymbolWarning, format, args...)
}

// Info writes an informational line without a symbol.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(InfoStyle, fmt.Sprintf(format, args...)))
}

// Hint writes an indented, faint follow-up line.
func (p *Printer) Hint(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+p.render(Faint, fmt.Sprintf(format, args...)))
}

// Item writes an indented status line such as "  ✓ mcp>=0.8.0".
func (p *Printer) Item(ok bool, format string, args ...any) {
	style, sym := SuccessStyle, SymbolSuccess
	if !ok {
		style, sym = WarningStyle, SymbolWarning
	}
	fmt.Fprintf(p.w, "  %s %s\n", p.render(style, sym), fmt.Sprintf(format, args...))
}

// Title writes a bold heading.
func (p *Printer) Title(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(TitleStyle, fmt.Sprintf(format, args...)))
}

// Banner writes a heading framed by "=" rules.
func (p *Printer) Banner(title string) {
	rule := strings.Repeat("=", RuleWidth)
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, rule)
	fmt.Fprintln(p.w, p.render(TitleStyle, title))
	fmt.Fprintln(p.w, rule)
}

func (p *Printer) status(style lipgloss.Style, symbol, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(p.w, "%s %s\n", p.render(style, symbol), msg)
}
