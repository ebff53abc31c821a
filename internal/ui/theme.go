// Package ui renders the launcher's user-facing status lines.
//
// All output goes to an io.Writer that is stderr in production: once the
// server is running, stdout belongs to the MCP client.
package ui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	Primary = lipgloss.Color("#3b82f6") // imaging blue
	Success = lipgloss.Color("#00d26a")
	Error   = lipgloss.Color("#ff3b30")
	Warning = lipgloss.Color("#ffcc00")
	Info    = lipgloss.Color("#5ac8fa")
	Muted   = lipgloss.Color("#8e8e93")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Info)

	Faint = lipgloss.NewStyle().
		Foreground(Muted).
		Faint(true)

	Code = lipgloss.NewStyle().
		Foreground(Primary)
)

// Symbols
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolRocket  = "🚀"
	SymbolBox     = "📦"
	SymbolDone    = "✅"
)

// RuleWidth is the width of the "=" banner rule.
const RuleWidth = 70
