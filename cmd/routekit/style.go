package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/routekit/internal/plugin"
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	activeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	quarantinedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// styler applies lipgloss styles only when writing to a terminal.
type styler struct {
	enabled bool
}

func newStyler(w io.Writer) styler {
	return styler{enabled: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

func (s styler) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

func (s styler) header(text string) string {
	return s.render(headerStyle, text)
}

func (s styler) muted(text string) string {
	return s.render(mutedStyle, text)
}

func (s styler) state(state plugin.State) string {
	if !s.enabled {
		return string(state)
	}
	if state == plugin.StateQuarantined {
		return quarantinedStyle.Render(string(state))
	}
	return activeStyle.Render(string(state))
}

func (s styler) check() string {
	if s.enabled {
		return activeStyle.Render("✓")
	}
	return "[OK]"
}
