package report

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Adaptive styles for summary output. Colors adjust to light and dark
// terminal themes.
var (
	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "130", Dark: "214"})

	fatalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"})

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "42"})
)

// formatBold returns the string formatted as bold using pterm
func formatBold(s string) string {
	// Only apply formatting if output is a terminal
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// styled applies a lipgloss style only when stdout is a terminal
func styled(style lipgloss.Style, s string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return s
	}
	return style.Render(s)
}
