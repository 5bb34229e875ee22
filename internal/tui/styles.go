package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/koustreak/tablescope/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	// Row tones: zebra striping with a distinct highlight for the
	// comparison column.
	baseRowStyle     = lipgloss.NewStyle().Padding(0, 1)
	stripeRowStyle   = baseRowStyle.Background(lipgloss.Color("#3A3A3A"))
	selectedRowStyle = baseRowStyle.
				Background(lipgloss.Color("#87CEFA")).
				Foreground(lipgloss.Color("#1A1A1A")).
				Bold(true)

	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

func toneStyle(t session.Tone) lipgloss.Style {
	switch t {
	case session.ToneSelected:
		return selectedRowStyle
	case session.ToneStripe:
		return stripeRowStyle
	default:
		return baseRowStyle
	}
}
