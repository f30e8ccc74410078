package tui

import "github.com/charmbracelet/lipgloss"

// Acid-inspired color scheme
var (
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	eventStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(acidGreen).
			Padding(1, 2)
)

func asciiLogo() string {
	logo := `
  ___ __  __ ___ ___ _      ___   __
 / __|  \/  | __| _ \ |    /_\ \ / /
 \__ \ |\/| | _||  _/ |__ / _ \ V /
 |___/_|  |_|_| |_| |____/_/ \_\_|
`
	return lipgloss.NewStyle().Foreground(acidGreen).Render(logo)
}
