package preview

import "github.com/charmbracelet/lipgloss"

// Palette used by DefaultTheme.
var (
	ColorPrimary = lipgloss.Color("#25d366")
	ColorAccent  = lipgloss.Color("#128c7e")
	ColorMuted   = lipgloss.Color("#95a5a6")
	ColorWarning = lipgloss.Color("#f39c12")
	ColorError   = lipgloss.Color("#e74c3c")
)

// Theme holds one style per visual role.
type Theme struct {
	Title      lipgloss.Style
	Heading    lipgloss.Style
	Subheading lipgloss.Style
	Body       lipgloss.Style
	Caption    lipgloss.Style
	Label      lipgloss.Style
	Value      lipgloss.Style
	Muted      lipgloss.Style
	Action     lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	// Frame wraps the whole screen.
	Frame lipgloss.Style
}

// DefaultTheme is a coloured theme with a rounded phone frame.
func DefaultTheme() Theme {
	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
		Heading:    lipgloss.NewStyle().Bold(true),
		Subheading: lipgloss.NewStyle().Bold(true).Foreground(ColorMuted),
		Body:       lipgloss.NewStyle(),
		Caption:    lipgloss.NewStyle().Faint(true),
		Label:      lipgloss.NewStyle().Foreground(ColorAccent),
		Value:      lipgloss.NewStyle().Bold(true),
		Muted:      lipgloss.NewStyle().Foreground(ColorMuted),
		Action:     lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
		Warning:    lipgloss.NewStyle().Foreground(ColorWarning),
		Error:      lipgloss.NewStyle().Foreground(ColorError),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1),
	}
}

// PlainTheme applies no styling at all.
func PlainTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Title: plain, Heading: plain, Subheading: plain, Body: plain, Caption: plain,
		Label: plain, Value: plain, Muted: plain, Action: plain, Warning: plain,
		Error: plain, Frame: plain,
	}
}
