// Package ui implements the verdant wizard as a bubbletea program, with
// light/dark lipgloss themes.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Light mode colors
	LightForeground = lipgloss.Color("#1b2a1b")
	LightPrimary    = lipgloss.Color("#2e7d32") // leaf green
	LightAccent     = lipgloss.Color("#8d6e63") // soil brown
	LightMuted      = lipgloss.Color("#9e9e9e")
	LightBorder     = lipgloss.Color("#c8e6c9")

	// Dark mode colors
	DarkForeground = lipgloss.Color("#e8f5e9")
	DarkPrimary    = lipgloss.Color("#81c784") // leaf green, lifted for dark terminals
	DarkAccent     = lipgloss.Color("#bcaaa4")
	DarkMuted      = lipgloss.Color("#6b7a6b")
	DarkBorder     = lipgloss.Color("#33691e")

	// Semantic colors, shared by both modes
	Destructive = lipgloss.Color("#e53935")
	Warning     = lipgloss.Color("#FFC107")
)

// Theme holds the active color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// Styles bundles every lipgloss style the wizard renders with.
type Styles struct {
	Theme Theme

	Title     lipgloss.Style
	StepLabel lipgloss.Style
	Prompt    lipgloss.Style
	UserInput lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
	ErrorBox  lipgloss.Style
	Spinner   lipgloss.Style
	Card      lipgloss.Style
	Selected  lipgloss.Style

	// Markdown block styles
	Heading1 lipgloss.Style
	Heading2 lipgloss.Style
	Heading3 lipgloss.Style
	Bold     lipgloss.Style
	Bullet   lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		StepLabel: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),
		Prompt: lipgloss.NewStyle().
			Foreground(theme.Primary),
		UserInput: lipgloss.NewStyle().
			Foreground(theme.Foreground),
		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
		Error: lipgloss.NewStyle().
			Foreground(Destructive),
		ErrorBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Destructive).
			Padding(1, 2),
		Spinner: lipgloss.NewStyle().
			Foreground(theme.Primary),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Heading1: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Underline(true),
		Heading2: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		Heading3: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),
		Bold: lipgloss.NewStyle().
			Bold(true),
		Bullet: lipgloss.NewStyle().
			Foreground(theme.Primary),
	}
}

// DefaultStyles returns the dark theme styles.
func DefaultStyles() Styles {
	return NewStyles(DarkTheme())
}

// StylesFor maps a config theme name to a style set.
func StylesFor(theme string) Styles {
	if theme == "light" {
		return NewStyles(LightTheme())
	}
	return DefaultStyles()
}
