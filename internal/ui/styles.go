package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the chat client.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color
}

// DefaultTheme returns the default color theme.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("#2DD4BF"), // Teal
		Secondary: lipgloss.Color("#60A5FA"), // Blue
		Accent:    lipgloss.Color("#FBBF24"), // Amber

		Success: lipgloss.Color("#34D399"), // Emerald
		Error:   lipgloss.Color("#F87171"), // Red
		Muted:   lipgloss.Color("#6B7280"), // Gray

		Text:    lipgloss.Color("#F9FAFB"), // Near white
		TextDim: lipgloss.Color("#9CA3AF"), // Gray
	}
}

// Styles contains all the styled components for the UI.
type Styles struct {
	App lipgloss.Style

	Banner      lipgloss.Style
	BannerTitle lipgloss.Style

	Prompt lipgloss.Style

	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	SystemMessage    lipgloss.Style

	StepBox    lipgloss.Style
	StepName   lipgloss.Style
	StepParams lipgloss.Style
	StepResult lipgloss.Style

	StatusText lipgloss.Style

	HelpKey   lipgloss.Style
	HelpValue lipgloss.Style
	HelpBar   lipgloss.Style
}

// NewStyles creates styled components from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Banner: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 2).
			MarginBottom(1),

		BannerTitle: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),

		UserMessage: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true).
			PaddingLeft(2),

		AssistantMessage: lipgloss.NewStyle().
			Foreground(t.Text).
			PaddingLeft(2),

		SystemMessage: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true).
			PaddingLeft(2),

		StepBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Accent).
			Padding(0, 1).
			MarginLeft(2).
			MarginTop(1).
			MarginBottom(1),

		StepName: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),

		StepParams: lipgloss.NewStyle().
			Foreground(t.TextDim),

		StepResult: lipgloss.NewStyle().
			Foreground(t.Text).
			PaddingLeft(1),

		StatusText: lipgloss.NewStyle().
			Foreground(t.TextDim),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Muted),

		HelpValue: lipgloss.NewStyle().
			Foreground(t.TextDim),

		HelpBar: lipgloss.NewStyle().
			Foreground(t.Muted).
			MarginTop(1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() Styles {
	return NewStyles(DefaultTheme())
}

// Banner returns the ASCII art banner.
func Banner() string {
	banner := `
 ╔════════════════════════════════════════════════════════════╗
 ║                                                            ║
 ║   ████████╗ ██████╗ ██████╗  ██████╗  ██████╗██╗  ██╗      ║
 ║   ╚══██╔══╝██╔═══██╗██╔══██╗██╔═══██╗██╔════╝██║  ██║      ║
 ║      ██║   ██║   ██║██║  ██║██║   ██║██║     ███████║      ║
 ║      ██║   ██║   ██║██║  ██║██║   ██║██║     ██╔══██║      ║
 ║      ██║   ╚██████╔╝██████╔╝╚██████╔╝╚██████╗██║  ██║      ║
 ║      ╚═╝    ╚═════╝ ╚═════╝  ╚═════╝  ╚═════╝╚═╝  ╚═╝      ║
 ║                                                            ║
 ║              Chat With Your Todo List                      ║
 ╚════════════════════════════════════════════════════════════╝`
	return banner
}
