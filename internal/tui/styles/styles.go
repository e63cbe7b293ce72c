// ABOUTME: Shared lipgloss styles for consistent console appearance
// ABOUTME: Defines the palette, panels, toast styles and the huh form theme

package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light
	BgDark    = lipgloss.Color("#1F2937") // Dark gray

	// Colors - Extended palette
	Accent  = lipgloss.Color("#8B5CF6") // Lighter purple for highlights
	Surface = lipgloss.Color("#374151") // Elevated surface background
	Info    = lipgloss.Color("#3B82F6") // Blue - informational

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginBottom(1)

	StatusOK = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	ActivePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	Label = lipgloss.NewStyle().
		Foreground(Muted).
		Width(12)

	Selected = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Danger)

	// Toast card; the border color is set per kind
	Toast = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(42)
)

// KindColor maps a toast kind name to its accent color
func KindColor(kind string) lipgloss.Color {
	switch kind {
	case "success":
		return Secondary
	case "error":
		return Danger
	case "warning":
		return Warning
	default:
		return Info
	}
}

// FormTheme returns the huh theme used by every form in the console
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Group.Title = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(Muted).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(Primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(Muted)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(Danger).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(Danger)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(Primary)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(Muted)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(Primary)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(Text)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(Text).
		Background(Primary).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(Muted).
		Background(Surface).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().Foreground(Muted)

	return t
}
