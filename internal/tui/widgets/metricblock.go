// ABOUTME: Stat card widgets for the dashboard
// ABOUTME: Draws a titled box with a big value, or a rate with a progress bar

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fanzones/console/internal/tui/icons"
)

// CardConfig holds configuration for a stat card
type CardConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultCardConfig returns the dashboard defaults
func DefaultCardConfig() CardConfig {
	return CardConfig{
		Width:       24,
		BorderColor: lipgloss.Color("#6B7280"),
		TitleColor:  lipgloss.Color("#7C3AED"),
		ValueColor:  lipgloss.Color("#F9FAFB"),
	}
}

// cardLines frames body lines in a box whose top border carries the title
func cardLines(icon icons.Icon, title string, body []string, config CardConfig) string {
	if config.Width <= 0 {
		config.Width = 24
	}
	inner := config.Width - 4

	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), inner)
	titleStyle := lipgloss.NewStyle().Foreground(config.TitleColor)
	borderStyle := lipgloss.NewStyle().Foreground(config.BorderColor)

	lines := make([]string, 0, len(body)+2)
	lines = append(lines, borderStyle.Render("┌─ ")+titleStyle.Render(titleStr)+
		borderStyle.Render(" "+strings.Repeat("─", max(0, inner-lipgloss.Width(titleStr)-1))+"┐"))
	for _, b := range body {
		pad := max(0, inner-lipgloss.Width(b))
		lines = append(lines, borderStyle.Render("│  ")+b+strings.Repeat(" ", pad)+borderStyle.Render("│"))
	}
	lines = append(lines, borderStyle.Render("└"+strings.Repeat("─", config.Width-2)+"┘"))
	return strings.Join(lines, "\n")
}

// StatCard renders a count with a caption
func StatCard(icon icons.Icon, title string, value int, caption string, config CardConfig) string {
	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	captionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	return cardLines(icon, title, []string{
		valueStyle.Render(fmt.Sprintf("%d", value)),
		captionStyle.Render(truncate(caption, config.Width-4)),
	}, config)
}

// RateCard renders a percentage with a bar colored by bar thresholds
func RateCard(icon icons.Icon, title string, percent int, caption string, config CardConfig) string {
	bar := DefaultProgressBarConfig()
	barWidth := max(4, config.Width-4)
	level := bar.Level(float64(percent))
	color := bar.color(float64(percent))

	value := lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%d%%", percent)) +
		" " + StatusIcon(level)
	captionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	return cardLines(icon, title, []string{
		value,
		CompactProgressBar(float64(percent), barWidth, color),
		captionStyle.Render(truncate(caption, config.Width-4)),
	}, config)
}

// truncate shortens a string to maxLen runes with ellipsis if needed
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
