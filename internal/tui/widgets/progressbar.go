// ABOUTME: Progress bar widgets for rates and ratios
// ABOUTME: Higher is better: the bar turns amber then red as the value falls

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBarConfig holds configuration for the progress bar
type ProgressBarConfig struct {
	Width         int
	GoodThreshold float64 // at or above: OK color
	WarnThreshold float64 // at or above: warning color, below: critical
	OKColor       lipgloss.Color
	WarnColor     lipgloss.Color
	CritColor     lipgloss.Color
	EmptyColor    lipgloss.Color
}

// DefaultProgressBarConfig returns the thresholds used for verification rates
func DefaultProgressBarConfig() ProgressBarConfig {
	return ProgressBarConfig{
		Width:         20,
		GoodThreshold: 80,
		WarnThreshold: 50,
		OKColor:       lipgloss.Color("#10B981"),
		WarnColor:     lipgloss.Color("#F59E0B"),
		CritColor:     lipgloss.Color("#EF4444"),
		EmptyColor:    lipgloss.Color("#374151"),
	}
}

// Level classifies percent against the thresholds
func (c ProgressBarConfig) Level(percent float64) StatusLevel {
	switch {
	case percent >= c.GoodThreshold:
		return StatusOK
	case percent >= c.WarnThreshold:
		return StatusWarning
	default:
		return StatusCritical
	}
}

func (c ProgressBarConfig) color(percent float64) lipgloss.Color {
	switch c.Level(percent) {
	case StatusOK:
		return c.OKColor
	case StatusWarning:
		return c.WarnColor
	default:
		return c.CritColor
	}
}

func clampPercent(p float64) float64 {
	return min(max(p, 0), 100)
}

// ProgressBar renders "[████░░░░]" colored by the threshold zone
func ProgressBar(percent float64, config ProgressBarConfig) string {
	if config.Width <= 0 {
		config.Width = 20
	}
	percent = clampPercent(percent)
	filled := int(percent / 100.0 * float64(config.Width))

	fill := lipgloss.NewStyle().Foreground(config.color(percent))
	empty := lipgloss.NewStyle().Foreground(config.EmptyColor)
	return "[" + fill.Render(strings.Repeat("█", filled)) +
		empty.Render(strings.Repeat("░", config.Width-filled)) + "]"
}

// ProgressBarWithLabel renders the bar followed by the rounded percentage
func ProgressBarWithLabel(percent float64, config ProgressBarConfig) string {
	label := lipgloss.NewStyle().Foreground(config.color(clampPercent(percent))).
		Render(fmt.Sprintf("%3.0f%%", percent))
	return ProgressBar(percent, config) + " " + label
}

// CompactProgressBar renders a minimal bar without brackets
func CompactProgressBar(percent float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 10
	}
	filled := int(clampPercent(percent) / 100.0 * float64(width))
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("▓", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Render(strings.Repeat("░", width-filled))
}
