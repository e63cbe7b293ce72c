// ABOUTME: Zoomable seat map viewer for an event's venue
// ABOUTME: Renders a schematic arena through the viewport transform with keyboard zoom and pan

package events

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fanzones/console/internal/tui/icons"
	"github.com/fanzones/console/internal/tui/styles"
	"github.com/fanzones/console/internal/viewport"
)

const (
	panStepX = 4
	panStepY = 2

	mapWidth  = 60
	mapHeight = 16
)

// SeatMap shows the venue layout with zoom and pan. Without a seat map URL
// it renders the unavailable notice.
type SeatMap struct {
	url    string
	venue  string
	view   viewport.Viewport
	canvas []string
	width  int
	height int
}

// NewSeatMap creates a viewer at 100% zoom
func NewSeatMap(url, venue string) *SeatMap {
	s := &SeatMap{
		url:    url,
		venue:  venue,
		view:   viewport.New(),
		width:  mapWidth,
		height: mapHeight,
	}
	if url != "" {
		s.canvas = arenaCanvas()
	}
	return s
}

// Available reports whether the event has a seat map
func (s *SeatMap) Available() bool {
	return s.url != ""
}

// Viewport returns the current zoom and pan state
func (s *SeatMap) Viewport() viewport.Viewport {
	return s.view
}

// SetSize fits the map window inside width x height
func (s *SeatMap) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width = max(20, min(width-6, 100))
	s.height = max(8, min(height-10, 30))
}

// Update handles the zoom and pan keys
func (s *SeatMap) Update(msg tea.Msg) (*SeatMap, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !s.Available() {
		return s, nil
	}

	switch key.String() {
	case "+", "=":
		s.view.ZoomIn()
	case "-", "_":
		s.view.ZoomOut()
	case "0":
		s.view.Reset()
	case "left", "h":
		s.view.Pan(panStepX, 0)
	case "right", "l":
		s.view.Pan(-panStepX, 0)
	case "up", "k":
		s.view.Pan(0, panStepY)
	case "down", "j":
		s.view.Pan(0, -panStepY)
	}
	return s, nil
}

// View renders the map window and its controls
func (s *SeatMap) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Seatmap.String() + " Venue Map"))
	sb.WriteString("\n")

	if !s.Available() {
		sb.WriteString(styles.ValueStyle.Render("Venue Map Unavailable"))
		sb.WriteString("\n")
		sb.WriteString("Interactive seat map is not available for this event.\n")
		venue := s.venue
		if venue == "" {
			venue = "the venue"
		}
		sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("Visit %s's website for seating information.", venue)))
		return sb.String()
	}

	window := s.view.Render(s.canvas, s.width, s.height)
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Muted).
		Width(s.width).
		Height(s.height)
	sb.WriteString(frame.Render(strings.Join(window, "\n")))
	sb.WriteString("\n")

	zoom := "Zoom: " + styles.ValueStyle.Render(s.view.Label())
	hint := "+/- zoom  0 reset"
	if s.view.CanPan() {
		hint += "  arrows pan"
	}
	sb.WriteString(zoom + "   " + styles.Help.UnsetMarginTop().Render(hint))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render("Source: " + s.url))
	return sb.String()
}

// arenaCanvas draws a schematic bowl: stage, floor and two seating tiers
func arenaCanvas() []string {
	const width = 56
	center := func(s string) string {
		pad := (width - lipgloss.Width(s)) / 2
		if pad < 0 {
			pad = 0
		}
		return strings.Repeat(" ", pad) + s
	}
	row := func(prefix int, count int) string {
		blocks := make([]string, count)
		for i := range blocks {
			blocks[i] = fmt.Sprintf("%d%02d▒▒▒", prefix, i+1)
		}
		return center(strings.Join(blocks, " "))
	}

	lines := []string{
		center("╔" + strings.Repeat("═", 30) + "╗"),
		center("║" + centerIn("STAGE", 30) + "║"),
		center("╚" + strings.Repeat("═", 30) + "╝"),
		"",
		center("FLOOR"),
		center(strings.Repeat("░", 24)),
		center(strings.Repeat("░", 24)),
		"",
		center("LOWER BOWL"),
		row(1, 6),
		row(1, 6),
		"",
		center("UPPER BOWL"),
		row(2, 7),
		row(2, 7),
	}
	return lines
}

func centerIn(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
