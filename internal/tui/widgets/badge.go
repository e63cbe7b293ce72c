// ABOUTME: Status badge widgets for quick visual status indication
// ABOUTME: Colors event sale status and account verification inline

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fanzones/console/internal/tui/icons"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

var (
	BadgeOKBg      = lipgloss.Color("#10B981")
	BadgeWarnBg    = lipgloss.Color("#F59E0B")
	BadgeCritBg    = lipgloss.Color("#EF4444")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
	BadgeLightFg   = lipgloss.Color("#FFFFFF")
	BadgeDarkFg    = lipgloss.Color("#000000")
)

func (l StatusLevel) colors() (bg, fg lipgloss.Color) {
	switch l {
	case StatusOK:
		return BadgeOKBg, BadgeLightFg
	case StatusWarning:
		return BadgeWarnBg, BadgeDarkFg
	case StatusCritical:
		return BadgeCritBg, BadgeLightFg
	case StatusInfo:
		return BadgeInfoBg, BadgeLightFg
	default:
		return BadgeNeutralBg, BadgeLightFg
	}
}

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	bg, fg := level.colors()
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// EventStatusLevel maps an event sale status code to a level
func EventStatusLevel(code string) StatusLevel {
	switch strings.ToLower(code) {
	case "onsale":
		return StatusOK
	case "postponed", "rescheduled":
		return StatusWarning
	case "offsale", "cancelled", "canceled":
		return StatusCritical
	case "":
		return StatusNeutral
	default:
		return StatusInfo
	}
}

// VerifiedBadge renders the email verification state of an account
func VerifiedBadge(verified bool) string {
	if verified {
		return Badge("Verified", StatusOK)
	}
	return Badge("Unverified", StatusNeutral)
}

// StatusIcon returns the appropriate icon for a status level
func StatusIcon(level StatusLevel) string {
	bg, _ := level.colors()
	icon := "•"
	switch level {
	case StatusOK:
		icon = icons.CheckOK.String()
	case StatusWarning:
		icon = icons.Warning.String()
	case StatusCritical:
		icon = icons.Critical.String()
	case StatusInfo:
		icon = icons.Info.String()
	}
	return lipgloss.NewStyle().Foreground(bg).Render(icon)
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	bg, _ := level.colors()
	return fmt.Sprintf("%s %s", StatusIcon(level), lipgloss.NewStyle().Foreground(bg).Render(text))
}
