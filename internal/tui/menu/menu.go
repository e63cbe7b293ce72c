// ABOUTME: Navigation menu for the signed-in console
// ABOUTME: Lists the console sections and emits a selection message

package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fanzones/console/internal/tui/icons"
	"github.com/fanzones/console/internal/tui/styles"
)

// Destination is a console section
type Destination int

const (
	Dashboard Destination = iota
	Users
	Events
	Profile
	Logout
)

// All lists the destinations in menu order
var All = []Destination{Dashboard, Users, Events, Profile, Logout}

// String returns the section title
func (d Destination) String() string {
	switch d {
	case Dashboard:
		return "Dashboard"
	case Users:
		return "Users"
	case Events:
		return "Events"
	case Profile:
		return "Profile"
	case Logout:
		return "Log out"
	default:
		return "Unknown"
	}
}

// Icon returns the section icon
func (d Destination) Icon() icons.Icon {
	switch d {
	case Users:
		return icons.Users
	case Events:
		return icons.Events
	case Profile:
		return icons.Profile
	case Logout:
		return icons.Logout
	default:
		return icons.Dashboard
	}
}

// Shortcut returns the number key that jumps to d
func (d Destination) Shortcut() string {
	return fmt.Sprintf("%d", int(d)+1)
}

// SelectedMsg is sent when a destination is chosen
type SelectedMsg struct {
	Destination Destination
}

// Select returns a command that emits SelectedMsg for d
func Select(d Destination) tea.Cmd {
	return func() tea.Msg { return SelectedMsg{Destination: d} }
}

// FromKey maps a number key to a destination
func FromKey(key string) (Destination, bool) {
	for _, d := range All {
		if d.Shortcut() == key {
			return d, true
		}
	}
	return 0, false
}

// Menu is the navigation list
type Menu struct {
	cursor  int
	current Destination
}

// New creates a menu with the cursor on the dashboard
func New() *Menu {
	return &Menu{}
}

// SetCurrent marks the section being displayed and moves the cursor to it
func (m *Menu) SetCurrent(d Destination) {
	m.current = d
	for i, item := range All {
		if item == d {
			m.cursor = i
		}
	}
}

// Cursor returns the highlighted destination
func (m *Menu) Cursor() Destination {
	return All[m.cursor]
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(All)-1 {
			m.cursor++
		}
	case "enter":
		return m, Select(All[m.cursor])
	default:
		if d, ok := FromKey(key.String()); ok {
			return m, Select(d)
		}
	}
	return m, nil
}

// View implements tea.Model
func (m *Menu) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Navigate"))
	sb.WriteString("\n")
	for i, d := range All {
		line := fmt.Sprintf("%s  %s %s", styles.KeyStyle.Render(d.Shortcut()), d.Icon().String(), d.String())
		if d == m.current {
			line += lipgloss.NewStyle().Foreground(styles.Muted).Render("  (current)")
		}
		if i == m.cursor {
			sb.WriteString(styles.Selected.Render("> ") + line)
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
