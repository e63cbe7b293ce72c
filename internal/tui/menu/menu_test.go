// ABOUTME: Tests for the navigation menu
// ABOUTME: Verifies cursor movement, selection and number shortcuts

package menu

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func press(m *Menu, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func selected(t *testing.T, cmd tea.Cmd) Destination {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(SelectedMsg)
	if !ok {
		t.Fatalf("expected SelectedMsg, got %T", cmd())
	}
	return msg.Destination
}

func TestMenuNavigation(t *testing.T) {
	m := New()
	if m.Cursor() != Dashboard {
		t.Fatalf("expected cursor on Dashboard, got %s", m.Cursor())
	}

	press(m, "up")
	if m.Cursor() != Dashboard {
		t.Error("cursor should not move above the first item")
	}

	press(m, "down")
	press(m, "down")
	if got := selected(t, press(m, "enter")); got != Events {
		t.Errorf("expected Events, got %s", got)
	}

	for range All {
		press(m, "down")
	}
	if m.Cursor() != Logout {
		t.Errorf("cursor should stop at the last item, got %s", m.Cursor())
	}
}

func TestMenuShortcuts(t *testing.T) {
	m := New()
	if got := selected(t, press(m, "2")); got != Users {
		t.Errorf("expected Users, got %s", got)
	}
	if got := selected(t, press(m, "5")); got != Logout {
		t.Errorf("expected Logout, got %s", got)
	}
	if press(m, "9") != nil {
		t.Error("unknown keys should not select")
	}
}

func TestMenuView(t *testing.T) {
	m := New()
	m.SetCurrent(Profile)
	if m.Cursor() != Profile {
		t.Errorf("SetCurrent should move the cursor, got %s", m.Cursor())
	}
	view := m.View()
	for _, d := range All {
		if !strings.Contains(view, d.String()) {
			t.Errorf("expected %q in view", d.String())
		}
	}
	if !strings.Contains(view, "(current)") {
		t.Error("expected current marker")
	}
}

func TestDestinationString(t *testing.T) {
	if Destination(42).String() != "Unknown" {
		t.Error("expected Unknown for out-of-range destination")
	}
}
