// ABOUTME: Profile screen with account details and recent security activity
// ABOUTME: Fetches the last ten security events and charts them per day

package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fanzones/console/internal/client"
	"github.com/fanzones/console/internal/format"
	"github.com/fanzones/console/internal/tui/icons"
	"github.com/fanzones/console/internal/tui/styles"
	"github.com/fanzones/console/internal/tui/widgets"
)

const (
	// EventLimit is how many security events are requested
	EventLimit = 10

	activityDays = 14
)

// API is the subset of the backend client the screen uses
type API interface {
	SecurityEvents(ctx context.Context, limit int) ([]client.SecurityEvent, error)
}

type eventsMsg struct {
	events []client.SecurityEvent
	err    error
}

// Model is the profile screen
type Model struct {
	ctx     context.Context
	api     API
	user    client.User
	events  []client.SecurityEvent
	loading bool
	err     error
	now     func() time.Time
	width   int
}

// Option configures a Model
type Option func(*Model)

// WithClock overrides time.Now for relative timestamps
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// New creates the profile screen for user
func New(ctx context.Context, api API, user client.User, opts ...Option) *Model {
	m := &Model{ctx: ctx, api: api, user: user, loading: true, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init loads the security events
func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) load() tea.Cmd {
	m.loading = true
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		events, err := api.SecurityEvents(ctx, EventLimit)
		return eventsMsg{events: events, err: err}
	}
}

// SetUser replaces the displayed user after a profile change
func (m *Model) SetUser(u client.User) {
	m.user = u
}

// SetSize updates the available width
func (m *Model) SetSize(width, _ int) {
	m.width = width
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventsMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.events = msg.events
		}
	case tea.KeyMsg:
		if msg.String() == "r" && !m.loading {
			return m, m.load()
		}
	}
	return m, nil
}

// View implements tea.Model
func (m *Model) View() string {
	u := &m.user
	var sb strings.Builder

	avatar := styles.ActivePanel.Padding(0, 1).Render(u.Initials())
	name := styles.ValueStyle.Render(u.DisplayName()) + "\n" + styles.Subtitle.UnsetMarginBottom().Render("@"+u.Username)
	sb.WriteString(styles.Title.Render(icons.Profile.String() + " Profile"))
	sb.WriteString("\n")
	sb.WriteString(avatar + "  " + name)
	sb.WriteString("\n\n")

	sb.WriteString(heading("Profile Information"))
	sb.WriteString(row("Email", u.Email+" "+widgets.VerifiedBadge(u.EmailVerified)))
	if u.Bio != "" {
		sb.WriteString(row("Bio", u.Bio))
	}
	sb.WriteString("\n")

	sb.WriteString(heading("Account Details"))
	sb.WriteString(row("User ID", u.ID.String()))
	sb.WriteString(row("Member Since", timestamp(u.CreatedAt)))
	sb.WriteString(row("Last Updated", timestamp(u.UpdatedAt)))
	phone := "Not verified"
	if u.PhoneVerified {
		phone = "Verified"
	}
	sb.WriteString(row("Phone", phone))
	sb.WriteString("\n")

	sb.WriteString(heading(icons.Shield.String() + " Recent Security Activity"))
	sb.WriteString(m.viewEvents())
	return sb.String()
}

func (m *Model) viewEvents() string {
	switch {
	case m.loading && m.events == nil:
		return "Loading security events...\n"
	case m.err != nil && m.events == nil:
		return styles.ErrorText.Render("Could not load security events: "+m.err.Error()) + "\n"
	case len(m.events) == 0:
		return styles.Subtitle.Render("No recent security events") + "\n"
	}

	now := m.now()
	var sb strings.Builder
	times := make([]time.Time, 0, len(m.events))
	for _, e := range m.events {
		times = append(times, e.CreatedAt)
		line := fmt.Sprintf("%s %-18s %s", format.SecurityIcon(e.Type), e.Label(), format.RelativeTime(e.CreatedAt, now))
		if e.IP != "" {
			line += styles.Help.UnsetMarginTop().Render("  " + e.IP)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	spark := widgets.Sparkline(widgets.DailyCounts(times, now, activityDays), activityDays, styles.Accent)
	sb.WriteString("\n")
	sb.WriteString(styles.Label.Render("Last 14 days") + spark)
	sb.WriteString("\n")
	return sb.String()
}

func heading(title string) string {
	return styles.Selected.Render(strings.ToUpper(title)) + "\n"
}

func row(label, value string) string {
	return styles.Label.Width(14).Render(label) + value + "\n"
}

func timestamp(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return format.Timestamp(*t)
}
