// ABOUTME: Event browser with keyword, city and state search and paged results
// ABOUTME: Remembers recent searches and opens the details screen for the selected event

package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fanzones/console/internal/client"
	"github.com/fanzones/console/internal/format"
	"github.com/fanzones/console/internal/recent"
	"github.com/fanzones/console/internal/toast"
	"github.com/fanzones/console/internal/tui/icons"
	"github.com/fanzones/console/internal/tui/styles"
	"github.com/fanzones/console/internal/tui/widgets"
)

// API is the subset of the backend client the browser uses
type API interface {
	SearchEvents(ctx context.Context, search client.EventSearch) (*client.EventPage, error)
	GetEvent(ctx context.Context, id string) (*client.Event, error)
}

// Recents stores previous searches. May be nil.
type Recents interface {
	List() []recent.Search
	Add(s recent.Search) error
}

const (
	fieldKeyword = iota
	fieldCity
	fieldState
	focusResults
)

type resultsMsg struct {
	search client.EventSearch
	page   *client.EventPage
	err    error
}

type detailsMsg struct {
	id    string
	event *client.Event
	err   error
}

// Model is the event browser
type Model struct {
	ctx      context.Context
	api      API
	recents  Recents
	pageSize int

	inputs [3]textinput.Model
	focus  int
	recall int

	current    client.EventSearch
	events     []client.Event
	cursor     int
	page       int
	totalPages int
	loading    bool
	err        error

	details *Details
	width   int
	height  int
}

// New creates the browser. recents may be nil.
func New(ctx context.Context, api API, recents Recents, pageSize int) *Model {
	if pageSize <= 0 {
		pageSize = client.DefaultEventPageSize
	}
	m := &Model{
		ctx:      ctx,
		api:      api,
		recents:  recents,
		pageSize: pageSize,
		focus:    focusResults,
		loading:  true,
	}

	placeholders := [3]string{"Artist, team, event...", "Los Angeles, New York...", "CA, NY, TX..."}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.Prompt = ""
		ti.CharLimit = 64
		m.inputs[i] = ti
	}
	m.inputs[fieldState].CharLimit = 2
	m.inputs[fieldState].Width = 4
	return m
}

// Init runs the initial unfiltered search
func (m *Model) Init() tea.Cmd {
	return m.search(client.EventSearch{Size: m.pageSize})
}

// Capturing reports whether keys go to a text field or the details screen
func (m *Model) Capturing() bool {
	return m.focus != focusResults || m.details != nil
}

// SetSize updates the available space
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.details != nil {
		m.details.SetSize(width, height)
	}
}

// Events returns the events on the current page
func (m *Model) Events() []client.Event {
	return m.events
}

// Page returns the zero-based page and the page count
func (m *Model) Page() (page, total int) {
	return m.page, m.totalPages
}

func (m *Model) criteria() client.EventSearch {
	return client.EventSearch{
		Keyword:   strings.TrimSpace(m.inputs[fieldKeyword].Value()),
		City:      strings.TrimSpace(m.inputs[fieldCity].Value()),
		StateCode: strings.ToUpper(strings.TrimSpace(m.inputs[fieldState].Value())),
		Size:      m.pageSize,
	}
}

func (m *Model) search(s client.EventSearch) tea.Cmd {
	m.loading = true
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		page, err := api.SearchEvents(ctx, s)
		return resultsMsg{search: s, page: page, err: err}
	}
}

func (m *Model) open(id string) tea.Cmd {
	m.details = NewDetails(id)
	m.details.SetSize(m.width, m.height)
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		event, err := api.GetEvent(ctx, id)
		return detailsMsg{id: id, event: event, err: err}
	}
}

func (m *Model) setFocus(i int) tea.Cmd {
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	m.focus = i
	if i < focusResults {
		return m.inputs[i].Focus()
	}
	return nil
}

// recallNext fills the fields with the next remembered search
func (m *Model) recallNext() {
	if m.recents == nil {
		return
	}
	list := m.recents.List()
	if len(list) == 0 {
		return
	}
	s := list[m.recall%len(list)]
	m.recall++
	m.inputs[fieldKeyword].SetValue(s.Keyword)
	m.inputs[fieldCity].SetValue(s.City)
	m.inputs[fieldState].SetValue(s.StateCode)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultsMsg:
		return m.handleResults(msg)
	case detailsMsg:
		if m.details == nil || m.details.id != msg.id {
			return m, nil
		}
		if msg.err != nil {
			m.details.SetError(msg.err)
			return m, toast.Show(toast.Error, "Failed to load event details")
		}
		m.details.SetEvent(msg.event)
		return m, nil
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	}

	if m.details != nil {
		done, cmd := m.details.Update(msg)
		if done {
			m.details = nil
		}
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.focus < focusResults {
		return m.updateFields(key)
	}
	return m.updateResults(key)
}

func (m *Model) handleResults(msg resultsMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		return m, toast.Show(toast.Error, "Failed to load events. Please try again.")
	}
	m.err = nil
	m.current = msg.search
	m.events = msg.page.Events()
	m.page, m.totalPages = msg.page.PageNumber()
	m.cursor = 0

	if m.recents != nil {
		s := recent.Search{Keyword: msg.search.Keyword, City: msg.search.City, StateCode: msg.search.StateCode}
		if err := m.recents.Add(s); err != nil {
			return m, toast.Show(toast.Warning, "Could not save recent search: "+err.Error())
		}
	}
	return m, nil
}

func (m *Model) updateFields(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "enter":
		s := m.criteria()
		m.recall = 0
		cmd := m.setFocus(focusResults)
		return m, tea.Batch(cmd, m.search(s))
	case "tab", "down":
		return m, m.setFocus(m.focus + 1)
	case "shift+tab", "up":
		if m.focus == fieldKeyword {
			return m, m.setFocus(focusResults)
		}
		return m, m.setFocus(m.focus - 1)
	case "esc":
		return m, m.setFocus(focusResults)
	case "ctrl+o":
		m.recallNext()
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(key)
	return m, cmd
}

func (m *Model) updateResults(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "/", "s", "tab":
		return m, m.setFocus(fieldKeyword)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.events)-1 {
			m.cursor++
		}
	case "left", "h", "pgup":
		if m.page > 0 && !m.loading {
			s := m.current
			s.Page = m.page - 1
			return m, m.search(s)
		}
	case "right", "l", "pgdown":
		if m.page+1 < m.totalPages && !m.loading {
			s := m.current
			s.Page = m.page + 1
			return m, m.search(s)
		}
	case "r":
		s := m.current
		s.Page = m.page
		return m, m.search(s)
	case "enter":
		if m.cursor < len(m.events) {
			return m, m.open(m.events[m.cursor].ID)
		}
	}
	return m, nil
}

// View implements tea.Model
func (m *Model) View() string {
	if m.details != nil {
		return m.details.View()
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Events.String() + " Events"))
	sb.WriteString("\n")
	sb.WriteString(m.viewFields())
	sb.WriteString("\n")
	if r := m.viewRecent(); r != "" {
		sb.WriteString(r)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	switch {
	case m.loading && m.events == nil:
		sb.WriteString("Loading events...\n")
	case m.err != nil && m.events == nil:
		sb.WriteString(styles.StatusCritical.Render("Failed to load events. Please try again."))
		sb.WriteString("\n")
	case len(m.events) == 0:
		sb.WriteString(styles.Subtitle.Render("No events found. Try adjusting your search criteria."))
		sb.WriteString("\n")
	default:
		for i := range m.events {
			sb.WriteString(m.viewEvent(i))
			sb.WriteString("\n")
		}
		sb.WriteString(m.viewPagination())
	}
	return sb.String()
}

func (m *Model) viewFields() string {
	labels := [3]string{"Keyword", "City", "State"}
	parts := make([]string, 0, len(labels))
	for i, label := range labels {
		style := styles.Label.UnsetWidth()
		if m.focus == i {
			style = styles.Selected
		}
		parts = append(parts, style.Render(label+": ")+m.inputs[i].View())
	}
	return icons.Search.String() + " " + strings.Join(parts, "   ")
}

func (m *Model) viewRecent() string {
	if m.recents == nil {
		return ""
	}
	list := m.recents.List()
	if len(list) == 0 {
		return ""
	}
	labels := make([]string, 0, 3)
	for i, s := range list {
		if i == 3 {
			break
		}
		labels = append(labels, s.Label())
	}
	return styles.Help.UnsetMarginTop().Render("Recent: " + strings.Join(labels, " · ") + "  (ctrl+o to recall)")
}

func (m *Model) viewEvent(i int) string {
	e := &m.events[i]
	cursor := "  "
	name := e.Name
	if i == m.cursor && m.focus == focusResults {
		cursor = styles.Selected.Render("▸ ")
		name = styles.Selected.Render(name)
	}
	// On-sale is the norm; anything else is flagged next to the name
	if code := e.StatusCode(); code != "" && widgets.EventStatusLevel(code) != widgets.StatusOK {
		name += "  " + widgets.StatusText(format.StatusLabel(code), widgets.EventStatusLevel(code))
	}

	meta := []string{format.EventDate(e.Dates.Start.LocalDate)}
	if t := format.EventTime(e.Dates.Start.LocalTime); t != "" {
		meta = append(meta, t)
	}
	if v := format.Venue(e.PrimaryVenue()); v != "" {
		meta = append(meta, v)
	}
	if p := format.Price(e.Price()); p != "" {
		meta = append(meta, p)
	}
	if segment, genre := e.Segment(); segment != "" || genre != "" {
		meta = append(meta, strings.Trim(segment+" / "+genre, " /"))
	}
	muted := lipgloss.NewStyle().Foreground(styles.Muted)
	return cursor + name + "\n    " + muted.Render(strings.Join(meta, " · "))
}

func (m *Model) viewPagination() string {
	if m.totalPages <= 1 {
		return ""
	}
	muted := lipgloss.NewStyle().Foreground(styles.Muted)
	prev, next := "← Previous", "Next →"
	if m.page == 0 {
		prev = muted.Render(prev)
	}
	if m.page+1 >= m.totalPages {
		next = muted.Render(next)
	}
	return fmt.Sprintf("%s   Page %d of %d   %s", prev, m.page+1, m.totalPages, next)
}
