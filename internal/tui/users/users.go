// ABOUTME: User management screen with a paged table, search and add/edit/delete
// ABOUTME: Loads a page and the counts concurrently and reports outcomes as toasts

package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/fanzones/console/internal/client"
	"github.com/fanzones/console/internal/format"
	"github.com/fanzones/console/internal/toast"
	"github.com/fanzones/console/internal/tui/icons"
	"github.com/fanzones/console/internal/tui/styles"
	"github.com/fanzones/console/internal/validate"
)

// API is the subset of the backend client the screen uses
type API interface {
	ListUsers(ctx context.Context, limit, offset int) (*client.UserList, error)
	UserCount(ctx context.Context) (*client.UserStats, error)
	CreateUser(ctx context.Context, input *client.RegisterRequest) (*client.RegisterResponse, error)
	UpdateUser(ctx context.Context, id string, update *client.UserUpdate) (*client.UserResponse, error)
	DeleteUser(ctx context.Context, id string) (*client.MessageResponse, error)
}

// ProfileChangedMsg is sent after the signed-in user edited their own record
type ProfileChangedMsg struct{}

type mode int

const (
	modeList mode = iota
	modeSearch
	modeAdd
	modeEdit
	modeDelete
)

type loadedMsg struct {
	offset int
	list   *client.UserList
	stats  *client.UserStats
	err    error
}

type createdMsg struct {
	err error
}

type updatedMsg struct {
	user client.User
	err  error
}

type deletedMsg struct {
	user client.User
	err  error
}

// Model is the users screen
type Model struct {
	ctx      context.Context
	api      API
	pageSize int
	selfID   client.UserID

	table  table.Model
	search textinput.Model

	users   []client.User
	visible []client.User
	stats   client.UserStats
	offset  int
	loading bool
	err     error

	mode    mode
	form    *huh.Form
	formErr string
	busy    bool
	created validate.Registration
	edited  validate.UserEdit
	target  client.User
	width   int
	height  int
}

// New creates the users screen. selfID identifies the signed-in user so
// edits to their own record can refresh the session.
func New(ctx context.Context, api API, pageSize int, selfID client.UserID) *Model {
	if pageSize <= 0 {
		pageSize = 10
	}

	t := table.New(
		table.WithColumns(columns(100)),
		table.WithFocused(true),
		table.WithHeight(pageSize+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(styles.Text).Background(styles.Primary)
	t.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "Search users..."
	ti.Prompt = icons.Search.String() + " "
	ti.CharLimit = 64

	return &Model{
		ctx:      ctx,
		api:      api,
		pageSize: pageSize,
		selfID:   selfID,
		table:    t,
		search:   ti,
		loading:  true,
	}
}

func columns(width int) []table.Column {
	email := max(20, width-68)
	return []table.Column{
		{Title: "", Width: 3},
		{Title: "User", Width: 22},
		{Title: "Username", Width: 16},
		{Title: "Email", Width: email},
		{Title: "Status", Width: 10},
		{Title: "Joined", Width: 12},
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.load(m.offset)
}

// Capturing reports whether the screen is consuming text input, so global
// shortcuts must not fire
func (m *Model) Capturing() bool {
	return m.mode != modeList
}

// SetSize updates the table dimensions
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetWidth(width)
}

// load fetches one page and the counts concurrently
func (m *Model) load(offset int) tea.Cmd {
	m.loading = true
	ctx, api, limit := m.ctx, m.api, m.pageSize
	return func() tea.Msg {
		var (
			list  *client.UserList
			stats *client.UserStats
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			list, err = api.ListUsers(gctx, limit, offset)
			return err
		})
		g.Go(func() error {
			var err error
			stats, err = api.UserCount(gctx)
			return err
		})
		err := g.Wait()
		return loadedMsg{offset: offset, list: list, stats: stats, err: err}
	}
}

// Page returns the one-based page number and the page count
func (m *Model) Page() (page, pages int) {
	pages = max(1, (m.stats.Active+m.pageSize-1)/m.pageSize)
	return m.offset/m.pageSize + 1, pages
}

func (m *Model) hasPrev() bool { return m.offset > 0 }

func (m *Model) hasNext() bool { return m.offset+m.pageSize < m.stats.Active }

// Selected returns the highlighted user
func (m *Model) Selected() (client.User, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return client.User{}, false
	}
	return m.visible[i], true
}

// applyFilter narrows the loaded page to users matching the search box
func (m *Model) applyFilter() {
	query := strings.TrimSpace(m.search.Value())
	m.visible = m.visible[:0]
	for _, u := range m.users {
		if u.Matches(query) {
			m.visible = append(m.visible, u)
		}
	}

	rows := make([]table.Row, 0, len(m.visible))
	for _, u := range m.visible {
		status := "Active"
		if u.IsActive != nil && !*u.IsActive {
			status = "Inactive"
		}
		rows = append(rows, table.Row{
			u.Initials(),
			u.DisplayName(),
			"@" + u.Username,
			u.Email,
			status,
			format.Joined(u.CreatedAt),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, toast.Show(toast.Error, "Failed to load users: "+msg.err.Error())
		}
		m.err = nil
		m.offset = msg.offset
		m.users = msg.list.Users
		m.stats = *msg.stats
		m.applyFilter()
		return m, nil

	case createdMsg:
		return m.handleCreated(msg)
	case updatedMsg:
		return m.handleUpdated(msg)
	case deletedMsg:
		return m.handleDeleted(msg)
	}

	switch m.mode {
	case modeSearch:
		return m.updateSearch(msg)
	case modeAdd, modeEdit:
		return m.updateForm(msg)
	case modeDelete:
		return m.updateDelete(msg)
	}
	return m.updateList(msg)
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "/":
		m.mode = modeSearch
		return m, m.search.Focus()
	case "r":
		return m, m.load(m.offset)
	case "left", "h", "pgup":
		if m.hasPrev() && !m.loading {
			return m, m.load(max(0, m.offset-m.pageSize))
		}
		return m, nil
	case "right", "l", "pgdown":
		if m.hasNext() && !m.loading {
			return m, m.load(m.offset + m.pageSize)
		}
		return m, nil
	case "a", "n":
		return m, m.openCreate()
	case "e", "enter":
		if u, ok := m.Selected(); ok {
			return m, m.openEdit(u)
		}
		return m, nil
	case "d", "delete":
		if u, ok := m.Selected(); ok {
			m.target = u
			m.mode = modeDelete
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.search.SetValue("")
			m.search.Blur()
			m.mode = modeList
			m.applyFilter()
			return m, nil
		case "enter", "down", "up":
			m.search.Blur()
			m.mode = modeList
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) updateDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.busy {
		return m, nil
	}
	switch key.String() {
	case "y", "enter":
		m.busy = true
		return m, m.deleteUser(m.target)
	case "n", "esc":
		m.mode = modeList
	}
	return m, nil
}

func (m *Model) deleteUser(u client.User) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		_, err := api.DeleteUser(ctx, u.ID.String())
		return deletedMsg{user: u, err: err}
	}
}

func (m *Model) handleDeleted(msg deletedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.mode = modeList
	if msg.err != nil {
		return m, toast.Show(toast.Error, msg.err.Error())
	}
	// Step back when the last row of a page was removed
	offset := m.offset
	if len(m.users) == 1 && offset > 0 {
		offset = max(0, offset-m.pageSize)
	}
	return m, tea.Batch(
		toast.Show(toast.Success, fmt.Sprintf("User %q deleted", msg.user.Username)),
		m.load(offset),
	)
}

// View implements tea.Model
func (m *Model) View() string {
	switch m.mode {
	case modeAdd, modeEdit:
		return m.viewForm()
	case modeDelete:
		return m.viewDelete()
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Users.String() + " User Management"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s %d total   %s %d active   %s %d verified\n\n",
		icons.Total.String(), m.stats.Total,
		icons.Active.String(), m.stats.Active,
		icons.Verified.String(), m.stats.Verified))

	sb.WriteString(m.search.View())
	sb.WriteString("\n\n")

	switch {
	case m.loading && m.users == nil:
		sb.WriteString("Loading users...\n")
	case m.err != nil && m.users == nil:
		sb.WriteString(styles.StatusCritical.Render("Failed to load users: " + m.err.Error()))
		sb.WriteString("\n")
	case len(m.visible) == 0:
		sb.WriteString(styles.ValueStyle.Render("No users found"))
		sb.WriteString("\n")
		if m.search.Value() != "" {
			sb.WriteString(styles.Subtitle.Render("Try a different search term"))
		} else {
			sb.WriteString(styles.Subtitle.Render("Get started by adding your first user"))
		}
		sb.WriteString("\n")
	default:
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
		sb.WriteString(m.viewPagination())
	}
	return sb.String()
}

func (m *Model) viewPagination() string {
	page, pages := m.Page()
	first := m.offset + 1
	last := min(m.offset+m.pageSize, m.stats.Active)
	if last < first {
		last = m.offset + len(m.users)
	}

	prev, next := "← Previous", "Next →"
	muted := lipgloss.NewStyle().Foreground(styles.Muted)
	if !m.hasPrev() {
		prev = muted.Render(prev)
	}
	if !m.hasNext() {
		next = muted.Render(next)
	}
	return fmt.Sprintf("%s   Showing %d - %d of %d (page %d/%d)   %s",
		prev, first, last, m.stats.Active, page, pages, next)
}

func (m *Model) viewDelete() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Delete.String() + " Delete User"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Are you sure you want to delete %s (@%s)?\n",
		m.target.DisplayName(), m.target.Username))
	sb.WriteString(styles.StatusWarning.Render("This action cannot be undone."))
	sb.WriteString("\n\n")
	if m.busy {
		sb.WriteString("Deleting...")
	} else {
		sb.WriteString(styles.KeyStyle.Render("y") + " Delete   " + styles.KeyStyle.Render("n") + " Cancel")
	}
	return styles.ActivePanel.Render(sb.String())
}
