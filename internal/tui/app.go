// ABOUTME: Root bubbletea model for the console
// ABOUTME: Gates screens on the session state and routes keyboard input to child components

package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fanzones/console/internal/client"
	"github.com/fanzones/console/internal/format"
	"github.com/fanzones/console/internal/session"
	"github.com/fanzones/console/internal/toast"
	"github.com/fanzones/console/internal/tui/auth"
	"github.com/fanzones/console/internal/tui/dashboard"
	"github.com/fanzones/console/internal/tui/events"
	"github.com/fanzones/console/internal/tui/icons"
	"github.com/fanzones/console/internal/tui/menu"
	"github.com/fanzones/console/internal/tui/profile"
	"github.com/fanzones/console/internal/tui/styles"
	"github.com/fanzones/console/internal/tui/users"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenLogin
	ScreenRegister
	ScreenDashboard
	ScreenUsers
	ScreenEvents
	ScreenProfile
)

// authenticated reports whether the screen is only reachable when signed in
func (s Screen) authenticated() bool {
	return s >= ScreenDashboard
}

// Layout constants
const (
	minTerminalWidth = 80 // Minimum frame width
	sidebarWidth     = 28 // Menu panel including borders
	frameOverhead    = 6  // Header, footer and panel borders
	toastTick        = time.Second
)

// API is the backend surface the screens use
type API interface {
	users.API
	events.API
	profile.API
}

// Session is the auth state the console is gated on
type Session interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
	Init(ctx context.Context) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context)
	Register(ctx context.Context, input *client.RegisterRequest) (*client.RegisterResponse, error)
	Reload(ctx context.Context) error
}

// Deps are the collaborators of the console
type Deps struct {
	API           API
	Session       Session
	Recents       events.Recents
	UserPageSize  int
	EventPageSize int
	Logger        *slog.Logger
	Toasts        *toast.Queue
	Now           func() time.Time
}

// sessionMsg carries a snapshot pushed by the session subscription
type sessionMsg struct {
	snap session.Snapshot
}

// initDoneMsg is sent when the session bootstrap finished
type initDoneMsg struct {
	err error
}

// loginDoneMsg is sent when a login attempt completes
type loginDoneMsg struct {
	err error
}

// registerDoneMsg is sent when a registration attempt completes
type registerDoneMsg struct {
	email string
	err   error
}

// logoutDoneMsg is sent once the session has been cleared
type logoutDoneMsg struct{}

// reloadDoneMsg is sent after the current user was refetched
type reloadDoneMsg struct {
	err error
}

// statsLoadedMsg carries the dashboard counts
type statsLoadedMsg struct {
	stats *client.UserStats
	err   error
}

// tickMsg drives toast expiry
type tickMsg time.Time

// App is the root model for the TUI
type App struct {
	ctx     context.Context
	deps    Deps
	logger  *slog.Logger
	toasts  *toast.Queue
	now     func() time.Time
	screen  Screen
	width   int
	height  int
	user    *client.User
	spinner spinner.Model

	lastEmail  string
	lastUpdate time.Time
	menuFocus  bool

	// Child models
	menu      *menu.Menu
	login     *auth.Login
	register  *auth.Register
	dashboard *dashboard.Dashboard
	users     *users.Model
	events    *events.Model
	profile   *profile.Model
}

// New creates the console in the loading state
func New(ctx context.Context, deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	toasts := deps.Toasts
	if toasts == nil {
		toasts = toast.New()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &App{
		ctx:     ctx,
		deps:    deps,
		logger:  logger,
		toasts:  toasts,
		now:     now,
		screen:  ScreenLoading,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary))),
		menu:    menu.New(),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.initSession(), a.tick())
}

// Screen returns the screen being displayed
func (a *App) Screen() Screen {
	return a.screen
}

// Toasts returns the notification queue
func (a *App) Toasts() *toast.Queue {
	return a.toasts
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(toastTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (a *App) initSession() tea.Cmd {
	ctx, s := a.ctx, a.deps.Session
	return func() tea.Msg {
		return initDoneMsg{err: s.Init(ctx)}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		// huh forms size themselves from the window message
		return a.forward(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tickMsg:
		a.toasts.Prune()
		return a, a.tick()

	case spinner.TickMsg:
		if a.screen != ScreenLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case toast.ShowMsg:
		a.toasts.Add(msg.Kind, msg.Message, msg.Title)
		return a, nil

	case sessionMsg:
		return a, a.apply(msg.snap)

	case initDoneMsg:
		if msg.err != nil {
			a.logger.Warn("session restore failed", "error", msg.err)
		}
		return a, a.apply(a.deps.Session.Snapshot())

	case auth.LoginSubmitMsg:
		a.lastEmail = msg.Email
		return a, a.doLogin(msg.Email, msg.Password)

	case loginDoneMsg:
		if msg.err != nil {
			if a.login != nil {
				return a, a.login.SetError(msg.err.Error())
			}
			return a, nil
		}
		return a, tea.Batch(
			toast.ShowTitled(toast.Success, "Welcome back!", "Login Successful"),
			a.apply(a.deps.Session.Snapshot()),
		)

	case auth.ShowRegisterMsg:
		return a, a.showRegister()

	case auth.ShowLoginMsg:
		return a, a.showLogin(msg.Email)

	case auth.RegisterSubmitMsg:
		return a, a.doRegister(msg)

	case registerDoneMsg:
		if msg.err != nil {
			if a.register != nil {
				return a, a.register.SetError(msg.err.Error())
			}
			return a, nil
		}
		return a, tea.Batch(
			toast.ShowTitled(toast.Success, "Account created! Please log in.", "Registration Successful"),
			a.showLogin(msg.email),
		)

	case menu.SelectedMsg:
		a.menuFocus = false
		return a, a.navigate(msg.Destination)

	case logoutDoneMsg:
		return a, tea.Batch(
			toast.Show(toast.Info, "You have been signed out"),
			a.apply(a.deps.Session.Snapshot()),
		)

	case users.ProfileChangedMsg:
		return a, a.reload()

	case reloadDoneMsg:
		if msg.err != nil {
			a.logger.Warn("profile reload failed", "error", msg.err)
			return a, nil
		}
		return a, a.apply(a.deps.Session.Snapshot())

	case statsLoadedMsg:
		if a.dashboard == nil {
			return a, nil
		}
		if msg.err != nil {
			a.dashboard.SetError(msg.err)
			return a, toast.Show(toast.Error, "Failed to load statistics: "+msg.err.Error())
		}
		a.dashboard.SetStats(msg.stats)
		a.lastUpdate = a.now()
		return a, nil
	}

	// Forward everything else (huh internals, child results) to the active screen
	return a.forward(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle global quit
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "ctrl+x":
		a.toasts.DismissOldest()
		return a, nil
	}

	if !a.screen.authenticated() || a.capturing() {
		return a.forward(msg)
	}

	if a.menuFocus {
		switch msg.String() {
		case "esc", "tab":
			a.menuFocus = false
			return a, nil
		case "q":
			return a, tea.Quit
		}
		_, cmd := a.menu.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "esc":
		a.menuFocus = true
		return a, nil
	}
	if d, ok := menu.FromKey(msg.String()); ok {
		return a, menu.Select(d)
	}
	if a.screen == ScreenDashboard && msg.String() == "r" {
		return a, a.loadStats()
	}
	return a.forward(msg)
}

// capturing reports whether the active screen consumes text input
func (a *App) capturing() bool {
	switch a.screen {
	case ScreenUsers:
		return a.users != nil && a.users.Capturing()
	case ScreenEvents:
		return a.events != nil && a.events.Capturing()
	}
	return false
}

// forward routes msg to the active child
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.screen {
	case ScreenLogin:
		if a.login != nil {
			_, cmd = a.login.Update(msg)
		}
	case ScreenRegister:
		if a.register != nil {
			_, cmd = a.register.Update(msg)
		}
	case ScreenUsers:
		if a.users != nil {
			_, cmd = a.users.Update(msg)
		}
	case ScreenEvents:
		if a.events != nil {
			_, cmd = a.events.Update(msg)
		}
	case ScreenProfile:
		if a.profile != nil {
			_, cmd = a.profile.Update(msg)
		}
	}
	return a, cmd
}

// apply moves the router to match snap. Signed-out sessions only see the
// login and register screens; signed-in sessions never do.
func (a *App) apply(snap session.Snapshot) tea.Cmd {
	if snap.IsLoading {
		a.screen = ScreenLoading
		return a.spinner.Tick
	}

	if !snap.IsAuthenticated {
		wasSignedIn := a.user != nil
		a.user = nil
		a.resetScreens()

		var cmds []tea.Cmd
		if snap.Expired && wasSignedIn {
			cmds = append(cmds, toast.ShowTitled(toast.Error, "Your session has expired. Please log in again.", "Session expired"))
		}
		if a.screen != ScreenLogin && a.screen != ScreenRegister {
			cmds = append(cmds, a.showLogin(a.lastEmail))
		}
		return tea.Batch(cmds...)
	}

	a.user = snap.CurrentUser
	if !a.screen.authenticated() {
		return a.navigate(menu.Dashboard)
	}
	if a.dashboard != nil {
		a.dashboard.SetUser(a.user)
	}
	if a.profile != nil && a.user != nil {
		a.profile.SetUser(*a.user)
	}
	return nil
}

func (a *App) resetScreens() {
	a.dashboard = nil
	a.users = nil
	a.events = nil
	a.profile = nil
	a.menuFocus = false
}

func (a *App) showLogin(email string) tea.Cmd {
	a.register = nil
	a.login = auth.NewLogin(email)
	a.screen = ScreenLogin
	return a.login.Init()
}

func (a *App) showRegister() tea.Cmd {
	a.login = nil
	a.register = auth.NewRegister()
	a.screen = ScreenRegister
	return a.register.Init()
}

// navigate opens d with a freshly loaded screen
func (a *App) navigate(d menu.Destination) tea.Cmd {
	if a.user == nil {
		return nil
	}
	a.login = nil
	a.register = nil
	a.menu.SetCurrent(d)
	w, h := a.contentWidth(), a.contentHeight()

	switch d {
	case menu.Dashboard:
		a.screen = ScreenDashboard
		a.dashboard = dashboard.New(a.user, w, h)
		return a.loadStats()
	case menu.Users:
		a.screen = ScreenUsers
		a.users = users.New(a.ctx, a.deps.API, a.deps.UserPageSize, a.user.ID)
		a.users.SetSize(w, h)
		return a.users.Init()
	case menu.Events:
		a.screen = ScreenEvents
		a.events = events.New(a.ctx, a.deps.API, a.deps.Recents, a.deps.EventPageSize)
		a.events.SetSize(w, h)
		return a.events.Init()
	case menu.Profile:
		a.screen = ScreenProfile
		a.profile = profile.New(a.ctx, a.deps.API, *a.user, profile.WithClock(a.now))
		a.profile.SetSize(w, h)
		return a.profile.Init()
	case menu.Logout:
		return a.doLogout()
	}
	return nil
}

func (a *App) resize() {
	w, h := a.contentWidth(), a.contentHeight()
	if a.dashboard != nil {
		a.dashboard.SetSize(w, h)
	}
	if a.users != nil {
		a.users.SetSize(w, h)
	}
	if a.events != nil {
		a.events.SetSize(w, h)
	}
	if a.profile != nil {
		a.profile.SetSize(w, h)
	}
}

func (a *App) doLogin(email, password string) tea.Cmd {
	ctx, s := a.ctx, a.deps.Session
	return func() tea.Msg {
		return loginDoneMsg{err: s.Login(ctx, email, password)}
	}
}

func (a *App) doRegister(msg auth.RegisterSubmitMsg) tea.Cmd {
	ctx, s := a.ctx, a.deps.Session
	f := msg.Form
	return func() tea.Msg {
		_, err := s.Register(ctx, &client.RegisterRequest{
			Email:     f.Email,
			Username:  f.Username,
			Password:  f.Password,
			FirstName: f.FirstName,
			LastName:  f.LastName,
		})
		return registerDoneMsg{email: f.Email, err: err}
	}
}

func (a *App) doLogout() tea.Cmd {
	ctx, s := a.ctx, a.deps.Session
	return func() tea.Msg {
		s.Logout(ctx)
		return logoutDoneMsg{}
	}
}

func (a *App) reload() tea.Cmd {
	ctx, s := a.ctx, a.deps.Session
	return func() tea.Msg {
		return reloadDoneMsg{err: s.Reload(ctx)}
	}
}

// loadStats creates a command to fetch the dashboard counts
func (a *App) loadStats() tea.Cmd {
	ctx, api := a.ctx, a.deps.API
	return func() tea.Msg {
		stats, err := api.UserCount(ctx)
		return statsLoadedMsg{stats: stats, err: err}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenLoading:
		content = a.viewLoading()
	case ScreenLogin:
		if a.login != nil {
			content = a.viewAuth(a.login.View())
		}
	case ScreenRegister:
		if a.register != nil {
			content = a.viewAuth(a.register.View())
		}
	default:
		content = a.viewMain()
	}

	return a.wrapWithFrame(content)
}

func (a *App) viewLoading() string {
	msg := a.spinner.View() + " Restoring session..."
	return lipgloss.Place(a.frameWidth(), max(3, a.contentHeight()), lipgloss.Center, lipgloss.Center, msg)
}

func (a *App) viewAuth(form string) string {
	brand := styles.Title.Render(icons.App.String() + " FanZones Console")
	body := styles.ActivePanel.Render(brand + "\n" + form)
	return lipgloss.PlaceHorizontal(a.frameWidth(), lipgloss.Center, body)
}

// viewMain renders the menu sidebar and the active section
func (a *App) viewMain() string {
	sidebar := styles.Panel
	panel := styles.ActivePanel
	if a.menuFocus {
		sidebar, panel = styles.ActivePanel, styles.Panel
	}
	left := sidebar.Width(sidebarWidth - 2).Render(a.menu.View())

	var body string
	switch a.screen {
	case ScreenDashboard:
		if a.dashboard != nil {
			body = a.dashboard.View()
		}
	case ScreenUsers:
		if a.users != nil {
			body = a.users.View()
		}
	case ScreenEvents:
		if a.events != nil {
			body = a.events.View()
		}
	case ScreenProfile:
		if a.profile != nil {
			body = a.profile.View()
		}
	}
	right := panel.Width(a.contentWidth()).Render(body)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (a *App) viewToasts() string {
	visible := a.toasts.Visible()
	if len(visible) == 0 {
		return ""
	}
	cards := make([]string, 0, len(visible))
	for _, t := range visible {
		color := styles.KindColor(t.Kind.String())
		title := lipgloss.NewStyle().Foreground(color).Bold(true).Render(t.Title)
		cards = append(cards, styles.Toast.BorderForeground(color).Render(title+"\n"+t.Message))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, cards...)
	return lipgloss.PlaceHorizontal(a.frameWidth(), lipgloss.Right, stack)
}

// frameWidth is the terminal width less one column, never below the minimum
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

// contentWidth calculates the width for the active section panel
func (a *App) contentWidth() int {
	return max(a.frameWidth()-sidebarWidth-4, 40)
}

// contentHeight calculates the height available for section content
func (a *App) contentHeight() int {
	return max(a.height-frameOverhead, 10)
}

// renderHeader creates the header bar with app branding and the signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := " " + icons.App.String() + " " + titleStyle.Render("FanZones Console") + " "

	rightText := ""
	if a.user != nil {
		rightText = " " + contextStyle.Render(a.user.DisplayName()+" (@"+a.user.Username+")") + " "
	}

	fillWidth := max(width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText), 0) // -4 for ╭─ and ─╮
	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	shortcuts := a.shortcuts()
	styled := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		if key, label, ok := strings.Cut(s, " "); ok {
			styled = append(styled, keyStyle.Render(key)+" "+labelStyle.Render(label))
		} else {
			styled = append(styled, s)
		}
	}
	leftText := " " + strings.Join(styled, "  ") + " "

	rightText := ""
	if len(a.toasts.Visible()) > 0 {
		rightText = " " + statusStyle.Render("ctrl+x dismiss") + " "
	} else if a.screen == ScreenDashboard && !a.lastUpdate.IsZero() {
		rightText = " " + statusStyle.Render("Updated "+format.RelativeTime(a.lastUpdate, a.now())) + " "
	}

	fillWidth := max(width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText), 0) // -4 for ╰─ and ─╯
	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

// shortcuts lists the keys for the current screen
func (a *App) shortcuts() []string {
	if a.menuFocus {
		return []string{"↑↓ Navigate", "Enter Select", "Esc Back", "q Quit"}
	}
	switch a.screen {
	case ScreenLoading:
		return []string{"ctrl+c Quit"}
	case ScreenLogin:
		return []string{"Enter Sign-in", "ctrl+r Register", "ctrl+c Quit"}
	case ScreenRegister:
		return []string{"Enter Next", "Esc Sign-in", "ctrl+c Quit"}
	case ScreenDashboard:
		return []string{"1-5 Go", "r Refresh", "Esc Menu", "q Quit"}
	case ScreenUsers:
		return []string{"/ Search", "a Add", "e Edit", "d Delete", "←→ Page", "Esc Menu"}
	case ScreenEvents:
		return []string{"/ Search", "Enter Details", "m Map", "←→ Page", "Esc Menu"}
	case ScreenProfile:
		return []string{"r Refresh", "1-5 Go", "Esc Menu", "q Quit"}
	}
	return nil
}

// wrapWithFrame wraps content with header, toasts and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	if t := a.viewToasts(); t != "" {
		sb.WriteString(t)
		sb.WriteString("\n")
	}
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until it exits
func Run(ctx context.Context, deps Deps) error {
	app := New(ctx, deps)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// Session changes made behind API calls (expiry) arrive asynchronously
	unsubscribe := deps.Session.Subscribe(func(s session.Snapshot) {
		p.Send(sessionMsg{snap: s})
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}
