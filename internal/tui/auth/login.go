// ABOUTME: Login screen as a bubbletea model wrapping a huh form
// ABOUTME: Emits a submit message; the app runs the session login and reports back

package auth

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/fanzones/console/internal/tui/icons"
	"github.com/fanzones/console/internal/tui/styles"
	"github.com/fanzones/console/internal/validate"
)

// LoginSubmitMsg carries the credentials entered on the login screen
type LoginSubmitMsg struct {
	Email    string
	Password string
}

// ShowRegisterMsg asks the app to switch to the registration screen
type ShowRegisterMsg struct{}

// ShowLoginMsg asks the app to switch to the login screen
type ShowLoginMsg struct {
	Email string
}

// Login is the sign-in screen
type Login struct {
	form     *huh.Form
	email    string
	password string
	err      string
	busy     bool
	width    int
}

// NewLogin creates the login screen with email prefilled
func NewLogin(email string) *Login {
	l := &Login{email: email}
	l.form = l.createForm()
	return l
}

func (l *Login) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("admin@fanzones.com").
				Value(&l.email).
				Validate(validate.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&l.password).
				Validate(validate.Required("Password is required")),
		).Title(icons.App.String() + " Sign in to FanZones").
			Description("Admin console"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Busy reports whether a login request is in flight
func (l *Login) Busy() bool {
	return l.busy
}

// SetError shows err, clears the password and re-enables the form
func (l *Login) SetError(message string) tea.Cmd {
	l.err = message
	l.busy = false
	l.password = ""
	l.form = l.createForm()
	return l.form.Init()
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if l.busy {
		return l, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "ctrl+r" {
			return l, func() tea.Msg { return ShowRegisterMsg{} }
		}
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		return l, l.submit()
	}
	return l, cmd
}

func (l *Login) submit() tea.Cmd {
	l.busy = true
	l.err = ""
	email, password := strings.TrimSpace(l.email), l.password
	return func() tea.Msg {
		return LoginSubmitMsg{Email: email, Password: password}
	}
}

// View implements tea.Model
func (l *Login) View() string {
	var sb strings.Builder
	sb.WriteString(l.form.View())
	sb.WriteString("\n")
	if l.busy {
		sb.WriteString(styles.Subtitle.Render("Signing in..."))
		sb.WriteString("\n")
	}
	if l.err != "" {
		sb.WriteString(styles.ErrorText.Render(icons.Critical.String() + " " + l.err))
		sb.WriteString("\n")
	}
	sb.WriteString(styles.Help.Render("Don't have an account? Press ctrl+r to create one"))
	return sb.String()
}
