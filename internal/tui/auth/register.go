// ABOUTME: Registration screen with client-side validation and a password strength meter
// ABOUTME: Registration never signs in; success sends the user back to the login screen

package auth

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/fanzones/console/internal/tui/icons"
	"github.com/fanzones/console/internal/tui/styles"
	"github.com/fanzones/console/internal/tui/widgets"
	"github.com/fanzones/console/internal/validate"
)

// RegisterSubmitMsg carries a locally valid registration form
type RegisterSubmitMsg struct {
	Form validate.Registration
}

// Register is the account creation screen
type Register struct {
	form   *huh.Form
	values validate.Registration
	err    string
	busy   bool
}

// NewRegister creates an empty registration screen
func NewRegister() *Register {
	r := &Register{}
	r.form = r.createForm()
	return r
}

func (r *Register) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("First name").Value(&r.values.FirstName).Validate(validate.Name),
			huh.NewInput().Title("Last name").Value(&r.values.LastName).Validate(validate.Name),
			huh.NewInput().Title("Username").Placeholder("letters, digits, underscores").
				Value(&r.values.Username).Validate(validate.Username),
			huh.NewInput().Title("Email").Value(&r.values.Email).Validate(validate.Email),
			huh.NewInput().Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&r.values.Password).
				Validate(validate.Password).
				DescriptionFunc(func() string {
					return StrengthMeter(r.values.Password)
				}, &r.values.Password),
			huh.NewInput().Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&r.values.ConfirmPassword).
				Validate(validate.Confirm(&r.values.Password)),
		).Title(icons.Add.String() + " Create an account").
			Description(fmt.Sprintf("Passwords need at least %d characters", validate.MinPasswordLength)),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// StrengthMeter renders the strength score of pw as a bar and label
func StrengthMeter(pw string) string {
	if pw == "" {
		return "Strength: -"
	}
	s := validate.PasswordStrength(pw)
	color := styles.Danger
	switch {
	case s.Score >= 3:
		color = styles.Secondary
	case s.Score == 2:
		color = styles.Warning
	}
	bar := widgets.CompactProgressBar(float64(s.Score+1)*20, 10, color)
	return "Strength: " + bar + " " + lipgloss.NewStyle().Foreground(color).Render(s.Label)
}

// Init implements tea.Model
func (r *Register) Init() tea.Cmd {
	return r.form.Init()
}

// Busy reports whether a registration request is in flight
func (r *Register) Busy() bool {
	return r.busy
}

// SetError shows the backend's message and reopens the form with the
// profile fields kept and the passwords cleared
func (r *Register) SetError(message string) tea.Cmd {
	r.err = message
	r.busy = false
	r.values.Password = ""
	r.values.ConfirmPassword = ""
	r.form = r.createForm()
	return r.form.Init()
}

// Update implements tea.Model
func (r *Register) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if r.busy {
		return r, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		email := r.values.Email
		return r, func() tea.Msg { return ShowLoginMsg{Email: email} }
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		return r, r.submit()
	}
	return r, cmd
}

func (r *Register) submit() tea.Cmd {
	values := r.values
	values.Email = strings.TrimSpace(values.Email)
	values.Username = strings.TrimSpace(values.Username)

	if err := values.Validate(); err != nil {
		return r.SetError(validate.FirstError(err,
			"first_name", "last_name", "username", "email", "password", "confirmPassword"))
	}

	r.busy = true
	r.err = ""
	return func() tea.Msg { return RegisterSubmitMsg{Form: values} }
}

// View implements tea.Model
func (r *Register) View() string {
	var sb strings.Builder
	sb.WriteString(r.form.View())
	sb.WriteString("\n")
	if r.busy {
		sb.WriteString(styles.Subtitle.Render("Creating account..."))
		sb.WriteString("\n")
	}
	if r.err != "" {
		sb.WriteString(styles.ErrorText.Render(icons.Critical.String() + " " + r.err))
		sb.WriteString("\n")
	}
	sb.WriteString(styles.Help.Render("Already have an account? Press esc to sign in"))
	return sb.String()
}
