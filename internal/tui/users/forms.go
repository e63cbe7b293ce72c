// ABOUTME: Add and edit forms for the users screen
// ABOUTME: Fields are validated locally before the backend is called

package users

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/fanzones/console/internal/client"
	"github.com/fanzones/console/internal/toast"
	"github.com/fanzones/console/internal/tui/icons"
	"github.com/fanzones/console/internal/tui/styles"
	"github.com/fanzones/console/internal/validate"
)

var (
	createOrder = []string{"first_name", "last_name", "email", "username", "password"}
	editOrder   = []string{"first_name", "last_name", "bio"}
)

func (m *Model) openCreate() tea.Cmd {
	m.created = validate.Registration{}
	m.formErr = ""
	m.mode = modeAdd
	m.form = m.createForm()
	return m.form.Init()
}

func (m *Model) createForm() *huh.Form {
	v := &m.created
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("First Name").Value(&v.FirstName).Validate(validate.Name),
			huh.NewInput().Title("Last Name").Value(&v.LastName).Validate(validate.Name),
			huh.NewInput().Title("Email *").Value(&v.Email).Validate(validate.Email),
			huh.NewInput().Title("Username *").
				Description("3-30 characters, letters, numbers, and underscores only").
				Value(&v.Username).Validate(validate.Username),
			huh.NewInput().Title("Password *").
				EchoMode(huh.EchoModePassword).
				Value(&v.Password).
				Validate(validate.Password),
		).Title(icons.Add.String() + " Add New User"),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

func (m *Model) openEdit(u client.User) tea.Cmd {
	m.target = u
	m.edited = validate.UserEdit{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
	}
	m.formErr = ""
	m.mode = modeEdit
	m.form = m.editForm()
	return m.form.Init()
}

func (m *Model) editForm() *huh.Form {
	v := &m.edited
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title("Email").Description(m.target.Email+"\nEmail cannot be changed"),
			huh.NewInput().Title("First Name").Value(&v.FirstName).Validate(validate.Name),
			huh.NewInput().Title("Last Name").Value(&v.LastName).Validate(validate.Name),
			huh.NewText().Title("Bio").Placeholder("Tell us about yourself...").
				CharLimit(500).Lines(3).Value(&v.Bio),
		).Title(icons.Edit.String() + " Edit User: @" + m.target.Username),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.mode = modeList
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.mode == modeAdd {
			return m, m.submitCreate()
		}
		return m, m.submitEdit()
	case huh.StateAborted:
		m.mode = modeList
		m.form = nil
		return m, nil
	}
	return m, cmd
}

// reopen shows message above a rebuilt form that keeps the entered values
func (m *Model) reopen(message string) tea.Cmd {
	m.formErr = message
	m.busy = false
	if m.mode == modeAdd {
		m.form = m.createForm()
	} else {
		m.form = m.editForm()
	}
	return m.form.Init()
}

func (m *Model) submitCreate() tea.Cmd {
	v := m.created
	v.Email = strings.TrimSpace(v.Email)
	v.Username = strings.TrimSpace(v.Username)
	v.ConfirmPassword = v.Password
	if err := v.Validate(); err != nil {
		return m.reopen(validate.FirstError(err, createOrder...))
	}

	m.busy = true
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		_, err := api.CreateUser(ctx, &client.RegisterRequest{
			Email:     v.Email,
			Username:  v.Username,
			Password:  v.Password,
			FirstName: v.FirstName,
			LastName:  v.LastName,
		})
		return createdMsg{err: err}
	}
}

func (m *Model) submitEdit() tea.Cmd {
	v := m.edited
	if err := v.Validate(); err != nil {
		return m.reopen(validate.FirstError(err, editOrder...))
	}

	m.busy = true
	ctx, api, id := m.ctx, m.api, m.target.ID
	update := &client.UserUpdate{
		FirstName: &v.FirstName,
		LastName:  &v.LastName,
		Bio:       &v.Bio,
	}
	return func() tea.Msg {
		resp, err := api.UpdateUser(ctx, id.String(), update)
		if err != nil {
			return updatedMsg{err: err}
		}
		return updatedMsg{user: resp.User}
	}
}

func (m *Model) handleCreated(msg createdMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.reopen(msg.err.Error())
	}
	m.busy = false
	m.mode = modeList
	m.form = nil
	return m, tea.Batch(
		toast.Show(toast.Success, "User created successfully"),
		m.load(m.offset),
	)
}

func (m *Model) handleUpdated(msg updatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.reopen(msg.err.Error())
	}
	m.busy = false
	m.mode = modeList
	m.form = nil

	cmds := []tea.Cmd{
		toast.Show(toast.Success, "User updated successfully"),
		m.load(m.offset),
	}
	if m.target.ID == m.selfID {
		cmds = append(cmds, func() tea.Msg { return ProfileChangedMsg{} })
	}
	return m, tea.Batch(cmds...)
}

// Cancel closes any open form or dialog
func (m *Model) Cancel() {
	m.mode = modeList
	m.form = nil
	m.busy = false
	m.search.Blur()
}

func (m *Model) viewForm() string {
	var sb strings.Builder
	sb.WriteString(m.form.View())
	sb.WriteString("\n")
	if m.busy {
		sb.WriteString(styles.Subtitle.Render("Saving..."))
		sb.WriteString("\n")
	}
	if m.formErr != "" {
		sb.WriteString(styles.ErrorText.Render(icons.Critical.String() + " " + m.formErr))
		sb.WriteString("\n")
	}
	sb.WriteString(styles.Help.Render("esc cancel"))
	return sb.String()
}
