// ABOUTME: Dashboard component displaying user statistics
// ABOUTME: Welcome line, stat cards and the verification rate

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fanzones/console/internal/client"
	"github.com/fanzones/console/internal/tui/icons"
	"github.com/fanzones/console/internal/tui/styles"
	"github.com/fanzones/console/internal/tui/widgets"
)

// Dashboard displays user statistics for the signed-in admin
type Dashboard struct {
	user   *client.User
	stats  *client.UserStats
	err    error
	width  int
	height int
}

// New creates a dashboard greeting user; stats arrive later via SetStats
func New(user *client.User, width, height int) *Dashboard {
	return &Dashboard{
		user:   user,
		width:  width,
		height: height,
	}
}

// SetStats replaces the statistics and clears any previous error
func (d *Dashboard) SetStats(stats *client.UserStats) {
	d.stats = stats
	d.err = nil
}

// SetError records a failed stats load
func (d *Dashboard) SetError(err error) {
	d.err = err
}

// SetUser updates the greeting after a profile change
func (d *Dashboard) SetUser(user *client.User) {
	d.user = user
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard
func (d *Dashboard) View() string {
	var sb strings.Builder

	name := "there"
	if d.user != nil {
		name = d.user.GreetingName()
	}
	sb.WriteString(styles.Title.Render(fmt.Sprintf("Welcome back, %s!", name)))
	sb.WriteString("\n")
	sb.WriteString(styles.Subtitle.Render("Here's what's happening with your users"))
	sb.WriteString("\n")

	switch {
	case d.err != nil:
		sb.WriteString(styles.StatusCritical.Render("Failed to load statistics: " + d.err.Error()))
		sb.WriteString("\n")
	case d.stats == nil:
		sb.WriteString("Loading statistics...\n")
	default:
		sb.WriteString(d.renderCards())
		sb.WriteString("\n\n")
		sb.WriteString(d.renderRate())
		sb.WriteString("\n")
	}

	return lipgloss.NewStyle().
		Width(d.width).
		Render(sb.String())
}

// renderRate shows the verification rate of active accounts as a bar
func (d *Dashboard) renderRate() string {
	bar := widgets.DefaultProgressBarConfig()
	bar.Width = max(10, min(40, d.width-30))
	label := lipgloss.NewStyle().Foreground(styles.Muted).Render("Verification rate ")
	return label +
		widgets.ProgressBarWithLabel(float64(d.stats.VerificationRate()), bar)
}

// renderCards lays the four cards out in one row, or two rows when narrow
func (d *Dashboard) renderCards() string {
	cfg := widgets.DefaultCardConfig()
	rate := d.stats.VerificationRate()

	cards := []string{
		widgets.StatCard(icons.Total, "Total Users", d.stats.Total, "all accounts", cfg),
		widgets.StatCard(icons.Active, "Active", d.stats.Active, "can sign in", cfg),
		widgets.StatCard(icons.Verified, "Verified", d.stats.Verified, "email confirmed", cfg),
		widgets.RateCard(icons.Shield, "Verification", rate,
			fmt.Sprintf("%d of %d active", d.stats.Verified, d.stats.Active), cfg),
	}

	perRow := len(cards)
	if d.width > 0 && d.width < (cfg.Width+1)*len(cards) {
		perRow = 2
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		row := make([]string, 0, perRow)
		for _, c := range cards[i:end] {
			row = append(row, c, " ")
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
