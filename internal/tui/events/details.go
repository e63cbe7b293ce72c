// ABOUTME: Event details screen with venue, tickets, quick info and the seat map
// ABOUTME: Loads one event by id and hands its seat map to the viewer

package events

import (
	"errors"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fanzones/console/internal/client"
	"github.com/fanzones/console/internal/format"
	"github.com/fanzones/console/internal/tui/icons"
	"github.com/fanzones/console/internal/tui/styles"
	"github.com/fanzones/console/internal/tui/widgets"
)

// Details shows a single event
type Details struct {
	id      string
	event   *client.Event
	err     error
	loading bool
	seatmap *SeatMap
	showMap bool
	width   int
	height  int
}

// NewDetails creates a details screen waiting for event id
func NewDetails(id string) *Details {
	return &Details{id: id, loading: true}
}

// SetEvent installs the loaded event
func (d *Details) SetEvent(e *client.Event) {
	d.loading = false
	d.err = nil
	d.event = e
	venue := ""
	if v := e.PrimaryVenue(); v != nil {
		venue = v.Name
	}
	d.seatmap = NewSeatMap(e.SeatmapURL(), venue)
	d.seatmap.SetSize(d.width, d.height)
}

// SetError records a failed load
func (d *Details) SetError(err error) {
	d.loading = false
	d.err = err
}

// SetSize updates the available space
func (d *Details) SetSize(width, height int) {
	d.width = width
	d.height = height
	if d.seatmap != nil {
		d.seatmap.SetSize(width, height)
	}
}

// ShowingMap reports whether the seat map viewer is open
func (d *Details) ShowingMap() bool {
	return d.showMap
}

// Update handles keys while the details screen is open. It reports done
// when the user asked to go back to the list.
func (d *Details) Update(msg tea.Msg) (done bool, cmd tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}

	if d.showMap {
		if key.String() == "esc" || key.String() == "m" {
			d.showMap = false
			return false, nil
		}
		d.seatmap, cmd = d.seatmap.Update(msg)
		return false, cmd
	}

	switch key.String() {
	case "esc", "backspace":
		return true, nil
	case "m":
		if d.seatmap != nil {
			d.showMap = true
		}
	}
	return false, nil
}

func notFound(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// View renders the details
func (d *Details) View() string {
	back := styles.Help.UnsetMarginTop().Render(icons.Back.String() + " Back to Events (esc)")

	switch {
	case d.loading:
		return back + "\n\n" + "Loading event details..."
	case d.err != nil && notFound(d.err):
		return back + "\n\n" + styles.Title.Render("Event Not Found") + "\n" +
			styles.Subtitle.Render("The event you're looking for doesn't exist or has been removed.")
	case d.err != nil:
		return back + "\n\n" + styles.StatusCritical.Render(d.err.Error())
	case d.event == nil:
		return back
	}

	if d.showMap {
		return back + "\n\n" + d.seatmap.View()
	}

	e := d.event
	var sb strings.Builder
	sb.WriteString(back)
	sb.WriteString("\n\n")

	segment, genre := e.Segment()
	var badges []string
	if segment != "" {
		badges = append(badges, widgets.Badge(segment, widgets.StatusInfo))
	}
	if genre != "" {
		badges = append(badges, widgets.Badge(genre, widgets.StatusOK))
	}
	if len(badges) > 0 {
		sb.WriteString(strings.Join(badges, " "))
		sb.WriteString("\n")
	}
	sb.WriteString(styles.Title.Render(e.Name))
	sb.WriteString("\n")
	when := format.EventDateLong(e.Dates.Start.LocalDate)
	if t := format.EventTime(e.Dates.Start.LocalTime); t != "" {
		when += " at " + t
	}
	sb.WriteString(icons.Events.String() + " " + when + "\n\n")

	if v := e.PrimaryVenue(); v != nil {
		sb.WriteString(section(icons.Venue.String()+" Venue", venueLines(v)))
	}

	sb.WriteString(section(icons.Ticket.String()+" Tickets", d.ticketLines()))
	sb.WriteString(section(icons.Info.String()+" Quick Info", d.quickInfo()))

	if names := e.Attractions(); len(names) > 0 {
		sb.WriteString(section("Performers", names))
	}
	if e.Info != "" {
		sb.WriteString(section("Event Information", []string{e.Info}))
	}
	if e.PleaseNote != "" {
		sb.WriteString(section("Please Note", []string{e.PleaseNote}))
	}

	if d.seatmap != nil && d.seatmap.Available() {
		sb.WriteString(styles.KeyStyle.Render("m") + " open the venue map")
	} else if d.seatmap != nil {
		sb.WriteString(d.seatmap.View())
	}
	return sb.String()
}

func section(title string, lines []string) string {
	return styles.Selected.Render(title) + "\n" + strings.Join(lines, "\n") + "\n\n"
}

func venueLines(v *client.Venue) []string {
	lines := []string{styles.ValueStyle.Render(v.Name)}
	if v.Address != nil && v.Address.Line1 != "" {
		lines = append(lines, v.Address.Line1)
	}
	loc := v.Location()
	if v.PostalCode != "" {
		loc = strings.TrimSpace(loc + " " + v.PostalCode)
	}
	if loc != "" {
		lines = append(lines, loc)
	}
	if v.Country != nil && v.Country.Name != "" {
		lines = append(lines, styles.Subtitle.UnsetMarginBottom().Render(v.Country.Name))
	}
	if v.URL != "" {
		lines = append(lines, "View Venue Details: "+v.URL)
	}
	return lines
}

func (d *Details) ticketLines() []string {
	e := d.event
	var lines []string
	if p := e.Price(); p != nil {
		lines = append(lines, styles.ValueStyle.Render(format.Price(p))+" "+p.Currency)
	} else {
		lines = append(lines, styles.Subtitle.UnsetMarginBottom().Render("Price information unavailable"))
	}
	if e.URL != "" {
		lines = append(lines, "Get Tickets: "+e.URL)
	}
	if code := e.StatusCode(); code != "" {
		lines = append(lines, widgets.Badge(format.Status(code), widgets.EventStatusLevel(code)))
	}
	return lines
}

func (d *Details) quickInfo() []string {
	e := d.event
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, styles.Label.Render(label)+value)
		}
	}
	if e.Dates.Start.LocalDate != "" {
		add("Date", format.EventDate(e.Dates.Start.LocalDate))
	}
	add("Time", format.EventTime(e.Dates.Start.LocalTime))
	if v := e.PrimaryVenue(); v != nil {
		add("Venue", v.Name)
		add("Location", v.Location())
	}
	if e.AgeRestrictions != nil && e.AgeRestrictions.LegalAgeEnforced {
		add("Age", "18+")
	}
	if len(lines) == 0 {
		lines = append(lines, "Date TBA")
	}
	return lines
}
