// ABOUTME: Event browsing commands: search and show
// ABOUTME: Searches are remembered in the same recent list the console offers

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fanzones/console/internal/client"
	"github.com/fanzones/console/internal/format"
	"github.com/fanzones/console/internal/recent"
)

var eventSearch client.EventSearch

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Browse events",
}

var eventsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search events by keyword and location",
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runEventsSearch(ctx, w, eventSearch)
		})
	},
}

var eventsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one event",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context, w io.Writer) int {
			return runEventsShow(ctx, w, args[0])
		})
	},
}

func init() {
	eventsSearchCmd.Flags().StringVar(&eventSearch.Keyword, "keyword", "", "Search term (artist, team, event)")
	eventsSearchCmd.Flags().StringVar(&eventSearch.City, "city", "", "City")
	eventsSearchCmd.Flags().StringVar(&eventSearch.StateCode, "state", "", "Two-letter state code")
	eventsSearchCmd.Flags().IntVar(&eventSearch.Size, "size", 0, "Page size (default from config)")
	eventsSearchCmd.Flags().IntVar(&eventSearch.Page, "page", 0, "Zero-based page number")

	eventsCmd.AddCommand(eventsSearchCmd, eventsShowCmd)
	rootCmd.AddCommand(eventsCmd)
}

// EventsSearchOutput is the JSON shape of events search
type EventsSearchOutput struct {
	Events     []client.Event `json:"events"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

// runEventsSearch runs one search page and returns exit code
func runEventsSearch(ctx context.Context, w io.Writer, search client.EventSearch) int {
	search.StateCode = strings.ToUpper(strings.TrimSpace(search.StateCode))
	if len(search.StateCode) > 2 {
		fmt.Fprintln(w, "Error: state must be a two-letter code")
		return exitRejected
	}
	return withApp(ctx, w, func(ctx context.Context, w io.Writer, a *app) int {
		if !a.requireLogin(ctx, w) {
			return exitRejected
		}
		if search.Size <= 0 {
			search.Size = a.cfg.EventPageSize
		}
		page, err := a.client.SearchEvents(ctx, search)
		if err != nil {
			return reportError(w, err)
		}
		a.rememberSearch(search)

		number, total := page.PageNumber()
		out := EventsSearchOutput{Events: page.Events(), Page: number, TotalPages: total}
		if IsJSONOutput() {
			printJSON(w, out)
			return exitOK
		}
		fmt.Fprint(w, formatEventsTable(out))
		return exitOK
	})
}

// rememberSearch records search in the recent list; failures only log
func (a *app) rememberSearch(search client.EventSearch) {
	if a.cfg.Ephemeral {
		return
	}
	entry := recent.Search{Keyword: search.Keyword, City: search.City, StateCode: search.StateCode}
	if err := recent.New(a.cfg.ConfigDir).Add(entry); err != nil {
		a.logger.Debug("failed to save recent search", "error", err)
	}
}

func formatEventsTable(out EventsSearchOutput) string {
	var b strings.Builder
	if len(out.Events) == 0 {
		b.WriteString("No events found. Try adjusting your search criteria.\n")
		return b.String()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "EVENT", "DATE", "VENUE", "PRICE", "STATUS")
	for _, e := range out.Events {
		date := format.EventDate(e.Dates.Start.LocalDate)
		if tm := format.EventTime(e.Dates.Start.LocalTime); tm != "" {
			date += " " + tm
		}
		t.Row(e.ID, e.Name, date, format.Venue(e.PrimaryVenue()), format.Price(e.Price()), format.Status(e.StatusCode()))
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	if out.TotalPages > 0 {
		fmt.Fprintf(&b, "\nPage %d of %d\n", out.Page+1, out.TotalPages)
	}
	return b.String()
}

// runEventsShow prints one event
func runEventsShow(ctx context.Context, w io.Writer, id string) int {
	return withApp(ctx, w, func(ctx context.Context, w io.Writer, a *app) int {
		if !a.requireLogin(ctx, w) {
			return exitRejected
		}
		event, err := a.client.GetEvent(ctx, id)
		if err != nil {
			return reportError(w, err)
		}
		if IsJSONOutput() {
			printJSON(w, event)
			return exitOK
		}
		fmt.Fprintln(w, formatEvent(event))
		return exitOK
	})
}

func formatEvent(e *client.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", e.Name)
	if segment, genre := e.Segment(); segment != "" || genre != "" {
		fmt.Fprintf(&b, "Category: %s\n", strings.Trim(segment+" / "+genre, " /"))
	}

	when := format.EventDateLong(e.Dates.Start.LocalDate)
	if tm := format.EventTime(e.Dates.Start.LocalTime); tm != "" {
		when += " at " + tm
	}
	fmt.Fprintf(&b, "Date:     %s\n", when)
	if v := format.Venue(e.PrimaryVenue()); v != "" {
		fmt.Fprintf(&b, "Venue:    %s\n", v)
	}

	price := "Price information unavailable"
	if p := e.Price(); p != nil {
		price = format.Price(p) + " " + p.Currency
	}
	fmt.Fprintf(&b, "Price:    %s\n", price)
	if s := format.Status(e.StatusCode()); s != "" {
		fmt.Fprintf(&b, "Status:   %s\n", s)
	}
	if names := e.Attractions(); len(names) > 0 {
		fmt.Fprintf(&b, "Lineup:   %s\n", strings.Join(names, ", "))
	}
	if url := e.SeatmapURL(); url != "" {
		fmt.Fprintf(&b, "Seat map: %s\n", url)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, "Tickets:  %s\n", e.URL)
	}
	if e.Info != "" {
		fmt.Fprintf(&b, "\n%s\n", e.Info)
	}
	if e.PleaseNote != "" {
		fmt.Fprintf(&b, "\nPlease note: %s\n", e.PleaseNote)
	}
	return strings.TrimRight(b.String(), "\n")
}
