// ABOUTME: Display formatting shared by the CLI and the console
// ABOUTME: Dates, times, prices, sale status and security event presentation

package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fanzones/console/internal/client"
)

const (
	localDateLayout = "2006-01-02"
	localTimeLayout = "15:04:05"
)

// EventDate formats a localDate ("2026-11-14") as "Sat, Nov 14, 2026", or
// "TBA" when missing
func EventDate(localDate string) string {
	d, err := time.Parse(localDateLayout, localDate)
	if err != nil {
		return "TBA"
	}
	return d.Format("Mon, Jan 2, 2006")
}

// EventDateLong formats a localDate as "Saturday, November 14, 2026", or
// "Date TBA" when missing
func EventDateLong(localDate string) string {
	d, err := time.Parse(localDateLayout, localDate)
	if err != nil {
		return "Date TBA"
	}
	return d.Format("Monday, January 2, 2006")
}

// EventTime formats a localTime ("19:30:00") as "7:30 PM", or "" when
// missing
func EventTime(localTime string) string {
	for _, layout := range []string{localTimeLayout, "15:04"} {
		if t, err := time.Parse(layout, localTime); err == nil {
			return t.Format("3:04 PM")
		}
	}
	return ""
}

// Price formats a range as "$45 - $950", or "" when there is none
func Price(p *client.PriceRange) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("$%s - $%s", amount(p.Min), amount(p.Max))
}

func amount(v float64) string {
	if v == math.Trunc(v) {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 2)
}

// Status returns the display label for a sale status code
func Status(code string) string {
	switch strings.ToLower(code) {
	case "onsale":
		return "✅ On Sale"
	case "offsale":
		return "🔴 Off Sale"
	case "cancelled", "canceled":
		return "❌ Cancelled"
	case "postponed":
		return "⏸️ Postponed"
	case "rescheduled":
		return "📅 Rescheduled"
	case "":
		return ""
	default:
		return code
	}
}

// StatusLabel returns the plain label for a sale status code, without the
// icon Status adds
func StatusLabel(code string) string {
	switch strings.ToLower(code) {
	case "onsale":
		return "On Sale"
	case "offsale":
		return "Off Sale"
	case "cancelled", "canceled":
		return "Cancelled"
	case "postponed":
		return "Postponed"
	case "rescheduled":
		return "Rescheduled"
	default:
		return code
	}
}

// SecurityIcon returns the icon for a security event type
func SecurityIcon(eventType string) string {
	switch eventType {
	case "login_success":
		return "✅"
	case "login_failure":
		return "❌"
	case "logout":
		return "🚪"
	case "password_reset":
		return "🔑"
	case "account_locked":
		return "🔒"
	case "token_refresh":
		return "🔄"
	default:
		return "📋"
	}
}

// RelativeTime renders t relative to now: "Just now", "5 minutes ago" and
// so on for the last week, then an absolute timestamp
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < 7*24*time.Hour:
		return humanize.RelTime(t, now, "ago", "from now")
	default:
		return Timestamp(t)
	}
}

// Timestamp formats t as "January 2, 2006 at 3:04 PM"
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("January 2, 2006 at 3:04 PM")
}

// Joined formats an account creation date as "Jan 2, 2006"
func Joined(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "—"
	}
	return t.Format("Jan 2, 2006")
}

// Venue returns "Name, City, ST" with whichever parts are known
func Venue(v *client.Venue) string {
	if v == nil {
		return ""
	}
	parts := []string{}
	if v.Name != "" {
		parts = append(parts, v.Name)
	}
	if loc := v.Location(); loc != "" {
		parts = append(parts, loc)
	}
	return strings.Join(parts, ", ")
}
