// ABOUTME: Tests for display formatting
// ABOUTME: Fixed inputs and a fixed clock

package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fanzones/console/internal/client"
)

func TestEventDate(t *testing.T) {
	assert.Equal(t, "Sat, Nov 14, 2026", EventDate("2026-11-14"))
	assert.Equal(t, "TBA", EventDate(""))
	assert.Equal(t, "Saturday, November 14, 2026", EventDateLong("2026-11-14"))
	assert.Equal(t, "Date TBA", EventDateLong("garbage"))
}

func TestEventTime(t *testing.T) {
	assert.Equal(t, "7:30 PM", EventTime("19:30:00"))
	assert.Equal(t, "9:05 AM", EventTime("09:05"))
	assert.Equal(t, "", EventTime(""))
}

func TestPrice(t *testing.T) {
	assert.Equal(t, "", Price(nil))
	assert.Equal(t, "$45 - $950", Price(&client.PriceRange{Min: 45, Max: 950}))
	assert.Equal(t, "$1,200 - $2,500.5", Price(&client.PriceRange{Min: 1200, Max: 2500.5}))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "✅ On Sale", Status("onsale"))
	assert.Equal(t, "⏸️ Postponed", Status("postponed"))
	assert.Equal(t, "", Status(""))
	assert.Equal(t, "presale", Status("presale"))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "On Sale", StatusLabel("onsale"))
	assert.Equal(t, "Cancelled", StatusLabel("canceled"))
	assert.Equal(t, "Postponed", StatusLabel("Postponed"))
	assert.Equal(t, "presale", StatusLabel("presale"))
}

func TestSecurityIcon(t *testing.T) {
	assert.Equal(t, "🔄", SecurityIcon("token_refresh"))
	assert.Equal(t, "📋", SecurityIcon("something_else"))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "N/A", RelativeTime(time.Time{}, now))
	assert.Equal(t, "Just now", RelativeTime(now.Add(-30*time.Second), now))
	assert.Equal(t, "5 minutes ago", RelativeTime(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3 hours ago", RelativeTime(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2 days ago", RelativeTime(now.Add(-48*time.Hour), now))
	assert.Equal(t, "October 1, 2026 at 9:15 AM", RelativeTime(time.Date(2026, 10, 1, 9, 15, 0, 0, time.UTC), now))
}

func TestJoined(t *testing.T) {
	d := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mar 7, 2026", Joined(&d))
	assert.Equal(t, "—", Joined(nil))
}

func TestVenue(t *testing.T) {
	assert.Equal(t, "", Venue(nil))
	v := &client.Venue{Name: "Blue Note"}
	assert.Equal(t, "Blue Note", Venue(v))
}
