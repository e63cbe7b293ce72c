// ABOUTME: Tests for badge, progress bar, sparkline and stat card widgets
// ABOUTME: Checks levels, widths and bucketing rather than exact colors

package widgets

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fanzones/console/internal/tui/icons"
)

func TestEventStatusLevel(t *testing.T) {
	tests := map[string]StatusLevel{
		"onsale":      StatusOK,
		"OnSale":      StatusOK,
		"postponed":   StatusWarning,
		"rescheduled": StatusWarning,
		"cancelled":   StatusCritical,
		"offsale":     StatusCritical,
		"":            StatusNeutral,
		"presale":     StatusInfo,
	}
	for code, want := range tests {
		if got := EventStatusLevel(code); got != want {
			t.Errorf("EventStatusLevel(%q) = %d, want %d", code, got, want)
		}
	}
}

func TestProgressBarLevels(t *testing.T) {
	c := DefaultProgressBarConfig()
	if c.Level(100) != StatusOK || c.Level(80) != StatusOK {
		t.Error("expected 80 and above to be OK")
	}
	if c.Level(79) != StatusWarning || c.Level(50) != StatusWarning {
		t.Error("expected 50-79 to be a warning")
	}
	if c.Level(0) != StatusCritical {
		t.Error("expected 0 to be critical")
	}
}

func TestProgressBarWidth(t *testing.T) {
	c := DefaultProgressBarConfig()
	c.Width = 10
	for _, p := range []float64{-5, 0, 33, 100, 140} {
		if w := lipgloss.Width(ProgressBar(p, c)); w != 12 {
			t.Errorf("ProgressBar(%v) width = %d, want 12", p, w)
		}
	}
}

func TestSparkline(t *testing.T) {
	if Sparkline(nil, 5, "") != "" {
		t.Error("expected empty sparkline for no values")
	}
	s := Sparkline([]float64{0, 1, 2, 3}, 4, "")
	if !strings.HasPrefix(s, "▁") || !strings.HasSuffix(s, "█") {
		t.Errorf("unexpected sparkline %q", s)
	}
	if w := lipgloss.Width(Sparkline([]float64{1, 2}, 7, "")); w != 7 {
		t.Errorf("expected padded width 7, got %d", w)
	}
}

func TestDailyCounts(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	times := []time.Time{
		now.Add(-time.Hour),
		now.Add(-2 * time.Hour),
		now.Add(-24 * time.Hour),
		now.Add(-10 * 24 * time.Hour),
	}
	got := DailyCounts(times, now, 7)
	if len(got) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(got))
	}
	if got[6] != 2 || got[5] != 1 {
		t.Errorf("unexpected buckets %v", got)
	}
	var total float64
	for _, v := range got {
		total += v
	}
	if total != 3 {
		t.Errorf("expected 3 events in window, got %v", total)
	}
}

func TestStatCardWidth(t *testing.T) {
	cfg := DefaultCardConfig()
	card := StatCard(icons.Total, "Total Users", 1234, "all accounts", cfg)
	for _, line := range strings.Split(card, "\n") {
		if w := lipgloss.Width(line); w != cfg.Width {
			t.Errorf("line %q width = %d, want %d", line, w, cfg.Width)
		}
	}
	if !strings.Contains(card, "1234") {
		t.Error("expected value in card")
	}
}

func TestRateCard(t *testing.T) {
	card := RateCard(icons.Verified, "Verification", 67, "2 of 3 active", DefaultCardConfig())
	if !strings.Contains(card, "67%") {
		t.Errorf("expected percentage in card, got:\n%s", card)
	}
}

func TestTruncate(t *testing.T) {
	if truncate("short", 10) != "short" {
		t.Error("short strings should be unchanged")
	}
	if got := truncate("a very long caption", 10); got != "a very ..." {
		t.Errorf("got %q", got)
	}
}
