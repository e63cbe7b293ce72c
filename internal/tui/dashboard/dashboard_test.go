// ABOUTME: Tests for dashboard component
// ABOUTME: Validates greeting, stat cards and the verification rate

package dashboard

import (
	"errors"
	"strings"
	"testing"

	"github.com/fanzones/console/internal/client"
)

func TestDashboardView(t *testing.T) {
	user := &client.User{Username: "ada", FirstName: "Ada"}
	d := New(user, 120, 24)
	d.SetStats(&client.UserStats{Total: 10, Active: 8, Verified: 6})

	view := d.View()
	for _, expected := range []string{
		"Welcome back, Ada!",
		"Total Users",
		"10",
		"Active",
		"Verified",
		"75%",
		"6 of 8 active",
	} {
		if !strings.Contains(view, expected) {
			t.Errorf("expected view to contain %q\nView:\n%s", expected, view)
		}
	}
}

func TestDashboardVerificationBar(t *testing.T) {
	d := New(&client.User{Username: "ada"}, 120, 24)
	d.SetStats(&client.UserStats{Total: 4, Active: 4, Verified: 2})

	view := d.View()
	if !strings.Contains(view, "Verification rate") {
		t.Fatalf("expected verification bar\nView:\n%s", view)
	}
	if !strings.Contains(view, "[████") || !strings.Contains(view, " 50%") {
		t.Errorf("expected a half-filled bar labeled 50%%\nView:\n%s", view)
	}
}

func TestDashboardGreetingFallsBackToUsername(t *testing.T) {
	d := New(&client.User{Username: "ada"}, 120, 24)
	if !strings.Contains(d.View(), "Welcome back, ada!") {
		t.Error("expected username greeting")
	}
}

func TestDashboardLoading(t *testing.T) {
	d := New(nil, 80, 24)
	if !strings.Contains(d.View(), "Loading") {
		t.Error("expected loading message before stats arrive")
	}
}

func TestDashboardZeroActive(t *testing.T) {
	d := New(&client.User{Username: "ada"}, 120, 24)
	d.SetStats(&client.UserStats{Total: 3})
	if !strings.Contains(d.View(), "0%") {
		t.Error("expected 0% verification rate with no active users")
	}
}

func TestDashboardError(t *testing.T) {
	d := New(&client.User{Username: "ada"}, 120, 24)
	d.SetError(errors.New("backend down"))

	view := d.View()
	if !strings.Contains(view, "backend down") {
		t.Errorf("expected error in view, got:\n%s", view)
	}

	d.SetStats(&client.UserStats{Total: 1, Active: 1, Verified: 1})
	if strings.Contains(d.View(), "backend down") {
		t.Error("SetStats should clear the error")
	}
}

func TestDashboardNarrowLayout(t *testing.T) {
	d := New(&client.User{Username: "ada"}, 60, 24)
	d.SetStats(&client.UserStats{Total: 4, Active: 4, Verified: 2})
	if !strings.Contains(d.View(), "Verification") {
		t.Error("expected all cards in the narrow layout")
	}
}
