// ABOUTME: Tests for the toast queue
// ABOUTME: Default titles, ordering, dismissal and expiry with a fake clock

package toast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTitles(t *testing.T) {
	q := New()
	assert.Equal(t, "Success", q.Success("saved").Title)
	assert.Equal(t, "Error", q.Error("boom").Title)
	assert.Equal(t, "Warning", q.Warning("careful").Title)
	assert.Equal(t, "Info", q.Info("fyi").Title)
	assert.Equal(t, "Registration Successful", q.Add(Success, "Account created! Please log in.", "Registration Successful").Title)
	assert.Len(t, q.Visible(), 5)
}

func TestExpiry(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	q := New(WithClock(func() time.Time { return now }))

	q.Success("first")
	now = now.Add(3 * time.Second)
	q.Error("second")

	now = now.Add(2 * time.Second)
	visible := q.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "second", visible[0].Message)

	assert.True(t, q.Prune())
	assert.False(t, q.Prune())

	now = now.Add(3 * time.Second)
	assert.Empty(t, q.Visible())
	assert.True(t, q.Prune())
}

func TestRemoveAndDismiss(t *testing.T) {
	q := New()
	a := q.Info("a")
	b := q.Info("b")
	q.Info("c")

	q.Remove(b.ID)
	q.Remove(999)
	visible := q.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, a.ID, visible[0].ID)

	assert.True(t, q.DismissOldest())
	assert.Equal(t, "c", q.Visible()[0].Message)
	assert.True(t, q.DismissOldest())
	assert.False(t, q.DismissOldest())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "info", Kind(42).String())
}
