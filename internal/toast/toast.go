// ABOUTME: Transient notification queue for the console
// ABOUTME: Toasts carry a kind, title and message and expire after a fixed lifetime

package toast

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultLifetime is how long a toast stays visible
const DefaultLifetime = 5 * time.Second

// Kind is the toast severity
type Kind int

const (
	Success Kind = iota
	Error
	Warning
	Info
)

// DefaultTitle is the title used when none is given
func (k Kind) DefaultTitle() string {
	switch k {
	case Success:
		return "Success"
	case Error:
		return "Error"
	case Warning:
		return "Warning"
	default:
		return "Info"
	}
}

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Toast is one notification
type Toast struct {
	ID        int
	Kind      Kind
	Title     string
	Message   string
	ExpiresAt time.Time
}

// Queue holds the visible toasts in insertion order. Safe for concurrent use.
type Queue struct {
	mu       sync.Mutex
	toasts   []Toast
	nextID   int
	lifetime time.Duration
	now      func() time.Time
}

// Option configures a Queue
type Option func(*Queue)

// WithLifetime overrides DefaultLifetime
func WithLifetime(d time.Duration) Option {
	return func(q *Queue) { q.lifetime = d }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// New creates an empty queue
func New(opts ...Option) *Queue {
	q := &Queue{lifetime: DefaultLifetime, now: time.Now, nextID: 1}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Lifetime returns how long each toast lives
func (q *Queue) Lifetime() time.Duration {
	return q.lifetime
}

// Add queues a toast and returns its id. An empty title gets the kind's
// default.
func (q *Queue) Add(kind Kind, message, title string) Toast {
	if title == "" {
		title = kind.DefaultTitle()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	t := Toast{
		ID:        q.nextID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		ExpiresAt: q.now().Add(q.lifetime),
	}
	q.nextID++
	q.toasts = append(q.toasts, t)
	return t
}

// Success queues a success toast
func (q *Queue) Success(message string) Toast { return q.Add(Success, message, "") }

// Error queues an error toast
func (q *Queue) Error(message string) Toast { return q.Add(Error, message, "") }

// Warning queues a warning toast
func (q *Queue) Warning(message string) Toast { return q.Add(Warning, message, "") }

// Info queues an info toast
func (q *Queue) Info(message string) Toast { return q.Add(Info, message, "") }

// Remove dismisses a toast. Unknown ids are ignored.
func (q *Queue) Remove(id int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, t := range q.toasts {
		if t.ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			return
		}
	}
}

// DismissOldest removes the first visible toast and reports whether one existed
func (q *Queue) DismissOldest() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.toasts) == 0 {
		return false
	}
	q.toasts = q.toasts[1:]
	return true
}

// Prune drops expired toasts and reports whether anything changed
func (q *Queue) Prune() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	kept := q.toasts[:0]
	for _, t := range q.toasts {
		if now.Before(t.ExpiresAt) {
			kept = append(kept, t)
		}
	}
	changed := len(kept) != len(q.toasts)
	q.toasts = kept
	return changed
}

// Visible returns a copy of the unexpired toasts
func (q *Queue) Visible() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	out := make([]Toast, 0, len(q.toasts))
	for _, t := range q.toasts {
		if now.Before(t.ExpiresAt) {
			out = append(out, t)
		}
	}
	return out
}

// ShowMsg asks the running console to queue a toast
type ShowMsg struct {
	Kind    Kind
	Message string
	Title   string
}

// Show returns a command that emits a ShowMsg with the kind's default title
func Show(kind Kind, message string) tea.Cmd {
	return ShowTitled(kind, message, "")
}

// ShowTitled is Show with an explicit title
func ShowTitled(kind Kind, message, title string) tea.Cmd {
	return func() tea.Msg {
		return ShowMsg{Kind: kind, Message: message, Title: title}
	}
}
