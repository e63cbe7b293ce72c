// ABOUTME: Event catalogue served by the fake backend
// ABOUTME: Filters by keyword, city and state and pages results like the real search API

package fakebackend

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Event is a raw event document, served as-is
type Event map[string]any

func (e Event) id() string {
	s, _ := e["id"].(string)
	return s
}

func (e Event) text(path ...string) string {
	var cur any = map[string]any(e)
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[p]
	}
	s, _ := cur.(string)
	return s
}

func (e Event) venue() map[string]any {
	emb, _ := e["_embedded"].(map[string]any)
	venues, _ := emb["venues"].([]any)
	if len(venues) == 0 {
		return nil
	}
	v, _ := venues[0].(map[string]any)
	return v
}

func (e Event) matches(keyword, city, state string) bool {
	if keyword != "" && !strings.Contains(strings.ToLower(e.text("name")), strings.ToLower(keyword)) {
		return false
	}
	v := Event(e.venue())
	if city != "" && !strings.EqualFold(v.text("city", "name"), city) {
		return false
	}
	if state != "" && !strings.EqualFold(v.text("state", "stateCode"), state) {
		return false
	}
	return true
}

// AddEvent appends an event to the catalogue
func (b *Backend) AddEvent(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *Backend) handleSearchEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	size := queryInt(r, "size", 20)
	if size == 0 {
		size = 20
	}
	page := queryInt(r, "page", 0)

	b.mu.Lock()
	var found []Event
	for _, e := range b.events {
		if e.matches(q.Get("keyword"), q.Get("city"), q.Get("stateCode")) {
			found = append(found, e)
		}
	}
	b.mu.Unlock()

	totalPages := (len(found) + size - 1) / size
	start := min(page*size, len(found))
	end := min(start+size, len(found))

	body := map[string]any{
		"page": map[string]int{
			"size":          size,
			"totalElements": len(found),
			"totalPages":    totalPages,
			"number":        page,
		},
	}
	if end > start {
		body["_embedded"] = map[string]any{"events": found[start:end]}
	}
	writeJSON(w, http.StatusOK, body)
}

func (b *Backend) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range b.events {
		if e.id() == id {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Event not found")
}

// SampleEvents returns a small fixed catalogue
func SampleEvents() []Event {
	return []Event{
		{
			"id":   "evt-1",
			"name": "Lakers vs Celtics",
			"url":  "https://tickets.example.com/evt-1",
			"info": "Doors open 90 minutes before tip-off.",
			"dates": map[string]any{
				"start":  map[string]any{"localDate": "2026-11-14", "localTime": "19:30:00"},
				"status": map[string]any{"code": "onsale"},
			},
			"images": []any{
				map[string]any{"url": "https://img.example.com/evt-1-3_2.jpg", "ratio": "3_2", "width": 640},
				map[string]any{"url": "https://img.example.com/evt-1-16_9.jpg", "ratio": "16_9", "width": 1024},
			},
			"priceRanges": []any{map[string]any{"min": 45.0, "max": 950.0, "currency": "USD"}},
			"classifications": []any{map[string]any{
				"segment": map[string]any{"name": "Sports"},
				"genre":   map[string]any{"name": "Basketball"},
			}},
			"seatmap": map[string]any{"staticUrl": "https://maps.example.com/crypto-arena.png"},
			"_embedded": map[string]any{
				"venues": []any{map[string]any{
					"name":    "Crypto.com Arena",
					"city":    map[string]any{"name": "Los Angeles"},
					"state":   map[string]any{"stateCode": "CA"},
					"address": map[string]any{"line1": "1111 S Figueroa St"},
				}},
				"attractions": []any{
					map[string]any{"name": "Los Angeles Lakers"},
					map[string]any{"name": "Boston Celtics"},
				},
			},
		},
		{
			"id":   "evt-2",
			"name": "Symphony in the Park",
			"dates": map[string]any{
				"start":  map[string]any{"localDate": "2026-12-01"},
				"status": map[string]any{"code": "postponed"},
			},
			"classifications": []any{map[string]any{
				"segment": map[string]any{"name": "Music"},
				"genre":   map[string]any{"name": "Classical"},
			}},
			"_embedded": map[string]any{
				"venues": []any{map[string]any{
					"name":  "Central Park",
					"city":  map[string]any{"name": "New York"},
					"state": map[string]any{"stateCode": "NY"},
				}},
			},
		},
		{
			"id":    "evt-3",
			"name":  "Rodeo Nights",
			"dates": map[string]any{"start": map[string]any{}},
			"images": []any{
				map[string]any{"url": "https://img.example.com/evt-3.jpg", "ratio": "4_3", "width": 320},
			},
			"priceRanges": []any{map[string]any{"min": 20.0, "max": 80.0}},
			"_embedded": map[string]any{
				"venues": []any{map[string]any{
					"name":  "NRG Stadium",
					"city":  map[string]any{"name": "Houston"},
					"state": map[string]any{"stateCode": "TX"},
				}},
			},
		},
	}
}
