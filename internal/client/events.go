// ABOUTME: Event and venue browsing endpoints
// ABOUTME: Models the paged event search payload and picks images, prices and venues for display

package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultEventPageSize is the page size used by the event browser
const DefaultEventPageSize = 20

// EventSearch holds the query parameters of GET /events
type EventSearch struct {
	Keyword   string
	City      string
	StateCode string
	Size      int
	Page      int
}

func (s EventSearch) query() url.Values {
	q := url.Values{}
	if s.Keyword != "" {
		q.Set("keyword", s.Keyword)
	}
	if s.City != "" {
		q.Set("city", s.City)
	}
	if s.StateCode != "" {
		q.Set("stateCode", s.StateCode)
	}
	size := s.Size
	if size <= 0 {
		size = DefaultEventPageSize
	}
	q.Set("size", strconv.Itoa(size))
	if s.Page > 0 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	return q
}

// Image is one event image rendition
type Image struct {
	URL    string `json:"url"`
	Ratio  string `json:"ratio,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// PriceRange is a min/max ticket price
type PriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency,omitempty"`
}

// NamedRef is a nested {"name": ...} object
type NamedRef struct {
	Name string `json:"name"`
}

// Classification is the segment/genre tagging of an event
type Classification struct {
	Segment *NamedRef `json:"segment,omitempty"`
	Genre   *NamedRef `json:"genre,omitempty"`
}

// Venue is where an event takes place
type Venue struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       *struct {
		Name string `json:"name"`
	} `json:"city,omitempty"`
	State *struct {
		Name      string `json:"name,omitempty"`
		StateCode string `json:"stateCode"`
	} `json:"state,omitempty"`
	Country *NamedRef `json:"country,omitempty"`
	Address *struct {
		Line1 string `json:"line1"`
	} `json:"address,omitempty"`
}

// Location returns "City, ST" with whichever parts are known
func (v *Venue) Location() string {
	loc := ""
	if v.City != nil && v.City.Name != "" {
		loc = v.City.Name
	}
	if v.State != nil && v.State.StateCode != "" {
		if loc != "" {
			loc += ", "
		}
		loc += v.State.StateCode
	}
	return loc
}

// EventDates holds the start date/time and sale status
type EventDates struct {
	Start struct {
		LocalDate string `json:"localDate,omitempty"`
		LocalTime string `json:"localTime,omitempty"`
	} `json:"start"`
	Status *struct {
		Code string `json:"code"`
	} `json:"status,omitempty"`
}

// Event is a single event
type Event struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	URL             string           `json:"url,omitempty"`
	Info            string           `json:"info,omitempty"`
	PleaseNote      string           `json:"pleaseNote,omitempty"`
	Images          []Image          `json:"images,omitempty"`
	PriceRanges     []PriceRange     `json:"priceRanges,omitempty"`
	Classifications []Classification `json:"classifications,omitempty"`
	Dates           EventDates       `json:"dates"`
	Seatmap         *struct {
		StaticURL string `json:"staticUrl"`
	} `json:"seatmap,omitempty"`
	AgeRestrictions *struct {
		LegalAgeEnforced bool `json:"legalAgeEnforced"`
	} `json:"ageRestrictions,omitempty"`
	Embedded *struct {
		Venues      []Venue    `json:"venues,omitempty"`
		Attractions []NamedRef `json:"attractions,omitempty"`
	} `json:"_embedded,omitempty"`
}

// PrimaryVenue returns the first venue or nil
func (e *Event) PrimaryVenue() *Venue {
	if e.Embedded == nil || len(e.Embedded.Venues) == 0 {
		return nil
	}
	return &e.Embedded.Venues[0]
}

// Attractions returns the names of the performers or teams
func (e *Event) Attractions() []string {
	if e.Embedded == nil {
		return nil
	}
	names := make([]string, 0, len(e.Embedded.Attractions))
	for _, a := range e.Embedded.Attractions {
		names = append(names, a.Name)
	}
	return names
}

// Price returns the first price range with USD as the default currency
func (e *Event) Price() *PriceRange {
	if len(e.PriceRanges) == 0 {
		return nil
	}
	p := e.PriceRanges[0]
	if p.Currency == "" {
		p.Currency = "USD"
	}
	return &p
}

// BestImage picks a 16:9 image at least minWidth wide, then a 4:3 one,
// then the first image. Returns "" when the event has no images.
func (e *Event) BestImage(minWidth int) string {
	if len(e.Images) == 0 {
		return ""
	}
	for _, ratio := range []string{"16_9", "4_3"} {
		for _, img := range e.Images {
			if img.Ratio == ratio && img.Width >= minWidth {
				return img.URL
			}
		}
	}
	return e.Images[0].URL
}

// SeatmapURL returns the static seat map URL, or ""
func (e *Event) SeatmapURL() string {
	if e.Seatmap == nil {
		return ""
	}
	return e.Seatmap.StaticURL
}

// Segment returns the primary classification segment and genre names
func (e *Event) Segment() (segment, genre string) {
	if len(e.Classifications) == 0 {
		return "", ""
	}
	c := e.Classifications[0]
	if c.Segment != nil {
		segment = c.Segment.Name
	}
	if c.Genre != nil {
		genre = c.Genre.Name
	}
	return segment, genre
}

// StatusCode returns the sale status code, or ""
func (e *Event) StatusCode() string {
	if e.Dates.Status == nil {
		return ""
	}
	return e.Dates.Status.Code
}

// PageInfo is the paging block of a search response
type PageInfo struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

// EventPage is the body of GET /events
type EventPage struct {
	Embedded *struct {
		Events []Event `json:"events"`
	} `json:"_embedded,omitempty"`
	Page *PageInfo `json:"page,omitempty"`
}

// Events returns the events in the page, never nil
func (p *EventPage) Events() []Event {
	if p.Embedded == nil || p.Embedded.Events == nil {
		return []Event{}
	}
	return p.Embedded.Events
}

// PageNumber returns the zero-based page number and total pages
func (p *EventPage) PageNumber() (number, total int) {
	if p.Page == nil {
		return 0, 0
	}
	return p.Page.Number, p.Page.TotalPages
}

// SearchEvents calls GET /events
func (c *Client) SearchEvents(ctx context.Context, search EventSearch) (*EventPage, error) {
	var page EventPage
	if err := c.doJSON(ctx, http.MethodGet, "/events?"+search.query().Encode(), nil, &page, "Failed to load events"); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetEvent calls GET /events/{id}
func (c *Client) GetEvent(ctx context.Context, id string) (*Event, error) {
	var event Event
	if err := c.doJSON(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, &event, "Failed to load event details"); err != nil {
		return nil, err
	}
	return &event, nil
}
