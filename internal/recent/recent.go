// ABOUTME: Remembers the most recent event searches between sessions
// ABOUTME: Stores them as JSON next to the token file in the config directory

package recent

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// MaxSearches is the maximum number of searches to keep
const MaxSearches = 5

// FileName is the name of the recent searches file inside the config dir
const FileName = "recent_searches.json"

// Search is one remembered event query
type Search struct {
	Keyword   string `json:"keyword,omitempty"`
	City      string `json:"city,omitempty"`
	StateCode string `json:"stateCode,omitempty"`
}

// Empty reports whether no criteria are set
func (s Search) Empty() bool {
	return s.Keyword == "" && s.City == "" && s.StateCode == ""
}

// Label renders the search as `"jazz" in Chicago, IL`
func (s Search) Label() string {
	var parts []string
	if s.Keyword != "" {
		parts = append(parts, `"`+s.Keyword+`"`)
	}
	loc := s.City
	if s.StateCode != "" {
		if loc != "" {
			loc += ", "
		}
		loc += s.StateCode
	}
	if loc != "" {
		parts = append(parts, "in "+loc)
	}
	if len(parts) == 0 {
		return "All events"
	}
	return strings.Join(parts, " ")
}

func (s Search) normalized() Search {
	return Search{
		Keyword:   strings.TrimSpace(s.Keyword),
		City:      strings.TrimSpace(s.City),
		StateCode: strings.ToUpper(strings.TrimSpace(s.StateCode)),
	}
}

func (s Search) same(o Search) bool {
	return strings.EqualFold(s.Keyword, o.Keyword) &&
		strings.EqualFold(s.City, o.City) &&
		strings.EqualFold(s.StateCode, o.StateCode)
}

// Searches manages the list of recent searches. A Searches with an empty
// directory keeps the list in memory only.
type Searches struct {
	configDir string
	searches  []Search
	loaded    bool
}

type recentData struct {
	Searches []Search `json:"searches"`
}

// New creates a new Searches manager for configDir
func New(configDir string) *Searches {
	return &Searches{configDir: configDir}
}

func (rs *Searches) configFile() string {
	return filepath.Join(rs.configDir, FileName)
}

// Load reads the list from disk. A missing or corrupt file yields an
// empty list.
func (rs *Searches) Load() ([]Search, error) {
	rs.loaded = true
	rs.searches = []Search{}
	if rs.configDir == "" {
		return rs.searches, nil
	}

	data, err := os.ReadFile(rs.configFile())
	if os.IsNotExist(err) {
		return rs.searches, nil
	}
	if err != nil {
		return nil, err
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil {
		// Invalid JSON, start fresh
		return rs.searches, nil
	}

	for _, s := range recent.Searches {
		if s = s.normalized(); !s.Empty() {
			rs.searches = append(rs.searches, s)
		}
	}
	if len(rs.searches) > MaxSearches {
		rs.searches = rs.searches[:MaxSearches]
	}
	return rs.searches, nil
}

// Save writes searches to disk, newest first
func (rs *Searches) Save(searches []Search) error {
	if len(searches) > MaxSearches {
		searches = searches[:MaxSearches]
	}
	rs.searches = searches
	rs.loaded = true

	if rs.configDir == "" {
		return nil
	}
	if err := os.MkdirAll(rs.configDir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(recentData{Searches: searches}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(rs.configFile(), data, 0o600)
}

// Add records s at the front of the list, moving an equal search up
// instead of duplicating it. Empty searches are not recorded.
func (rs *Searches) Add(s Search) error {
	s = s.normalized()
	if s.Empty() {
		return nil
	}
	if !rs.loaded {
		if _, err := rs.Load(); err != nil {
			rs.searches = []Search{}
		}
	}

	next := make([]Search, 0, len(rs.searches)+1)
	next = append(next, s)
	for _, existing := range rs.searches {
		if !existing.same(s) {
			next = append(next, existing)
		}
	}
	return rs.Save(next)
}

// List returns the current list, loading it on first use
func (rs *Searches) List() []Search {
	if !rs.loaded {
		if _, err := rs.Load(); err != nil {
			return nil
		}
	}
	return rs.searches
}
