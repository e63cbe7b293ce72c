// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

// NerdFontsEnv forces Nerd Font icons on ("1", "true") or off
const NerdFontsEnv = "FANZONES_NERD_FONTS"

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

var nerdFontTerminals = []string{"iTerm.app", "alacritty", "WezTerm", "kitty", "ghostty"}

func detectNerdFonts() bool {
	if env := os.Getenv(NerdFontsEnv); env != "" {
		return env == "1" || strings.EqualFold(env, "true")
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")
	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}
	return os.Getenv("NERD_FONTS") == "1"
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	// Navigation
	Dashboard = Icon{"󰕮", "▦"} // nf-md-view_dashboard
	Users     = Icon{"󰡉", "☺"} // nf-md-account_group
	Events    = Icon{"󰃭", "◷"} // nf-md-calendar
	Profile   = Icon{"󰀄", "◉"} // nf-md-account
	Logout    = Icon{"󰗼", "×"} // nf-md-exit_to_app

	// Stats
	Total    = Icon{"󰡉", "Σ"}
	Active   = Icon{"󰄬", "●"}
	Verified = Icon{"󰗠", "✓"}

	// Status indicators
	CheckOK  = Icon{"", "✓"}
	Warning  = Icon{"", "⚠"}
	Critical = Icon{"", "✗"}
	Info     = Icon{"", "ℹ"}

	// Events
	Venue   = Icon{"󰍎", "⌖"} // nf-md-map_marker
	Ticket  = Icon{"󰄯", "▭"}
	Seatmap = Icon{"󰆧", "▤"}
	Search  = Icon{"󰍉", "⌕"}

	// Actions
	Refresh = Icon{"󰑓", "↻"}
	Add     = Icon{"󰐕", "+"}
	Edit    = Icon{"󰏫", "✎"}
	Delete  = Icon{"󰆴", "⌫"}
	Back    = Icon{"󰁍", "←"}

	// Application
	App    = Icon{"󰄯", "◈"}
	Shield = Icon{"󰒃", "⛊"}
)
