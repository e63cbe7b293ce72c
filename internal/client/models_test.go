// ABOUTME: Tests for the display helpers on users, events and tokens
// ABOUTME: Pure functions, no network

package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserID_Unmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  UserID
	}{
		{`{"id":42}`, "42"},
		{`{"id":"a1b2"}`, "a1b2"},
		{`{"id":null}`, ""},
	}
	for _, tc := range tests {
		var u User
		require.NoError(t, json.Unmarshal([]byte(tc.input), &u), tc.input)
		assert.Equal(t, tc.want, u.ID)
	}

	var u User
	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &u))
}

func TestUser_Names(t *testing.T) {
	full := User{Username: "ada", FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", full.DisplayName())
	assert.Equal(t, "Ada", full.GreetingName())
	assert.Equal(t, "AL", full.Initials())

	bare := User{Username: "grace"}
	assert.Equal(t, "grace", bare.DisplayName())
	assert.Equal(t, "grace", bare.GreetingName())
	assert.Equal(t, "G", bare.Initials())

	assert.Equal(t, "U", (&User{}).Initials())
}

func TestUser_Matches(t *testing.T) {
	u := User{Username: "ada", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}
	assert.True(t, u.Matches(""))
	assert.True(t, u.Matches("LOVE"))
	assert.True(t, u.Matches("example"))
	assert.False(t, u.Matches("grace"))
}

func TestVerificationRate(t *testing.T) {
	assert.Equal(t, 0, UserStats{}.VerificationRate())
	assert.Equal(t, 67, UserStats{Active: 3, Verified: 2}.VerificationRate())
	assert.Equal(t, 100, UserStats{Active: 4, Verified: 4}.VerificationRate())
}

func TestEvent_BestImage(t *testing.T) {
	tests := []struct {
		name   string
		images []Image
		want   string
	}{
		{"none", nil, ""},
		{"wide 16:9 wins", []Image{{URL: "a", Ratio: "4_3", Width: 640}, {URL: "b", Ratio: "16_9", Width: 640}}, "b"},
		{"small 16:9 skipped", []Image{{URL: "a", Ratio: "16_9", Width: 100}, {URL: "b", Ratio: "4_3", Width: 300}}, "b"},
		{"fallback to first", []Image{{URL: "a", Ratio: "3_2", Width: 100}, {URL: "b", Ratio: "1_1", Width: 900}}, "a"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := Event{Images: tc.images}
			assert.Equal(t, tc.want, e.BestImage(300))
		})
	}
}

func TestEvent_Price(t *testing.T) {
	assert.Nil(t, (&Event{}).Price())

	e := Event{PriceRanges: []PriceRange{{Min: 20, Max: 80}}}
	assert.Equal(t, "USD", e.Price().Currency)
	assert.Empty(t, e.PriceRanges[0].Currency, "source is not mutated")
}

func TestEvent_Decode(t *testing.T) {
	raw := `{
		"id": "evt-9",
		"name": "Jazz Night",
		"dates": {"start": {"localDate": "2026-11-14"}, "status": {"code": "onsale"}},
		"classifications": [{"segment": {"name": "Music"}, "genre": {"name": "Jazz"}}],
		"_embedded": {"venues": [{"name": "Blue Note", "city": {"name": "New York"}}]}
	}`
	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	segment, genre := e.Segment()
	assert.Equal(t, "Music", segment)
	assert.Equal(t, "Jazz", genre)
	assert.Equal(t, "onsale", e.StatusCode())
	assert.Equal(t, "New York", e.PrimaryVenue().Location())
	assert.Empty(t, e.SeatmapURL())
	assert.Empty(t, e.Attractions())
}

func TestEventSearch_Query(t *testing.T) {
	assert.Equal(t, "size=20", EventSearch{}.query().Encode())
	assert.Equal(t, "city=Austin&keyword=jazz&page=2&size=5&stateCode=TX",
		EventSearch{Keyword: "jazz", City: "Austin", StateCode: "TX", Size: 5, Page: 2}.query().Encode())
}

func TestSecurityEvent_Label(t *testing.T) {
	assert.Equal(t, "Failed Login", SecurityEvent{Type: "login_failure"}.Label())
	assert.Equal(t, "mfa enabled", SecurityEvent{Type: "mfa_enabled"}.Label())
}

func TestInspectToken(t *testing.T) {
	issued := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(15 * time.Minute)),
	}).SignedString([]byte("any-key"))
	require.NoError(t, err)

	info, err := InspectToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "7", info.Subject)
	assert.Equal(t, 5*time.Minute, info.ExpiresIn(issued.Add(10*time.Minute)))
	assert.Zero(t, info.ExpiresIn(issued.Add(time.Hour)))

	_, err = InspectToken("opaque-token")
	assert.Error(t, err)
	_, err = InspectToken("")
	assert.Error(t, err)
}
