// ABOUTME: Tests for recent event searches
// ABOUTME: Validates storage, max limit, deduplication and file permissions

package recent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmpty(t *testing.T) {
	rs := New(t.TempDir())

	searches, err := rs.Load()
	require.NoError(t, err)
	assert.Empty(t, searches)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	rs := New(dir)

	in := []Search{{Keyword: "jazz"}, {City: "Austin", StateCode: "TX"}}
	require.NoError(t, rs.Save(in))

	loaded, err := New(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, in, loaded)

	info, err := os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestAddMovesToFront(t *testing.T) {
	rs := New(t.TempDir())

	require.NoError(t, rs.Add(Search{Keyword: "jazz"}))
	require.NoError(t, rs.Add(Search{Keyword: "rock"}))
	require.NoError(t, rs.Add(Search{Keyword: "JAZZ "}))

	got := rs.List()
	require.Len(t, got, 2)
	assert.Equal(t, "JAZZ", got[0].Keyword)
	assert.Equal(t, "rock", got[1].Keyword)
}

func TestAddIgnoresEmpty(t *testing.T) {
	rs := New(t.TempDir())

	require.NoError(t, rs.Add(Search{Keyword: "  "}))
	assert.Empty(t, rs.List())
}

func TestMaxSearches(t *testing.T) {
	rs := New(t.TempDir())

	for _, kw := range []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7"} {
		require.NoError(t, rs.Add(Search{Keyword: kw}))
	}

	got := rs.List()
	require.Len(t, got, MaxSearches)
	assert.Equal(t, "a7", got[0].Keyword)
	assert.Equal(t, "a3", got[MaxSearches-1].Keyword)
}

func TestInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("not json"), 0o600))

	searches, err := New(dir).Load()
	require.NoError(t, err)
	assert.Empty(t, searches)
}

func TestMemoryOnly(t *testing.T) {
	rs := New("")

	require.NoError(t, rs.Add(Search{City: "Denver", StateCode: "co"}))
	got := rs.List()
	require.Len(t, got, 1)
	assert.Equal(t, "CO", got[0].StateCode)
}

func TestLabel(t *testing.T) {
	tests := []struct {
		search Search
		want   string
	}{
		{Search{}, "All events"},
		{Search{Keyword: "jazz"}, `"jazz"`},
		{Search{City: "Chicago", StateCode: "IL"}, "in Chicago, IL"},
		{Search{Keyword: "jazz", StateCode: "IL"}, `"jazz" in IL`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.search.Label())
		})
	}
}
