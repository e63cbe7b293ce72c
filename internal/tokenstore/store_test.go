// ABOUTME: Tests for the token store and its storage backends
// ABOUTME: Covers persistence, idempotent clear, and degraded memory-only mode

package tokenstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type failingStorage struct {
	sets    int
	deletes int
}

func (f *failingStorage) Get(string) (string, bool) { return "", false }

func (f *failingStorage) Set(string, string) error {
	f.sets++
	return errors.New("disk full")
}

func (f *failingStorage) Delete(string) error {
	f.deletes++
	return errors.New("read-only filesystem")
}

func TestNewLoadsPersistedRefreshToken(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(RefreshTokenKey, "R0")

	s := New(storage)

	if got := s.RefreshToken(); got != "R0" {
		t.Errorf("expected refresh token R0, got %q", got)
	}
	if got := s.AccessToken(); got != "" {
		t.Errorf("expected no access token at start, got %q", got)
	}
}

func TestSetCredentialsPersistsRefreshOnly(t *testing.T) {
	dir := t.TempDir()
	storage := NewFileStorage(dir)
	s := New(storage)

	s.SetCredentials("A1", "R1")

	data, err := os.ReadFile(filepath.Join(dir, CredentialsFile))
	if err != nil {
		t.Fatalf("expected credentials file: %v", err)
	}
	if !strings.Contains(string(data), "R1") {
		t.Errorf("expected refresh token on disk, got %s", data)
	}
	if strings.Contains(string(data), "A1") {
		t.Error("access token must never be written to disk")
	}

	info, err := os.Stat(filepath.Join(dir, CredentialsFile))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 permissions, got %o", info.Mode().Perm())
	}

	// A fresh store over the same directory sees the refresh token only
	reloaded := New(NewFileStorage(dir))
	if reloaded.RefreshToken() != "R1" {
		t.Errorf("expected R1 after reload, got %q", reloaded.RefreshToken())
	}
	if reloaded.AccessToken() != "" {
		t.Errorf("expected empty access token after reload, got %q", reloaded.AccessToken())
	}
}

func TestSetCredentialsWithoutRefreshKeepsExisting(t *testing.T) {
	s := New(NewMemoryStorage())
	s.SetCredentials("A1", "R1")
	s.SetCredentials("A2", "")

	access, refresh := s.Credentials()
	if access != "A2" || refresh != "R1" {
		t.Errorf("expected A2/R1, got %s/%s", access, refresh)
	}
}

func TestClearCredentialsIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	storage := NewFileStorage(dir)
	s := New(storage)
	s.SetCredentials("A1", "R1")

	s.ClearCredentials()
	access1, refresh1 := s.Credentials()
	_, onDisk1 := storage.Get(RefreshTokenKey)

	s.ClearCredentials()
	access2, refresh2 := s.Credentials()
	_, onDisk2 := storage.Get(RefreshTokenKey)

	if access1 != access2 || refresh1 != refresh2 || onDisk1 != onDisk2 {
		t.Error("second clear changed the store state")
	}
	if access2 != "" || refresh2 != "" || onDisk2 {
		t.Errorf("expected fully cleared store, got %q/%q onDisk=%v", access2, refresh2, onDisk2)
	}
	if _, err := os.Stat(filepath.Join(dir, CredentialsFile)); !os.IsNotExist(err) {
		t.Error("expected credentials file to be removed once empty")
	}
}

func TestStorageFailureDegradesToMemory(t *testing.T) {
	storage := &failingStorage{}
	s := New(storage)

	s.SetCredentials("A1", "R1")
	if !(s.AccessToken() == "A1" && s.RefreshToken() == "R1") {
		t.Fatal("expected tokens to be kept in memory when storage fails")
	}
	if s.Durable() {
		t.Error("expected store to drop to memory-only mode")
	}

	s.SetCredentials("A2", "R2")
	s.ClearCredentials()
	if storage.sets != 1 {
		t.Errorf("expected storage to be abandoned after first failure, got %d writes", storage.sets)
	}
	if storage.deletes != 1 {
		t.Errorf("expected clear to still try the durable delete, got %d deletes", storage.deletes)
	}
}

// readOnlyStorage keeps what it was seeded with and rejects writes
type readOnlyStorage struct {
	*MemoryStorage
}

func (r readOnlyStorage) Set(string, string) error {
	return errors.New("disk full")
}

func TestClearAfterFailedWriteRemovesPersistedToken(t *testing.T) {
	storage := readOnlyStorage{NewMemoryStorage()}
	storage.MemoryStorage.Set(RefreshTokenKey, "R0")

	s := New(storage)
	s.SetCredentials("A1", "R1")
	if s.Durable() {
		t.Fatal("expected store to drop to memory-only mode")
	}
	s.ClearCredentials()

	if v, ok := storage.Get(RefreshTokenKey); ok {
		t.Errorf("expected stale durable entry to be deleted, found %q", v)
	}
	if got := New(storage).RefreshToken(); got != "" {
		t.Errorf("expected a restarted store to find no session, got %q", got)
	}
}

func TestNilStorageIsMemoryOnly(t *testing.T) {
	s := New(nil)
	s.SetCredentials("A1", "R1")
	s.ClearCredentials()
	if s.Durable() {
		t.Error("expected nil storage store to report non-durable")
	}
}

func TestFileStorageCorruptFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, CredentialsFile), []byte("{not json"), 0600)

	storage := NewFileStorage(dir)
	if _, ok := storage.Get(RefreshTokenKey); ok {
		t.Error("expected corrupt file to read as empty")
	}
	if err := storage.Set(RefreshTokenKey, "R9"); err != nil {
		t.Fatalf("Set over corrupt file: %v", err)
	}
	if v, _ := storage.Get(RefreshTokenKey); v != "R9" {
		t.Errorf("expected R9, got %q", v)
	}
}

func TestFileStorageNoDirectory(t *testing.T) {
	storage := NewFileStorage("")
	if err := storage.Set(RefreshTokenKey, "R1"); err == nil {
		t.Error("expected error without a config directory")
	}
}
