// ABOUTME: Durable key/value storage backends for the token store
// ABOUTME: Persists entries as JSON in the XDG config directory, or in memory

package tokenstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// CredentialsFile is the file name used by FileStorage inside its directory
const CredentialsFile = "credentials.json"

// Storage is the durable side of the token store.
// Get reports false when the key is absent or storage is unreadable.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// FileStorage keeps entries in a single JSON file with owner-only permissions
type FileStorage struct {
	dir string
	mu  sync.Mutex
}

// NewFileStorage creates a FileStorage rooted at dir
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

// Path returns the location of the credentials file
func (fs *FileStorage) Path() string {
	return filepath.Join(fs.dir, CredentialsFile)
}

func (fs *FileStorage) load() (map[string]string, error) {
	if fs.dir == "" {
		return map[string]string{}, nil
	}
	data, err := os.ReadFile(fs.Path())
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		// Corrupt file, start fresh
		return map[string]string{}, nil
	}
	return entries, nil
}

func (fs *FileStorage) save(entries map[string]string) error {
	if fs.dir == "" {
		return errors.New("no config directory available")
	}
	if err := os.MkdirAll(fs.dir, 0700); err != nil {
		return err
	}

	if len(entries) == 0 {
		err := os.Remove(fs.Path())
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	// Write-then-rename so a crash never leaves a half-written file
	tmp := fs.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, fs.Path())
}

// Get reads a single entry from disk
func (fs *FileStorage) Get(key string) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.load()
	if err != nil {
		return "", false
	}
	v, ok := entries[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Set writes a single entry, keeping any others in the file
func (fs *FileStorage) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return fs.save(entries)
}

// Delete removes an entry. Deleting a missing entry is not an error.
func (fs *FileStorage) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return fs.save(entries)
}

// MemoryStorage is a Storage that lives only as long as the process
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: map[string]string{}}
}

func (ms *MemoryStorage) Get(key string) (string, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	v, ok := ms.entries[key]
	return v, ok
}

func (ms *MemoryStorage) Set(key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.entries[key] = value
	return nil
}

func (ms *MemoryStorage) Delete(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.entries, key)
	return nil
}
