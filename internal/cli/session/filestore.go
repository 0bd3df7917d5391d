package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	sessionDirName  = "gros"
	sessionFileName = "session.json"
)

// FileStore persists the session as JSON under ~/.config/gros/session.json
// so it survives across CLI invocations. Every mutation is written to disk
// immediately; a crash between two Set calls leaves the file partially
// updated, which is accepted behavior.
type FileStore struct {
	path   string
	values map[string]string
}

// DefaultPath returns the path to the session file
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", sessionDirName, sessionFileName), nil
}

// NewFileStore loads the session file at path, creating an empty store if
// the file does not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	return s, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) {
	s.values[key] = value
	s.persist()
}

func (s *FileStore) Remove(key string) {
	delete(s.values, key)
	s.persist()
}

func (s *FileStore) Clear() {
	s.values = make(map[string]string)
	s.persist()
}

// persist writes the current values to disk. Write failures are swallowed:
// the in-memory view stays authoritative for this process and the next
// mutation retries the write.
func (s *FileStore) persist() {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return
	}

	_ = os.WriteFile(s.path, data, 0600)
}
