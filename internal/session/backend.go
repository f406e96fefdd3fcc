package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName   = "shopdesk"
	sessionFileName = "session.json"
)

// Backend persists the session triple. Load returns (nil, nil) when no
// record exists.
type Backend interface {
	Load() (*State, error)
	Save(state *State) error
	Clear() error
}

// FileBackend stores the session as a JSON file, by default under
// ~/.config/shopdesk/session.json
type FileBackend struct {
	Path string
}

// DefaultSessionPath returns the path to the session file
func DefaultSessionPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDirName, sessionFileName), nil
}

// NewFileBackend creates a file backend at the given path, or at the
// default session path when path is empty
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		defaultPath, err := DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	return &FileBackend{Path: path}, nil
}

// Load reads the persisted session record
func (f *FileBackend) Load() (*State, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	return &state, nil
}

// Save writes the session record, creating the directory if needed
func (f *FileBackend) Save(state *State) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(f.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Clear removes the session record. A missing file is not an error.
func (f *FileBackend) Clear() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
