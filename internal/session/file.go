package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type fileRecord struct {
	Key     string    `json:"key"`
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// FileBackend stores the token as a small JSON document on disk.
type FileBackend struct {
	path string
}

// NewFileBackend creates the parent directory of path if needed.
func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("session file: mkdir %s: %w", filepath.Dir(path), err)
	}
	return &FileBackend{path: path}, nil
}

func (f *FileBackend) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("session file: read: %w", err)
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("session file: decode: %w", err)
	}
	if rec.Key != TokenKey {
		return "", ErrNoToken
	}
	return rec.Token, nil
}

func (f *FileBackend) Save(token string) error {
	data, err := json.MarshalIndent(fileRecord{Key: TokenKey, Token: token, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("session file: encode: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("session file: write: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("session file: rename: %w", err)
	}
	return nil
}

func (f *FileBackend) Delete() error {
	if err := os.Remove(f.path); err != nil {
		if os.IsNotExist(err) {
			return ErrNoToken
		}
		return fmt.Errorf("session file: remove: %w", err)
	}
	return nil
}
