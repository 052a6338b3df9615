package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"shopbot-backend/internal/assistant"
)

// FileStore persists conversations to a JSON file so one-shot CLI runs can
// follow up on each other.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Get(ctx context.Context, sessionID string) (assistant.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all, err := f.readLocked()
	if err != nil {
		return assistant.Conversation{}, err
	}
	return all[sessionID], nil
}

func (f *FileStore) Put(ctx context.Context, sessionID string, conv assistant.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	all, err := f.readLocked()
	if err != nil {
		return err
	}
	all[sessionID] = conv
	return f.writeLocked(all)
}

func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) readLocked() (map[string]assistant.Conversation, error) {
	all := make(map[string]assistant.Conversation)
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return all, nil
		}
		return nil, err
	}
	if len(b) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	return all, nil
}

func (f *FileStore) writeLocked(all map[string]assistant.Conversation) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
