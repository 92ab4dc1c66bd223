package workout

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore writes each key to its own JSON file under a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("session directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create session directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (store *FileStore) Load(key string) ([]byte, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	data, err := os.ReadFile(store.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", key, err)
	}
	return data, nil
}

// Save replaces the file atomically through a temp file and rename.
func (store *FileStore) Save(key string, value []byte) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	target := store.path(key)
	temp, err := os.CreateTemp(store.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tempName := temp.Name()
	if _, err := temp.Write(value); err != nil {
		temp.Close()
		os.Remove(tempName)
		return fmt.Errorf("write session %s: %w", key, err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("close session %s: %w", key, err)
	}
	if err := os.Rename(tempName, target); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("store session %s: %w", key, err)
	}
	return nil
}

func (store *FileStore) Delete(key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	err := os.Remove(store.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete session %s: %w", key, err)
	}
	return nil
}

func (store *FileStore) path(key string) string {
	name := strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(key)
	return filepath.Join(store.dir, name+".json")
}
