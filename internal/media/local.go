package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const LocalURLPrefix = "/media"

// LocalStore writes uploads under a directory the HTTP server exposes at
// urlPrefix.
type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir string, urlPrefix string) (*LocalStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("media directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create media directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (store *LocalStore) Dir() string {
	return store.dir
}

func (store *LocalStore) Put(ctx context.Context, folder string, filename string, body io.Reader) (string, error) {
	name, _, err := ObjectName(folder, filename)
	if err != nil {
		return "", err
	}
	target := filepath.Join(store.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", fmt.Errorf("create media folder: %w", err)
	}

	file, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		os.Remove(target)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("close media file: %w", err)
	}
	return store.urlPrefix + "/" + name, nil
}
