package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/terraincognita07/daybook/internal/config"
)

var (
	ErrUnsupportedType = errors.New("unsupported media type")
	ErrInvalidFolder   = errors.New("invalid media folder")
)

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
}

type Store interface {
	Put(ctx context.Context, folder string, filename string, body io.Reader) (string, error)
}

// ObjectName builds "<folder>/<uuid><ext>" from an uploaded file name. Only
// image and video extensions are accepted.
func ObjectName(folder string, filename string) (string, string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" || strings.Contains(folder, "..") || strings.ContainsAny(folder, `/\`) {
		return "", "", ErrInvalidFolder
	}
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return path.Join(folder, uuid.NewString()+ext), contentType, nil
}

// Open returns the store selected by the media backend setting.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.MediaBackend {
	case config.MediaBackendGCS:
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
	default:
		return NewLocalStore(cfg.MediaDir, LocalURLPrefix)
	}
}
