package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/vbonduro/genstudio/internal/domain"
)

// ErrPathTraversal is returned for storage keys that escape the base directory.
var ErrPathTraversal = errors.New("path traversal attempt")

const defaultExt = ".png"

type LocalImageStore struct {
	basePath string
}

func NewLocalImageStore(basePath string) (*LocalImageStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &LocalImageStore{basePath: basePath}, nil
}

// Save writes the image to a temporary file and renames it into place, so a
// visible <prefix>_<unixnano><ext> file is always complete.
func (s *LocalImageStore) Save(ctx context.Context, prefix string, img *domain.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if img == nil || len(img.Data) == 0 {
		return "", errors.New("no image data to save")
	}

	key := fmt.Sprintf("%s_%d%s", prefix, time.Now().UnixNano(), extension(img))
	dest := filepath.Join(s.basePath, key)

	tmp, err := os.CreateTemp(s.basePath, ".tmp-"+prefix+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	discard := func() {
		if rerr := os.Remove(tmp.Name()); rerr != nil && !os.IsNotExist(rerr) {
			slog.Error("failed to remove temp image", "path", tmp.Name(), "error", rerr)
		}
	}

	if _, err := tmp.Write(img.Data); err != nil {
		_ = tmp.Close()
		discard()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		discard()
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		discard()
		return "", fmt.Errorf("failed to move image into place: %w", err)
	}
	return key, nil
}

func (s *LocalImageStore) Path(storageKey string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, storageKey))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return absPath, nil
}

// extension prefers the declared MIME type and falls back to sniffing the
// bytes; Imagen sometimes omits the type.
func extension(img *domain.Image) string {
	if img.MimeType != "" {
		if m := mimetype.Lookup(img.MimeType); m != nil && m.Extension() != "" {
			return m.Extension()
		}
	}
	if m := mimetype.Detect(img.Data); m.Is("image/png") || m.Is("image/jpeg") || m.Is("image/webp") || m.Is("image/gif") {
		return m.Extension()
	}
	return defaultExt
}
