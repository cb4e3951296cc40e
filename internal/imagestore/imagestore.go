package imagestore

import (
	"context"

	"github.com/vbonduro/genstudio/internal/domain"
)

// ImageStore keeps generated images so the shell can point the user at them.
type ImageStore interface {
	// Save writes img under a fresh key starting with prefix.
	Save(ctx context.Context, prefix string, img *domain.Image) (storageKey string, err error)
	// Path returns where storageKey lives on disk, for display.
	Path(storageKey string) (string, error)
}
