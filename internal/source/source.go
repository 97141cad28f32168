package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/gifocr/internal/config"
	"github.com/ivlev/gifocr/internal/models"
)

// ErrDecode reports an input that is missing, unreadable or not decodable.
var ErrDecode = errors.New("decode error")

// Source yields frames once, in display order. Next returns io.EOF after the
// last frame.
type Source interface {
	Next(ctx context.Context) (models.Frame, error)
	Close() error
}

var stillExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".webp": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// Open picks a frame source for path by its extension.
func Open(path string, cfg *config.Config) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, decodeErr(path, err)
	}
	if fi.IsDir() {
		return NewImageSource(path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".gif":
		return NewGIFSource(path)
	case ext == ".pdf":
		return NewPDFSource(path, cfg.DPI)
	case stillExts[ext]:
		return NewImageSource(path)
	default:
		return NewFFmpegSource(path)
	}
}

func decodeErr(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
}
