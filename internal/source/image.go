package source

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/gifocr/internal/models"
)

// ImageSource treats a still image, or every still image in a directory
// sorted by name, as a sequence of frames.
type ImageSource struct {
	paths []string
	next  int
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, decodeErr(path, err)
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, decodeErr(path, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && stillExts[strings.ToLower(filepath.Ext(entry.Name()))] {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	return &ImageSource{paths: paths}, nil
}

func (s *ImageSource) Len() int {
	return len(s.paths)
}

func (s *ImageSource) Next(ctx context.Context) (models.Frame, error) {
	if err := ctx.Err(); err != nil {
		return models.Frame{}, err
	}
	if s.next >= len(s.paths) {
		return models.Frame{}, io.EOF
	}

	i := s.next
	s.next++

	f, err := os.Open(s.paths[i])
	if err != nil {
		return models.Frame{}, decodeErr(s.paths[i], err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return models.Frame{}, decodeErr(s.paths[i], err)
	}
	return models.Frame{Index: i, Image: img}, nil
}

func (s *ImageSource) Close() error {
	return nil
}
