package source

import (
	"context"
	"image"
	"image/gif"
	"io"
	"os"

	"golang.org/x/image/draw"

	"github.com/ivlev/gifocr/internal/models"
)

// GIFSource composites the frames of an animated GIF into full-size images,
// the way a video decoder would present them.
type GIFSource struct {
	g        *gif.GIF
	canvas   *image.RGBA
	previous *image.RGBA
	next     int
}

func NewGIFSource(path string) (*GIFSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, decodeErr(path, err)
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, decodeErr(path, err)
	}
	return newGIFSource(g), nil
}

func newGIFSource(g *gif.GIF) *GIFSource {
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		for _, frame := range g.Image {
			bounds = bounds.Union(frame.Bounds())
		}
	}
	return &GIFSource{
		g:      g,
		canvas: image.NewRGBA(bounds),
	}
}

// Len reports the number of frames in the animation.
func (s *GIFSource) Len() int {
	return len(s.g.Image)
}

func (s *GIFSource) Next(ctx context.Context) (models.Frame, error) {
	if err := ctx.Err(); err != nil {
		return models.Frame{}, err
	}
	if s.next >= len(s.g.Image) {
		return models.Frame{}, io.EOF
	}

	i := s.next
	s.next++

	src := s.g.Image[i]
	disposal := byte(0)
	if i < len(s.g.Disposal) {
		disposal = s.g.Disposal[i]
	}

	if disposal == gif.DisposalPrevious {
		s.previous = cloneRGBA(s.canvas)
	}

	draw.Draw(s.canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)
	out := cloneRGBA(s.canvas)

	switch disposal {
	case gif.DisposalBackground:
		draw.Draw(s.canvas, src.Bounds(), image.Transparent, image.Point{}, draw.Src)
	case gif.DisposalPrevious:
		if s.previous != nil {
			s.canvas = s.previous
			s.previous = nil
		}
	}

	return models.Frame{Index: i, Image: out}, nil
}

func (s *GIFSource) Close() error {
	s.g = &gif.GIF{}
	s.canvas, s.previous = nil, nil
	return nil
}

func cloneRGBA(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}
