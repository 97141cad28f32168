package source

import (
	"context"
	"io"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/gifocr/internal/models"
)

// PDFSource rasterizes each page of a PDF as one frame.
type PDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
	next int
}

func NewPDFSource(path string, dpi int) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, decodeErr(path, err)
	}
	return &PDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (s *PDFSource) Len() int {
	return s.doc.NumPage()
}

func (s *PDFSource) Next(ctx context.Context) (models.Frame, error) {
	if err := ctx.Err(); err != nil {
		return models.Frame{}, err
	}
	if s.next >= s.doc.NumPage() {
		return models.Frame{}, io.EOF
	}

	i := s.next
	s.next++

	img, err := s.doc.ImageDPI(i, float64(s.dpi))
	if err != nil {
		return models.Frame{}, decodeErr(s.path, err)
	}
	return models.Frame{Index: i, Image: img}, nil
}

func (s *PDFSource) Close() error {
	return s.doc.Close()
}
