package recognizer

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/gifocr/internal/models"
)

// EncodeFrames compresses every frame to JPEG using up to workers goroutines.
// The result is index-aligned with frames.
func EncodeFrames(ctx context.Context, frames []models.Frame, quality, workers int) ([][]byte, error) {
	if workers < 1 {
		workers = 1
	}
	payloads := make([][]byte, len(frames))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, frame := range frames {
		i, frame := i, frame
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, frame.Image, &jpeg.Options{Quality: quality}); err != nil {
				return fmt.Errorf("encode frame %d: %w", frame.Index, err)
			}
			payloads[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return payloads, nil
}
