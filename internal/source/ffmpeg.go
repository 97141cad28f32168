package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"os/exec"

	"github.com/ivlev/gifocr/internal/models"
)

// FFmpegSource reads any container ffmpeg understands by piping its frames
// out as a stream of PNG images.
type FFmpegSource struct {
	path   string
	cmd    *exec.Cmd
	stdout io.ReadCloser
	r      *bufio.Reader
	stderr bytes.Buffer
	next   int
	done   bool
}

func NewFFmpegSource(path string) (*FFmpegSource, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, decodeErr(path, fmt.Errorf("ffmpeg is required for this container: %w", err))
	}

	s := &FFmpegSource{path: path}
	s.cmd = exec.Command("ffmpeg",
		"-v", "error",
		"-i", path,
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	s.cmd.Stderr = &s.stderr

	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := s.cmd.Start(); err != nil {
		return nil, decodeErr(path, fmt.Errorf("ffmpeg start error: %w", err))
	}

	s.stdout = stdout
	s.r = bufio.NewReaderSize(stdout, 1<<20)
	return s, nil
}

func (s *FFmpegSource) Next(ctx context.Context) (models.Frame, error) {
	if err := ctx.Err(); err != nil {
		return models.Frame{}, err
	}
	if s.done {
		return models.Frame{}, io.EOF
	}

	if _, err := s.r.Peek(1); err == io.EOF {
		s.done = true
		if err := s.cmd.Wait(); err != nil {
			return models.Frame{}, decodeErr(s.path, fmt.Errorf("ffmpeg: %w: %s", err, s.stderr.String()))
		}
		return models.Frame{}, io.EOF
	}

	img, err := png.Decode(s.r)
	if err != nil {
		return models.Frame{}, decodeErr(s.path, fmt.Errorf("frame %d: %w", s.next, err))
	}

	i := s.next
	s.next++
	return models.Frame{Index: i, Image: img}, nil
}

func (s *FFmpegSource) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	s.stdout.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	return nil
}
