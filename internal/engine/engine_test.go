package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/gifocr/internal/config"
	"github.com/ivlev/gifocr/internal/models"
	"github.com/ivlev/gifocr/internal/recognizer"
	"github.com/ivlev/gifocr/internal/source"
)

type sliceSource struct {
	frames []models.Frame
	err    error
	next   int
}

func (s *sliceSource) Next(ctx context.Context) (models.Frame, error) {
	if s.next >= len(s.frames) {
		if s.err != nil {
			return models.Frame{}, s.err
		}
		return models.Frame{}, io.EOF
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

func (s *sliceSource) Close() error { return nil }

type stubRecognizer struct {
	texts    []models.FrameText
	err      error
	calls    int
	payloads [][]byte
	lang     string
}

func (r *stubRecognizer) Recognize(ctx context.Context, payloads [][]byte, languageHint string) ([]models.FrameText, error) {
	r.calls++
	r.payloads = payloads
	r.lang = languageHint
	return r.texts, r.err
}

func (r *stubRecognizer) Close() error { return nil }

func blankFrames(n int) []models.Frame {
	frames := make([]models.Frame, n)
	for i := range frames {
		frames[i] = models.Frame{Index: i, Image: image.NewRGBA(image.Rect(0, 0, 720, 540))}
	}
	return frames
}

func newTestProject(src source.Source, rec recognizer.Recognizer) *Project {
	cfg := config.Default()
	cfg.Workers = 2
	cfg.ShowStats = true
	return NewProject(cfg, src, rec, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var exampleTexts = []models.FrameText{
	{FullText: "こんにちは", Fragments: []models.Fragment{{
		Text:    "こんにちは",
		Polygon: []models.Point{{X: 100, Y: 150}, {X: 650, Y: 200}, {X: 650, Y: 220}, {X: 100, Y: 220}},
	}}},
	{FullText: "Player1", Fragments: []models.Fragment{{
		Text:    "Player1",
		Polygon: []models.Point{{X: 30, Y: 470}, {X: 600, Y: 470}, {X: 600, Y: 490}, {X: 30, Y: 490}},
	}}},
}

const exampleJSON = `{
    "result": [
        {
            "subtitle": "こんにちは",
            "playerName": ""
        },
        {
            "subtitle": "",
            "playerName": "Player1"
        }
    ]
}
`

func TestRunTwoFrameExample(t *testing.T) {
	rec := &stubRecognizer{texts: exampleTexts}
	p := newTestProject(&sliceSource{frames: blankFrames(2)}, rec)

	var out bytes.Buffer
	require.NoError(t, p.Run(context.Background(), &out))

	assert.Equal(t, exampleJSON, out.String())
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "ja", rec.lang)
	require.Len(t, rec.payloads, 2)
	for _, payload := range rec.payloads {
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(payload))
		require.NoError(t, err)
		assert.Equal(t, 720, cfg.Width)
	}
}

func TestRunNoFrames(t *testing.T) {
	rec := &stubRecognizer{}
	p := newTestProject(&sliceSource{}, rec)

	var out bytes.Buffer
	require.NoError(t, p.Run(context.Background(), &out))

	assert.Equal(t, "{\n    \"result\": []\n}\n", out.String())
	assert.Zero(t, rec.calls)
}

func TestRunPropagatesDecodeError(t *testing.T) {
	rec := &stubRecognizer{}
	src := &sliceSource{frames: blankFrames(1), err: source.ErrDecode}
	p := newTestProject(src, rec)

	var out bytes.Buffer
	err := p.Run(context.Background(), &out)
	assert.True(t, errors.Is(err, source.ErrDecode))
	assert.Zero(t, rec.calls)
	assert.Empty(t, out.String())
}

func TestRunPropagatesRecognizerError(t *testing.T) {
	rec := &stubRecognizer{err: &recognizer.Error{Kind: recognizer.ErrQuota, Op: "test"}}
	p := newTestProject(&sliceSource{frames: blankFrames(3)}, rec)

	var out bytes.Buffer
	err := p.Run(context.Background(), &out)
	assert.True(t, errors.Is(err, recognizer.ErrQuota))
	assert.Empty(t, out.String())
}

func TestRunResultCountMismatch(t *testing.T) {
	rec := &stubRecognizer{texts: exampleTexts[:1]}
	p := newTestProject(&sliceSource{frames: blankFrames(2)}, rec)

	var out bytes.Buffer
	err := p.Run(context.Background(), &out)
	assert.True(t, errors.Is(err, recognizer.ErrService))
	assert.Empty(t, out.String())
}

func TestRunResultLengthMatchesFrames(t *testing.T) {
	for _, n := range []int{1, 5, 17} {
		texts := make([]models.FrameText, n)
		rec := &stubRecognizer{texts: texts}
		p := newTestProject(&sliceSource{frames: blankFrames(n)}, rec)

		var out bytes.Buffer
		require.NoError(t, p.Run(context.Background(), &out))

		var doc struct {
			Result []map[string]string `json:"result"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
		assert.Len(t, doc.Result, n)
	}
}

func TestRunWithGIFSource(t *testing.T) {
	palette := color.Palette{color.White, color.Black}
	g := &gif.GIF{
		Image: []*image.Paletted{
			image.NewPaletted(image.Rect(0, 0, 720, 540), palette),
			image.NewPaletted(image.Rect(0, 0, 720, 540), palette),
		},
		Delay: []int{10, 10},
	}
	path := filepath.Join(t.TempDir(), "clip.gif")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, gif.EncodeAll(f, g))
	require.NoError(t, f.Close())

	src, err := source.Open(path, config.Default())
	require.NoError(t, err)
	defer src.Close()

	rec := &stubRecognizer{texts: exampleTexts}
	p := newTestProject(src, rec)
	p.Config.InputPath = path

	var out bytes.Buffer
	require.NoError(t, p.Run(context.Background(), &out))
	assert.Equal(t, exampleJSON, out.String())
	assert.Len(t, rec.payloads, 2)
}
