package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ivlev/gifocr/internal/classifier"
	"github.com/ivlev/gifocr/internal/config"
	"github.com/ivlev/gifocr/internal/models"
	"github.com/ivlev/gifocr/internal/recognizer"
	"github.com/ivlev/gifocr/internal/report"
	"github.com/ivlev/gifocr/internal/source"
	"github.com/ivlev/gifocr/internal/system"
)

type Project struct {
	Config     *config.Config
	Source     source.Source
	Recognizer recognizer.Recognizer
	Logger     *slog.Logger
}

func NewProject(cfg *config.Config, src source.Source, rec recognizer.Recognizer, logger *slog.Logger) *Project {
	return &Project{
		Config:     cfg,
		Source:     src,
		Recognizer: rec,
		Logger:     logger,
	}
}

// Run reads every frame, recognizes all of them in one batch, classifies the
// text and writes the report to w. Nothing is written if any stage fails.
func (p *Project) Run(ctx context.Context, w io.Writer) error {
	startTime := time.Now()

	frames, err := p.readFrames(ctx)
	if err != nil {
		return err
	}
	decodeEnd := time.Now()
	p.Logger.Info("frames decoded", "input", p.Config.InputPath, "frames", len(frames))

	payloads, err := recognizer.EncodeFrames(ctx, frames, p.Config.JPEGQuality, p.Config.Workers)
	if err != nil {
		return fmt.Errorf("encode frames: %w", err)
	}
	encodeEnd := time.Now()

	texts, err := p.recognize(ctx, payloads)
	if err != nil {
		return err
	}
	recognizeEnd := time.Now()

	results := classifier.ClassifyAll(texts, p.Config.SubtitleZone, p.Config.PlayerZone)
	if err := report.Write(w, results, p.Config.Format); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if p.Config.ShowStats {
		p.logStats(len(frames), startTime, decodeEnd, encodeEnd, recognizeEnd)
	}
	return nil
}

func (p *Project) readFrames(ctx context.Context) ([]models.Frame, error) {
	var frames []models.Frame
	for {
		frame, err := p.Source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", len(frames), err)
		}
		frames = append(frames, frame)
	}
}

func (p *Project) recognize(ctx context.Context, payloads [][]byte) ([]models.FrameText, error) {
	if len(payloads) == 0 {
		p.Logger.Warn("source has no frames, skipping recognition")
		return nil, nil
	}

	texts, err := p.Recognizer.Recognize(ctx, payloads, p.Config.LanguageHint)
	if err != nil {
		return nil, err
	}
	if len(texts) != len(payloads) {
		return nil, &recognizer.Error{
			Kind: recognizer.ErrService,
			Op:   "recognize",
			Err:  fmt.Errorf("got %d results for %d frames", len(texts), len(payloads)),
		}
	}
	return texts, nil
}

func (p *Project) logStats(frames int, start, decodeEnd, encodeEnd, recognizeEnd time.Time) {
	total := time.Since(start)
	attrs := []any{
		"frames", frames,
		"total", total.Round(time.Millisecond),
		"decode", decodeEnd.Sub(start).Round(time.Millisecond),
		"encode", encodeEnd.Sub(decodeEnd).Round(time.Millisecond),
		"recognize", recognizeEnd.Sub(encodeEnd).Round(time.Millisecond),
		"classify", time.Since(recognizeEnd).Round(time.Millisecond),
	}

	stats, err := system.ProcessStats()
	if err != nil {
		p.Logger.Warn("process stats unavailable", "err", err)
	} else {
		attrs = append(attrs, "rss_mb", stats.RSS>>20, "cpu_percent", fmt.Sprintf("%.1f", stats.CPUPercent))
	}
	p.Logger.Info("performance report", attrs...)
}
