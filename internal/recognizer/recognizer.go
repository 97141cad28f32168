package recognizer

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ivlev/gifocr/internal/config"
	"github.com/ivlev/gifocr/internal/models"
)

// maxBatchImages is the documented limit of a synchronous images:annotate
// batch. Larger batches are still sent as one request.
const maxBatchImages = 16

// Recognizer runs document text detection on a batch of JPEG payloads and
// returns one FrameText per payload, in submission order.
type Recognizer interface {
	Recognize(ctx context.Context, payloads [][]byte, languageHint string) ([]models.FrameText, error)
	Close() error
}

// New creates the recognizer selected by cfg.Backend.
func New(ctx context.Context, cfg *config.Config, creds *google.Credentials, logger *slog.Logger) (Recognizer, error) {
	switch cfg.Backend {
	case config.BackendGRPC, "":
		return NewVisionRecognizer(ctx, creds, logger)
	case config.BackendREST:
		return NewRESTRecognizer(oauth2.NewClient(ctx, creds.TokenSource), cfg.Endpoint, logger), nil
	default:
		return nil, fmt.Errorf("unknown recognizer backend: %s", cfg.Backend)
	}
}

func warnBatchSize(logger *slog.Logger, n int) {
	if n > maxBatchImages {
		logger.Warn("batch exceeds the service limit and may be rejected",
			"images", n, "limit", maxBatchImages)
	}
}

func checkCount(op string, got, want int) error {
	if got != want {
		return &Error{Kind: ErrService, Op: op, Err: fmt.Errorf("got %d responses for %d images", got, want)}
	}
	return nil
}
