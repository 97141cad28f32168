package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"

	"github.com/ivlev/gifocr/internal/models"
)

const annotatePath = "/v1/images:annotate"

type restRequest struct {
	Requests []restImageRequest `json:"requests"`
}

type restImageRequest struct {
	Image        restImage        `json:"image"`
	Features     []restFeature    `json:"features"`
	ImageContext restImageContext `json:"imageContext"`
}

type restImage struct {
	Content []byte `json:"content"` // base64 by encoding/json
}

type restFeature struct {
	Type string `json:"type"`
}

type restImageContext struct {
	LanguageHints []string `json:"languageHints"`
}

type restResponse struct {
	Responses []restImageResponse `json:"responses"`
}

type restImageResponse struct {
	TextAnnotations []restAnnotation `json:"textAnnotations"`
	Error           *restStatus      `json:"error,omitempty"`
}

type restAnnotation struct {
	Description  string `json:"description"`
	BoundingPoly struct {
		Vertices []models.Point `json:"vertices"`
	} `json:"boundingPoly"`
}

type restStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// RESTRecognizer calls the images:annotate JSON endpoint. The HTTP client is
// expected to add authorization, e.g. one built by oauth2.NewClient.
type RESTRecognizer struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

func NewRESTRecognizer(client *http.Client, endpoint string, logger *slog.Logger) *RESTRecognizer {
	return &RESTRecognizer{
		client:   client,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		logger:   logger,
	}
}

func (r *RESTRecognizer) Recognize(ctx context.Context, payloads [][]byte, languageHint string) ([]models.FrameText, error) {
	const op = "images:annotate"
	warnBatchSize(r.logger, len(payloads))

	var body restRequest
	for _, p := range payloads {
		body.Requests = append(body.Requests, restImageRequest{
			Image:        restImage{Content: p},
			Features:     []restFeature{{Type: "DOCUMENT_TEXT_DETECTION"}},
			ImageContext: restImageContext{LanguageHints: []string{languageHint}},
		})
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Kind: ErrService, Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+annotatePath, bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Kind: ErrService, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	r.logger.Debug("sending batch request", "images", len(payloads), "backend", "rest", "bytes", len(data))
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrService, Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrService, Op: op, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpError(op, resp.StatusCode, raw)
	}

	var out restResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &Error{Kind: ErrService, Op: op, Err: fmt.Errorf("malformed response: %w", err)}
	}
	if err := checkCount(op, len(out.Responses), len(payloads)); err != nil {
		return nil, err
	}

	texts := make([]models.FrameText, len(payloads))
	for i, res := range out.Responses {
		if res.Error != nil && codes.Code(res.Error.Code) != codes.OK {
			return nil, &Error{
				Kind: kindForStatus(codes.Code(res.Error.Code), res.Error.Message),
				Op:   op,
				Err:  fmt.Errorf("image %d: %s", i, res.Error.Message),
			}
		}
		texts[i] = frameTextFromREST(res.TextAnnotations)
	}
	return texts, nil
}

func (r *RESTRecognizer) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

func httpError(op string, statusCode int, body []byte) error {
	var envelope struct {
		Error restStatus `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	}

	kind := ErrService
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrAuthentication
	case http.StatusTooManyRequests:
		kind = ErrRateLimit
		if strings.Contains(strings.ToLower(msg), "quota") {
			kind = ErrQuota
		}
	}
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf("http %d: %s", statusCode, msg)}
}

func frameTextFromREST(annotations []restAnnotation) models.FrameText {
	var ft models.FrameText
	for i, a := range annotations {
		if i == 0 {
			ft.FullText = a.Description
		}
		ft.Fragments = append(ft.Fragments, models.Fragment{
			Text:    a.Description,
			Polygon: a.BoundingPoly.Vertices,
		})
	}
	return ft
}
