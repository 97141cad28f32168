package recognizer

import (
	"context"
	"fmt"
	"log/slog"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"

	"github.com/ivlev/gifocr/internal/models"
)

type batchAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// VisionRecognizer talks to Cloud Vision over gRPC.
type VisionRecognizer struct {
	client batchAnnotator
	logger *slog.Logger
}

func NewVisionRecognizer(ctx context.Context, creds *google.Credentials, logger *slog.Logger) (*VisionRecognizer, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fromGRPC("create vision client", err)
	}
	return &VisionRecognizer{client: client, logger: logger}, nil
}

func (r *VisionRecognizer) Recognize(ctx context.Context, payloads [][]byte, languageHint string) ([]models.FrameText, error) {
	const op = "batch annotate images"
	warnBatchSize(r.logger, len(payloads))

	req := &visionpb.BatchAnnotateImagesRequest{}
	for _, p := range payloads {
		req.Requests = append(req.Requests, &visionpb.AnnotateImageRequest{
			Image: &visionpb.Image{Content: p},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
			},
			ImageContext: &visionpb.ImageContext{LanguageHints: []string{languageHint}},
		})
	}

	r.logger.Debug("sending batch request", "images", len(payloads), "backend", "grpc")
	resp, err := r.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fromGRPC(op, err)
	}
	if err := checkCount(op, len(resp.GetResponses()), len(payloads)); err != nil {
		return nil, err
	}

	texts := make([]models.FrameText, len(payloads))
	for i, res := range resp.GetResponses() {
		if e := res.GetError(); e != nil && codes.Code(e.GetCode()) != codes.OK {
			return nil, &Error{
				Kind: kindForStatus(codes.Code(e.GetCode()), e.GetMessage()),
				Op:   op,
				Err:  fmt.Errorf("image %d: %s", i, e.GetMessage()),
			}
		}
		texts[i] = frameTextFromProto(res.GetTextAnnotations())
	}
	return texts, nil
}

func (r *VisionRecognizer) Close() error {
	return r.client.Close()
}

func frameTextFromProto(annotations []*visionpb.EntityAnnotation) models.FrameText {
	var ft models.FrameText
	for i, a := range annotations {
		if i == 0 {
			ft.FullText = a.GetDescription()
		}
		frag := models.Fragment{Text: a.GetDescription()}
		for _, v := range a.GetBoundingPoly().GetVertices() {
			frag.Polygon = append(frag.Polygon, models.Point{X: int(v.GetX()), Y: int(v.GetY())})
		}
		ft.Fragments = append(ft.Fragments, frag)
	}
	return ft
}
