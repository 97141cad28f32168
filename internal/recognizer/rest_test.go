package recognizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/gifocr/internal/models"
)

func TestRESTRecognize(t *testing.T) {
	var got restRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, annotatePath, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responses": [
			{"textAnnotations": [
				{"description": "Player1\n", "boundingPoly": {"vertices": [{"x": 30, "y": 470}, {"x": 600, "y": 470}, {"x": 600, "y": 490}, {"x": 30, "y": 490}]}},
				{"description": "Player1", "boundingPoly": {"vertices": [{"x": 30, "y": 470}, {"x": 600, "y": 470}, {"x": 600, "y": 490}, {"y": 490}]}}
			]},
			{}
		]}`))
	}))
	defer srv.Close()

	r := NewRESTRecognizer(srv.Client(), srv.URL+"/", quietLogger())
	defer r.Close()

	texts, err := r.Recognize(context.Background(), [][]byte{{0xff, 0xd8}, {0x01}}, "ja")
	require.NoError(t, err)

	require.Len(t, got.Requests, 2)
	assert.Equal(t, []byte{0xff, 0xd8}, got.Requests[0].Image.Content)
	assert.Equal(t, "DOCUMENT_TEXT_DETECTION", got.Requests[0].Features[0].Type)
	assert.Equal(t, []string{"ja"}, got.Requests[1].ImageContext.LanguageHints)

	require.Len(t, texts, 2)
	assert.Equal(t, "Player1\n", texts[0].FullText)
	require.Len(t, texts[0].Fragments, 2)
	assert.Equal(t, models.Point{X: 0, Y: 490}, texts[0].Fragments[1].Polygon[3])
	assert.Empty(t, texts[1].Fragments)
}

func TestRESTRecognizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error": {"code": 401, "message": "invalid token"}}`, ErrAuthentication},
		{"forbidden", http.StatusForbidden, `{"error": {"code": 403, "message": "api not enabled"}}`, ErrAuthentication},
		{"rate limit", http.StatusTooManyRequests, `{"error": {"code": 429, "message": "Too many requests"}}`, ErrRateLimit},
		{"quota", http.StatusTooManyRequests, `{"error": {"code": 429, "message": "Quota exceeded for quota metric", "status": "RESOURCE_EXHAUSTED"}}`, ErrQuota},
		{"server error", http.StatusInternalServerError, `oops`, ErrService},
		{"malformed", http.StatusOK, `{"responses": [`, ErrService},
		{"count mismatch", http.StatusOK, `{"responses": []}`, ErrService},
		{"image error", http.StatusOK, `{"responses": [{"error": {"code": 3, "message": "Bad image data."}}]}`, ErrService},
		{"image quota", http.StatusOK, `{"responses": [{"error": {"code": 8, "message": "Quota exceeded"}}]}`, ErrQuota},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			r := NewRESTRecognizer(srv.Client(), srv.URL, quietLogger())
			_, err := r.Recognize(context.Background(), [][]byte{{1}}, "ja")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestRESTRecognizeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := NewRESTRecognizer(http.DefaultClient, url, quietLogger())
	_, err := r.Recognize(context.Background(), [][]byte{{1}}, "ja")
	assert.True(t, errors.Is(err, ErrService))
}
