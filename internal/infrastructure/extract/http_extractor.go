// Package extract holds the adapters to the external signal extraction
// collaborators (OCR, face matching, liveness, blur). The core only ever
// sees their typed outputs.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/veriflow/kyc-system/internal/core/domain"
)

const maxResponseBytes = 1 << 20

// HTTPExtractor calls a vision sidecar over HTTP. Request bodies carry the
// images base64-encoded; responses carry the typed signals.
type HTTPExtractor struct {
	baseURL string
	client  *http.Client
}

// NewHTTPExtractor creates an extractor for the sidecar at baseURL. timeout
// bounds each call in addition to any deadline on the caller's context.
func NewHTTPExtractor(baseURL string, timeout time.Duration) *HTTPExtractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPExtractor{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type signalsRequest struct {
	IDImage []byte `json:"id_image"`
	Selfie  []byte `json:"selfie"`
}

type signalsResponse struct {
	FaceConfidence float64 `json:"face_confidence"`
	LivenessPassed bool    `json:"liveness_passed"`
	BlurVariance   float64 `json:"blur_variance"`
	ImageSizeOK    bool    `json:"image_size_ok"`
}

type ocrRequest struct {
	Image []byte `json:"image"`
}

type ocrResponse struct {
	Text string `json:"text"`
}

type sidecarError struct {
	Error string `json:"error"`
}

// ExtractSignals computes the biometric and quality signals for one
// submission.
func (e *HTTPExtractor) ExtractSignals(ctx context.Context, idImage, selfie []byte) (domain.SignalBundle, error) {
	var resp signalsResponse
	if err := e.post(ctx, "/v1/signals", signalsRequest{IDImage: idImage, Selfie: selfie}, &resp); err != nil {
		return domain.SignalBundle{}, err
	}
	return domain.SignalBundle{
		FaceConfidence: resp.FaceConfidence,
		LivenessPassed: resp.LivenessPassed,
		BlurVariance:   resp.BlurVariance,
		ImageSizeOK:    resp.ImageSizeOK,
	}, nil
}

// RecognizeText runs OCR over the identity document image.
func (e *HTTPExtractor) RecognizeText(ctx context.Context, image []byte) (string, error) {
	var resp ocrResponse
	if err := e.post(ctx, "/v1/ocr", ocrRequest{Image: image}, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (e *HTTPExtractor) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("extract: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("extract: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ue) && ue.Timeout()) {
			return fmt.Errorf("%w: %s", domain.ErrExtractionTimeout, path)
		}
		return fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrExtractionFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		var se sidecarError
		if json.Unmarshal(data, &se) == nil && se.Error != "" {
			return fmt.Errorf("%w: %s: %s", domain.ErrExtractionFailed, path, se.Error)
		}
		return fmt.Errorf("%w: %s: status %d", domain.ErrExtractionFailed, path, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrExtractionFailed, err)
	}
	return nil
}
