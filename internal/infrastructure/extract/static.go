package extract

import (
	"context"

	"github.com/veriflow/kyc-system/internal/core/domain"
)

// StaticExtractor returns fixed signals. Used in development when no vision
// sidecar is configured, and by tests.
type StaticExtractor struct {
	Signals domain.SignalBundle
	Text    string
	Err     error
}

// NewStatic returns an extractor reporting healthy mid-range signals.
func NewStatic() *StaticExtractor {
	return &StaticExtractor{
		Signals: domain.SignalBundle{
			FaceConfidence: 0.75,
			LivenessPassed: true,
			BlurVariance:   600,
			ImageSizeOK:    true,
		},
		Text: "NAME: Sample Applicant\nDOB: 01/01/1990",
	}
}

func (s *StaticExtractor) ExtractSignals(_ context.Context, _, _ []byte) (domain.SignalBundle, error) {
	if s.Err != nil {
		return domain.SignalBundle{}, s.Err
	}
	return s.Signals, nil
}

func (s *StaticExtractor) RecognizeText(_ context.Context, _ []byte) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}
