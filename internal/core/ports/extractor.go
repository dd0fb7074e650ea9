package ports

import (
	"context"

	"github.com/veriflow/kyc-system/internal/core/domain"
)

// SignalExtractor is the boundary to the external OCR / face matching /
// liveness / blur collaborators. Implementations return typed signals; the
// core never sees the underlying vision algorithms.
//
// Unreadable or corrupt input fails with domain.ErrExtractionFailed; an
// expired context fails with domain.ErrExtractionTimeout.
type SignalExtractor interface {
	// ExtractSignals computes the biometric and quality signals from the
	// identity document and selfie images.
	ExtractSignals(ctx context.Context, idImage, selfie []byte) (domain.SignalBundle, error)
	// RecognizeText runs OCR over the identity document image.
	RecognizeText(ctx context.Context, image []byte) (string, error)
}

// ImageStore persists submitted images and hands back opaque references. The
// storage layout is an external concern; the core only keeps the refs so a
// re-evaluation can reload the original evidence.
type ImageStore interface {
	Save(ctx context.Context, name string, data []byte) (ref string, err error)
	Load(ctx context.Context, ref string) ([]byte, error)
}
