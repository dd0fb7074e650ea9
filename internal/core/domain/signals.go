package domain

import (
	"fmt"
	"time"
)

// ExtractedFields holds the identity fields parsed from OCR text. Absence of
// a field is a valid outcome, not an error: Name is empty and DateOfBirth is
// nil when nothing usable was found. Immutable after creation.
type ExtractedFields struct {
	Name        string     `json:"name,omitempty" bson:"name,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" bson:"date_of_birth,omitempty"`
}

// PresentCount reports how many of the two identity fields were extracted.
func (f ExtractedFields) PresentCount() int {
	n := 0
	if f.Name != "" {
		n++
	}
	if f.DateOfBirth != nil {
		n++
	}
	return n
}

// SignalBundle is the immutable evidence computed once per submission by the
// external extractors. The core consumes these as opaque numeric signals.
type SignalBundle struct {
	FaceConfidence float64 `json:"face_confidence" bson:"face_conf"`
	LivenessPassed bool    `json:"liveness_passed" bson:"liveness"`
	BlurVariance   float64 `json:"blur_variance" bson:"blur"`
	ImageSizeOK    bool    `json:"image_size_ok" bson:"image_size_ok"`
}

// Validate checks every signal against its declared domain. A violation is a
// programming-contract failure in an upstream extractor, not a user error.
func (s SignalBundle) Validate() error {
	if s.FaceConfidence < 0 || s.FaceConfidence > 1 {
		return fmt.Errorf("%w: face_confidence %v outside [0,1]", ErrInvalidSignal, s.FaceConfidence)
	}
	if s.BlurVariance < 0 {
		return fmt.Errorf("%w: blur_variance %v negative", ErrInvalidSignal, s.BlurVariance)
	}
	return nil
}

// WorstCaseSignals is the bundle substituted for a failed extraction when the
// service is configured to degrade gracefully instead of propagating.
func WorstCaseSignals() SignalBundle {
	return SignalBundle{FaceConfidence: 0, LivenessPassed: false, BlurVariance: 0, ImageSizeOK: false}
}

// Suggestion is the machine-suggested outcome, advisory until an admin
// confirms the final status.
type Suggestion string

const (
	SuggestionApproved Suggestion = "APPROVED"
	SuggestionPending  Suggestion = "PENDING"
	SuggestionFlagged  Suggestion = "FLAGGED"
)

// RiskAssessment is derived deterministically from a SignalBundle and
// ExtractedFields: recomputing from the same inputs yields the same result.
type RiskAssessment struct {
	Score      float64    `json:"score" bson:"risk_score"`
	Suggestion Suggestion `json:"ai_suggestion" bson:"ai_suggestion"`
}

// ProvisionalDecision is the persisted machine decision produced by the
// decision engine from a risk assessment.
type ProvisionalDecision struct {
	Score      float64    `json:"score"`
	Suggestion Suggestion `json:"suggestion"`
}
