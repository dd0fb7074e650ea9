// Package scoring combines extraction signals and parsed identity fields into
// a risk assessment and a provisional decision.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/veriflow/kyc-system/internal/core/domain"
)

const weightEpsilon = 1e-9

// Config carries the scoring policy: term weights, the blur normalization
// reference, and the suggestion thresholds. Values are policy constants
// injected from configuration, never derived at runtime.
type Config struct {
	FaceWeight       float64
	LivenessWeight   float64
	BlurWeight       float64
	FieldWeight      float64
	BlurReference    float64
	ApproveThreshold float64
	FlagThreshold    float64
}

// DefaultConfig returns the reference policy. The exact numbers are tunable;
// deployments override them through the environment.
func DefaultConfig() Config {
	return Config{
		FaceWeight:       0.40,
		LivenessWeight:   0.25,
		BlurWeight:       0.20,
		FieldWeight:      0.15,
		BlurReference:    1000,
		ApproveThreshold: 0.80,
		FlagThreshold:    0.50,
	}
}

// Validate checks the policy once at construction so a misconfigured scorer
// never produces a single assessment.
func (c Config) Validate() error {
	for name, w := range map[string]float64{
		"face":     c.FaceWeight,
		"liveness": c.LivenessWeight,
		"blur":     c.BlurWeight,
		"field":    c.FieldWeight,
	} {
		if w < 0 {
			return fmt.Errorf("scoring: %s weight must not be negative, got %v", name, w)
		}
	}
	sum := c.FaceWeight + c.LivenessWeight + c.BlurWeight + c.FieldWeight
	if math.Abs(sum-1.0) > weightEpsilon {
		return fmt.Errorf("scoring: weights must sum to 1.0, got %v", sum)
	}
	if c.BlurReference <= 0 {
		return fmt.Errorf("scoring: blur reference must be positive, got %v", c.BlurReference)
	}
	if c.FlagThreshold < 0 || c.ApproveThreshold > 1 || c.FlagThreshold >= c.ApproveThreshold {
		return errors.New("scoring: thresholds must satisfy 0 <= flag < approve <= 1")
	}
	return nil
}

// Scorer computes risk assessments. It is a pure function of its inputs: the
// same fields and signals always produce the same assessment.
type Scorer struct {
	cfg Config
}

// NewScorer validates the policy and returns a ready scorer.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Score combines the four evidence terms into a weighted score and buckets it
// into a suggestion. A liveness or image-size hard fail forces FLAGGED after
// scoring: the numeric score stays informative for audit and debugging, but a
// sharp, well-matched face from a non-live source must never auto-approve.
func (s *Scorer) Score(fields domain.ExtractedFields, signals domain.SignalBundle) (domain.RiskAssessment, error) {
	if err := signals.Validate(); err != nil {
		return domain.RiskAssessment{}, err
	}

	faceTerm := signals.FaceConfidence
	livenessTerm := 0.0
	if signals.LivenessPassed {
		livenessTerm = 1.0
	}
	blurTerm := clamp(signals.BlurVariance/s.cfg.BlurReference, 0, 1)
	fieldTerm := float64(fields.PresentCount()) / 2.0

	score := s.cfg.FaceWeight*faceTerm +
		s.cfg.LivenessWeight*livenessTerm +
		s.cfg.BlurWeight*blurTerm +
		s.cfg.FieldWeight*fieldTerm

	suggestion := s.bucket(score)
	if !signals.LivenessPassed || !signals.ImageSizeOK {
		suggestion = domain.SuggestionFlagged
	}

	return domain.RiskAssessment{Score: score, Suggestion: suggestion}, nil
}

func (s *Scorer) bucket(score float64) domain.Suggestion {
	switch {
	case score >= s.cfg.ApproveThreshold:
		return domain.SuggestionApproved
	case score >= s.cfg.FlagThreshold:
		return domain.SuggestionPending
	default:
		return domain.SuggestionFlagged
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
