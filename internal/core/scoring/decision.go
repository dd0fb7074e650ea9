package scoring

import "github.com/veriflow/kyc-system/internal/core/domain"

// Engine maps a risk assessment to the provisional decision persisted on the
// applicant. Today this is a pass-through of the scorer's suggestion; it is a
// separate component so future policy (per-jurisdiction thresholds, allow and
// deny lists) lands here without touching the scorer's math.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Decide packages the assessment for persistence. Pure, no side effects.
func (e *Engine) Decide(assessment domain.RiskAssessment) domain.ProvisionalDecision {
	return domain.ProvisionalDecision{
		Score:      assessment.Score,
		Suggestion: assessment.Suggestion,
	}
}
