package ports

import (
	"context"

	"github.com/veriflow/kyc-system/internal/core/domain"
)

// ListApplicantsFilter carries all query parameters for listing applicants.
type ListApplicantsFilter struct {
	Search string // optional: partial match on name, ai_suggestion or final_status
	Status string // optional: exact final_status filter
	Page   int    // 1-based
	Limit  int    // max rows per page (capped at 100 by service)
}

// ApplicantRepository defines persistence operations for applicants.
// Records are never deleted, only status-transitioned.
type ApplicantRepository interface {
	Create(ctx context.Context, a *domain.Applicant) error
	FindByID(ctx context.Context, id string) (*domain.Applicant, error)
	// FindBySubmissionDigest retrieves the applicant created from an earlier
	// submission of the same image pair, for idempotent replay.
	FindBySubmissionDigest(ctx context.Context, digest string) (*domain.Applicant, error)
	// List returns a page of applicants matching filter and the total count.
	List(ctx context.Context, filter ListApplicantsFilter) ([]*domain.Applicant, int64, error)
	// UpdateAssessment replaces the computed evidence after a re-evaluation.
	// It never touches final_status.
	UpdateAssessment(ctx context.Context, id string, fields domain.ExtractedFields, signals domain.SignalBundle, risk domain.RiskAssessment) error
	// CountByStatus returns applicant totals per final status.
	CountByStatus(ctx context.Context) (map[domain.VerificationStatus]int64, error)
}
