package ports

import (
	"context"

	"github.com/veriflow/kyc-system/internal/core/domain"
)

// TransitionInput carries an admin review action. AdminUsername comes from
// the verified token; the service rejects an empty identity.
type TransitionInput struct {
	ApplicantID   string
	Action        domain.ReviewAction
	AdminUsername string
}

// AuditQueryInput mirrors AuditFilter at the service boundary.
type AuditQueryInput struct {
	ApplicantID   string
	AdminUsername string
	Descending    bool
	Page          int
	Limit         int
}

// AuditQueryResult is a page of the admin action ledger.
type AuditQueryResult struct {
	Entries    []domain.AuditLogEntry
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ReviewService owns the applicant status lifecycle and the audit trail.
type ReviewService interface {
	// Transition applies an admin action to the applicant's final status and
	// appends exactly one audit entry, atomically. A same-status transition
	// is a legal no-op that is still audited.
	Transition(ctx context.Context, input TransitionInput) (*ApplicantDetail, error)
	// RecordReevaluation appends a ledger entry for an admin-requested
	// re-evaluation. Every admin action is logged, status-changing or not.
	RecordReevaluation(ctx context.Context, applicantID, adminUsername string) error
	QueryAudit(ctx context.Context, input AuditQueryInput) (*AuditQueryResult, error)
}
