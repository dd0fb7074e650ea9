package ports

import (
	"context"

	"github.com/veriflow/kyc-system/internal/core/domain"
)

// AuditFilter carries query parameters for reading the audit ledger. Results
// are ordered by timestamp ascending unless Descending is set, and paged so a
// query is finite and restartable.
type AuditFilter struct {
	ApplicantID   string // optional: scope to one applicant
	AdminUsername string // optional: scope to one admin
	Descending    bool
	Page          int // 1-based
	Limit         int
}

// AuditRepository handles the append-only admin action ledger and the atomic
// status transition it guards. No update or delete operation is exposed.
type AuditRepository interface {
	// UpdateStatusWithAudit atomically sets the applicant's final status and
	// appends the audit entry. Either both writes persist or neither does; an
	// append failure aborts the status change.
	UpdateStatusWithAudit(ctx context.Context, applicantID string, status domain.VerificationStatus, entry *domain.AuditLogEntry) error

	// Append persists a standalone admin action entry (non status-changing
	// actions such as re-evaluation requests).
	Append(ctx context.Context, entry *domain.AuditLogEntry) error

	// Query returns a page of audit entries matching filter and the total count.
	Query(ctx context.Context, filter AuditFilter) ([]domain.AuditLogEntry, int64, error)
}
