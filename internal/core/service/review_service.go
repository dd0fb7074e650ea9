package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/veriflow/kyc-system/internal/core/domain"
	"github.com/veriflow/kyc-system/internal/core/ports"
)

// ReviewService owns the applicant status lifecycle. Only this path mutates
// final_status, and every mutation lands with exactly one audit entry in the
// same transaction.
type ReviewService struct {
	applicants ports.ApplicantRepository
	audits     ports.AuditRepository
	log        zerolog.Logger
}

func NewReviewService(applicants ports.ApplicantRepository, audits ports.AuditRepository, log zerolog.Logger) *ReviewService {
	return &ReviewService{applicants: applicants, audits: audits, log: log}
}

/// Transition applies an admin review action. Preconditions: a verified admin
// identity and an existing applicant. The status write and audit append are
// all-or-nothing; a failed append rolls the status back rather than leaving
// the ledger and the record inconsistent.
func (s *ReviewService) Transition(ctx context.Context, input ports.TransitionInput) (*ports.ApplicantDetail, error) {
	if input.AdminUsername == "" {
		return nil, domain.ErrUnauthorized
	}

	applicant, err := s.applicants.FindByID(ctx, input.ApplicantID)
	if err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}

	next, err := applicant.FinalStatus.Apply(input.Action)
	if err != nil {
		return nil, fmt.Errorf("transition: %w (action %q from %s)", err, input.Action, applicant.FinalStatus)
	}

	entry := &domain.AuditLogEntry{
		ID:            uuid.NewString(),
		AdminUsername: input.AdminUsername,
		Action:        domain.StatusChangeAction(next),
		ApplicantID:   applicant.ID,
		Timestamp:     time.Now().UTC(),
	}

	if err := s.audits.UpdateStatusWithAudit(ctx, applicant.ID, next, entry); err != nil {
		s.log.Error().Err(err).
			Str("applicant_id", applicant.ID).
			Str("admin", input.AdminUsername).
			Msg("status transition rolled back")
		return nil, fmt.Errorf("transition: %w", err)
	}

	s.log.Info().
		Str("applicant_id", applicant.ID).
		Str("admin", input.AdminUsername).
		Str("from", string(applicant.FinalStatus)).
		Str("to", string(next)).
		Msg("status transition applied")

	applicant.FinalStatus = next
	return applicantDetail(applicant), nil
}

// RecordReevaluation appends a standalone audit entry for an admin-requested
// re-evaluation. Not status-changing, but every admin action is logged.
func (s *ReviewService) RecordReevaluation(ctx context.Context, applicantID, adminUsername string) error {
	if adminUsername == "" {
		return domain.ErrUnauthorized
	}
	entry := &domain.AuditLogEntry{
		ID:            uuid.NewString(),
		AdminUsername: adminUsername,
		Action:        domain.AuditActionReevaluate,
		ApplicantID:   applicantID,
		Timestamp:     time.Now().UTC(),
	}
	return s.audits.Append(ctx, entry)
}

func (s *ReviewService) QueryAudit(ctx context.Context, input ports.AuditQueryInput) (*ports.AuditQueryResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 50
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	entries, total, err := s.audits.Query(ctx, ports.AuditFilter{
		ApplicantID:   input.ApplicantID,
		AdminUsername: input.AdminUsername,
		Descending:    input.Descending,
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		return nil, err
	}

	return &ports.AuditQueryResult{
		Entries:    entries,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}
