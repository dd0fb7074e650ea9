package ports

import (
	"context"
	"time"

	"github.com/veriflow/kyc-system/internal/core/domain"
)

// SubmitInput carries one upload-and-evaluate cycle: the raw image bytes and
// an optional name supplied by the applicant that overrides the OCR result.
type SubmitInput struct {
	IDImage      []byte
	Selfie       []byte
	NameOverride string
}

// SubmitResult is returned after the pipeline has run and the applicant is
// persisted with its provisional suggestion.
type SubmitResult struct {
	ID          string
	Name        string
	DateOfBirth *time.Time
	Score       float64
	Suggestion  domain.Suggestion
	FinalStatus domain.VerificationStatus
	CreatedAt   time.Time
	// AlreadyExisted is true when the same image pair was submitted before
	// and the earlier evaluation was returned without recomputation.
	AlreadyExisted bool
}

// ApplicantDetail is the full applicant view for the admin dashboard and the
// report generator.
type ApplicantDetail struct {
	ID          string
	Name        string
	DateOfBirth *time.Time
	IDImageRef  string
	SelfieRef   string
	Signals     domain.SignalBundle
	Risk        domain.RiskAssessment
	FinalStatus domain.VerificationStatus
	CreatedAt   time.Time
}

// ListApplicantsInput carries all parameters for the list endpoint.
type ListApplicantsInput struct {
	Search string
	Status string
	Page   int
	Limit  int
}

// ApplicantSummary is the lightweight view used in list responses.
type ApplicantSummary struct {
	ID          string
	Name        string
	Score       float64
	Suggestion  domain.Suggestion
	FinalStatus domain.VerificationStatus
	CreatedAt   time.Time
}

// ListApplicantsResult is returned by ListApplicants.
type ListApplicantsResult struct {
	Items      []ApplicantSummary
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// StatsResult mirrors the dashboard counters.
type StatsResult struct {
	Total    int64
	Approved int64
	Pending  int64
	Rejected int64
	Flagged  int64
}

// VerificationService runs the evaluation pipeline and serves applicant reads.
type VerificationService interface {
	// Submit runs extract → parse → score → decide and persists the applicant
	// with final status PENDING. Idempotent per image pair.
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
	// Reevaluate recomputes signals and risk from the stored images. The
	// pipeline is deterministic, so unchanged inputs yield an unchanged
	// assessment. Never touches final_status.
	Reevaluate(ctx context.Context, applicantID string) error
	GetApplicant(ctx context.Context, id string) (*ApplicantDetail, error)
	ListApplicants(ctx context.Context, input ListApplicantsInput) (*ListApplicantsResult, error)
	Stats(ctx context.Context) (*StatsResult, error)
}
