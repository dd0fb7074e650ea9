package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/veriflow/kyc-system/internal/core/domain"
	"github.com/veriflow/kyc-system/internal/core/parser"
	"github.com/veriflow/kyc-system/internal/core/ports"
	"github.com/veriflow/kyc-system/internal/core/scoring"
)

// SubmissionDedup abstracts the fast idempotency store (Redis). Lookup
// returns the applicant created from an earlier identical submission, or ""
// when the digest is unseen.
type SubmissionDedup interface {
	Lookup(ctx context.Context, digest string) (string, error)
	Mark(ctx context.Context, digest, applicantID string) error
}

const maxListLimit = 100

// VerificationService runs the evaluation pipeline: extract signals, parse
// fields, score, decide, persist. Evaluation is strictly sequential within
// one applicant; different applicants evaluate independently.
type VerificationService struct {
	applicants ports.ApplicantRepository
	extractor  ports.SignalExtractor
	images     ports.ImageStore
	scorer     *scoring.Scorer
	engine     *scoring.Engine
	dedup      SubmissionDedup
	timeout    time.Duration
	degrade    bool
	log        zerolog.Logger
}

// NewVerificationService wires the pipeline. timeout bounds each extractor
// call; degrade substitutes worst-case signals for a failed extraction
// instead of propagating the failure.
func NewVerificationService(
	applicants ports.ApplicantRepository,
	extractor ports.SignalExtractor,
	images ports.ImageStore,
	scorer *scoring.Scorer,
	engine *scoring.Engine,
	dedup SubmissionDedup,
	timeout time.Duration,
	degrade bool,
	log zerolog.Logger,
) *VerificationService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VerificationService{
		applicants: applicants,
		extractor:  extractor,
		images:     images,
		scorer:     scorer,
		engine:     engine,
		dedup:      dedup,
		timeout:    timeout,
		degrade:    degrade,
		log:        log,
	}
}

// Submit evaluates one upload cycle and persists the applicant with its
// provisional suggestion. Resubmitting the same image pair replays the
// earlier evaluation without side effects.
func (s *VerificationService) Submit(ctx context.Context, input ports.SubmitInput) (*ports.SubmitResult, error) {
	digest := submissionDigest(input.IDImage, input.Selfie)

	if existing, err := s.findExisting(ctx, digest); err == nil && existing != nil {
		s.log.Info().Str("applicant_id", existing.ID).Msg("idempotent replay")
		return submitResult(existing, true), nil
	}

	signals, ocrText, err := s.extract(ctx, input.IDImage, input.Selfie)
	if err != nil {
		return nil, err
	}

	fields := parser.Parse(ocrText)
	if input.NameOverride != "" {
		fields.Name = input.NameOverride
	}

	assessment, err := s.scorer.Score(fields, signals)
	if err != nil {
		return nil, err
	}
	decision := s.engine.Decide(assessment)

	applicant := &domain.Applicant{
		ID:               uuid.NewString(),
		Name:             fields.Name,
		DateOfBirth:      fields.DateOfBirth,
		SubmissionDigest: digest,
		Signals:          signals,
		Risk:             domain.RiskAssessment{Score: decision.Score, Suggestion: decision.Suggestion},
		FinalStatus:      domain.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}

	if applicant.IDImageRef, err = s.images.Save(ctx, applicant.ID+"_id", input.IDImage); err != nil {
		return nil, fmt.Errorf("store id image: %w", err)
	}
	if applicant.SelfieRef, err = s.images.Save(ctx, applicant.ID+"_selfie", input.Selfie); err != nil {
		return nil, fmt.Errorf("store selfie: %w", err)
	}

	if err := s.applicants.Create(ctx, applicant); err != nil {
		s.log.Error().Err(err).Msg("failed to create applicant")
		return nil, err
	}

	if markErr := s.dedup.Mark(ctx, digest, applicant.ID); markErr != nil {
		s.log.Warn().Err(markErr).Str("applicant_id", applicant.ID).Msg("failed to set dedup key")
	}

	s.log.Info().
		Str("applicant_id", applicant.ID).
		Float64("risk_score", applicant.Risk.Score).
		Str("ai_suggestion", string(applicant.Risk.Suggestion)).
		Msg("applicant evaluated")

	return submitResult(applicant, false), nil
}

// Reevaluate reruns the pipeline from the stored images and updates the
// applicant's signals and risk. The scorer is deterministic, so unchanged
// evidence yields an unchanged assessment. final_status is never touched.
func (s *VerificationService) Reevaluate(ctx context.Context, applicantID string) error {
	applicant, err := s.applicants.FindByID(ctx, applicantID)
	if err != nil {
		return fmt.Errorf("reevaluate: %w", err)
	}

	idImage, err := s.images.Load(ctx, applicant.IDImageRef)
	if err != nil {
		return fmt.Errorf("reevaluate: load id image: %w", err)
	}
	selfie, err := s.images.Load(ctx, applicant.SelfieRef)
	if err != nil {
		return fmt.Errorf("reevaluate: load selfie: %w", err)
	}

	signals, ocrText, err := s.extract(ctx, idImage, selfie)
	if err != nil {
		return fmt.Errorf("reevaluate: %w", err)
	}

	fields := parser.Parse(ocrText)
	if fields.Name == "" {
		fields.Name = applicant.Name
	}

	assessment, err := s.scorer.Score(fields, signals)
	if err != nil {
		return fmt.Errorf("reevaluate: %w", err)
	}

	if err := s.applicants.UpdateAssessment(ctx, applicantID, fields, signals, assessment); err != nil {
		return fmt.Errorf("reevaluate: %w", err)
	}

	s.log.Info().
		Str("applicant_id", applicantID).
		Float64("risk_score", assessment.Score).
		Str("ai_suggestion", string(assessment.Suggestion)).
		Msg("applicant re-evaluated")

	return nil
}

func (s *VerificationService) GetApplicant(ctx context.Context, id string) (*ports.ApplicantDetail, error) {
	applicant, err := s.applicants.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return applicantDetail(applicant), nil
}

func (s *VerificationService) ListApplicants(ctx context.Context, input ports.ListApplicantsInput) (*ports.ListApplicantsResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, total, err := s.applicants.List(ctx, ports.ListApplicantsFilter{
		Search: input.Search,
		Status: input.Status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]ports.ApplicantSummary, len(items))
	for i, a := range items {
		summaries[i] = ports.ApplicantSummary{
			ID:          a.ID,
			Name:        a.Name,
			Score:       a.Risk.Score,
			Suggestion:  a.Risk.Suggestion,
			FinalStatus: a.FinalStatus,
			CreatedAt:   a.CreatedAt,
		}
	}

	return &ports.ListApplicantsResult{
		Items:      summaries,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *VerificationService) Stats(ctx context.Context) (*ports.StatsResult, error) {
	counts, err := s.applicants.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &ports.StatsResult{
		Approved: counts[domain.StatusApproved],
		Pending:  counts[domain.StatusPending],
		Rejected: counts[domain.StatusRejected],
		Flagged:  counts[domain.StatusFlagged],
	}
	stats.Total = stats.Approved + stats.Pending + stats.Rejected + stats.Flagged
	return stats, nil
}

// extract runs both extractor calls under the configured timeout and applies
// the degrade policy. Extraction is the only blocking point in the pipeline.
func (s *VerificationService) extract(ctx context.Context, idImage, selfie []byte) (domain.SignalBundle, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ocrText, err := s.extractor.RecognizeText(ctx, idImage)
	if err == nil {
		var signals domain.SignalBundle
		signals, err = s.extractor.ExtractSignals(ctx, idImage, selfie)
		if err == nil {
			return signals, ocrText, nil
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrExtractionTimeout) {
		return domain.SignalBundle{}, "", fmt.Errorf("%w: %v", domain.ErrExtractionTimeout, err)
	}
	if s.degrade && errors.Is(err, domain.ErrExtractionFailed) {
		s.log.Warn().Err(err).Msg("extraction failed, degrading to worst-case signals")
		return domain.WorstCaseSignals(), "", nil
	}
	return domain.SignalBundle{}, "", err
}

// findExisting consults the fast dedup store first and falls back to the
// authoritative digest index in the repository.
func (s *VerificationService) findExisting(ctx context.Context, digest string) (*domain.Applicant, error) {
	if id, err := s.dedup.Lookup(ctx, digest); err == nil && id != "" {
		if applicant, err := s.applicants.FindByID(ctx, id); err == nil {
			return applicant, nil
		}
	} else if err != nil {
		s.log.Warn().Err(err).Msg("dedup lookup failed, falling back to repository")
	}

	applicant, err := s.applicants.FindBySubmissionDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, domain.ErrApplicantNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return applicant, nil
}

func submissionDigest(idImage, selfie []byte) string {
	h := sha256.New()
	h.Write(idImage)
	h.Write(selfie)
	return hex.EncodeToString(h.Sum(nil))
}

func submitResult(a *domain.Applicant, existed bool) *ports.SubmitResult {
	return &ports.SubmitResult{
		ID:             a.ID,
		Name:           a.Name,
		DateOfBirth:    a.DateOfBirth,
		Score:          a.Risk.Score,
		Suggestion:     a.Risk.Suggestion,
		FinalStatus:    a.FinalStatus,
		CreatedAt:      a.CreatedAt,
		AlreadyExisted: existed,
	}
}

func applicantDetail(a *domain.Applicant) *ports.ApplicantDetail {
	return &ports.ApplicantDetail{
		ID:          a.ID,
		Name:        a.Name,
		DateOfBirth: a.DateOfBirth,
		IDImageRef:  a.IDImageRef,
		SelfieRef:   a.SelfieRef,
		Signals:     a.Signals,
		Risk:        a.Risk,
		FinalStatus: a.FinalStatus,
		CreatedAt:   a.CreatedAt,
	}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
