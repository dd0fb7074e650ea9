package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/veriflow/kyc-system/internal/core/domain"
	"github.com/veriflow/kyc-system/internal/core/ports"
	"github.com/veriflow/kyc-system/internal/core/scoring"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubApplicantRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Applicant
	createErr error
	updateErr error
}

func newStubApplicantRepo() *stubApplicantRepo {
	return &stubApplicantRepo{byID: make(map[string]*domain.Applicant)}
}

func cloneApplicant(a *domain.Applicant) *domain.Applicant {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubApplicantRepo) Create(_ context.Context, a *domain.Applicant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.byID[a.ID] = cloneApplicant(a)
	return nil
}

func (r *stubApplicantRepo) FindByID(_ context.Context, id string) (*domain.Applicant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrApplicantNotFound
	}
	return cloneApplicant(a), nil
}

func (r *stubApplicantRepo) FindBySubmissionDigest(_ context.Context, digest string) (*domain.Applicant, error) {
	for _, a := range r.byID {
		if a.SubmissionDigest == digest {
			return cloneApplicant(a), nil
		}
	}
	return nil, domain.ErrApplicantNotFound
}

func (r *stubApplicantRepo) List(_ context.Context, f ports.ListApplicantsFilter) ([]*domain.Applicant, int64, error) {
	var matched []*domain.Applicant
	for _, a := range r.byID {
		if f.Status != "" && string(a.FinalStatus) != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, cloneApplicant(a))
	}
	return matched, int64(len(matched)), nil
}

func (r *stubApplicantRepo) UpdateAssessment(_ context.Context, id string, fields domain.ExtractedFields, signals domain.SignalBundle, risk domain.RiskAssessment) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrApplicantNotFound
	}
	if fields.Name != "" {
		a.Name = fields.Name
	}
	if fields.DateOfBirth != nil {
		a.DateOfBirth = fields.DateOfBirth
	}
	a.Signals = signals
	a.Risk = risk
	return nil
}

func (r *stubApplicantRepo) CountByStatus(_ context.Context) (map[domain.VerificationStatus]int64, error) {
	counts := make(map[domain.VerificationStatus]int64)
	for _, a := range r.byID {
		counts[a.FinalStatus]++
	}
	return counts, nil
}

type stubExtractor struct {
	signals    domain.SignalBundle
	text       string
	signalsErr error
	textErr    error
	calls      int
}

func (e *stubExtractor) ExtractSignals(_ context.Context, _, _ []byte) (domain.SignalBundle, error) {
	e.calls++
	if e.signalsErr != nil {
		return domain.SignalBundle{}, e.signalsErr
	}
	return e.signals, nil
}

func (e *stubExtractor) RecognizeText(_ context.Context, _ []byte) (string, error) {
	if e.textErr != nil {
		return "", e.textErr
	}
	return e.text, nil
}

type stubImageStore struct {
	files   map[string][]byte
	saveErr error
}

func newStubImageStore() *stubImageStore {
	return &stubImageStore{files: make(map[string][]byte)}
}

func (s *stubImageStore) Save(_ context.Context, name string, data []byte) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.files[name] = data
	return name, nil
}

func (s *stubImageStore) Load(_ context.Context, ref string) ([]byte, error) {
	data, ok := s.files[ref]
	if !ok {
		return nil, errors.New("image not found")
	}
	return data, nil
}

type stubDedup struct {
	seen      map[string]string
	lookupErr error
	markErr   error
}

func newStubDedup() *stubDedup {
	return &stubDedup{seen: make(map[string]string)}
}

func (d *stubDedup) Lookup(_ context.Context, digest string) (string, error) {
	if d.lookupErr != nil {
		return "", d.lookupErr
	}
	return d.seen[digest], nil
}

func (d *stubDedup) Mark(_ context.Context, digest, applicantID string) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.seen[digest] = applicantID
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func goodSignals() domain.SignalBundle {
	return domain.SignalBundle{FaceConfidence: 0.95, LivenessPassed: true, BlurVariance: 850, ImageSizeOK: true}
}

const sampleOCR = "NAME: John Michael Smith\nDOB: 14/03/1992"

type verificationFixture struct {
	repo      *stubApplicantRepo
	extractor *stubExtractor
	images    *stubImageStore
	dedup     *stubDedup
	svc       *VerificationService
}

func newVerificationFixture(t *testing.T, degrade bool) *verificationFixture {
	t.Helper()
	scorer, err := scoring.NewScorer(scoring.DefaultConfig())
	if err != nil {
		t.Fatalf("scorer: %v", err)
	}

	f := &verificationFixture{
		repo:      newStubApplicantRepo(),
		extractor: &stubExtractor{signals: goodSignals(), text: sampleOCR},
		images:    newStubImageStore(),
		dedup:     newStubDedup(),
	}
	f.svc = NewVerificationService(
		f.repo, f.extractor, f.images, scorer, scoring.NewEngine(),
		f.dedup, time.Second, degrade, discardLogger,
	)
	return f
}

func sampleInput() ports.SubmitInput {
	return ports.SubmitInput{IDImage: []byte("id-bytes"), Selfie: []byte("selfie-bytes")}
}

// ---------------------------------------------------------------------------
// Submit tests
// ---------------------------------------------------------------------------

func TestVerificationService_Submit_PersistsPendingApplicant(t *testing.T) {
	f := newVerificationFixture(t, false)

	result, err := f.svc.Submit(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FinalStatus != domain.StatusPending {
		t.Errorf("final status must start at PENDING regardless of suggestion, got %s", result.FinalStatus)
	}
	if result.Suggestion != domain.SuggestionApproved {
		t.Errorf("expected suggestion APPROVED for strong evidence, got %s", result.Suggestion)
	}
	if result.Name != "John Michael Smith" {
		t.Errorf("expected parsed name, got %q", result.Name)
	}
	if result.DateOfBirth == nil {
		t.Error("expected parsed date of birth")
	}
	if result.AlreadyExisted {
		t.Error("fresh submission must not report a replay")
	}

	stored, ok := f.repo.byID[result.ID]
	if !ok {
		t.Fatal("applicant not persisted")
	}
	if stored.SubmissionDigest == "" {
		t.Error("submission digest not stored")
	}
	if stored.IDImageRef == "" || stored.SelfieRef == "" {
		t.Error("image refs not stored")
	}
	if len(f.images.files) != 2 {
		t.Errorf("expected 2 stored images, got %d", len(f.images.files))
	}
	if f.dedup.seen[stored.SubmissionDigest] != result.ID {
		t.Error("dedup key not marked")
	}
}

func TestVerificationService_Submit_NameOverrideWins(t *testing.T) {
	f := newVerificationFixture(t, false)

	input := sampleInput()
	input.NameOverride = "Override Name"
	result, err := f.svc.Submit(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Name != "Override Name" {
		t.Errorf("override must take precedence over OCR, got %q", result.Name)
	}
}

func TestVerificationService_Submit_IdempotentReplay(t *testing.T) {
	f := newVerificationFixture(t, false)

	first, err := f.svc.Submit(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	second, err := f.svc.Submit(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("replay must return the stored applicant: got %s, want %s", second.ID, first.ID)
	}
	if !second.AlreadyExisted {
		t.Error("replay must set AlreadyExisted")
	}
	if len(f.repo.byID) != 1 {
		t.Errorf("expected 1 stored applicant, got %d", len(f.repo.byID))
	}
	if f.extractor.calls != 1 {
		t.Errorf("replay must not re-run extraction, got %d calls", f.extractor.calls)
	}
}

func TestVerificationService_Submit_ReplayFallsBackToRepository(t *testing.T) {
	f := newVerificationFixture(t, false)

	first, err := f.svc.Submit(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	// Fast dedup store lost its key; the digest index remains authoritative.
	f.dedup.seen = map[string]string{}

	second, err := f.svc.Submit(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if second.ID != first.ID || !second.AlreadyExisted {
		t.Error("repository digest lookup must catch the duplicate")
	}
}

func TestVerificationService_Submit_DifferentImagesCreateNewApplicants(t *testing.T) {
	f := newVerificationFixture(t, false)

	_, _ = f.svc.Submit(context.Background(), sampleInput())
	other := ports.SubmitInput{IDImage: []byte("other-id"), Selfie: []byte("other-selfie")}
	_, err := f.svc.Submit(context.Background(), other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.repo.byID) != 2 {
		t.Errorf("distinct image pairs must create distinct applicants, got %d", len(f.repo.byID))
	}
}

func TestVerificationService_Submit_ExtractionFailurePropagates(t *testing.T) {
	f := newVerificationFixture(t, false)
	f.extractor.signalsErr = domain.ErrExtractionFailed

	_, err := f.svc.Submit(context.Background(), sampleInput())
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if len(f.repo.byID) != 0 {
		t.Error("no applicant must be persisted on extraction failure")
	}
}

func TestVerificationService_Submit_DegradeSubstitutesWorstCase(t *testing.T) {
	f := newVerificationFixture(t, true)
	f.extractor.signalsErr = domain.ErrExtractionFailed

	result, err := f.svc.Submit(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("degrade mode must not propagate the failure: %v", err)
	}
	if result.Suggestion != domain.SuggestionFlagged {
		t.Errorf("worst-case signals must flag the applicant, got %s", result.Suggestion)
	}

	stored := f.repo.byID[result.ID]
	if stored.Signals != domain.WorstCaseSignals() {
		t.Errorf("expected worst-case signals, got %+v", stored.Signals)
	}
}

func TestVerificationService_Submit_TimeoutIsNotDegraded(t *testing.T) {
	f := newVerificationFixture(t, true)
	f.extractor.signalsErr = domain.ErrExtractionTimeout

	_, err := f.svc.Submit(context.Background(), sampleInput())
	if !errors.Is(err, domain.ErrExtractionTimeout) {
		t.Fatalf("timeouts must surface even in degrade mode, got %v", err)
	}
}

func TestVerificationService_Submit_RepoErrorPropagates(t *testing.T) {
	f := newVerificationFixture(t, false)
	f.repo.createErr = errors.New("db unavailable")

	if _, err := f.svc.Submit(context.Background(), sampleInput()); err == nil {
		t.Fatal("expected error when repo fails")
	}
}

func TestVerificationService_Submit_DedupMarkFailureIsNotFatal(t *testing.T) {
	f := newVerificationFixture(t, false)
	f.dedup.markErr = errors.New("redis down")

	result, err := f.svc.Submit(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("a dedup mark failure must not fail the submission: %v", err)
	}
	if _, ok := f.repo.byID[result.ID]; !ok {
		t.Error("applicant must still be persisted")
	}
}

// ---------------------------------------------------------------------------
// Reevaluate tests
// ---------------------------------------------------------------------------

func TestVerificationService_Reevaluate_UpdatesAssessmentOnly(t *testing.T) {
	f := newVerificationFixture(t, false)

	result, err := f.svc.Submit(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Admin approved in the meantime; new evidence is weaker.
	f.repo.byID[result.ID].FinalStatus = domain.StatusApproved
	f.extractor.signals = domain.SignalBundle{FaceConfidence: 0.30, LivenessPassed: true, BlurVariance: 100, ImageSizeOK: true}

	if err := f.svc.Reevaluate(context.Background(), result.ID); err != nil {
		t.Fatalf("reevaluate failed: %v", err)
	}

	stored := f.repo.byID[result.ID]
	if stored.Risk.Suggestion != domain.SuggestionFlagged {
		t.Errorf("expected updated suggestion FLAGGED, got %s", stored.Risk.Suggestion)
	}
	if stored.FinalStatus != domain.StatusApproved {
		t.Errorf("reevaluation must never touch final_status, got %s", stored.FinalStatus)
	}
}

func TestVerificationService_Reevaluate_DeterministicForUnchangedInputs(t *testing.T) {
	f := newVerificationFixture(t, false)

	result, err := f.svc.Submit(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	before := f.repo.byID[result.ID].Risk

	if err := f.svc.Reevaluate(context.Background(), result.ID); err != nil {
		t.Fatalf("reevaluate failed: %v", err)
	}

	if after := f.repo.byID[result.ID].Risk; after != before {
		t.Errorf("unchanged inputs must yield an unchanged assessment: %+v != %+v", after, before)
	}
}

func TestVerificationService_Reevaluate_UnknownApplicant(t *testing.T) {
	f := newVerificationFixture(t, false)

	err := f.svc.Reevaluate(context.Background(), "missing")
	if !errors.Is(err, domain.ErrApplicantNotFound) {
		t.Fatalf("expected ErrApplicantNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Read tests
// ---------------------------------------------------------------------------

func TestVerificationService_GetApplicant(t *testing.T) {
	f := newVerificationFixture(t, false)
	result, _ := f.svc.Submit(context.Background(), sampleInput())

	detail, err := f.svc.GetApplicant(context.Background(), result.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.ID != result.ID || detail.FinalStatus != domain.StatusPending {
		t.Errorf("unexpected detail: %+v", detail)
	}

	if _, err := f.svc.GetApplicant(context.Background(), "missing"); !errors.Is(err, domain.ErrApplicantNotFound) {
		t.Errorf("expected ErrApplicantNotFound, got %v", err)
	}
}

func TestVerificationService_Stats(t *testing.T) {
	f := newVerificationFixture(t, false)

	_, _ = f.svc.Submit(context.Background(), sampleInput())
	other, _ := f.svc.Submit(context.Background(), ports.SubmitInput{IDImage: []byte("a"), Selfie: []byte("b")})
	f.repo.byID[other.ID].FinalStatus = domain.StatusApproved

	stats, err := f.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 2 || stats.Pending != 1 || stats.Approved != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestVerificationService_ListApplicants_NormalizesPaging(t *testing.T) {
	f := newVerificationFixture(t, false)
	_, _ = f.svc.Submit(context.Background(), sampleInput())

	result, err := f.svc.ListApplicants(context.Background(), ports.ListApplicantsInput{Page: -3, Limit: 100000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Page != 1 {
		t.Errorf("page must be normalized to 1, got %d", result.Page)
	}
	if result.Limit != 100 {
		t.Errorf("limit must be capped at 100, got %d", result.Limit)
	}
	if result.Total != 1 || result.TotalPages != 1 {
		t.Errorf("unexpected totals: %+v", result)
	}
}
