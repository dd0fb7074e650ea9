package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type adminResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	Token string         `json:"token,omitempty"`
	Admin *adminResponse `json:"admin,omitempty"`
}

// --- Applicants ---

// submitApplicantResponse is returned after the evaluation pipeline has run.
// The suggestion is advisory; final_status always starts at PENDING.
type submitApplicantResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DateOfBirth *string `json:"date_of_birth"`
	RiskScore   float64 `json:"risk_score"`
	Suggestion  string  `json:"ai_suggestion"`
	FinalStatus string  `json:"final_status"`
	CreatedAt   string  `json:"created_at"`
	// AlreadyExisted reports that the same image pair was submitted before
	// and the stored evaluation was replayed.
	AlreadyExisted bool `json:"already_existed"`
}

type signalsResponse struct {
	FaceConfidence float64 `json:"face_confidence"`
	LivenessPassed bool    `json:"liveness_passed"`
	BlurVariance   float64 `json:"blur_variance"`
	ImageSizeOK    bool    `json:"image_size_ok"`
}

type getApplicantResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	DateOfBirth *string         `json:"date_of_birth"`
	Signals     signalsResponse `json:"signals"`
	RiskScore   float64         `json:"risk_score"`
	Suggestion  string          `json:"ai_suggestion"`
	FinalStatus string          `json:"final_status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// applicantSummaryResponse is the lightweight item used in list responses.
// It intentionally omits the raw signals to keep payloads small.
type applicantSummaryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	RiskScore   float64   `json:"risk_score"`
	Suggestion  string    `json:"ai_suggestion"`
	FinalStatus string    `json:"final_status"`
	CreatedAt   time.Time `json:"created_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listApplicantsResponse struct {
	Data       []applicantSummaryResponse `json:"data"`
	Pagination paginationResponse         `json:"pagination"`
}

type statsResponse struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
	Pending  int64 `json:"pending"`
	Rejected int64 `json:"rejected"`
	Flagged  int64 `json:"flagged"`
}

// --- Review ---

type statusActionRequest struct {
	Action string `json:"action" validate:"required,oneof=approve pending reject flag"`
}

type reevaluateResponse struct {
	ApplicantID string `json:"applicant_id"`
	Queued      bool   `json:"queued"`
}

// --- Audit ---

type auditEntryResponse struct {
	ID            string    `json:"id"`
	AdminUsername string    `json:"admin_username"`
	Action        string    `json:"action"`
	ApplicantID   string    `json:"applicant_id"`
	Timestamp     time.Time `json:"timestamp"`
}

type listAuditResponse struct {
	Data       []auditEntryResponse `json:"data"`
	Pagination paginationResponse   `json:"pagination"`
}
