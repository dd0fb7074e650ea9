package domain

import (
	"errors"
	"time"
)

// VerificationStatus represents the lifecycle state of a KYC applicant.
// Pending is the initial state; the other three are set only through an
// admin-issued review action and remain admin-mutable after that (soft
// terminality: a flagged applicant can still be approved after manual review).
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "PENDING"
	StatusApproved VerificationStatus = "APPROVED"
	StatusRejected VerificationStatus = "REJECTED"
	StatusFlagged  VerificationStatus = "FLAGGED"
)

// ReviewAction is an admin-issued command against an applicant.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionPending ReviewAction = "pending"
	ActionReject  ReviewAction = "reject"
	ActionFlag    ReviewAction = "flag"
)

// reviewTransitions is the full transition table keyed by
// (current status, action). Every admin action is legal from every state;
// keeping the table explicit makes that policy visible and testable instead
// of hiding it behind an unconstrained setter.
var reviewTransitions = map[VerificationStatus]map[ReviewAction]VerificationStatus{
	StatusPending: {
		ActionApprove: StatusApproved,
		ActionPending: StatusPending,
		ActionReject:  StatusRejected,
		ActionFlag:    StatusFlagged,
	},
	StatusApproved: {
		ActionApprove: StatusApproved,
		ActionPending: StatusPending,
		ActionReject:  StatusRejected,
		ActionFlag:    StatusFlagged,
	},
	StatusRejected: {
		ActionApprove: StatusApproved,
		ActionPending: StatusPending,
		ActionReject:  StatusRejected,
		ActionFlag:    StatusFlagged,
	},
	StatusFlagged: {
		ActionApprove: StatusApproved,
		ActionPending: StatusPending,
		ActionReject:  StatusRejected,
		ActionFlag:    StatusFlagged,
	},
}

var (
	ErrInvalidTransition  = errors.New("invalid review action")
	ErrApplicantNotFound  = errors.New("applicant not found")
	ErrUnauthorized       = errors.New("admin identity required")
	ErrInvalidSignal      = errors.New("signal outside declared domain")
	ErrExtractionFailed   = errors.New("signal extraction failed")
	ErrExtractionTimeout  = errors.New("signal extraction timed out")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrAdminExists        = errors.New("admin already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Apply resolves an admin action against the current status. Transitioning to
// the status the record already holds is a legal no-op; the caller still
// records an audit entry for it.
func (s VerificationStatus) Apply(action ReviewAction) (VerificationStatus, error) {
	next, ok := reviewTransitions[s][action]
	if !ok {
		return "", ErrInvalidTransition
	}
	return next, nil
}

// Applicant is the aggregate root for one upload-and-evaluate cycle.
// Signals, Fields and Risk are computed once at creation and change only
// through an explicit re-evaluation; FinalStatus changes only through an
// admin review action that is written atomically with its audit entry.
type Applicant struct {
	ID               string             `json:"id" bson:"_id,omitempty"`
	Name             string             `json:"name" bson:"name"`
	DateOfBirth      *time.Time         `json:"dob,omitempty" bson:"dob,omitempty"`
	IDImageRef       string             `json:"id_image" bson:"id_image"`
	SelfieRef        string             `json:"selfie" bson:"selfie"`
	SubmissionDigest string             `json:"-" bson:"submission_digest,omitempty"`
	Signals          SignalBundle       `json:"signals" bson:"signals"`
	Risk             RiskAssessment     `json:"risk" bson:"risk"`
	FinalStatus      VerificationStatus `json:"final_status" bson:"final_status"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
}
