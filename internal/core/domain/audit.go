package domain

import "time"

// Audit actions. Status changes carry the resulting status as a suffix so the
// ledger alone reconstructs the applicant's review history.
const (
	AuditActionStatusChangePrefix = "status_change:"
	AuditActionReevaluate         = "reevaluate"
)

// StatusChangeAction builds the audit action string for a review transition.
func StatusChangeAction(next VerificationStatus) string {
	return AuditActionStatusChangePrefix + string(next)
}

// AuditLogEntry is one immutable row in the append-only admin action ledger.
// Every final_status mutation persists exactly one of these in the same
// transaction as the status write.
type AuditLogEntry struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	AdminUsername string    `json:"admin_username" bson:"admin_username"`
	Action        string    `json:"action" bson:"action"`
	ApplicantID   string    `json:"app_id" bson:"app_id"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
}
