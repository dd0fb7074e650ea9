package handler

import (
	"time"

	"github.com/veriflow/kyc-system/internal/core/domain"
	"github.com/veriflow/kyc-system/internal/core/ports"
)

const dateLayout = "2006-01-02"

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

// --- Service result → HTTP response ---

func toAdminResponse(a *domain.Admin) *adminResponse {
	if a == nil {
		return nil
	}
	return &adminResponse{
		ID:        a.ID,
		Username:  a.Username,
		CreatedAt: a.CreatedAt.UTC(),
	}
}

func toSubmitResponse(r *ports.SubmitResult) submitApplicantResponse {
	return submitApplicantResponse{
		ID:             r.ID,
		Name:           r.Name,
		DateOfBirth:    formatDate(r.DateOfBirth),
		RiskScore:      r.Score,
		Suggestion:     string(r.Suggestion),
		FinalStatus:    string(r.FinalStatus),
		CreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339),
		AlreadyExisted: r.AlreadyExisted,
	}
}

func toGetResponse(d *ports.ApplicantDetail) getApplicantResponse {
	return getApplicantResponse{
		ID:          d.ID,
		Name:        d.Name,
		DateOfBirth: formatDate(d.DateOfBirth),
		Signals: signalsResponse{
			FaceConfidence: d.Signals.FaceConfidence,
			LivenessPassed: d.Signals.LivenessPassed,
			BlurVariance:   d.Signals.BlurVariance,
			ImageSizeOK:    d.Signals.ImageSizeOK,
		},
		RiskScore:   d.Risk.Score,
		Suggestion:  string(d.Risk.Suggestion),
		FinalStatus: string(d.FinalStatus),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func toListResponse(r *ports.ListApplicantsResult) listApplicantsResponse {
	items := make([]applicantSummaryResponse, len(r.Items))
	for i, a := range r.Items {
		items[i] = applicantSummaryResponse{
			ID:          a.ID,
			Name:        a.Name,
			RiskScore:   a.Score,
			Suggestion:  string(a.Suggestion),
			FinalStatus: string(a.FinalStatus),
			CreatedAt:   a.CreatedAt.UTC(),
		}
	}
	return listApplicantsResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}

func toStatsResponse(r *ports.StatsResult) statsResponse {
	return statsResponse{
		Total:    r.Total,
		Approved: r.Approved,
		Pending:  r.Pending,
		Rejected: r.Rejected,
		Flagged:  r.Flagged,
	}
}

func toAuditResponse(r *ports.AuditQueryResult) listAuditResponse {
	entries := make([]auditEntryResponse, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = auditEntryResponse{
			ID:            e.ID,
			AdminUsername: e.AdminUsername,
			Action:        e.Action,
			ApplicantID:   e.ApplicantID,
			Timestamp:     e.Timestamp.UTC(),
		}
	}
	return listAuditResponse{
		Data: entries,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}
