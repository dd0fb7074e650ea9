// Package metrics defines and registers all custom Prometheus metrics for
// the KYC verification API. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kyc"

// ── Verification metrics ─────────────────────────────────────────────────────

// VerificationsTotal counts completed evaluations.
// Label:
//   - suggestion: the provisional suggestion ("APPROVED", "PENDING", "FLAGGED")
var VerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Total number of applicant evaluations, by provisional suggestion.",
	},
	[]string{"suggestion"},
)

// RiskScore observes the combined risk score of each evaluation.
var RiskScore = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "risk_score",
		Help:      "Distribution of combined risk scores.",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11), // 0.0 … 1.0
	},
)

// ExtractionErrorsTotal counts failed extractor calls.
// Label:
//   - reason: "failed" or "timeout"
var ExtractionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extraction_errors_total",
		Help:      "Total number of signal extraction failures, by reason.",
	},
	[]string{"reason"},
)

// ── Review metrics ───────────────────────────────────────────────────────────

// StatusTransitionsTotal counts admin review transitions.
// Labels:
//   - action: the review action applied ("approve", "pending", "reject", "flag")
//   - to: the resulting final status
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Total number of admin status transitions, by action and resulting status.",
	},
	[]string{"action", "to"},
)

// ReevalQueueDepth tracks jobs waiting in each re-evaluation worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ReevalQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reeval_queue_depth",
		Help:      "Current number of jobs pending in each re-evaluation worker channel.",
	},
	[]string{"worker_id"},
)
