// Package metrics defines and registers the custom Prometheus metrics of the
// tracker API. Metrics are registered with the default registry at package
// init through promauto; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracker"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid", or "rate_limited"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AdminOperationsTotal counts privileged account operations.
// Labels:
//   - operation: "delete_user" or "change_password"
//   - outcome: "success", "failure", or "denied"
var AdminOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_operations_total",
		Help:      "Total number of admin account operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notifications produced by due computation.
// Labels:
//   - kind: "routine" or "task"
//   - urgency: "now", "today", or "tomorrow"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of due notifications computed.",
	},
	[]string{"kind", "urgency"},
)

// ItemsSkippedTotal counts stored items ignored because a value was malformed.
// Label:
//   - reason: "schedule", "days", or "due_date"
var ItemsSkippedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_skipped_total",
		Help:      "Total number of items skipped during due computation because of malformed data.",
	},
	[]string{"reason"},
)

// DueComputationDuration measures one due computation for one user.
var DueComputationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "due_computation_duration_seconds",
		Help:      "Duration of due notification computation, store reads included.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Email metrics ─────────────────────────────────────────────────────────────

// EmailsTotal counts email dispatch decisions.
// Label:
//   - result: "queued", "dropped", "sent", or "failed"
var EmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_total",
		Help:      "Total number of notification emails, by dispatch result.",
	},
	[]string{"result"},
)

// EmailQueueDepth tracks pending emails in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index
var EmailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "email_queue_depth",
		Help:      "Current number of emails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
