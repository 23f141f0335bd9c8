// Package metrics defines and registers all custom Prometheus metrics for the
// portal. It is the single source of truth for metric names, labels, and help
// strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login, register and logout calls.
// Labels:
//   - op: "login", "register" or "logout"
//   - backend: "real" or "mock"
//   - result: "ok", "rejected", "partial" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of auth operations, by operation, backend and result.",
	},
	[]string{"op", "backend", "result"},
)

// SessionTransitionsTotal counts session changes by the phase they land in.
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state changes, by resulting phase.",
	},
	[]string{"phase"},
)

// SessionSubscribers tracks the current number of session event subscribers.
var SessionSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_subscribers",
		Help:      "Current number of session event subscribers.",
	},
)

// SessionEventsDroppedTotal counts events dropped because a subscriber was slow.
var SessionEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_dropped_total",
		Help:      "Total number of session events dropped for slow subscribers.",
	},
)

// ── Tutor metrics ─────────────────────────────────────────────────────────────

// TutorRequestsTotal counts tutor chat prompts.
// Label:
//   - result: "ok", "disabled", "empty" or "error"
var TutorRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tutor_requests_total",
		Help:      "Total number of tutor prompts, by result.",
	},
	[]string{"result"},
)

// TutorRequestDuration measures the remote completion round trip.
var TutorRequestDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tutor_request_duration_seconds",
		Help:      "Duration of generative-language completion calls.",
		Buckets:   prometheus.DefBuckets,
	},
)
