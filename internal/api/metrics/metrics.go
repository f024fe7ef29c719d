// Package metrics defines and registers the custom Prometheus metrics of the
// school portal. It is the single source of truth for metric names, labels,
// and help strings.
//
// All metrics are registered with the default registry on package init via
// promauto; the /metrics endpoint serves them alongside echoprometheus'.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "school_portal"

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls issued to the school backend.
// Labels:
//   - method: HTTP method (e.g. "GET")
//   - status: status class ("2xx", "4xx", "5xx") or "error" for transport failures
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the school backend.",
	},
	[]string{"method", "status"},
)

// BackendRequestDuration measures round-trip time of a single backend call.
// Label:
//   - method: HTTP method
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of a single request to the school backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// TokenRefreshTotal counts refresh attempts triggered by a 401.
// Label:
//   - result: "success", "failure", or "aborted" (request context ended first)
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access token refresh attempts, by result.",
	},
	[]string{"result"},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - outcome: "allow", "login", or "role_root"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"outcome"},
)
