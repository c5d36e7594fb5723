// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRequestsTotal counts handled HTTP requests by method, route and status.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "settlement_http_requests_total",
		Help: "Total HTTP requests handled, by method, route and status code.",
	},
	[]string{"method", "route", "status"},
)

// SettlementSiteOutcomes counts per-site settlement outcomes by status.
var SettlementSiteOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "settlement_site_outcomes_total",
		Help: "Per-site settlement outcomes, by status (SUCCESS, SKIPPED, ERROR).",
	},
	[]string{"status"},
)

// SettlementBatchRuns counts completed settlement batch runs.
var SettlementBatchRuns = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "settlement_batch_runs_total",
		Help: "Total settlement batch runs that completed the site loop.",
	},
)
