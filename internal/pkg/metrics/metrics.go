// Package metrics defines and registers all custom Prometheus metrics for
// the pokecodex service. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// init time and are served by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pokecodex"

// CatalogFetchesTotal counts completed catalog requests.
// Labels:
//   - kind: "list" or "search"
//   - result: "success", "error", or "stale" (discarded by a newer intent)
var CatalogFetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_fetches_total",
		Help:      "Total number of catalog fetches, by kind and result.",
	},
	[]string{"kind", "result"},
)

// CatalogFetchDuration measures catalog request latency end-to-end.
var CatalogFetchDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_fetch_duration_seconds",
		Help:      "Duration of catalog fetches from dispatch to completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)

// UniquenessChecksTotal counts debounced remote uniqueness checks.
// Labels:
//   - field: "username" or "email"
//   - result: "available", "taken", or "error" (fail-open)
var UniquenessChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uniqueness_checks_total",
		Help:      "Total number of remote uniqueness checks, by field and result.",
	},
	[]string{"field", "result"},
)

// RegistrationsTotal counts registration submissions by terminal branch.
// Label:
//   - result: "success", "conflict", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration submissions, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts by terminal branch.
// Label:
//   - result: "success", "rejected", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
