// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kidbank_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kidbank_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	RemoteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kidbank_openpayments_requests_total",
		Help: "Open Payments calls, labeled by operation and outcome",
	}, []string{"op", "outcome"})

	RemoteRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kidbank_openpayments_request_duration_seconds",
		Help:    "Latency distribution of Open Payments calls",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"op"})

	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "kidbank_openpayments_breaker_state",
		Help: "Circuit breaker state per host (0 closed, 1 half-open, 2 open)",
	}, []string{"host"})

	LedgerRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kidbank_ledger_retries_total",
		Help: "Balance updates retried after a serialization failure or deadlock",
	})

	LedgerUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kidbank_ledger_updates_total",
		Help: "Balance delta applications, labeled by outcome",
	}, []string{"outcome"})

	RecordsPersistedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kidbank_transaction_records_persisted_total",
		Help: "Transaction records upserted, labeled by direction",
	}, []string{"direction"})

	GrantTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kidbank_grant_transitions_total",
		Help: "Grant state transitions, labeled by target stage",
	}, []string{"stage"})

	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kidbank_sync_runs_total",
		Help: "Account reconciliation runs, labeled by outcome",
	}, []string{"outcome"})

	ClientCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kidbank_client_cache_lookups_total",
		Help: "Open Payments client cache lookups, labeled hit or miss",
	}, []string{"result"})
)
