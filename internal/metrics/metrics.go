package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP responses by route template and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigo_http_requests_total",
		Help: "The total number of HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	// RequestDuration observes handler latency by route template.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sigo_http_request_duration_seconds",
		Help:    "The HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// LoginAttemptsTotal counts logins by outcome (success, invalid_credentials, error).
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigo_login_attempts_total",
		Help: "The total number of login attempts by outcome",
	}, []string{"outcome"})

	// PowerBISyncTotal counts dashboard syncs by outcome.
	PowerBISyncTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigo_powerbi_sync_total",
		Help: "The total number of Power BI dashboard syncs by outcome",
	}, []string{"outcome"})

	// PowerBISyncedDashboards reports how many dashboards the last sync upserted.
	PowerBISyncedDashboards = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sigo_powerbi_synced_dashboards",
		Help: "The number of dashboards upserted by the last successful sync",
	})

	// CacheOperationsTotal counts user cache calls by operation and result.
	CacheOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sigo_cache_operations_total",
		Help: "The total number of cache operations by result",
	}, []string{"operation", "result"})
)
