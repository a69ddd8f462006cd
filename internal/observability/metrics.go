package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	queries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "probectl",
			Subsystem: "agent",
			Name:      "queries_total",
			Help:      "Queries answered, by query and outcome.",
		},
		[]string{"agent", "query", "outcome"},
	)
	drops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "probectl",
			Subsystem: "agent",
			Name:      "drops_total",
			Help:      "Inbound datagrams dropped without a reply, by reason.",
		},
		[]string{"agent", "reason"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "probectl",
			Subsystem: "admin",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"agent", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "probectl",
			Subsystem: "admin",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"agent", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(queries, drops, httpRequests, httpDuration)
	})
}

func RecordQuery(agent, query, outcome string) {
	RegisterMetrics()
	queries.WithLabelValues(agent, query, outcome).Inc()
}

func RecordDrop(agent, reason string) {
	RegisterMetrics()
	drops.WithLabelValues(agent, reason).Inc()
}

func RecordHTTPRequest(agent, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(agent, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(agent, method, path, statusLabel).Observe(duration.Seconds())
}
