package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds prometheus instruments for the billing engine.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec

	PeriodsMaterialized *prometheus.CounterVec
	MaterializeRuns     prometheus.Counter
	ReportBuilds        prometheus.Counter
	ReportRows          prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_server_duration_ms",
			Help:    "HTTP request duration in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"endpoint", "status_code"}),

		PeriodsMaterialized: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "billing_periods_materialized_total",
			Help: "Billing periods created by the materializer, by outcome.",
		}, []string{"outcome"}),
		MaterializeRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "billing_materialize_runs_total",
			Help: "Materializer invocations.",
		}),
		ReportBuilds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reconciliation_report_builds_total",
			Help: "Reconciliation view builds.",
		}),
		ReportRows: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "reconciliation_report_rows",
			Help:    "Rows per reconciliation view build.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

// Outcomes recorded by PeriodsMaterialized.
const (
	OutcomeCreated = "created"
	OutcomeExists  = "exists"
	OutcomeFailed  = "failed"
)

// GinMiddleware records request duration with low-cardinality labels.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		endpoint := normalizeEndpoint(c.FullPath())
		start := time.Now()
		c.Next()

		m.RequestDuration.WithLabelValues(endpoint, strconv.Itoa(c.Writer.Status())).
			Observe(float64(time.Since(start).Milliseconds()))
	}
}

func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "unknown"
	}
	return endpoint
}
