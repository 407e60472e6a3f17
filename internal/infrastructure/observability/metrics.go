package observability

import (
	"errors"
	"time"

	"github.com/damon-houk/currency-quote/internal/domain/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records the outcome of one operation
type Metrics interface {
	Observe(operation string, duration time.Duration, err error)
}

// NopMetrics discards every observation
type NopMetrics struct{}

// Observe does nothing
func (NopMetrics) Observe(string, time.Duration, error) {}

// PrometheusMetrics exports operation counters and latencies
type PrometheusMetrics struct {
	CallsTotal  *prometheus.CounterVec
	ErrorsTotal *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the collectors with reg
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		CallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_calls_total",
				Help:      "Total number of quote pipeline operations",
			},
			[]string{"operation"},
		),

		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_errors_total",
				Help:      "Total number of failed quote pipeline operations by error kind",
			},
			[]string{"operation", "kind"},
		),

		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Quote pipeline operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// Observe counts the call, records its duration and counts the error by kind
func (m *PrometheusMetrics) Observe(operation string, duration time.Duration, err error) {
	m.CallsTotal.WithLabelValues(operation).Inc()
	m.Duration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.ErrorsTotal.WithLabelValues(operation, ErrorKind(err)).Inc()
	}
}

// ErrorKind names the kind of a pipeline error for labelling
func ErrorKind(err error) string {
	var e *entity.Error
	if errors.As(err, &e) {
		return e.Kind.String()
	}
	return "unknown"
}
