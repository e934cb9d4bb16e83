package metrics

import (
	"time"

	pkgerrors "github.com/angelmondragon/retail-backend/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records latency and outcome of data-access operations.
// A nil *OperationMetrics is valid and records nothing.
type OperationMetrics struct {
	duration          *prometheus.HistogramVec
	success           *prometheus.CounterVec
	failure           *prometheus.CounterVec
	insufficientStock prometheus.Counter
}

// NewOperationMetrics registers the operation metrics on the provided registerer.
func NewOperationMetrics(reg prometheus.Registerer) *OperationMetrics {
	if reg == nil {
		return &OperationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retail_operation_duration_seconds",
		Help:    "Duration of data-access operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retail_operation_success_total",
		Help: "Successful data-access operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retail_operation_failure_total",
		Help: "Failed data-access operations by error code.",
	}, []string{"operation", "code"})
	insufficientStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "retail_sales_insufficient_stock_total",
		Help: "Sale attempts rejected because stock could not cover the quantity.",
	})
	reg.MustRegister(duration, success, failure, insufficientStock)
	return &OperationMetrics{
		duration:          duration,
		success:           success,
		failure:           failure,
		insufficientStock: insufficientStock,
	}
}

// Observe records the elapsed time since start and the outcome carried by err.
func (m *OperationMetrics) Observe(op string, start time.Time, err error) {
	if m == nil || m.duration == nil {
		return
	}
	op = normalizeLabel(op)
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err == nil {
		m.success.WithLabelValues(op).Inc()
		return
	}
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	m.failure.WithLabelValues(op, string(code)).Inc()
}

// IncInsufficientStock counts a sale rejected by the stock guard.
func (m *OperationMetrics) IncInsufficientStock() {
	if m == nil || m.insufficientStock == nil {
		return
	}
	m.insufficientStock.Inc()
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}
