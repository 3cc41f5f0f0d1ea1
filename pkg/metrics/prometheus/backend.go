package prometheus

import (
	"sync"
	"time"

	"github.com/marmos91/dittovfs/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	collectorsOnce sync.Once

	// Collectors are shared by every backend instance; the backend label
	// distinguishes them. Registering twice would panic.
	storageOpsTotal    *prometheus.CounterVec
	storageOpsDuration *prometheus.HistogramVec
)

// backendMetrics is the Prometheus implementation of metrics.BackendMetrics.
type backendMetrics struct {
	backend string
}

// NewBackendMetrics creates a Prometheus-backed BackendMetrics for one backend type.
//
// Parameters:
//   - backend: Backend type (e.g., "badger", "s3"), used as a label
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry not called).
func NewBackendMetrics(backend string) metrics.BackendMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopBackendMetrics()
	}

	registerBackendCollectors()

	return &backendMetrics{backend: backend}
}

func registerBackendCollectors() {
	collectorsOnce.Do(func() {
		reg := metrics.GetRegistry()
		storageOpsTotal = promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittovfs_backend_storage_operations_total",
				Help: "Total number of low-level backend storage operations",
			},
			[]string{"backend", "operation", "status"},
		)
		storageOpsDuration = promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dittovfs_backend_storage_operation_duration_seconds",
				Help: "Duration of low-level backend storage operations in seconds",
				Buckets: []float64{
					0.0001, // 100µs
					0.0005, // 500µs
					0.001,  // 1ms
					0.005,  // 5ms
					0.01,   // 10ms
					0.05,   // 50ms
					0.1,    // 100ms
					0.5,    // 500ms
				},
			},
			[]string{"backend", "operation"},
		)
	})
}

func (m *backendMetrics) RecordStorageOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	storageOpsTotal.WithLabelValues(m.backend, operation, status).Inc()
	storageOpsDuration.WithLabelValues(m.backend, operation).Observe(duration.Seconds())
}
