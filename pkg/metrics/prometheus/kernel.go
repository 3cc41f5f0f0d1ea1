package prometheus

import (
	"sync"
	"time"

	"github.com/marmos91/dittovfs/pkg/metrics"
	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// kernelMetrics is the Prometheus implementation of metrics.KernelMetrics.
type kernelMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
	mountedDrives     prometheus.Gauge
}

var (
	kernelOnce     sync.Once
	kernelInstance *kernelMetrics
)

// NewKernelMetrics returns the Prometheus-backed KernelMetrics instance.
//
// The collectors are registered once; later calls return the same instance.
// Returns a no-op implementation if metrics are not enabled (InitRegistry not called).
func NewKernelMetrics() metrics.KernelMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopKernelMetrics()
	}

	kernelOnce.Do(func() {
		kernelInstance = newKernelMetrics(metrics.GetRegistry())
	})
	return kernelInstance
}

func newKernelMetrics(reg *prometheus.Registry) *kernelMetrics {
	return &kernelMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittovfs_kernel_operations_total",
				Help: "Total number of kernel operations by operation, drive, status and error code",
			},
			[]string{"operation", "drive", "status", "error_code"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dittovfs_kernel_operation_duration_seconds",
				Help: "Duration of kernel operations in seconds",
				Buckets: []float64{
					0.00001, // 10µs
					0.0001,  // 100µs
					0.001,   // 1ms
					0.01,    // 10ms
					0.1,     // 100ms
					1.0,     // 1s
				},
			},
			[]string{"operation", "drive"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittovfs_kernel_bytes_total",
				Help: "Total bytes read or written through file handles",
			},
			[]string{"direction"},
		),
		mountedDrives: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dittovfs_kernel_mounted_drives",
				Help: "Current number of mounted drives",
			},
		),
	}
}

func (m *kernelMetrics) RecordOperation(operation string, drive string, duration time.Duration, err error) {
	status := "success"
	errorCode := ""
	if err != nil {
		status = "error"
		if code, ok := vfs.CodeOf(err); ok {
			errorCode = code.String()
		} else {
			errorCode = "backend"
		}
	}

	m.operationsTotal.WithLabelValues(operation, drive, status, errorCode).Inc()
	m.operationDuration.WithLabelValues(operation, drive).Observe(duration.Seconds())
}

func (m *kernelMetrics) RecordBytes(direction string, bytes int64) {
	m.bytesTransferred.WithLabelValues(direction).Add(float64(bytes))
}

func (m *kernelMetrics) SetMountedDrives(count int) {
	m.mountedDrives.Set(float64(count))
}
