package config

import (
	"github.com/marmos91/dittovfs/pkg/metrics"
	promMetrics "github.com/marmos91/dittovfs/pkg/metrics/prometheus"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// Kernel is the metrics collector for the kernel (never nil, uses noop if disabled)
	Kernel metrics.KernelMetrics

	// Backend creates storage metrics per backend type (nil if disabled)
	Backend BackendMetricsFactory
}

// InitializeMetrics creates and initializes all metrics components based on configuration.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server
//   - Creates Prometheus-backed metrics instances for all components
//
// If metrics are disabled:
//   - Returns nil server
//   - Returns no-op metrics implementations (zero overhead)
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{
			Kernel: metrics.NewNoopKernelMetrics(),
		}
	}

	metrics.InitRegistry()

	server := metrics.NewServer(metrics.ServerConfig{
		Port: cfg.Metrics.Port,
	})

	return &MetricsResult{
		Server:  server,
		Kernel:  promMetrics.NewKernelMetrics(),
		Backend: promMetrics.NewBackendMetrics,
	}
}
