// Package metrics provides Prometheus metrics collection for DittoVFS components.
//
// All metrics are optional. Until InitRegistry is called every constructor
// returns a no-op implementation, so the kernel and the backends run the same
// code path with or without collection.
//
// Usage:
//
//	// Initialize global registry (typically in main.go)
//	metrics.InitRegistry()
//
//	// Create metrics instances for components
//	kernelMetrics := prometheus.NewKernelMetrics()
//	badgerMetrics := prometheus.NewBackendMetrics("badger")
//
//	// Or use nil for no-op behavior
//	kernel := vfs.NewKernel(nil)
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// registry is written once by InitRegistry and read everywhere else
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry.
//
// The registry also carries the Go runtime and process collectors. It is safe
// to call multiple times - subsequent calls are ignored.
func InitRegistry() {
	registryOnce.Do(func() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		registry = reg
	})
}

// GetRegistry returns the global Prometheus registry, or nil when metrics
// are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}
