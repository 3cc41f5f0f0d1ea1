package metrics

import "time"

// BackendMetrics provides observability for the storage calls a backend makes
// underneath the operation table (database transactions, object requests).
//
// Backends accept a nil BackendMetrics and fall back to NewNoopBackendMetrics.
type BackendMetrics interface {
	// RecordStorageOperation records a low-level storage operation.
	//
	// Parameters:
	//   - operation: Storage operation (e.g., "get", "set", "scan", "GetObject")
	//   - duration: Time taken
	//   - err: Error if failed
	RecordStorageOperation(operation string, duration time.Duration, err error)
}

// NewNoopBackendMetrics returns a BackendMetrics that discards everything.
func NewNoopBackendMetrics() BackendMetrics {
	return noopBackendMetrics{}
}

type noopBackendMetrics struct{}

func (noopBackendMetrics) RecordStorageOperation(operation string, duration time.Duration, err error) {
}

// OrNoop returns m, or a no-op implementation when m is nil.
func OrNoop(m BackendMetrics) BackendMetrics {
	if m == nil {
		return NewNoopBackendMetrics()
	}
	return m
}
