package metrics

import (
	"time"
)

// KernelMetrics provides observability for VFS kernel operations.
//
// Implementations can collect metrics about path resolution, file and
// directory creation, opens and mount lifecycle. This interface is optional -
// if not provided to the kernel, a no-op implementation is used with zero
// overhead.
//
// Example usage:
//
//	// With metrics enabled
//	m := prometheus.NewKernelMetrics()
//	kernel := vfs.NewKernel(m)
//
//	// Without metrics (no-op)
//	kernel := vfs.NewKernel(nil)
type KernelMetrics interface {
	// RecordOperation records a completed kernel operation.
	//
	// Parameters:
	//   - operation: Kernel operation name (e.g., "find", "create", "mount")
	//   - drive: Drive letter the operation targeted ("" if unknown)
	//   - duration: Time taken to complete the operation
	//   - err: Error if the operation failed, nil if successful
	RecordOperation(operation string, drive string, duration time.Duration, err error)

	// RecordBytes records bytes moved through file handles.
	//
	// Parameters:
	//   - direction: "read" or "write"
	//   - bytes: Number of bytes transferred
	RecordBytes(direction string, bytes int64)

	// SetMountedDrives updates the number of mounted drives.
	SetMountedDrives(count int)
}

// NewNoopKernelMetrics returns a KernelMetrics that discards everything.
func NewNoopKernelMetrics() KernelMetrics {
	return noopKernelMetrics{}
}

type noopKernelMetrics struct{}

func (noopKernelMetrics) RecordOperation(operation string, drive string, duration time.Duration, err error) {
}
func (noopKernelMetrics) RecordBytes(direction string, bytes int64) {}
func (noopKernelMetrics) SetMountedDrives(count int)                {}
