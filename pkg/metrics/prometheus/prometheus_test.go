package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/marmos91/dittovfs/pkg/metrics"
	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernelMetrics(t *testing.T) {
	m := newKernelMetrics(prometheus.NewRegistry())

	m.RecordOperation("find", "A", time.Millisecond, nil)
	m.RecordOperation("find", "A", time.Millisecond, vfs.NewError(vfs.ErrNotFound, "x"))
	m.RecordOperation("read", "A", time.Millisecond, errors.New("disk on fire"))
	m.RecordBytes("read", 12)
	m.SetMountedDrives(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("find", "A", "success", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("find", "A", "error", "NotFound")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("read", "A", "error", "backend")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.bytesTransferred.WithLabelValues("read")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.mountedDrives))
}

func TestConstructors_FollowRegistry(t *testing.T) {
	if !metrics.IsEnabled() {
		assert.Equal(t, metrics.NewNoopKernelMetrics(), NewKernelMetrics())
		assert.Equal(t, metrics.NewNoopBackendMetrics(), NewBackendMetrics("badger"))
	}

	metrics.InitRegistry()

	km := NewKernelMetrics()
	require.IsType(t, &kernelMetrics{}, km)
	assert.Same(t, km, NewKernelMetrics(), "kernel collectors are registered once")

	badger := NewBackendMetrics("badger")
	s3 := NewBackendMetrics("s3")
	badger.RecordStorageOperation("get", time.Millisecond, nil)
	s3.RecordStorageOperation("GetObject", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(storageOpsTotal.WithLabelValues("badger", "get", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(storageOpsTotal.WithLabelValues("s3", "GetObject", "error")))
}
