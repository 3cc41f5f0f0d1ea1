package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DriveLetter is the letter the suite mounts drives at.
const DriveLetter vfs.Letter = 'A'

// MountKernel mounts drive at DriveLetter on a fresh kernel.
// The kernel is closed when the test ends.
func MountKernel(test *testing.T, drive *vfs.Drive) *vfs.Kernel {
	test.Helper()

	kernel := vfs.NewKernel(nil)
	require.NoError(test, kernel.Mount(DriveLetter, drive))
	test.Cleanup(func() {
		_ = kernel.Close(context.Background())
	})
	return kernel
}

// AssertErrorCode asserts that err carries the given VFS error code.
func AssertErrorCode(test *testing.T, expected vfs.ErrorCode, err error, msgAndArgs ...any) {
	test.Helper()

	require.Error(test, err, msgAndArgs...)
	code, ok := vfs.CodeOf(err)
	require.True(test, ok, "error %v carries no VFS error code", err)
	assert.Equal(test, expected, code, msgAndArgs...)
}

// WriteFile creates path and writes content to it.
func WriteFile(test *testing.T, kernel *vfs.Kernel, path, content string) {
	test.Helper()

	ctx := context.Background()
	require.NoError(test, kernel.Create(ctx, path))
	require.NoError(test, kernel.WriteFile(ctx, path, []byte(content)))
}

// ReadFile reads path to the end.
func ReadFile(test *testing.T, kernel *vfs.Kernel, path string) string {
	test.Helper()

	data, err := kernel.ReadFile(context.Background(), path)
	require.NoError(test, err)
	return string(data)
}

// List returns the names in the directory at path.
func List(test *testing.T, kernel *vfs.Kernel, path string) []string {
	test.Helper()

	ctx := context.Background()
	dir, err := kernel.OpenDir(ctx, path)
	require.NoError(test, err)
	defer dir.Close()

	names, err := dir.List(ctx)
	require.NoError(test, err)
	return names
}
