package testing

import (
	"testing"

	"github.com/marmos91/dittovfs/pkg/vfs"
)

// DriveTestSuite is a conformance test suite for writable backends.
// It tests the operation contracts through the kernel, not implementation
// details, so every backend can run it against itself.
type DriveTestSuite struct {
	// NewDrive is a factory function that creates a fresh, empty drive for
	// each test. This ensures test isolation.
	NewDrive func() *vfs.Drive
}

// Run executes all tests in the suite.
func (suite *DriveTestSuite) Run(test *testing.T) {
	test.Run("Capabilities", suite.RunCapabilityTests)
	test.Run("Directory", suite.RunDirectoryTests)
	test.Run("File", suite.RunFileTests)
	test.Run("Remove", suite.RunRemoveTests)
	test.Run("Unmount", suite.RunUnmountTests)
}
