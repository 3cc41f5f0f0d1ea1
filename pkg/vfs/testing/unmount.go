package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *DriveTestSuite) RunUnmountTests(test *testing.T) {
	test.Run("Unmount_ClearsSlot", suite.TestUnmount_ClearsSlot)
	test.Run("Unmount_WithOpenHandles", suite.TestUnmount_WithOpenHandles)
}

// TestUnmount_ClearsSlot verifies the letter is free again after unmount.
func (suite *DriveTestSuite) TestUnmount_ClearsSlot(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	require.NoError(test, kernel.Mkdir(ctx, "A:/dir"))
	require.NoError(test, kernel.Unmount(ctx, DriveLetter))

	_, err := kernel.Find(ctx, "A:/dir")
	AssertErrorCode(test, vfs.ErrMissingDrive, err)

	require.NoError(test, kernel.Mount(DriveLetter, suite.NewDrive()))
	assert.Empty(test, List(test, kernel, "A:/"), "Fresh drive should be empty")
}

// TestUnmount_WithOpenHandles verifies handles that outlive the drive can
// still be released.
func (suite *DriveTestSuite) TestUnmount_WithOpenHandles(test *testing.T) {
	drive := suite.NewDrive()
	kernel := MountKernel(test, drive)
	ctx := context.Background()

	WriteFile(test, kernel, "A:/file", "data")

	root, err := kernel.Find(ctx, "A:/")
	require.NoError(test, err)
	file, err := kernel.Open(ctx, "A:/file")
	require.NoError(test, err)

	require.NoError(test, kernel.Unmount(ctx, DriveLetter))
	assert.True(test, drive.Unmounted())

	assert.NoError(test, file.Close())
	root.Release()
}
