package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *DriveTestSuite) RunRemoveTests(test *testing.T) {
	test.Run("Remove_File", suite.TestRemove_File)
	test.Run("Remove_DirectoryTree", suite.TestRemove_DirectoryTree)
	test.Run("Remove_NotFound", suite.TestRemove_NotFound)
	test.Run("Remove_Recreate", suite.TestRemove_Recreate)
}

// TestRemove_File verifies a removed file disappears from its directory.
func (suite *DriveTestSuite) TestRemove_File(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	WriteFile(test, kernel, "A:/gone", "bye")
	WriteFile(test, kernel, "A:/kept", "hi")

	require.NoError(test, kernel.Remove(ctx, "A:/gone"))

	_, err := kernel.Find(ctx, "A:/gone")
	AssertErrorCode(test, vfs.ErrNotFound, err)
	assert.Equal(test, []string{"kept"}, List(test, kernel, "A:/"))
}

// TestRemove_DirectoryTree verifies directories are removed with their
// contents.
func (suite *DriveTestSuite) TestRemove_DirectoryTree(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	require.NoError(test, kernel.Mkdir(ctx, "A:/tree"))
	require.NoError(test, kernel.Mkdir(ctx, "A:/tree/branch"))
	WriteFile(test, kernel, "A:/tree/branch/leaf", "data")

	require.NoError(test, kernel.Remove(ctx, "A:/tree"))

	_, err := kernel.Find(ctx, "A:/tree/branch/leaf")
	AssertErrorCode(test, vfs.ErrNotFound, err)
	assert.Empty(test, List(test, kernel, "A:/"))
}

// TestRemove_NotFound verifies removing an absent name fails.
func (suite *DriveTestSuite) TestRemove_NotFound(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())

	err := kernel.Remove(context.Background(), "A:/absent")
	AssertErrorCode(test, vfs.ErrNotFound, err)
}

// TestRemove_Recreate verifies a removed name can be reused and starts empty.
func (suite *DriveTestSuite) TestRemove_Recreate(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	WriteFile(test, kernel, "A:/file", "old content")
	require.NoError(test, kernel.Remove(ctx, "A:/file"))
	require.NoError(test, kernel.Create(ctx, "A:/file"))

	assert.Empty(test, ReadFile(test, kernel, "A:/file"))
}
