package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *DriveTestSuite) RunDirectoryTests(test *testing.T) {
	test.Run("Mkdir_Success", suite.TestMkdir_Success)
	test.Run("Mkdir_Nested", suite.TestMkdir_Nested)
	test.Run("Mkdir_Duplicate", suite.TestMkdir_Duplicate)
	test.Run("Mkdir_MissingParent", suite.TestMkdir_MissingParent)
	test.Run("Find_NotFound", suite.TestFind_NotFound)
	test.Run("Find_TrailingSlash", suite.TestFind_TrailingSlash)
	test.Run("OpenDir_OnFile", suite.TestOpenDir_OnFile)
	test.Run("Walk_ThroughFile", suite.TestWalk_ThroughFile)
	test.Run("List_Entries", suite.TestList_Entries)
}

// TestMkdir_Success verifies a new directory can be found and opened.
func (suite *DriveTestSuite) TestMkdir_Success(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	require.NoError(test, kernel.Mkdir(ctx, "A:/docs"))

	dir, err := kernel.OpenDir(ctx, "A:/docs")
	require.NoError(test, err)
	defer dir.Close()

	names, err := dir.List(ctx)
	require.NoError(test, err)
	assert.Empty(test, names, "New directory should be empty")
}

// TestMkdir_Nested verifies directories can be created several levels deep.
func (suite *DriveTestSuite) TestMkdir_Nested(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	require.NoError(test, kernel.Mkdir(ctx, "A:/a"))
	require.NoError(test, kernel.Mkdir(ctx, "A:/a/b"))
	require.NoError(test, kernel.Mkdir(ctx, "A:/a/b/c"))

	entry, err := kernel.Find(ctx, "A:/a/b/c")
	require.NoError(test, err)
	entry.Release()

	assert.Equal(test, []string{"c"}, List(test, kernel, "A:/a/b"))
}

// TestMkdir_Duplicate verifies duplicate names are rejected.
func (suite *DriveTestSuite) TestMkdir_Duplicate(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	require.NoError(test, kernel.Mkdir(ctx, "A:/dup"))

	err := kernel.Mkdir(ctx, "A:/dup")
	AssertErrorCode(test, vfs.ErrAlreadyExists, err, "Second mkdir should fail")

	err = kernel.Create(ctx, "A:/dup")
	AssertErrorCode(test, vfs.ErrAlreadyExists, err, "File over directory should fail")

	assert.Equal(test, []string{"dup"}, List(test, kernel, "A:/"))
}

// TestMkdir_MissingParent verifies creation below a missing directory fails.
func (suite *DriveTestSuite) TestMkdir_MissingParent(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())

	err := kernel.Mkdir(context.Background(), "A:/missing/child")
	AssertErrorCode(test, vfs.ErrNotFound, err)
}

// TestFind_NotFound verifies lookups of absent names.
func (suite *DriveTestSuite) TestFind_NotFound(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())

	_, err := kernel.Find(context.Background(), "A:/nothing")
	AssertErrorCode(test, vfs.ErrNotFound, err)
}

// TestFind_TrailingSlash verifies one trailing '/' is ignored.
func (suite *DriveTestSuite) TestFind_TrailingSlash(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	require.NoError(test, kernel.Mkdir(ctx, "A:/dir"))

	entry, err := kernel.Find(ctx, "A:/dir/")
	require.NoError(test, err)
	defer entry.Release()

	dir, err := entry.OpenDir(ctx)
	require.NoError(test, err)
	_ = dir.Close()
}

// TestOpenDir_OnFile verifies a file entry cannot be opened as a directory.
func (suite *DriveTestSuite) TestOpenDir_OnFile(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	require.NoError(test, kernel.Create(ctx, "A:/file"))

	_, err := kernel.OpenDir(ctx, "A:/file")
	AssertErrorCode(test, vfs.ErrIsNotDirectory, err)
}

// TestWalk_ThroughFile verifies a file used as an intermediate component
// fails with IsNotDirectory.
func (suite *DriveTestSuite) TestWalk_ThroughFile(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	require.NoError(test, kernel.Create(ctx, "A:/file"))

	_, err := kernel.Find(ctx, "A:/file/child")
	AssertErrorCode(test, vfs.ErrIsNotDirectory, err)
}

// TestList_Entries verifies listing returns every child exactly once.
func (suite *DriveTestSuite) TestList_Entries(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	require.NoError(test, kernel.Mkdir(ctx, "A:/dir"))
	require.NoError(test, kernel.Create(ctx, "A:/dir/one"))
	require.NoError(test, kernel.Create(ctx, "A:/dir/two"))
	require.NoError(test, kernel.Mkdir(ctx, "A:/dir/sub"))

	assert.ElementsMatch(test, []string{"one", "two", "sub"}, List(test, kernel, "A:/dir"))
	assert.Equal(test, []string{"dir"}, List(test, kernel, "A:/"))
}
