package testing

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *DriveTestSuite) RunFileTests(test *testing.T) {
	test.Run("Create_Empty", suite.TestCreate_Empty)
	test.Run("Create_Duplicate", suite.TestCreate_Duplicate)
	test.Run("Open_OnDirectory", suite.TestOpen_OnDirectory)
	test.Run("WriteRead_RoundTrip", suite.TestWriteRead_RoundTrip)
	test.Run("Write_Appends", suite.TestWrite_Appends)
	test.Run("Read_SmallBuffer", suite.TestRead_SmallBuffer)
	test.Run("Read_IndependentCursors", suite.TestRead_IndependentCursors)
	test.Run("Read_Reader", suite.TestRead_Reader)
}

// TestCreate_Empty verifies a new file reads back empty.
func (suite *DriveTestSuite) TestCreate_Empty(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	require.NoError(test, kernel.Create(ctx, "A:/empty"))

	file, err := kernel.Open(ctx, "A:/empty")
	require.NoError(test, err)
	defer file.Close()

	buf := make([]byte, 16)
	n, err := file.Read(ctx, buf)
	require.NoError(test, err)
	assert.Equal(test, 0, n, "Empty file should read 0 bytes")
}

// TestCreate_Duplicate verifies duplicate file names are rejected.
func (suite *DriveTestSuite) TestCreate_Duplicate(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	WriteFile(test, kernel, "A:/file", "keep")

	err := kernel.Create(ctx, "A:/file")
	AssertErrorCode(test, vfs.ErrAlreadyExists, err)

	err = kernel.Mkdir(ctx, "A:/file")
	AssertErrorCode(test, vfs.ErrAlreadyExists, err)

	assert.Equal(test, "keep", ReadFile(test, kernel, "A:/file"), "Content should survive")
}

// TestOpen_OnDirectory verifies a directory entry cannot be opened as a file.
func (suite *DriveTestSuite) TestOpen_OnDirectory(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	require.NoError(test, kernel.Mkdir(ctx, "A:/dir"))

	_, err := kernel.Open(ctx, "A:/dir")
	AssertErrorCode(test, vfs.ErrIsNotFile, err)
}

// TestWriteRead_RoundTrip is the basic scenario: directory, file, write,
// read back through a second open.
func (suite *DriveTestSuite) TestWriteRead_RoundTrip(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	require.NoError(test, kernel.Mkdir(ctx, "A:/foo"))
	require.NoError(test, kernel.Create(ctx, "A:/foo/bar.txt"))

	file, err := kernel.Open(ctx, "A:/foo/bar.txt")
	require.NoError(test, err)
	n, err := file.Write(ctx, []byte("Hello World!"))
	require.NoError(test, err)
	assert.Equal(test, 12, n)
	require.NoError(test, file.Close())

	file, err = kernel.Open(ctx, "A:/foo/bar.txt")
	require.NoError(test, err)
	defer file.Close()

	buf := make([]byte, 100)
	n, err = file.Read(ctx, buf)
	require.NoError(test, err)
	assert.Equal(test, "Hello World!", string(buf[:n]))
}

// TestWrite_Appends verifies consecutive writes append.
func (suite *DriveTestSuite) TestWrite_Appends(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	WriteFile(test, kernel, "A:/log", "one,")
	require.NoError(test, kernel.WriteFile(ctx, "A:/log", []byte("two,")))
	require.NoError(test, kernel.WriteFile(ctx, "A:/log", []byte("three")))

	assert.Equal(test, "one,two,three", ReadFile(test, kernel, "A:/log"))
}

// TestRead_SmallBuffer verifies reads fill the buffer while data remains
// and resume where the previous read stopped.
func (suite *DriveTestSuite) TestRead_SmallBuffer(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	WriteFile(test, kernel, "A:/data", "abcdefghij")

	file, err := kernel.Open(ctx, "A:/data")
	require.NoError(test, err)
	defer file.Close()

	var got []byte
	buf := make([]byte, 3)
	for {
		n, err := file.Read(ctx, buf)
		require.NoError(test, err)
		require.Equal(test, min(len(buf), 10-len(got)), n, "Read must fill the buffer while data remains")
		if n == 0 {
			break
		}
		got = append(got, buf[:n]...)
	}
	assert.Equal(test, "abcdefghij", string(got))
}

// TestRead_IndependentCursors verifies each open has its own position.
func (suite *DriveTestSuite) TestRead_IndependentCursors(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	WriteFile(test, kernel, "A:/data", "0123456789")

	first, err := kernel.Open(ctx, "A:/data")
	require.NoError(test, err)
	defer first.Close()
	second, err := kernel.Open(ctx, "A:/data")
	require.NoError(test, err)
	defer second.Close()

	buf := make([]byte, 4)
	n, err := first.Read(ctx, buf)
	require.NoError(test, err)
	assert.Equal(test, "0123", string(buf[:n]))

	n, err = second.Read(ctx, buf)
	require.NoError(test, err)
	assert.Equal(test, "0123", string(buf[:n]), "Second open should start at 0")

	n, err = first.Read(ctx, buf)
	require.NoError(test, err)
	assert.Equal(test, "4567", string(buf[:n]))
}

// TestRead_Reader verifies the io.Reader adapter reaches EOF.
func (suite *DriveTestSuite) TestRead_Reader(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	payload := bytes.Repeat([]byte("dittovfs"), 4096)
	require.NoError(test, kernel.Create(ctx, "A:/big"))
	require.NoError(test, kernel.WriteFile(ctx, "A:/big", payload))

	file, err := kernel.Open(ctx, "A:/big")
	require.NoError(test, err)
	defer file.Close()

	data, err := io.ReadAll(vfs.NewReader(ctx, file))
	require.NoError(test, err)
	assert.Equal(test, payload, data)
}
