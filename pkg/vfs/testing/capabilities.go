package testing

import (
	"context"
	"testing"

	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
)

func (suite *DriveTestSuite) RunCapabilityTests(test *testing.T) {
	test.Run("Drive_ReportsWritableTable", suite.TestDrive_ReportsWritableTable)
	test.Run("Root_OpensAsDirectory", suite.TestRoot_OpensAsDirectory)
}

// TestDrive_ReportsWritableTable verifies the drive exposes every slot the
// suite relies on.
func (suite *DriveTestSuite) TestDrive_ReportsWritableTable(test *testing.T) {
	drive := suite.NewDrive()
	MountKernel(test, drive)

	caps := drive.Capabilities(context.Background())
	for _, op := range []vfs.Op{
		vfs.OpFind, vfs.OpOpenDir, vfs.OpOpenFile, vfs.OpCreate,
		vfs.OpMkdir, vfs.OpList, vfs.OpRemove,
	} {
		assert.True(test, caps.Has(op), "drive should support %s", op)
	}
}

// TestRoot_OpensAsDirectory verifies "A:/" resolves to a directory that
// cannot be opened as a file.
func (suite *DriveTestSuite) TestRoot_OpensAsDirectory(test *testing.T) {
	kernel := MountKernel(test, suite.NewDrive())
	ctx := context.Background()

	root, err := kernel.Find(ctx, "A:/")
	if !assert.NoError(test, err) {
		return
	}
	defer root.Release()

	dir, err := root.OpenDir(ctx)
	if assert.NoError(test, err) {
		_ = dir.Close()
	}

	_, err = root.Open(ctx)
	AssertErrorCode(test, vfs.ErrIsNotFile, err)
}
