package memory

import (
	"context"
	"testing"

	"github.com/marmos91/dittovfs/pkg/vfs"
	vfstesting "github.com/marmos91/dittovfs/pkg/vfs/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDrive(t *testing.T) {
	suite := &vfstesting.DriveTestSuite{
		NewDrive: func() *vfs.Drive {
			return NewDrive(Config{})
		},
	}
	suite.Run(t)
}

func TestRemove_StaleHandle(t *testing.T) {
	ctx := context.Background()
	kernel := vfstesting.MountKernel(t, NewDrive(Config{}))

	vfstesting.WriteFile(t, kernel, "A:/file", "data")
	file, err := kernel.Open(ctx, "A:/file")
	require.NoError(t, err)
	defer file.Close()

	require.NoError(t, kernel.Remove(ctx, "A:/file"))

	_, err = file.Read(ctx, make([]byte, 4))
	vfstesting.AssertErrorCode(t, vfs.ErrNotFound, err, "Handle to removed file should be stale")
}

func TestRemove_SlotReuseKeepsOldHandleStale(t *testing.T) {
	ctx := context.Background()
	fs := New(Config{})
	kernel := vfstesting.MountKernel(t, fs.Drive())

	require.NoError(t, kernel.Create(ctx, "A:/old"))
	old, err := kernel.Find(ctx, "A:/old")
	require.NoError(t, err)
	defer old.Release()

	require.NoError(t, kernel.Remove(ctx, "A:/old"))
	require.NoError(t, kernel.Create(ctx, "A:/new"))

	// the new file reuses the freed slot
	oldRef := old.Node().(*entry).ref
	newEntry, err := kernel.Find(ctx, "A:/new")
	require.NoError(t, err)
	defer newEntry.Release()
	assert.Equal(t, oldRef.index, newEntry.Node().(*entry).ref.index)

	_, err = old.Open(ctx)
	vfstesting.AssertErrorCode(t, vfs.ErrNotFound, err)
}

func TestRemove_FreesSubtree(t *testing.T) {
	ctx := context.Background()
	fs := New(Config{})
	kernel := vfstesting.MountKernel(t, fs.Drive())

	require.NoError(t, kernel.Mkdir(ctx, "A:/a"))
	require.NoError(t, kernel.Mkdir(ctx, "A:/a/b"))
	vfstesting.WriteFile(t, kernel, "A:/a/b/c", "12345")

	nodes, size := fs.Stats()
	assert.Equal(t, 4, nodes)
	assert.Equal(t, int64(5), size)

	require.NoError(t, kernel.Remove(ctx, "A:/a"))

	nodes, size = fs.Stats()
	assert.Equal(t, 1, nodes, "Only the root should remain")
	assert.Equal(t, int64(0), size)
}

func TestMaxNodes(t *testing.T) {
	ctx := context.Background()
	kernel := vfstesting.MountKernel(t, NewDrive(Config{MaxNodes: 3}))

	require.NoError(t, kernel.Create(ctx, "A:/one"))
	require.NoError(t, kernel.Create(ctx, "A:/two"))

	err := kernel.Create(ctx, "A:/three")
	assert.ErrorIs(t, err, ErrNodeLimit)

	require.NoError(t, kernel.Remove(ctx, "A:/one"))
	assert.NoError(t, kernel.Create(ctx, "A:/three"), "Freed slot should be reusable")
}

func TestUnmount_FreesArena(t *testing.T) {
	ctx := context.Background()
	fs := New(Config{})
	kernel := vfs.NewKernel(nil)
	require.NoError(t, kernel.Mount('A', fs.Drive()))

	vfstesting.WriteFile(t, kernel, "A:/file", "data")
	dir, err := kernel.OpenDir(ctx, "A:/")
	require.NoError(t, err)
	defer dir.Close()

	require.NoError(t, kernel.Unmount(ctx, 'A'))

	nodes, _ := fs.Stats()
	assert.Equal(t, 0, nodes)

	_, err = dir.List(ctx)
	vfstesting.AssertErrorCode(t, vfs.ErrClosed, err)
}

func TestFind_Literal(t *testing.T) {
	ctx := context.Background()
	kernel := vfstesting.MountKernel(t, NewDrive(Config{}))

	require.NoError(t, kernel.Mkdir(ctx, "A:/dir"))

	_, err := kernel.Find(ctx, "A:/dir/.")
	vfstesting.AssertErrorCode(t, vfs.ErrNotFound, err, "'.' is an ordinary name")

	_, err = kernel.Find(ctx, "A:/dir//x")
	vfstesting.AssertErrorCode(t, vfs.ErrNotFound, err, "Empty component is looked up literally")
}

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	kernel := vfstesting.MountKernel(t, NewDrive(Config{}))
	cancel()

	err := kernel.Mkdir(ctx, "A:/dir")
	assert.ErrorIs(t, err, context.Canceled)
}
