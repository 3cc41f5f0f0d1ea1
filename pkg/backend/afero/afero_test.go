package afero

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/dittovfs/pkg/vfs"
	vfstesting "github.com/marmos91/dittovfs/pkg/vfs/testing"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAferoMemDrive(t *testing.T) {
	suite := &vfstesting.DriveTestSuite{
		NewDrive: func() *vfs.Drive {
			drive, err := NewDrive(Config{})
			require.NoError(t, err)
			return drive
		},
	}
	suite.Run(t)
}

func TestAferoHostDrive(t *testing.T) {
	suite := &vfstesting.DriveTestSuite{
		NewDrive: func() *vfs.Drive {
			drive, err := NewDrive(Config{Root: t.TempDir()})
			require.NoError(t, err)
			return drive
		},
	}
	suite.Run(t)
}

func TestReadOnlyHostRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "note.txt"), []byte("from host"), 0644))

	drive, err := NewDrive(Config{Root: root, ReadOnly: true})
	require.NoError(t, err)
	kernel := vfstesting.MountKernel(t, drive)

	assert.Equal(t, "from host", vfstesting.ReadFile(t, kernel, "A:/sub/note.txt"))
	assert.Equal(t, []string{"sub"}, vfstesting.List(t, kernel, "A:/"))

	vfstesting.AssertErrorCode(t, vfs.ErrUnsupported, kernel.Create(ctx, "A:/new"))
	vfstesting.AssertErrorCode(t, vfs.ErrUnsupported, kernel.Mkdir(ctx, "A:/new"))
	vfstesting.AssertErrorCode(t, vfs.ErrUnsupported, kernel.Remove(ctx, "A:/sub"))
	vfstesting.AssertErrorCode(t, vfs.ErrUnsupported, kernel.WriteFile(ctx, "A:/sub/note.txt", []byte("x")))

	_, err = os.Stat(filepath.Join(root, "new"))
	assert.True(t, os.IsNotExist(err), "Host directory must stay untouched")
}

func TestHostRoot_Jail(t *testing.T) {
	ctx := context.Background()
	drive, err := NewDrive(Config{Root: t.TempDir()})
	require.NoError(t, err)
	kernel := vfstesting.MountKernel(t, drive)

	_, err = kernel.Find(ctx, "A:/..")
	vfstesting.AssertErrorCode(t, vfs.ErrNotFound, err)
	_, err = kernel.Find(ctx, "A:/.")
	vfstesting.AssertErrorCode(t, vfs.ErrNotFound, err)
}

func TestNew_InvalidRoot(t *testing.T) {
	_, err := New(Config{Root: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = New(Config{Root: file})
	assert.Error(t, err)
}

func TestUnmount_ClosesOpenFiles(t *testing.T) {
	ctx := context.Background()
	fsys := NewFromFs(afero.NewMemMapFs(), false)
	kernel := vfs.NewKernel(nil)
	require.NoError(t, kernel.Mount('D', fsys.Drive()))

	vfstesting.WriteFile(t, kernel, "D:/a", "1")
	vfstesting.WriteFile(t, kernel, "D:/b", "2")

	a, err := kernel.Open(ctx, "D:/a")
	require.NoError(t, err)
	b, err := kernel.Open(ctx, "D:/b")
	require.NoError(t, err)
	require.NoError(t, b.Close())

	fsys.mu.Lock()
	assert.Len(t, fsys.open, 1)
	fsys.mu.Unlock()

	require.NoError(t, kernel.Unmount(ctx, 'D'))

	_, err = a.Read(ctx, make([]byte, 1))
	vfstesting.AssertErrorCode(t, vfs.ErrClosed, err)
	assert.NoError(t, a.Close())
}
