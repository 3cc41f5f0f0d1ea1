package badger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/marmos91/dittovfs/pkg/vfs"
	vfstesting "github.com/marmos91/dittovfs/pkg/vfs/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerDrive(t *testing.T) {
	suite := &vfstesting.DriveTestSuite{
		NewDrive: func() *vfs.Drive {
			drive, err := NewDrive(context.Background(), Config{}, nil)
			require.NoError(t, err)
			return drive
		},
	}
	suite.Run(t)
}

func TestList_Lexical(t *testing.T) {
	ctx := context.Background()
	drive, err := NewDrive(ctx, Config{}, nil)
	require.NoError(t, err)
	kernel := vfstesting.MountKernel(t, drive)

	for _, name := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, kernel.Create(ctx, "A:/"+name))
	}

	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, vfstesting.List(t, kernel, "A:/"))
}

func TestRemove_StaleHandle(t *testing.T) {
	ctx := context.Background()
	drive, err := NewDrive(ctx, Config{}, nil)
	require.NoError(t, err)
	kernel := vfstesting.MountKernel(t, drive)

	require.NoError(t, kernel.Mkdir(ctx, "A:/dir"))
	dir, err := kernel.OpenDir(ctx, "A:/dir")
	require.NoError(t, err)
	defer dir.Close()

	require.NoError(t, kernel.Remove(ctx, "A:/dir"))

	err = dir.Create(ctx, "child")
	vfstesting.AssertErrorCode(t, vfs.ErrNotFound, err)
}

func TestUnmount_ClosesDatabase(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, Config{}, nil)
	require.NoError(t, err)

	kernel := vfs.NewKernel(nil)
	require.NoError(t, kernel.Mount('B', s.Drive()))
	vfstesting.WriteFile(t, kernel, "B:/file", "data")

	file, err := kernel.Open(ctx, "B:/file")
	require.NoError(t, err)
	defer file.Close()

	require.NoError(t, kernel.Unmount(ctx, 'B'))
	assert.True(t, s.db.IsClosed())

	_, err = file.Read(ctx, make([]byte, 4))
	vfstesting.AssertErrorCode(t, vfs.ErrClosed, err)
}

func TestConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	drive, err := NewDrive(ctx, Config{}, nil)
	require.NoError(t, err)
	kernel := vfstesting.MountKernel(t, drive)

	require.NoError(t, kernel.Create(ctx, "A:/log"))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, kernel.WriteFile(ctx, "A:/log", []byte("x")))
		}()
	}
	wg.Wait()

	assert.Equal(t, "xxxx", vfstesting.ReadFile(t, kernel, "A:/log"))
}

type countingMetrics struct {
	mu  sync.Mutex
	ops map[string]int
}

func (m *countingMetrics) RecordStorageOperation(operation string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops[operation]++
}

func TestStorageMetrics(t *testing.T) {
	ctx := context.Background()
	m := &countingMetrics{ops: make(map[string]int)}
	drive, err := NewDrive(ctx, Config{}, m)
	require.NoError(t, err)
	kernel := vfstesting.MountKernel(t, drive)

	require.NoError(t, kernel.Mkdir(ctx, "A:/dir"))

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Equal(t, 1, m.ops["init"])
	assert.Equal(t, 1, m.ops["mkdir"])
	assert.Equal(t, 1, m.ops["open_dir"], "Only the root is opened to create /dir")
}
