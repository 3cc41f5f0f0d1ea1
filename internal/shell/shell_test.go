package shell

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/marmos91/dittovfs/pkg/backend/memory"
	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	kernel := vfs.NewKernel(nil)
	require.NoError(t, kernel.Mount('A', memory.NewDrive(memory.Config{})))
	t.Cleanup(func() { _ = kernel.Close(context.Background()) })

	var stdout, stderr bytes.Buffer
	return New(kernel, &stdout, &stderr), &stdout, &stderr
}

func TestRun_HelloWorld(t *testing.T) {
	sh, stdout, _ := newTestShell(t)

	script := `
# create and read back a file
mkdir A:/foo
touch A:/foo/bar.txt
write A:/foo/bar.txt Hello World!
cat A:/foo/bar.txt
ls A:/foo
`
	require.NoError(t, sh.Run(context.Background(), strings.NewReader(script), true))
	assert.Equal(t, "Hello World!\nbar.txt\n", stdout.String())
}

func TestExecute_Errors(t *testing.T) {
	ctx := context.Background()
	sh, _, _ := newTestShell(t)

	err := sh.Execute(ctx, "frobnicate A:/")
	assert.True(t, errors.Is(err, ErrUnknownCommand))

	err = sh.Execute(ctx, "mkdir")
	assert.True(t, errors.Is(err, ErrUsage))

	err = sh.Execute(ctx, "ls A:/a A:/b")
	assert.True(t, errors.Is(err, ErrUsage))

	err = sh.Execute(ctx, "cat B:/nothing")
	assert.True(t, errors.Is(err, vfs.ErrMissingDrive))

	err = sh.Execute(ctx, "cat A:/nothing")
	assert.True(t, errors.Is(err, vfs.ErrNotFound))

	assert.NoError(t, sh.Execute(ctx, "   "))
	assert.NoError(t, sh.Execute(ctx, "# comment"))
}

func TestRun_ContinuesAfterError(t *testing.T) {
	sh, stdout, stderr := newTestShell(t)

	script := "cat A:/missing\ntouch A:/f\nexit\ntouch A:/never\n"
	require.NoError(t, sh.Run(context.Background(), strings.NewReader(script), false))

	assert.Contains(t, stderr.String(), "error: not found")
	assert.Empty(t, stdout.String())

	_, err := sh.Kernel.Find(context.Background(), "A:/never")
	assert.True(t, errors.Is(err, vfs.ErrNotFound), "Commands after exit must not run")
}

func TestRun_StopOnError(t *testing.T) {
	sh, _, _ := newTestShell(t)

	err := sh.Run(context.Background(), strings.NewReader("mkdir A:/d\nmkdir A:/d\ntouch A:/after\n"), true)
	assert.True(t, errors.Is(err, vfs.ErrAlreadyExists))

	_, err = sh.Kernel.Find(context.Background(), "A:/after")
	assert.True(t, errors.Is(err, vfs.ErrNotFound))
}

func TestStat(t *testing.T) {
	ctx := context.Background()
	sh, stdout, _ := newTestShell(t)

	require.NoError(t, sh.Execute(ctx, "mkdir A:/docs"))
	require.NoError(t, sh.Execute(ctx, "touch A:/docs/a.txt"))
	require.NoError(t, sh.Execute(ctx, "write A:/docs/a.txt twelve bytes"))

	require.NoError(t, sh.Execute(ctx, "stat A:/docs"))
	assert.Contains(t, stdout.String(), "A:/docs: directory, 1 entries")

	stdout.Reset()
	require.NoError(t, sh.Execute(ctx, "stat A:/docs/a.txt"))
	assert.Contains(t, stdout.String(), "A:/docs/a.txt: file, 12 B (12 bytes)")
}

func TestSum(t *testing.T) {
	ctx := context.Background()
	sh, stdout, _ := newTestShell(t)

	require.NoError(t, sh.Execute(ctx, "touch A:/f"))
	require.NoError(t, sh.Execute(ctx, "write A:/f Hello World!"))
	require.NoError(t, sh.Execute(ctx, "sum A:/f"))

	digest := blake3.Sum256([]byte("Hello World!"))
	assert.Equal(t, hex.EncodeToString(digest[:])+"  A:/f\n", stdout.String())
}

func TestDrivesAndUmount(t *testing.T) {
	ctx := context.Background()
	sh, stdout, _ := newTestShell(t)

	require.NoError(t, sh.Execute(ctx, "drives"))
	assert.Contains(t, stdout.String(), "DRIVE")
	assert.Contains(t, stdout.String(), "A:")
	assert.Contains(t, stdout.String(), "memory")
	assert.Contains(t, stdout.String(), "mkdir")

	require.NoError(t, sh.Execute(ctx, "umount A:"))
	assert.Empty(t, sh.Kernel.Drives())

	err := sh.Execute(ctx, "umount A")
	assert.True(t, errors.Is(err, vfs.ErrMissingDrive))

	err = sh.Execute(ctx, "umount 7")
	assert.True(t, errors.Is(err, vfs.ErrInvalidDrive))
}

func TestRm(t *testing.T) {
	ctx := context.Background()
	sh, stdout, _ := newTestShell(t)

	require.NoError(t, sh.Execute(ctx, "mkdir A:/tree"))
	require.NoError(t, sh.Execute(ctx, "touch A:/tree/leaf"))
	require.NoError(t, sh.Execute(ctx, "rm A:/tree"))
	require.NoError(t, sh.Execute(ctx, "ls A:/"))
	assert.Empty(t, stdout.String())
}

func TestHelp(t *testing.T) {
	sh, stdout, _ := newTestShell(t)

	require.NoError(t, sh.Execute(context.Background(), "help"))
	for _, name := range sh.Commands() {
		assert.Contains(t, stdout.String(), name)
	}
	assert.Contains(t, stdout.String(), "exit")
}
