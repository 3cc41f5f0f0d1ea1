package vfs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/marmos91/dittovfs/internal/logger"
	"github.com/marmos91/dittovfs/pkg/metrics"
)

// Kernel is the drive table: 26 optional drive slots, one per letter A..Z,
// and the path-based operations built on top of the handle API.
//
// Paths have the form "L:/component/component". The kernel never branches
// on backend identity and never inspects backend errors: every failure of a
// backend operation is returned to the caller unchanged.
//
// Thread Safety:
// The drive table is protected by a read-write mutex. Path operations hold
// the read lock only while taking a reference to the drive root, so
// backends see concurrent calls and must guard their own state.
type Kernel struct {
	mu      sync.RWMutex
	drives  [DriveCount]*Drive
	metrics metrics.KernelMetrics
}

// MountInfo describes a mounted drive.
type MountInfo struct {
	Letter  Letter
	Backend string
}

// NewKernel creates a kernel with no drives mounted.
//
// Parameters:
//   - m: Optional metrics collector; nil disables collection
func NewKernel(m metrics.KernelMetrics) *Kernel {
	if m == nil {
		m = metrics.NewNoopKernelMetrics()
	}
	return &Kernel{metrics: m}
}

// Mount stores drive at letter.
//
// Returns ErrInvalidDrive when letter is outside A..Z and ErrAlreadyExists
// when the slot is occupied; in both cases nothing changes.
func (k *Kernel) Mount(letter Letter, drive *Drive) (err error) {
	start := time.Now()
	defer func() { k.metrics.RecordOperation("mount", letterLabel(letter), time.Since(start), err) }()

	if !letter.Valid() {
		return NewError(ErrInvalidDrive, letter.String())
	}
	if drive == nil {
		return errors.New("cannot mount nil drive")
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.drives[letter.index()] != nil {
		return NewError(ErrAlreadyExists, letter.String()+":")
	}
	k.drives[letter.index()] = drive
	k.metrics.SetMountedDrives(k.countLocked())

	logger.Info("Mounted %s drive at %s:", drive.Backend(), letter)
	return nil
}

// Unmount clears the slot at letter and tears the drive down.
//
// The drive's unmount hook runs before its root reference is dropped;
// resolutions still holding the root keep it alive until they release it.
// The hook's error, if any, is returned after the slot has been cleared.
func (k *Kernel) Unmount(ctx context.Context, letter Letter) (err error) {
	start := time.Now()
	defer func() { k.metrics.RecordOperation("unmount", letterLabel(letter), time.Since(start), err) }()

	if !letter.Valid() {
		return NewError(ErrInvalidDrive, letter.String())
	}

	k.mu.Lock()
	drive := k.drives[letter.index()]
	k.drives[letter.index()] = nil
	k.metrics.SetMountedDrives(k.countLocked())
	k.mu.Unlock()

	if drive == nil {
		return NewError(ErrMissingDrive, letter.String()+":")
	}

	logger.Info("Unmounting %s drive at %s:", drive.Backend(), letter)
	return drive.Unmount(ctx)
}

// Close unmounts every drive. Unmount hook errors are joined.
func (k *Kernel) Close(ctx context.Context) error {
	k.mu.Lock()
	drives := k.drives
	k.drives = [DriveCount]*Drive{}
	k.metrics.SetMountedDrives(0)
	k.mu.Unlock()

	var errs []error
	for i, drive := range drives {
		if drive == nil {
			continue
		}
		letter := Letter('A' + i)
		logger.Debug("Unmounting %s drive at %s:", drive.Backend(), letter)
		if err := drive.Unmount(ctx); err != nil {
			logger.Warn("Unmount of %s: failed: %v", letter, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Drive returns the drive mounted at letter.
func (k *Kernel) Drive(letter Letter) (*Drive, error) {
	if !letter.Valid() {
		return nil, NewError(ErrInvalidDrive, letter.String())
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	drive := k.drives[letter.index()]
	if drive == nil {
		return nil, NewError(ErrMissingDrive, letter.String()+":")
	}
	return drive, nil
}

// Drives lists the mounted drives in letter order.
func (k *Kernel) Drives() []MountInfo {
	k.mu.RLock()
	defer k.mu.RUnlock()

	var infos []MountInfo
	for i, drive := range k.drives {
		if drive != nil {
			infos = append(infos, MountInfo{Letter: Letter('A' + i), Backend: drive.Backend()})
		}
	}
	return infos
}

func (k *Kernel) countLocked() int {
	n := 0
	for _, drive := range k.drives {
		if drive != nil {
			n++
		}
	}
	return n
}

// ============================================================================
// Path Operations
// ============================================================================

// Find resolves path to a directory entry.
//
// Resolution walks the path one component at a time: the root is opened as
// a directory, each intermediate component is looked up and reopened as a
// directory, and the last component is looked up and returned. "L:/"
// returns a new reference to the drive root.
//
// The caller must Release the returned entry.
func (k *Kernel) Find(ctx context.Context, path string) (entry *DirEntry, err error) {
	start := time.Now()
	defer func() { k.metrics.RecordOperation("find", driveLabel(path), time.Since(start), err) }()

	return k.find(ctx, path)
}

func (k *Kernel) find(ctx context.Context, path string) (*DirEntry, error) {
	letter, rest, err := SplitDrive(path)
	if err != nil {
		return nil, err
	}

	k.mu.RLock()
	drive := k.drives[letter.index()]
	if drive == nil {
		k.mu.RUnlock()
		return nil, NewError(ErrMissingDrive, letter.String()+":")
	}
	rest, ok := strings.CutPrefix(rest, "/")
	if !ok {
		k.mu.RUnlock()
		return nil, NewError(ErrInvalidPath, path)
	}
	root := drive.Root()
	k.mu.RUnlock()

	if rest == "" {
		return root, nil
	}
	defer root.Release()

	rest = strings.TrimSuffix(rest, "/")
	return resolve(ctx, root, rest)
}

// resolve walks rest (no leading '/', at least one component) from root.
func resolve(ctx context.Context, root *DirEntry, rest string) (*DirEntry, error) {
	dir, err := root.OpenDir(ctx)
	if err != nil {
		return nil, err
	}

	for {
		name, remainder, found := strings.Cut(rest, "/")
		if !found {
			break
		}
		logger.Debug("Resolving component %q", name)

		entry, err := dir.Find(ctx, name)
		_ = dir.Close()
		if err != nil {
			return nil, err
		}
		dir, err = entry.OpenDir(ctx)
		entry.Release()
		if err != nil {
			return nil, err
		}
		rest = remainder
	}

	defer dir.Close()
	return dir.Find(ctx, rest)
}

// Create creates an empty file at path.
//
// The path is split into parent and name at the last '/'; the parent is
// resolved, opened as a directory and asked to create name.
func (k *Kernel) Create(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() { k.metrics.RecordOperation("create", driveLabel(path), time.Since(start), err) }()

	dir, name, err := k.openParent(ctx, path)
	if err != nil {
		return err
	}
	defer dir.Close()

	return dir.Create(ctx, name)
}

// Mkdir creates an empty directory at path.
func (k *Kernel) Mkdir(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() { k.metrics.RecordOperation("mkdir", driveLabel(path), time.Since(start), err) }()

	dir, name, err := k.openParent(ctx, path)
	if err != nil {
		return err
	}
	defer dir.Close()

	return dir.Mkdir(ctx, name)
}

// Remove deletes the entry at path.
func (k *Kernel) Remove(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() { k.metrics.RecordOperation("remove", driveLabel(path), time.Since(start), err) }()

	dir, name, err := k.openParent(ctx, path)
	if err != nil {
		return err
	}
	defer dir.Close()

	return dir.Remove(ctx, name)
}

// Open resolves path and opens it as a file. The caller must Close it.
func (k *Kernel) Open(ctx context.Context, path string) (file *File, err error) {
	start := time.Now()
	defer func() { k.metrics.RecordOperation("open", driveLabel(path), time.Since(start), err) }()

	entry, err := k.find(ctx, path)
	if err != nil {
		return nil, err
	}
	defer entry.Release()

	return entry.Open(ctx)
}

// OpenDir resolves path and opens it as a directory. The caller must Close it.
func (k *Kernel) OpenDir(ctx context.Context, path string) (dir *Directory, err error) {
	start := time.Now()
	defer func() { k.metrics.RecordOperation("open_dir", driveLabel(path), time.Since(start), err) }()

	entry, err := k.find(ctx, path)
	if err != nil {
		return nil, err
	}
	defer entry.Release()

	return entry.OpenDir(ctx)
}

// ReadFile opens path and reads until the backend returns zero bytes.
func (k *Kernel) ReadFile(ctx context.Context, path string) ([]byte, error) {
	f, err := k.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	chunk := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := f.Read(ctx, chunk)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		buf.Write(chunk[:n])
	}
	k.metrics.RecordBytes("read", int64(buf.Len()))
	return buf.Bytes(), nil
}

// WriteFile opens path and writes data to it.
func (k *Kernel) WriteFile(ctx context.Context, path string, data []byte) error {
	f, err := k.Open(ctx, path)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := f.Write(ctx, data)
	k.metrics.RecordBytes("write", int64(n))
	return err
}

func (k *Kernel) openParent(ctx context.Context, path string) (*Directory, string, error) {
	parent, name, err := SplitParent(path)
	if err != nil {
		return nil, "", err
	}

	entry, err := k.find(ctx, parent)
	if err != nil {
		return nil, "", err
	}
	defer entry.Release()

	dir, err := entry.OpenDir(ctx)
	if err != nil {
		return nil, "", err
	}
	return dir, name, nil
}

func letterLabel(l Letter) string {
	if l.Valid() {
		return l.String()
	}
	return ""
}

func driveLabel(path string) string {
	if len(path) >= 2 && path[1] == ':' && Letter(path[0]).Valid() {
		return path[:1]
	}
	return ""
}
