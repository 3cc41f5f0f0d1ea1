// Package afero adapts any afero.Fs to the VFS operation table.
//
// Without a host root the drive lives in an afero.MemMapFs. With a host
// root it is a BasePathFs jail over the OS filesystem, normally wrapped in
// a ReadOnlyFs. Read-only drives hand out node types that implement no
// create, mkdir, write or remove slot.
package afero

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/marmos91/dittovfs/internal/logger"
	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/spf13/afero"
)

// BackendName is the backend type reported by drives of this package.
const BackendName = "afero"

// Config contains configuration for the afero backend.
type Config struct {
	// Root is a host directory to expose. Empty means an in-memory filesystem.
	Root string `mapstructure:"root"`

	// ReadOnly hides every mutating operation.
	ReadOnly bool `mapstructure:"read_only"`
}

// FS is one afero-backed filesystem.
//
// Thread Safety:
// afero filesystems are safe for concurrent use. FS additionally tracks the
// files it opened so that unmounting closes the ones still open.
type FS struct {
	fs       afero.Fs
	readOnly bool

	mu        sync.Mutex
	open      map[*readFile]struct{}
	unmounted bool
}

// New builds the filesystem described by cfg.
func New(cfg Config) (*FS, error) {
	if cfg.Root == "" {
		return NewFromFs(afero.NewMemMapFs(), cfg.ReadOnly), nil
	}

	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root %q: %w", cfg.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory", cfg.Root)
	}

	var base afero.Fs = afero.NewBasePathFs(afero.NewOsFs(), cfg.Root)
	if cfg.ReadOnly {
		base = afero.NewReadOnlyFs(base)
	}
	logger.Debug("Afero drive rooted at %s (read-only: %v)", cfg.Root, cfg.ReadOnly)
	return NewFromFs(base, cfg.ReadOnly), nil
}

// NewFromFs wraps an existing afero.Fs.
func NewFromFs(fsys afero.Fs, readOnly bool) *FS {
	return &FS{
		fs:       fsys,
		readOnly: readOnly,
		open:     make(map[*readFile]struct{}),
	}
}

// NewDrive creates a drive for cfg.
func NewDrive(cfg Config) (*vfs.Drive, error) {
	f, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return f.Drive(), nil
}

// Drive wraps the filesystem in a vfs.Drive.
func (f *FS) Drive() *vfs.Drive {
	return vfs.NewDrive(BackendName, &entry{f: f, path: string(filepath.Separator)}, f)
}

// Unmount closes every file still open on the drive.
func (f *FS) Unmount(ctx context.Context) error {
	f.mu.Lock()
	files := f.open
	f.open = nil
	f.unmounted = true
	f.mu.Unlock()

	var errs []error
	for file := range files {
		if err := file.f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(files) > 0 {
		logger.Debug("Afero unmount closed %d open file(s)", len(files))
	}
	return errors.Join(errs...)
}

func (f *FS) check() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unmounted {
		return vfs.NewError(vfs.ErrClosed, "afero drive unmounted")
	}
	return nil
}

func (f *FS) track(file *readFile) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unmounted {
		return false
	}
	f.open[file] = struct{}{}
	return true
}

// untrack reports whether file was still tracked (and so must be closed by
// the caller).
func (f *FS) untrack(file *readFile) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.open[file]; !ok {
		return false
	}
	delete(f.open, file)
	return true
}

// mapError translates afero/os errors into VFS error codes.
func mapError(err error, name string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return vfs.NewError(vfs.ErrNotFound, name)
	case errors.Is(err, fs.ErrExist):
		return vfs.NewError(vfs.ErrAlreadyExists, name)
	default:
		return fmt.Errorf("afero: %s: %w", name, err)
	}
}
