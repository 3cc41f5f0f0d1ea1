package afero

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/marmos91/dittovfs/pkg/vfs"
	"github.com/spf13/afero"
)

// entry names a path on the underlying filesystem.
type entry struct {
	f    *FS
	path string
}

func (e *entry) OpenDir(ctx context.Context) (vfs.DirNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.f.check(); err != nil {
		return nil, err
	}

	info, err := e.f.fs.Stat(e.path)
	if err != nil {
		return nil, mapError(err, e.path)
	}
	if !info.IsDir() {
		return nil, vfs.NewError(vfs.ErrIsNotDirectory, e.path)
	}

	rd := readDir{f: e.f, path: e.path}
	if e.f.readOnly {
		return &rd, nil
	}
	return &dir{readDir: rd}, nil
}

func (e *entry) OpenFile(ctx context.Context) (vfs.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.f.check(); err != nil {
		return nil, err
	}

	info, err := e.f.fs.Stat(e.path)
	if err != nil {
		return nil, mapError(err, e.path)
	}
	if info.IsDir() {
		return nil, vfs.NewError(vfs.ErrIsNotFile, e.path)
	}

	flag := os.O_RDWR
	if e.f.readOnly {
		flag = os.O_RDONLY
	}
	handle, err := e.f.fs.OpenFile(e.path, flag, 0)
	if err != nil {
		return nil, mapError(err, e.path)
	}

	rf := &readFile{fs: e.f, f: handle}
	if !e.f.track(rf) {
		_ = handle.Close()
		return nil, vfs.NewError(vfs.ErrClosed, "afero drive unmounted")
	}
	if e.f.readOnly {
		return rf, nil
	}
	return &file{readFile: rf}, nil
}

// readDir offers the lookup and listing slots.
type readDir struct {
	f    *FS
	path string
}

func (d *readDir) child(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/"+string(filepath.Separator)) {
		return "", vfs.NewError(vfs.ErrNotFound, name)
	}
	return filepath.Join(d.path, name), nil
}

func (d *readDir) Find(ctx context.Context, name string) (vfs.EntryNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.f.check(); err != nil {
		return nil, err
	}

	p, err := d.child(name)
	if err != nil {
		return nil, err
	}
	if _, err := d.f.fs.Stat(p); err != nil {
		return nil, mapError(err, name)
	}
	return &entry{f: d.f, path: p}, nil
}

func (d *readDir) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.f.check(); err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(d.f.fs, d.path)
	if err != nil {
		return nil, mapError(err, d.path)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}

// dir adds the mutating slots to readDir.
type dir struct {
	readDir
}

func (d *dir) Create(ctx context.Context, name string) error {
	p, err := d.prepare(ctx, name)
	if err != nil {
		return err
	}
	handle, err := d.f.fs.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return mapError(err, name)
	}
	return handle.Close()
}

func (d *dir) Mkdir(ctx context.Context, name string) error {
	p, err := d.prepare(ctx, name)
	if err != nil {
		return err
	}
	return mapError(d.f.fs.Mkdir(p, 0755), name)
}

func (d *dir) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.f.check(); err != nil {
		return err
	}

	p, err := d.child(name)
	if err != nil {
		return err
	}
	if _, err := d.f.fs.Stat(p); err != nil {
		return mapError(err, name)
	}
	return mapError(d.f.fs.RemoveAll(p), name)
}

// prepare validates name for creation and rejects duplicates up front, as
// not every afero.Fs honours O_EXCL.
func (d *dir) prepare(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := d.f.check(); err != nil {
		return "", err
	}

	p, err := d.child(name)
	if err != nil {
		return "", vfs.NewError(vfs.ErrInvalidPath, name)
	}
	if _, err := d.f.fs.Stat(p); err == nil {
		return "", vfs.NewError(vfs.ErrAlreadyExists, name)
	}
	return p, nil
}

// readFile is an open file with its own read cursor.
type readFile struct {
	fs *FS
	f  afero.File

	mu     sync.Mutex
	offset int64
}

func (r *readFile) Read(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := r.fs.check(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.f.ReadAt(p, r.offset)
	r.offset += int64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, mapError(err, r.f.Name())
	}
	return n, nil
}

func (r *readFile) CloseFile() {
	if r.fs.untrack(r) {
		_ = r.f.Close()
	}
}

// file adds appending writes to readFile.
type file struct {
	*readFile
}

func (w *file) Write(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := w.fs.check(); err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.f.Seek(0, io.SeekEnd); err != nil {
		return 0, mapError(err, w.f.Name())
	}
	n, err := w.f.Write(p)
	if err != nil {
		return n, mapError(err, w.f.Name())
	}
	return n, nil
}
